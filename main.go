package main

import (
	"github.com/azalea-mc/azalea/cmd"

	// Modules of azalea
	_ "github.com/azalea-mc/azalea/migrate"
	_ "github.com/azalea-mc/azalea/modrinth"
	_ "github.com/azalea-mc/azalea/utils"
)

func main() {
	cmd.Execute()
}
