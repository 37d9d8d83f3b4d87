package utils

import (
	"github.com/azalea-mc/azalea/cmd"
	"github.com/spf13/cobra"
)

// utilsCmd represents the utils command
var utilsCmd = &cobra.Command{
	Use:   "utils",
	Short: "Utilities for working on azalea itself",
}

func init() {
	cmd.Add(utilsCmd)
}
