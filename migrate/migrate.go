package migrate

import (
	"github.com/azalea-mc/azalea/cmd"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate [packwiz]",
	Short: "Import a modpack managed by another tool",
}

func init() {
	cmd.Add(migrateCmd)
}
