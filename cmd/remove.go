package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/azalea-mc/azalea/cmdshared"
	"github.com/azalea-mc/azalea/core"
	"github.com/spf13/cobra"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove [slug]",
	Short:   "Remove a project from the modpack, along with dependencies nothing else needs",
	Aliases: []string{"delete", "uninstall", "rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args[0]) == 0 {
			fmt.Println("You must specify a project.")
			os.Exit(1)
		}
		pack, err := LoadPack()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		m := core.NewManager(pack, core.NewDirStore(pack), nil, nil, Logger())
		res, err := m.Remove(args[0])
		if err != nil {
			if errors.Is(err, core.ErrNotInstalled) {
				fmt.Println("You don't have this project installed.")
			} else {
				fmt.Println(err)
			}
			os.Exit(1)
		}
		cmdshared.PrintPruned(os.Stdout, res.Pruned)
		fmt.Printf("Project %s removed successfully!\n", res.Removed.Slug)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
