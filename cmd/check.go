package cmd

import (
	"fmt"
	"os"

	"github.com/azalea-mc/azalea/cmdshared"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [minecraft version]",
	Short: "Report which projects have a version for another Minecraft version, without changing anything",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := NewManager()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ctx, cancel := Context()
		defer cancel()

		report, err := m.Check(ctx, args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		cmdshared.PrintCheckReport(os.Stdout, report)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
