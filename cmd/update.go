package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/azalea-mc/azalea/cmdshared"
	"github.com/azalea-mc/azalea/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update every project to its newest version for the pack's Minecraft version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m, err := NewManager()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ctx, cancel := Context()
		defer cancel()

		fmt.Println("Checking for updates...")
		plan, err := m.PlanUpdate(ctx, core.UpgradeOptions{
			Partial: viper.GetBool("update.partial"),
			Force:   viper.GetBool("update.force"),
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		cmdshared.PrintUpgradePlan(os.Stdout, plan)

		res, err := m.ApplyUpgrade(plan)
		if err != nil {
			if errors.Is(err, core.ErrUpgradeBlocked) {
				fmt.Println("Some projects could not be updated; use --partial to update the rest")
			}
			fmt.Println(err)
			os.Exit(1)
		}
		cmdshared.PrintPruned(os.Stdout, res.Pruned)
		if len(res.Written) > 0 {
			fmt.Printf("%d files updated!\n", len(res.Written))
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().Bool("partial", false, "Update what can be updated even if some projects fail")
	_ = viper.BindPFlag("update.partial", updateCmd.Flags().Lookup("partial"))
	updateCmd.Flags().Bool("force", false, "Rewrite every entry, even those already up to date")
	_ = viper.BindPFlag("update.force", updateCmd.Flags().Lookup("force"))
}
