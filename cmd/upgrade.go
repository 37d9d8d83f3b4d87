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

// upgradeCmd represents the upgrade command
var upgradeCmd = &cobra.Command{
	Use:   "upgrade [minecraft version]",
	Short: "Move the modpack to another Minecraft version (defaults to the latest release)",
	Long: `Move the modpack to another Minecraft version, re-resolving every project that was added directly
and re-deriving their dependencies. Dependencies that are no longer needed are removed.

The upgrade is refused if any project has no version for the target, unless --partial is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requested := "latest"
		if len(args) > 0 {
			requested = args[0]
		}
		m, err := NewManager()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ctx, cancel := Context()
		defer cancel()

		plan, err := m.PlanUpgrade(ctx, requested, core.UpgradeOptions{
			Partial: viper.GetBool("upgrade.partial"),
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		cmdshared.PrintUpgradePlan(os.Stdout, plan)

		if plan.Blocked() && !plan.Options.Partial {
			fmt.Printf("%d projects have no version for Minecraft %s; use --partial to upgrade anyway\n", len(plan.Failures), plan.Target)
			os.Exit(1)
		}
		if viper.GetBool("upgrade.dry-run") {
			return
		}
		if !cmdshared.PromptYesNo("Apply these changes? [Y/n]: ") {
			fmt.Println("Cancelled!")
			return
		}

		res, err := m.ApplyUpgrade(plan)
		if err != nil {
			if errors.Is(err, core.ErrUpgradeBlocked) {
				fmt.Println("Upgrade blocked, nothing was changed")
			}
			fmt.Println(err)
			os.Exit(1)
		}
		cmdshared.PrintPruned(os.Stdout, res.Pruned)
		fmt.Printf("Modpack upgraded to Minecraft %s! (%d files written)\n", plan.Target, len(res.Written))
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)

	upgradeCmd.Flags().Bool("partial", false, "Upgrade even if some projects have no version for the target")
	_ = viper.BindPFlag("upgrade.partial", upgradeCmd.Flags().Lookup("partial"))
	upgradeCmd.Flags().Bool("dry-run", false, "Only print what would change")
	_ = viper.BindPFlag("upgrade.dry-run", upgradeCmd.Flags().Lookup("dry-run"))
}
