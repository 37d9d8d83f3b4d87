package migrate

import (
	"fmt"
	"os"

	"github.com/azalea-mc/azalea/cmd"
	"github.com/azalea-mc/azalea/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var packwizCommand = &cobra.Command{
	Use:   "packwiz [pack.toml]",
	Short: "Import a packwiz modpack, re-fetching its Modrinth files",
	Long: `Import a packwiz modpack into an azalea pack in the pack directory.

Every file installed from Modrinth is looked up again by version ID. Files from other sources are skipped.
Projects that other imported projects require are marked as dependencies.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(c *cobra.Command, args []string) {
		packFile := "pack.toml"
		if len(args) > 0 {
			packFile = args[0]
		}
		if _, err := os.Stat(packFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Printf("No packwiz pack found at %s\n", packFile)
			} else {
				fmt.Println(err)
			}
			os.Exit(1)
		}
		root := cmd.PackDir()
		if core.Exists(root) && !viper.GetBool("migrate.packwiz.reinit") {
			fmt.Println("Modpack manifest already exists, use -r to override!")
			os.Exit(1)
		}

		catalog, err := cmd.Catalog(cmd.HTTPClient())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		ctx, cancel := cmd.Context()
		defer cancel()

		im := &Importer{Catalog: catalog, Log: cmd.Logger(), Concurrency: viper.GetInt("concurrency")}
		fmt.Printf("Importing %s...\n", packFile)
		res, err := im.ImportPackwiz(ctx, packFile, root)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		explicit := 0
		for _, e := range res.Entries {
			if e.Explicit {
				explicit++
			}
		}
		for _, s := range res.Skipped {
			fmt.Printf("Skipped %s: %s\n", s.File, s.Reason)
		}
		fmt.Printf("Imported %d projects (%d dependencies) into %s\n", len(res.Entries), len(res.Entries)-explicit, res.Pack.Root)
	},
}

func init() {
	migrateCmd.AddCommand(packwizCommand)

	packwizCommand.Flags().BoolP("reinit", "r", false, "Replace the manifest if the pack directory already has one")
	_ = viper.BindPFlag("migrate.packwiz.reinit", packwizCommand.Flags().Lookup("reinit"))
}
