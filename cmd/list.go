package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/azalea-mc/azalea/cmdshared"
	"github.com/azalea-mc/azalea/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all the projects in the modpack",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pack, err := LoadPack()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		entries, err := core.NewDirStore(pack).ReadAll()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Filter entries by side
		if viper.IsSet("list.side") {
			side := viper.GetString("list.side")
			if side != core.UniversalSide && side != core.ServerSide && side != core.ClientSide {
				fmt.Printf("Invalid side %q, must be one of client, server, or both (default)\n", side)
				os.Exit(1)
			}

			i := 0
			for _, e := range entries {
				if e.Side == side || e.Side == core.UniversalSide || side == core.UniversalSide {
					entries[i] = e
					i++
				}
			}
			entries = entries[:i]
		}

		showExplicit := viper.GetBool("list.explicit")
		showImplicit := viper.GetBool("list.implicit")
		if showExplicit && showImplicit {
			fmt.Println("Cannot specify both --explicit and --implicit flags")
			os.Exit(1)
		}
		if showExplicit || showImplicit {
			i := 0
			for _, e := range entries {
				if (showExplicit && e.Explicit) || (showImplicit && !e.Explicit) {
					entries[i] = e
					i++
				}
			}
			entries = entries[:i]
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Slug) < strings.ToLower(entries[j].Slug)
		})
		cmdshared.PrintEntries(os.Stdout, entries, viper.GetBool("list.version"))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("version", "v", false, "Print slug, version, kind and side")
	_ = viper.BindPFlag("list.version", listCmd.Flags().Lookup("version"))
	listCmd.Flags().StringP("side", "s", "", "Filter projects by side (e.g., client or server)")
	_ = viper.BindPFlag("list.side", listCmd.Flags().Lookup("side"))
	listCmd.Flags().Bool("explicit", false, "Show only projects that were added directly")
	_ = viper.BindPFlag("list.explicit", listCmd.Flags().Lookup("explicit"))
	listCmd.Flags().Bool("implicit", false, "Show only projects installed as dependencies")
	_ = viper.BindPFlag("list.implicit", listCmd.Flags().Lookup("implicit"))
}
