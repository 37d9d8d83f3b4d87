package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/azalea-mc/azalea/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// readmeCmd represents the readme command
var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Update the table of projects in the README",
	Long: fmt.Sprintf(`Replace everything between the %s and %s markers
in the README with a table of every installed project.`, core.ReadmeStartMarker, core.ReadmeEndMarker),
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pack, err := LoadPack()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		path := viper.GetString("readme.file")
		if !filepath.IsAbs(path) {
			path = filepath.Join(pack.Root, path)
		}
		m := core.NewManager(pack, core.NewDirStore(pack), nil, nil, Logger())
		if err := m.UpdateReadme(path); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(path + " updated!")
	},
}

func init() {
	rootCmd.AddCommand(readmeCmd)

	readmeCmd.Flags().StringP("file", "f", "README.md", "The README file to update, relative to the pack directory")
	_ = viper.BindPFlag("readme.file", readmeCmd.Flags().Lookup("file"))
}
