package modrinth

import (
	"fmt"
	"os"

	"github.com/azalea-mc/azalea/cmd"
	"github.com/azalea-mc/azalea/core"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:     "open [slug]",
	Short:   "Open the Modrinth page of an installed project in your browser",
	Aliases: []string{"doc"},
	Args:    cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		if len(args[0]) == 0 {
			fmt.Println("You must specify a project.")
			os.Exit(1)
		}
		pack, err := cmd.LoadPack()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		entries, err := core.NewDirStore(pack).ReadAll()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		entry, ok := core.FindBySlug(entries, args[0])
		if !ok {
			fmt.Println("You don't have this project installed.")
			os.Exit(1)
		}

		fmt.Println("Opening browser...")
		url := ProjectURL(entry.ProjectID)
		err = open.Start(url)
		if err != nil {
			fmt.Println("Opening page failed, direct link:")
			fmt.Println(url)
		}
	},
}

func init() {
	cmd.Add(openCmd)
}
