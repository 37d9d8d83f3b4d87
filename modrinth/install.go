package modrinth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/azalea-mc/azalea/cmd"
	"github.com/azalea-mc/azalea/cmdshared"
	"github.com/azalea-mc/azalea/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/dixonwille/wmenu.v4"
)

// installCmd represents the add command
var installCmd = &cobra.Command{
	Use:   "add [URL|slug|search]",
	Short: "Add a project from a Modrinth URL, slug/project ID or search, along with its dependencies",
	Long: `Add a project from a Modrinth URL, slug/project ID or search, along with its required dependencies.

With --file, add one project per line of a file; blank lines and lines starting with # are skipped.`,
	Aliases: []string{"install", "get"},
	Args:    cobra.ArbitraryArgs,
	Run: func(c *cobra.Command, args []string) {
		m, err := cmd.NewManager()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if !viper.GetBool("non-interactive") {
			m.Chooser = menuChooser{}
		}
		ctx, cancel := cmd.Context()
		defer cancel()

		if file := viper.GetString("add.file"); file != "" {
			if len(args) != 0 {
				fmt.Println("--file cannot be used with a separately specified URL/slug/search term")
				os.Exit(1)
			}
			f, err := os.Open(file)
			if err != nil {
				fmt.Printf("Failed to open %s: %v\n", file, err)
				os.Exit(1)
			}
			defer f.Close()
			items, err := m.AddFromReader(ctx, f)
			failed := cmdshared.PrintBatch(os.Stdout, items)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			if failed > 0 {
				os.Exit(1)
			}
			return
		}

		if len(args) == 0 || len(args[0]) == 0 {
			fmt.Println("You must specify a project; with --file, or by passing a URL, slug or search term directly.")
			os.Exit(1)
		}
		query := strings.Join(args, " ")
		version := viper.GetString("add.version")
		ref, err := ParseReference(query)
		if err != nil {
			fmt.Printf("Failed to parse URL: %v\n", err)
			os.Exit(1)
		}
		if ref.IsURL {
			query = ref.Slug
			if version == "" {
				version = ref.Version
			}
			if version == "" {
				version = ref.VersionID
			}
		}

		res, err := m.Add(ctx, query, version)
		if err != nil {
			fmt.Printf("Failed to add project: %s\n", err)
			os.Exit(1)
		}
		cmdshared.PrintResolution(os.Stdout, res)
	},
}

// menuChooser asks the user to pick one of several search results
type menuChooser struct{}

func (menuChooser) Choose(query string, candidates []core.RemoteProject) (core.RemoteProject, error) {
	var selected *core.RemoteProject

	fmt.Printf("Several projects match %q:\n", query)
	menu := wmenu.NewMenu("Choose a number:")
	menu.Option("Cancel", nil, false, nil)
	for i, v := range candidates {
		title := v.Title
		if title == "" {
			title = v.Slug
		}
		menu.Option(title, &candidates[i], i == 0, nil)
	}

	menu.Action(func(menuRes []wmenu.Opt) error {
		if len(menuRes) != 1 || menuRes[0].Value == nil {
			return errors.New("project selection cancelled")
		}
		project, ok := menuRes[0].Value.(*core.RemoteProject)
		if !ok {
			return errors.New("error converting interface from wmenu")
		}
		selected = project
		return nil
	})

	if err := menu.Run(); err != nil {
		return core.RemoteProject{}, err
	}
	if selected == nil {
		return core.RemoteProject{}, fmt.Errorf("%w: no project selected for %q", core.ErrAmbiguousQuery, query)
	}
	return *selected, nil
}

func init() {
	cmd.Add(installCmd)

	installCmd.Flags().StringP("file", "f", "", "Add every project listed in a file, one per line")
	_ = viper.BindPFlag("add.file", installCmd.Flags().Lookup("file"))
	installCmd.Flags().String("version", "", "The version number (or version ID) to install")
	_ = viper.BindPFlag("add.version", installCmd.Flags().Lookup("version"))
}
