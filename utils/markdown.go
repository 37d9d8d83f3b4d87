package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/azalea-mc/azalea/cmd"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/viper"
)

// markdownCmd represents the markdown command
var markdownCmd = &cobra.Command{
	Use:     "markdown",
	Short:   "Generate markdown documentation for every command",
	Aliases: []string{"md"},
	Args:    cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		outDir := viper.GetString("utils.markdown.dir")
		if err := GenerateMarkdown(cmd.Root(), outDir); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("Generated markdown in " + outDir)
	},
}

// GenerateMarkdown writes one markdown page per command into outDir, linking pages by file name
func GenerateMarkdown(root *cobra.Command, outDir string) error {
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	root.DisableAutoGenTag = true
	prepender := func(filename string) string {
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return "---\ntitle: \"" + strings.ReplaceAll(name, "_", " ") + "\"\n---\n\n"
	}
	linkHandler := func(name string) string {
		return name
	}
	if err := doc.GenMarkdownTreeCustom(root, outDir, prepender, linkHandler); err != nil {
		return fmt.Errorf("error generating markdown: %w", err)
	}
	return nil
}

func init() {
	utilsCmd.AddCommand(markdownCmd)

	markdownCmd.Flags().String("dir", "docs", "The destination directory to save docs in")
	_ = viper.BindPFlag("utils.markdown.dir", markdownCmd.Flags().Lookup("dir"))
}
