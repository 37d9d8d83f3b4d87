package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/azalea-mc/azalea/cmdshared"
	"github.com/azalea-mc/azalea/core"
	"github.com/fatih/camelcase"
	"github.com/igorsobreira/titlecase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialise an azalea modpack",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := PackDir()
		if core.Exists(root) && !viper.GetBool("init.reinit") {
			fmt.Println("Modpack manifest already exists, use -r to override!")
			os.Exit(1)
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			fmt.Printf("Error creating pack directory: %s\n", err)
			os.Exit(1)
		}

		name, err := cmd.Flags().GetString("name")
		if err != nil || len(name) == 0 {
			if dirName := nameFromDirectory(root); dirName != "" {
				name = cmdshared.ReadValue("Modpack name ["+dirName+"]: ", dirName)
			} else {
				name = cmdshared.ReadValue("Modpack name ["+core.DefaultPackName+"]: ", core.DefaultPackName)
			}
		}

		author, err := cmd.Flags().GetString("author")
		if err != nil || len(author) == 0 {
			author = cmdshared.ReadValue("Author ["+core.DefaultPackAuthor+"]: ", core.DefaultPackAuthor)
		}

		version, err := cmd.Flags().GetString("version")
		if err != nil || len(version) == 0 {
			version = cmdshared.ReadValue("Version ["+core.DefaultPackVersion+"]: ", core.DefaultPackVersion)
		}

		modLoaderName := strings.ToLower(viper.GetString("init.modloader"))
		if len(modLoaderName) == 0 {
			modLoaderName = strings.ToLower(cmdshared.ReadValue("Mod loader ["+core.DefaultLoader+"]: ", core.DefaultLoader))
		}

		manifest := core.Manifest{
			Name:             name,
			Author:           author,
			Version:          version,
			License:          viper.GetString("init.license"),
			MinecraftVersion: viper.GetString("init.mc-version"),
			Loader:           modLoaderName,
			LoaderVersion:    viper.GetString("init.loader-version"),
		}

		ctx, cancel := Context()
		defer cancel()
		httpClient := HTTPClient()
		catalog, err := Catalog(httpClient)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		pack, err := core.InitPack(ctx, root, manifest, catalog, core.LoaderMeta{Client: httpClient}, Logger())
		if err != nil {
			if errors.Is(err, core.ErrUnknownVersion) {
				fmt.Println("Given Minecraft version cannot be found!")
			}
			fmt.Println(err)
			os.Exit(1)
		}

		loader := core.ComponentToFriendlyName(pack.Manifest.Loader)
		if pack.Manifest.LoaderVersion != "" {
			loader += " " + pack.Manifest.LoaderVersion
		}
		fmt.Printf("%s created! (Minecraft %s, %s)\n", core.ManifestFile, pack.Manifest.MinecraftVersion, loader)
	},
}

// nameFromDirectory turns the directory name into a space separated proper name
func nameFromDirectory(root string) string {
	directoryName := filepath.Base(root)
	if directoryName == "." || directoryName == string(filepath.Separator) || len(directoryName) == 0 {
		return ""
	}
	return titlecase.Title(strings.ReplaceAll(strings.ReplaceAll(strings.Join(camelcase.Split(directoryName), " "), " - ", " "), " _ ", " "))
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("name", "", "The name of the modpack (omit to define interactively)")
	initCmd.Flags().String("author", "", "The author of the modpack (omit to define interactively)")
	initCmd.Flags().String("version", "", "The version of the modpack (omit to define interactively)")
	initCmd.Flags().String("license", "", "The license of the modpack")
	_ = viper.BindPFlag("init.license", initCmd.Flags().Lookup("license"))
	initCmd.Flags().String("mc-version", "", "The Minecraft version to use (defaults to the latest release)")
	_ = viper.BindPFlag("init.mc-version", initCmd.Flags().Lookup("mc-version"))
	initCmd.Flags().BoolP("reinit", "r", false, "Recreate the manifest if it already exists, rather than exiting")
	_ = viper.BindPFlag("init.reinit", initCmd.Flags().Lookup("reinit"))
	initCmd.Flags().String("modloader", "", "The mod loader to use (omit to define interactively)")
	_ = viper.BindPFlag("init.modloader", initCmd.Flags().Lookup("modloader"))
	initCmd.Flags().String("loader-version", "", "The mod loader version to use (defaults to the latest stable build)")
	_ = viper.BindPFlag("init.loader-version", initCmd.Flags().Lookup("loader-version"))
}
