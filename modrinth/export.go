package modrinth

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/azalea-mc/azalea/cmd"
	"github.com/azalea-mc/azalea/core"
	"github.com/charmbracelet/log"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// IgnoreFile lists, in gitignore syntax, override paths left out of exports
const IgnoreFile = ".azaleaignore"

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current modpack into a .mrpack for Modrinth",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		fmt.Println("Loading modpack...")
		pack, err := cmd.LoadPack()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		m := core.NewManager(pack, core.NewDirStore(pack), nil, nil, cmd.Logger())
		plan, err := m.ExportPlan()
		if err != nil {
			fmt.Printf("Error reading entries: %v\n", err)
			os.Exit(1)
		}

		fileName := viper.GetString("export.output")
		if fileName == "" {
			fileName = filepath.Join(pack.DistFolder(), plan.ArchiveName("mrpack"))
		}
		ig, err := LoadIgnore(pack.Root)
		if err != nil {
			fmt.Printf("Failed to read %s: %v\n", IgnoreFile, err)
			os.Exit(1)
		}
		if err := ExportToFile(fileName, plan, ig, cmd.Logger()); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Modpack exported to %s (%d files)\n", fileName, len(plan.Files))
	},
}

// LoadIgnore reads the ignore file of the pack; a pack without one ignores nothing
func LoadIgnore(root string) (*ignore.GitIgnore, error) {
	ig, err := ignore.CompileIgnoreFile(filepath.Join(root, IgnoreFile))
	if errors.Is(err, fs.ErrNotExist) {
		return ignore.CompileIgnoreLines(), nil
	}
	return ig, err
}

// ExportToFile writes the archive to path, creating its folder. A partly written archive is removed.
func ExportToFile(path string, plan core.ExportPlan, ig *ignore.GitIgnore, logger *log.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	expFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	err = WriteArchive(expFile, plan, ig, logger)
	if closeErr := expFile.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("error writing export file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
	}
	return err
}

// WriteArchive writes a .mrpack: the index of every installed file, and the overrides folder
func WriteArchive(w io.Writer, plan core.ExportPlan, ig *ignore.GitIgnore, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	exp := zip.NewWriter(w)

	manifestFile, err := exp.Create(IndexFile)
	if err != nil {
		return fmt.Errorf("error creating manifest: %w", err)
	}
	enc := json.NewEncoder(manifestFile)
	enc.SetIndent("", "    ") // Documentation uses 4 spaces
	if err := enc.Encode(BuildIndex(plan, logger)); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}

	// Add an overrides folder even if there are no files to go in it
	if _, err := exp.Create("overrides/"); err != nil {
		return fmt.Errorf("failed to add overrides folder: %w", err)
	}
	if err := addOverrides(exp, plan.Overrides, ig, logger); err != nil {
		return err
	}
	return exp.Close()
}

// BuildIndex returns the modrinth.index.json manifest of an export plan
func BuildIndex(plan core.ExportPlan, logger *log.Logger) Pack {
	if logger == nil {
		logger = log.Default()
	}
	manifest := plan.Manifest
	if manifest.Version == "" {
		logger.Warn("the manifest version must not be empty to create a valid Modrinth pack")
	}

	dependencies := map[string]string{
		"minecraft": manifest.MinecraftVersion,
	}
	if manifest.LoaderVersion != "" {
		dependencies[strings.ToLower(manifest.Loader)+"-loader"] = manifest.LoaderVersion
	} else {
		logger.Warn("no loader version is set; the exported pack will not install a loader", "loader", manifest.Loader)
	}

	files := make([]PackFile, 0, len(plan.Files))
	for _, f := range plan.Files {
		e := f.Entry
		hashes := map[string]string{"sha512": e.File.SHA512}
		if e.File.SHA1 != "" {
			hashes["sha1"] = e.File.SHA1
		} else {
			logger.Warn("entry has no sha1 hash, which Modrinth requires", "slug", e.Slug)
		}

		// Modrinth URLs must be RFC3986
		u, err := encodeDownloadURL(e.File.URL)
		if err != nil {
			logger.Warn("failed to re-encode download URL", "slug", e.Slug, "err", err)
			u = e.File.URL
		}

		files = append(files, PackFile{
			Path:      f.Path,
			Hashes:    hashes,
			Env:       envForSide(e.Side),
			Downloads: []string{u},
			FileSize:  e.File.Size,
		})
	}

	return Pack{
		FormatVersion: 1,
		Game:          "minecraft",
		VersionID:     manifest.Version,
		Name:          manifest.Name,
		Files:         files,
		Dependencies:  dependencies,
	}
}

func envForSide(side string) *PackFileEnv {
	switch side {
	case core.ClientSide:
		return &PackFileEnv{Client: "required", Server: "unsupported"}
	case core.ServerSide:
		return &PackFileEnv{Client: "unsupported", Server: "required"}
	default:
		return &PackFileEnv{Client: "required", Server: "required"}
	}
}

// encodeDownloadURL re-encodes a URL for RFC3986 compliance, as some file URLs aren't properly encoded.
// Go's URL library leaves [ and ] alone, so they are escaped first.
func encodeDownloadURL(u string) (string, error) {
	u = strings.NewReplacer("[", "%5B", "]", "%5D").Replace(u)
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %s, %v", u, err)
	}
	return parsed.String(), nil
}

func addOverrides(exp *zip.Writer, dir string, ig *ignore.GitIgnore, logger *log.Logger) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ig != nil && ig.MatchesPath(rel) {
			logger.Debug("ignoring override", "path", rel)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := exp.Create("overrides/" + rel)
		if err != nil {
			return fmt.Errorf("failed to add override %s: %w", rel, err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("failed to add override %s: %w", rel, err)
		}
		return nil
	})
}

func init() {
	cmd.Add(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "The file to export the modpack to (defaults to dist/<name>-<version>-mc<minecraft>.mrpack)")
	_ = viper.BindPFlag("export.output", exportCmd.Flags().Lookup("output"))
}
