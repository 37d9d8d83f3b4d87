package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ManifestFile is the name of the pack manifest at the root of every pack
const ManifestFile = "azalea.json"

// Manifest stores the modpack metadata, in azalea.json
type Manifest struct {
	Name             string `json:"name"`
	Author           string `json:"author"`
	Version          string `json:"version"`
	License          string `json:"license,omitempty"`
	MinecraftVersion string `json:"minecraft_version"`
	Loader           string `json:"loader"`
	LoaderVersion    string `json:"loader_version,omitempty"`
}

// Pack is the context every operation runs in: where the pack lives on disk, and its manifest
type Pack struct {
	Root     string
	Manifest Manifest
}

// LoadPack loads the manifest from the pack rooted at root
func LoadPack(root string) (Pack, error) {
	path := filepath.Join(root, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Pack{}, fmt.Errorf("%w: %s does not exist, run azalea init first", ErrNoPack, path)
		}
		return Pack{}, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Pack{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, path, err)
	}
	if manifest.MinecraftVersion == "" || manifest.Loader == "" {
		return Pack{}, fmt.Errorf("%w: %s: minecraft_version and loader are required", ErrMalformedRecord, path)
	}
	return Pack{Root: root, Manifest: manifest}, nil
}

// Exists reports whether a manifest is present in root
func Exists(root string) bool {
	_, err := os.Stat(filepath.Join(root, ManifestFile))
	return err == nil
}

// KindFolder returns the absolute folder entries of the given kind are stored in
func (pack Pack) KindFolder(kind ContentKind) string {
	return filepath.Join(pack.Root, kind.Folder())
}

func (pack Pack) OverridesFolder() string {
	return filepath.Join(pack.Root, "overrides")
}

func (pack Pack) DistFolder() string {
	return filepath.Join(pack.Root, "dist")
}

// GetCompatibleLoaders returns the loaders whose builds can be installed in this pack
func (pack Pack) GetCompatibleLoaders() []string {
	return CompatibleLoaders(pack.Manifest.Loader)
}

// Write saves the manifest to azalea.json, creating the overrides folder if it is missing
func (pack Pack) Write() error {
	data, err := json.MarshalIndent(pack.Manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(pack.OverridesFolder(), os.ModePerm); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(pack.Root, ManifestFile), append(data, '\n'))
}

// writeFileAtomic writes to a temporary file next to path and renames it over path, so
// readers never see a partially written file
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
