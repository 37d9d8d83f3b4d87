package migrate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/azalea-mc/azalea/core"
	"github.com/azalea-mc/azalea/modrinth"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// packwizPack is the subset of a packwiz pack.toml that is imported
type packwizPack struct {
	Name    string `toml:"name"`
	Author  string `toml:"author"`
	Version string `toml:"version"`
	Index   struct {
		// Path is stored in forward slash format relative to pack.toml
		File string `toml:"file"`
	} `toml:"index"`
	Versions map[string]string `toml:"versions"`
}

type packwizIndex struct {
	Files []packwizIndexFile `toml:"files"`
}

type packwizIndexFile struct {
	// Files are stored in relative forward-slash format to the index file
	File     string `toml:"file"`
	MetaFile bool   `toml:"metafile,omitempty"`
}

// packwizMetafile is a .pw.toml file describing one external file
type packwizMetafile struct {
	Name     string `toml:"name"`
	FileName string `toml:"filename"`
	Side     string `toml:"side,omitempty"`

	Update map[string]map[string]interface{} `toml:"update"`
}

// SkippedFile is a packwiz metafile that could not be imported
type SkippedFile struct {
	File   string
	Reason string
}

type ImportResult struct {
	Pack    core.Pack
	Entries []core.Entry
	Skipped []SkippedFile
}

// Importer imports packwiz packs, re-fetching every Modrinth file from the catalog by version ID
type Importer struct {
	Catalog     core.Catalog
	Log         *log.Logger
	Concurrency int
}

type importedFile struct {
	metafile string
	entry    core.Entry
	skip     string
}

// ImportPackwiz reads the packwiz pack at packFile and writes an azalea pack in root. Files that are not
// from Modrinth are skipped. Entries required by another imported entry become implicit.
func (im *Importer) ImportPackwiz(ctx context.Context, packFile string, root string) (ImportResult, error) {
	logger := im.Log
	if logger == nil {
		logger = log.Default()
	}
	var pw packwizPack
	if _, err := toml.DecodeFile(packFile, &pw); err != nil {
		return ImportResult{}, fmt.Errorf("failed to read %s: %w", packFile, err)
	}
	manifest, err := manifestFromPackwiz(pw)
	if err != nil {
		return ImportResult{}, err
	}

	indexPath := pw.Index.File
	if indexPath == "" {
		indexPath = "index.toml"
	}
	indexPath = filepath.Join(filepath.Dir(packFile), filepath.FromSlash(indexPath))
	var index packwizIndex
	if _, err := toml.DecodeFile(indexPath, &index); err != nil {
		return ImportResult{}, fmt.Errorf("failed to read %s: %w", indexPath, err)
	}

	var metafiles []string
	for _, f := range index.Files {
		if f.MetaFile || strings.HasSuffix(f.File, ".pw.toml") {
			metafiles = append(metafiles, filepath.Join(filepath.Dir(indexPath), filepath.FromSlash(f.File)))
		}
	}
	sort.Strings(metafiles)

	imported := make([]importedFile, len(metafiles))
	g, gctx := errgroup.WithContext(ctx)
	limit := im.Concurrency
	if limit < 1 {
		limit = 4
	}
	g.SetLimit(limit)
	for i, path := range metafiles {
		i, path := i, path
		g.Go(func() error {
			entry, err := im.importMetafile(gctx, path, manifest)
			if err != nil {
				if errors.Is(err, core.ErrNetworkFailure) || errors.Is(err, context.Canceled) {
					return err
				}
				imported[i] = importedFile{metafile: path, skip: err.Error()}
				return nil
			}
			imported[i] = importedFile{metafile: path, entry: entry}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	for _, f := range imported {
		if f.skip != "" {
			logger.Warn("skipping file", "file", f.metafile, "reason", f.skip)
			result.Skipped = append(result.Skipped, SkippedFile{File: f.metafile, Reason: f.skip})
			continue
		}
		if other, ok := core.FindByProject(result.Entries, f.entry.ProjectID); ok {
			logger.Warn("skipping duplicate project", "file", f.metafile, "slug", other.Slug)
			result.Skipped = append(result.Skipped, SkippedFile{File: f.metafile, Reason: "duplicate of " + other.Slug})
			continue
		}
		result.Entries = append(result.Entries, f.entry)
	}
	markImplicit(result.Entries)

	pack, err := core.InitPack(ctx, root, manifest, nil, nil, logger)
	if err != nil {
		return result, err
	}
	result.Pack = pack
	store := core.NewDirStore(pack)
	for _, e := range result.Entries {
		if err := store.Write(e); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", e.Slug, err)
		}
		logger.Debug("imported", "slug", e.Slug, "version", e.VersionNumber, "explicit", e.Explicit)
	}
	return result, nil
}

func manifestFromPackwiz(pw packwizPack) (core.Manifest, error) {
	manifest := core.Manifest{
		Name:             pw.Name,
		Author:           pw.Author,
		Version:          pw.Version,
		MinecraftVersion: pw.Versions["minecraft"],
	}
	if manifest.MinecraftVersion == "" {
		return core.Manifest{}, errors.New("pack.toml has no Minecraft version")
	}
	// Quilt packs may also list fabric for compatibility, so quilt is checked first
	for _, loader := range []string{"quilt", "fabric"} {
		if v, ok := pw.Versions[loader]; ok {
			manifest.Loader = loader
			manifest.LoaderVersion = v
			return manifest, nil
		}
	}
	var others []string
	for k := range pw.Versions {
		if k != "minecraft" {
			others = append(others, k)
		}
	}
	sort.Strings(others)
	if len(others) > 0 {
		return core.Manifest{}, fmt.Errorf("mod loader %s is not supported", strings.Join(others, ", "))
	}
	return core.Manifest{}, errors.New("pack.toml has no mod loader")
}

func (im *Importer) importMetafile(ctx context.Context, path string, manifest core.Manifest) (core.Entry, error) {
	var meta packwizMetafile
	if _, err := toml.DecodeFile(path, &meta); err != nil {
		return core.Entry{}, fmt.Errorf("invalid metafile: %v", err)
	}
	raw, ok := meta.Update["modrinth"]
	if !ok {
		return core.Entry{}, errors.New("not a Modrinth file")
	}
	update, err := modrinth.ParseUpdateData(raw)
	if err != nil {
		return core.Entry{}, err
	}

	version, err := im.Catalog.GetVersion(ctx, update.InstalledVersion)
	if err != nil {
		return core.Entry{}, err
	}
	project, err := im.Catalog.GetProject(ctx, update.ProjectID)
	if err != nil {
		return core.Entry{}, err
	}
	kind, ok := project.ContentKind()
	if !ok {
		return core.Entry{}, fmt.Errorf("%s is a %s, which is not supported", project.Slug, project.Kind)
	}
	deps, err := core.RequiredDependencies(ctx, im.Catalog, version, core.VersionQuery{
		GameVersion: manifest.MinecraftVersion,
		Loader:      manifest.Loader,
	})
	if err != nil {
		return core.Entry{}, err
	}

	// Keep the file packwiz installed, when the version has several
	files := make([]core.RemoteFile, len(version.Files))
	copy(files, version.Files)
	for i := range files {
		if files[i].Filename == meta.FileName {
			for j := range files {
				files[j].Primary = j == i
			}
			break
		}
	}
	version.Files = files

	entry, err := core.NewEntry(project, kind, version, deps, true)
	if err != nil {
		return core.Entry{}, err
	}
	switch meta.Side {
	case core.ClientSide, core.ServerSide, core.UniversalSide:
		entry.Side = meta.Side
	}
	return entry, nil
}

// markImplicit marks entries required by another entry as implicit. Entries only required from within
// a cycle of otherwise unrequired entries stay explicit, so nothing imported is unreachable.
func markImplicit(entries []core.Entry) {
	required := make(map[string]bool)
	for _, e := range entries {
		for _, dep := range e.Dependencies {
			if dep != e.ProjectID {
				required[dep] = true
			}
		}
	}
	for i := range entries {
		entries[i].Explicit = !required[entries[i].ProjectID]
	}
	for {
		unreachable := core.Unreachable(entries)
		if len(unreachable) == 0 {
			return
		}
		// Promote one entry at a time, so a whole cycle is kept by a single explicit entry
		for i := range entries {
			if entries[i].ProjectID == unreachable[0].ProjectID {
				entries[i].Explicit = true
			}
		}
	}
}
