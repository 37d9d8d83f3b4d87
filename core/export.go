package core

import (
	"fmt"
	"sort"
	"strings"
)

// ExportFile is one installed file of an exported pack
type ExportFile struct {
	// Path is relative to the game directory, with forward slashes
	Path  string
	Entry Entry
}

// ExportPlan is the resolved content of a pack, as needed to build a distributable archive
type ExportPlan struct {
	Manifest Manifest
	// Files are sorted by path
	Files []ExportFile
	// Overrides is the folder whose contents are copied into the game directory as-is
	Overrides string
}

// ExportPlan returns the manifest and every installed file with its location in the game directory
func (m *Manager) ExportPlan() (ExportPlan, error) {
	entries, err := m.Store.ReadAll()
	if err != nil {
		return ExportPlan{}, err
	}
	plan := ExportPlan{
		Manifest:  m.Pack.Manifest,
		Overrides: m.Pack.OverridesFolder(),
	}
	seen := make(map[string]string)
	for _, e := range entries {
		path := e.Path()
		if other, ok := seen[path]; ok {
			return ExportPlan{}, fmt.Errorf("%s and %s both install %s", other, e.Slug, path)
		}
		seen[path] = e.Slug
		plan.Files = append(plan.Files, ExportFile{Path: path, Entry: e})
	}
	sort.Slice(plan.Files, func(i, j int) bool {
		return plan.Files[i].Path < plan.Files[j].Path
	})
	return plan, nil
}

// ArchiveName returns the file name of the exported archive: <name>-<version>-mc<minecraft>.<ext>
func (p ExportPlan) ArchiveName(ext string) string {
	return fmt.Sprintf("%s-%s-mc%s.%s", SafeName(p.Manifest.Name), SafeName(p.Manifest.Version), SafeName(p.Manifest.MinecraftVersion), ext)
}

// SafeName makes a string usable as a file name: unsupported characters become dashes, and runs of
// whitespace are collapsed into a single dash
func SafeName(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == ' ' || r == '.':
			return r
		}
		return '-'
	}, s)
	return strings.Join(strings.Fields(cleaned), "-")
}
