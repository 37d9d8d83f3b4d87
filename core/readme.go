package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

const (
	ReadmeStartMarker = "<!-- AZALEA_MODLIST_START -->"
	ReadmeEndMarker   = "<!-- AZALEA_MODLIST_END -->"
)

// ReadmeTable renders the installed entries as a markdown table, rows sorted case-insensitively
func ReadmeTable(entries []Entry) string {
	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, fmt.Sprintf("| [%s](https://modrinth.com/project/%s) | %s | %s | %s |",
			e.Slug, e.ProjectID, e.Kind(), e.Side, e.VersionNumber))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i]) < strings.ToLower(rows[j])
	})
	lines := append([]string{
		"| Name | Type | Side | Version |",
		"|------|------|------|---------|",
	}, rows...)
	return strings.Join(lines, "\n")
}

// ReplaceModList replaces everything between the mod list markers with the table
func ReplaceModList(content string, table string) (string, error) {
	start := strings.Index(content, ReadmeStartMarker)
	if start < 0 {
		return "", fmt.Errorf("README start marker missing: %s", ReadmeStartMarker)
	}
	end := strings.Index(content[start:], ReadmeEndMarker)
	if end < 0 {
		return "", fmt.Errorf("README end marker missing: %s", ReadmeEndMarker)
	}
	end += start
	return content[:start] + ReadmeStartMarker + "\n" + table + "\n" + content[end:], nil
}

// UpdateReadme rewrites the mod list of the README at path from the installed entries
func (m *Manager) UpdateReadme(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s not found in pack root", path)
		}
		return err
	}
	entries, err := m.Store.ReadAll()
	if err != nil {
		return err
	}
	updated, err := ReplaceModList(string(data), ReadmeTable(entries))
	if err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(updated))
}
