package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Manager runs every pack operation against one pack. A manager is meant to live for a single
// command invocation, as catalog responses are cached for its lifetime.
type Manager struct {
	Pack    Pack
	Store   Store
	Catalog Catalog
	// Loaders provides loader builds when the manifest's loader version is updated; may be nil
	Loaders LoaderSource
	Chooser Chooser
	Log     *log.Logger
	// Concurrency bounds the number of catalog lookups in flight
	Concurrency int
}

func NewManager(pack Pack, store Store, catalog Catalog, loaders LoaderSource, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		Pack:        pack,
		Store:       store,
		Catalog:     NewCachingCatalog(catalog),
		Loaders:     loaders,
		Log:         logger,
		Concurrency: 4,
	}
}

func (m *Manager) resolver() *Resolver {
	return &Resolver{
		Catalog:     m.Catalog,
		Chooser:     m.Chooser,
		Log:         m.Log,
		Concurrency: m.Concurrency,
	}
}

func (m *Manager) query(gameVersion string, versionNumber string) VersionQuery {
	return VersionQuery{
		GameVersion:   gameVersion,
		Loader:        m.Pack.Manifest.Loader,
		VersionNumber: versionNumber,
	}
}

// List returns every installed entry, sorted by kind then slug
func (m *Manager) List() ([]Entry, error) {
	return m.Store.ReadAll()
}

// Add installs a project and its required dependencies for the pack's Minecraft version and loader.
// versionNumber optionally pins the exact version number to install.
func (m *Manager) Add(ctx context.Context, query string, versionNumber string) (Resolution, error) {
	installed, err := m.Store.ReadAll()
	if err != nil {
		return Resolution{}, err
	}
	return m.add(ctx, query, versionNumber, installed)
}

func (m *Manager) add(ctx context.Context, query string, versionNumber string, installed []Entry) (Resolution, error) {
	res, err := m.resolver().ResolveInstall(ctx, query, m.query(m.Pack.Manifest.MinecraftVersion, versionNumber), installed)
	if err != nil {
		return res, err
	}
	for _, e := range res.Entries {
		if err := m.Store.Write(e); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", e.Slug, err)
		}
		m.Log.Debug("wrote entry", "slug", e.Slug, "version", e.VersionNumber, "explicit", e.Explicit)
	}
	if res.Replaced {
		pruned, err := m.Prune()
		res.Pruned = pruned
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// BatchItem is the outcome of one line of a batch install
type BatchItem struct {
	Line       int
	Query      string
	Resolution Resolution
	Err        error
}

// AddFromReader installs one project per line. Blank lines and lines starting with # are skipped.
// A failure on one line is recorded and does not stop later lines, except for network failures,
// which abort the batch.
func (m *Manager) AddFromReader(ctx context.Context, r io.Reader) ([]BatchItem, error) {
	installed, err := m.Store.ReadAll()
	if err != nil {
		return nil, err
	}
	var items []BatchItem
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res, err := m.add(ctx, line, "", installed)
		items = append(items, BatchItem{Line: lineNo, Query: line, Resolution: res, Err: err})
		if err != nil {
			m.Log.Warn("failed to add", "line", lineNo, "query", line, "err", err)
			if errors.Is(err, ErrNetworkFailure) {
				return items, err
			}
			continue
		}
		installed = dropEntries(mergeEntries(installed, res.Entries), res.Pruned)
	}
	if err := scanner.Err(); err != nil {
		return items, err
	}
	return items, nil
}

// mergeEntries replaces entries with the same project ID and appends the rest
func mergeEntries(installed []Entry, updated []Entry) []Entry {
	for _, u := range updated {
		replaced := false
		for i, e := range installed {
			if e.ProjectID == u.ProjectID {
				installed[i] = u
				replaced = true
				break
			}
		}
		if !replaced {
			installed = append(installed, u)
		}
	}
	return installed
}

// dropEntries removes the entries with the project IDs of removed
func dropEntries(installed []Entry, removed []Entry) []Entry {
	if len(removed) == 0 {
		return installed
	}
	kept := installed[:0]
	for _, e := range installed {
		if _, ok := FindByProject(removed, e.ProjectID); !ok {
			kept = append(kept, e)
		}
	}
	return kept
}

// RemoveResult is the outcome of removing an entry
type RemoveResult struct {
	Removed Entry
	Pruned  []Entry
}

// Remove deletes an installed entry by slug, then prunes dependencies nothing needs any more
func (m *Manager) Remove(slug string) (RemoveResult, error) {
	entries, err := m.Store.ReadAll()
	if err != nil {
		return RemoveResult{}, err
	}
	entry, ok := FindBySlug(entries, slug)
	if !ok {
		return RemoveResult{}, fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	for _, e := range entries {
		if e.ProjectID != entry.ProjectID && e.DependsOn(entry.ProjectID) {
			m.Log.Warn("removing a dependency of another entry", "slug", entry.Slug, "required-by", e.Slug)
		}
	}
	if err := m.Store.Delete(entry); err != nil {
		return RemoveResult{}, err
	}
	pruned, err := m.Prune()
	if err != nil {
		return RemoveResult{Removed: entry}, err
	}
	return RemoveResult{Removed: entry, Pruned: pruned}, nil
}

// Prune deletes implicit entries that are no longer reachable from any explicit entry, repeating
// until nothing else can be removed. Returns the deleted entries.
func (m *Manager) Prune() ([]Entry, error) {
	var removed []Entry
	for {
		entries, err := m.Store.ReadAll()
		if err != nil {
			return removed, err
		}
		orphans := Unreachable(entries)
		if len(orphans) == 0 {
			return removed, nil
		}
		for _, e := range orphans {
			if err := m.Store.Delete(e); err != nil {
				return removed, err
			}
			m.Log.Debug("pruned unused dependency", "slug", e.Slug)
			removed = append(removed, e)
		}
	}
}
