package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EntryExtension is the file extension of the entry metadata files
const EntryExtension = ".json"

// Store persists installed entries, keyed by slug within each content kind
type Store interface {
	// ReadAll returns every entry of every kind, sorted by kind then slug
	ReadAll() ([]Entry, error)
	Read(kind ContentKind, slug string) (Entry, error)
	Write(entry Entry) error
	Delete(entry Entry) error
}

// DirStore stores each entry as <kind folder>/<slug>.json inside a pack
type DirStore struct {
	Pack Pack
}

func NewDirStore(pack Pack) *DirStore {
	return &DirStore{Pack: pack}
}

func (s *DirStore) entryPath(kind ContentKind, slug string) string {
	fileName := strings.ToLower(strings.TrimSuffix(slug, EntryExtension)) + EntryExtension
	return filepath.Join(s.Pack.KindFolder(kind), fileName)
}

func (s *DirStore) ReadAll() ([]Entry, error) {
	var entries []Entry
	for _, kind := range ContentKinds {
		dir := s.Pack.KindFolder(kind)
		files, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != EntryExtension {
				continue
			}
			e, err := s.readFile(kind, filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (s *DirStore) Read(kind ContentKind, slug string) (Entry, error) {
	path := s.entryPath(kind, slug)
	e, err := s.readFile(kind, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	return e, err
}

func (s *DirStore) readFile(kind ContentKind, path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	rel, relErr := filepath.Rel(s.Pack.Root, path)
	if relErr != nil {
		rel = path
	}
	e, err := DecodeEntry(filepath.ToSlash(rel), data)
	if err != nil {
		return Entry{}, err
	}
	e.SetKind(kind)
	return e, nil
}

func (s *DirStore) Write(entry Entry) error {
	data, err := entry.Encode()
	if err != nil {
		return err
	}
	return writeFileAtomic(s.entryPath(entry.Kind(), entry.Slug), data)
}

func (s *DirStore) Delete(entry Entry) error {
	err := os.Remove(s.entryPath(entry.Kind(), entry.Slug))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, entry.Slug)
	}
	return err
}

// FindBySlug looks up an installed entry by slug in any content kind
func FindBySlug(entries []Entry, slug string) (Entry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Slug, slug) {
			return e, true
		}
	}
	return Entry{}, false
}

// FindByProject looks up an installed entry by project ID in any content kind
func FindByProject(entries []Entry, projectID string) (Entry, bool) {
	for _, e := range entries {
		if e.ProjectID == projectID {
			return e, true
		}
	}
	return Entry{}, false
}

func sortEntries(entries []Entry) {
	kindIdx := func(k ContentKind) int {
		for i, v := range ContentKinds {
			if v == k {
				return i
			}
		}
		return len(ContentKinds)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := kindIdx(entries[i].Kind()), kindIdx(entries[j].Kind())
		if ki != kj {
			return ki < kj
		}
		return entries[i].Slug < entries[j].Slug
	})
}
