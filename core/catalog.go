package core

import (
	"context"
	"sync"
	"time"
)

// Catalog is the read-only remote source of projects and their published versions
type Catalog interface {
	// Search returns project summaries ranked by relevance, best first
	Search(ctx context.Context, query string, gameVersion string) ([]RemoteProject, error)
	// GetProject looks up a project by ID, slug or URL. Unknown projects return ErrProjectNotFound.
	GetProject(ctx context.Context, idOrSlug string) (RemoteProject, error)
	// ListVersions returns every published version of a project, newest first
	ListVersions(ctx context.Context, projectID string) ([]RemoteVersion, error)
	GetVersion(ctx context.Context, versionID string) (RemoteVersion, error)
	// GameVersions returns the known Minecraft versions, newest first
	GameVersions(ctx context.Context) ([]GameVersion, error)
}

type RemoteProject struct {
	ID         string
	Slug       string
	Title      string
	Kind       string
	ClientSide string
	ServerSide string
}

// Side returns the side this project should be installed on, from its declared client and
// server support
func (p RemoteProject) Side() string {
	client := p.ClientSide != "unsupported"
	server := p.ServerSide != "unsupported"
	if client && !server {
		return ClientSide
	} else if server && !client {
		return ServerSide
	}
	return UniversalSide
}

// ContentKind maps the catalog's project type to the kind of content stored in the pack
func (p RemoteProject) ContentKind() (ContentKind, bool) {
	switch p.Kind {
	case "mod", "":
		return KindMod, true
	case "resourcepack":
		return KindResourcePack, true
	case "shader":
		return KindShader, true
	}
	return "", false
}

// The four possible dependency types declared by a remote version
const (
	DependencyRequired     = "required"
	DependencyOptional     = "optional"
	DependencyIncompatible = "incompatible"
	DependencyEmbedded     = "embedded"
)

type RemoteDependency struct {
	ProjectID      string
	VersionID      string
	DependencyType string
}

type RemoteFile struct {
	URL      string
	Filename string
	Hashes   map[string]string
	Primary  bool
	Size     int64
}

type RemoteVersion struct {
	ID            string
	ProjectID     string
	VersionNumber string
	VersionType   string
	GameVersions  []string
	Loaders       []string
	Dependencies  []RemoteDependency
	Files         []RemoteFile
	DatePublished time.Time
}

// PrimaryFile returns the file marked primary, or the first file if none are marked
func (v RemoteVersion) PrimaryFile() (RemoteFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(v.Files) > 0 {
		return v.Files[0], true
	}
	return RemoteFile{}, false
}

type GameVersion struct {
	Version     string
	VersionType string
	Date        time.Time
}

// IsRelease reports whether this is a full release rather than a snapshot, alpha or beta
func (v GameVersion) IsRelease() bool {
	return v.VersionType == "release"
}

// NewCachingCatalog wraps a catalog so projects and version lists are only fetched once. One
// caching catalog is meant to live for a single command invocation.
func NewCachingCatalog(c Catalog) Catalog {
	if _, ok := c.(*cachingCatalog); ok {
		return c
	}
	return &cachingCatalog{
		inner:    c,
		projects: make(map[string]RemoteProject),
		versions: make(map[string][]RemoteVersion),
		single:   make(map[string]RemoteVersion),
	}
}

type cachingCatalog struct {
	inner Catalog

	mu       sync.Mutex
	projects map[string]RemoteProject
	versions map[string][]RemoteVersion
	single   map[string]RemoteVersion
	game     []GameVersion
}

func (c *cachingCatalog) Search(ctx context.Context, query string, gameVersion string) ([]RemoteProject, error) {
	return c.inner.Search(ctx, query, gameVersion)
}

func (c *cachingCatalog) GetProject(ctx context.Context, idOrSlug string) (RemoteProject, error) {
	c.mu.Lock()
	p, ok := c.projects[idOrSlug]
	c.mu.Unlock()
	if ok {
		return p, nil
	}
	p, err := c.inner.GetProject(ctx, idOrSlug)
	if err != nil {
		return RemoteProject{}, err
	}
	c.mu.Lock()
	c.projects[idOrSlug] = p
	c.projects[p.ID] = p
	c.mu.Unlock()
	return p, nil
}

func (c *cachingCatalog) ListVersions(ctx context.Context, projectID string) ([]RemoteVersion, error) {
	c.mu.Lock()
	v, ok := c.versions[projectID]
	c.mu.Unlock()
	if ok {
		return v, nil
	}
	v, err := c.inner.ListVersions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.versions[projectID] = v
	c.mu.Unlock()
	return v, nil
}

func (c *cachingCatalog) GetVersion(ctx context.Context, versionID string) (RemoteVersion, error) {
	c.mu.Lock()
	v, ok := c.single[versionID]
	c.mu.Unlock()
	if ok {
		return v, nil
	}
	v, err := c.inner.GetVersion(ctx, versionID)
	if err != nil {
		return RemoteVersion{}, err
	}
	c.mu.Lock()
	c.single[versionID] = v
	c.mu.Unlock()
	return v, nil
}

func (c *cachingCatalog) GameVersions(ctx context.Context) ([]GameVersion, error) {
	c.mu.Lock()
	g := c.game
	c.mu.Unlock()
	if g != nil {
		return g, nil
	}
	g, err := c.inner.GameVersions(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.game = g
	c.mu.Unlock()
	return g, nil
}
