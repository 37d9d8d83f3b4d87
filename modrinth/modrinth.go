package modrinth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
	"github.com/azalea-mc/azalea/cmd"
	"github.com/azalea-mc/azalea/core"
	"github.com/charmbracelet/log"
	"github.com/dlclark/regexp2"
	"golang.org/x/exp/slices"
)

// APIBase is the root of the Modrinth v2 API, used for requests go-modrinth does not cover
const APIBase = "https://api.modrinth.com/v2"

func init() {
	cmd.UseCatalog(func(httpClient *http.Client, logger *log.Logger) core.Catalog {
		return NewClient(httpClient, logger)
	})
}

// ProjectURL returns the web page of a project
func ProjectURL(idOrSlug string) string {
	return "https://modrinth.com/project/" + url.PathEscape(idOrSlug)
}

// Client is a core.Catalog backed by the Modrinth API
type Client struct {
	api     *modrinthApi.Client
	http    *http.Client
	log     *log.Logger
	APIBase string
	// SearchLimit is the number of hits requested per search
	SearchLimit int
}

func NewClient(httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = core.NewHTTPClient(core.HTTPOptions{Logger: logger})
	}
	if logger == nil {
		logger = log.Default()
	}
	api := modrinthApi.NewClient(httpClient)
	api.UserAgent = core.UserAgent
	return &Client{
		api:         api,
		http:        httpClient,
		log:         logger,
		APIBase:     APIBase,
		SearchLimit: 5,
	}
}

func (c *Client) Search(ctx context.Context, query string, gameVersion string) ([]core.RemoteProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := &modrinthApi.SearchOptions{
		Limit: c.SearchLimit,
		Index: "relevance",
		Query: query,
	}
	if gameVersion != "" {
		opts.Facets = [][]string{{"versions:" + gameVersion}}
	}
	c.log.Debug("searching", "query", query, "mc", gameVersion)
	res, err := c.api.Projects.Search(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search for %q: %w", query, core.WrapNetworkError(err))
	}
	hits := make([]core.RemoteProject, 0, len(res.Hits))
	for _, h := range res.Hits {
		if h.ProjectID == nil {
			continue
		}
		hits = append(hits, core.RemoteProject{
			ID:         *h.ProjectID,
			Slug:       deref(h.Slug),
			Title:      deref(h.Title),
			Kind:       deref(h.ProjectType),
			ClientSide: deref(h.ClientSide),
			ServerSide: deref(h.ServerSide),
		})
	}
	return hits, nil
}

// GetProject accepts a project ID, a slug, or a modrinth.com / cdn.modrinth.com URL
func (c *Client) GetProject(ctx context.Context, idOrSlug string) (core.RemoteProject, error) {
	if err := ctx.Err(); err != nil {
		return core.RemoteProject{}, err
	}
	ref, err := ParseReference(idOrSlug)
	if err != nil {
		return core.RemoteProject{}, fmt.Errorf("%w: %v", core.ErrProjectNotFound, err)
	}
	if ref.Slug == "" {
		return core.RemoteProject{}, fmt.Errorf("%w: %q is not a project ID or slug", core.ErrProjectNotFound, idOrSlug)
	}
	c.log.Debug("fetching project", "project", ref.Slug)
	project, err := c.api.Projects.Get(ref.Slug)
	if err != nil {
		err = core.WrapNetworkError(err)
		if errors.Is(err, core.ErrNetworkFailure) {
			return core.RemoteProject{}, err
		}
		return core.RemoteProject{}, fmt.Errorf("%w: %s: %v", core.ErrProjectNotFound, ref.Slug, err)
	}
	if project.ID == nil {
		return core.RemoteProject{}, fmt.Errorf("%w: invalid response for %s", core.ErrProjectNotFound, ref.Slug)
	}
	return toRemoteProject(project), nil
}

func (c *Client) ListVersions(ctx context.Context, projectID string) ([]core.RemoteVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.log.Debug("listing versions", "project", projectID)
	result, err := c.api.Versions.ListVersions(projectID, modrinthApi.ListVersionsOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch version list for %s: %w", projectID, core.WrapNetworkError(err))
	}
	versions := make([]core.RemoteVersion, 0, len(result))
	for _, v := range result {
		if v.ID == nil {
			continue
		}
		versions = append(versions, toRemoteVersion(v))
	}
	return versions, nil
}

func (c *Client) GetVersion(ctx context.Context, versionID string) (core.RemoteVersion, error) {
	if err := ctx.Err(); err != nil {
		return core.RemoteVersion{}, err
	}
	c.log.Debug("fetching version", "version", versionID)
	v, err := c.api.Versions.Get(versionID)
	if err != nil {
		return core.RemoteVersion{}, fmt.Errorf("failed to fetch version %s: %w", versionID, core.WrapNetworkError(err))
	}
	if v.ID == nil {
		return core.RemoteVersion{}, fmt.Errorf("failed to fetch version %s: invalid response", versionID)
	}
	return toRemoteVersion(v), nil
}

type gameVersionTag struct {
	Version     string    `json:"version"`
	VersionType string    `json:"version_type"`
	Date        time.Time `json:"date"`
}

// GameVersions returns the game version tags, which the API lists newest first
func (c *Client) GameVersions(ctx context.Context) ([]core.GameVersion, error) {
	var tags []gameVersionTag
	if err := core.GetJSON(ctx, c.http, c.APIBase+"/tag/game_version", &tags); err != nil {
		return nil, fmt.Errorf("failed to fetch game versions: %w", err)
	}
	versions := make([]core.GameVersion, len(tags))
	for i, t := range tags {
		versions[i] = core.GameVersion{Version: t.Version, VersionType: t.VersionType, Date: t.Date}
	}
	return versions, nil
}

func toRemoteProject(p *modrinthApi.Project) core.RemoteProject {
	return core.RemoteProject{
		ID:         deref(p.ID),
		Slug:       deref(p.Slug),
		Title:      deref(p.Title),
		Kind:       deref(p.ProjectType),
		ClientSide: deref(p.ClientSide),
		ServerSide: deref(p.ServerSide),
	}
}

func toRemoteVersion(v *modrinthApi.Version) core.RemoteVersion {
	rv := core.RemoteVersion{
		ID:            deref(v.ID),
		ProjectID:     deref(v.ProjectID),
		VersionNumber: deref(v.VersionNumber),
		VersionType:   deref(v.VersionType),
		GameVersions:  v.GameVersions,
		Loaders:       v.Loaders,
	}
	if v.DatePublished != nil {
		rv.DatePublished = *v.DatePublished
	}
	for _, dep := range v.Dependencies {
		if dep == nil {
			continue
		}
		rv.Dependencies = append(rv.Dependencies, core.RemoteDependency{
			ProjectID:      deref(dep.ProjectID),
			VersionID:      deref(dep.VersionID),
			DependencyType: deref(dep.DependencyType),
		})
	}
	for _, f := range v.Files {
		if f == nil || f.URL == nil || f.Filename == nil {
			continue
		}
		file := core.RemoteFile{
			URL:      *f.URL,
			Filename: *f.Filename,
			Hashes:   f.Hashes,
			Primary:  f.Primary != nil && *f.Primary,
		}
		if f.Size != nil {
			file.Size = int64(*f.Size)
		}
		rv.Files = append(rv.Files, file)
	}
	return rv
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var urlRegexes = [...]*regexp2.Regexp{
	// Slug/version number regex from https://github.com/modrinth/labrinth/blob/1679a3f844497d756d0cf272c5374a5236eabd42/src/util/validate.rs#L8
	regexp2.MustCompile("^https?://(www\\.)?modrinth\\.com/(?<urlCategory>[^/]+)/(?<slug>[a-zA-Z0-9!@$()`.+,_\"-]{3,64})(?:/version/(?<version>[a-zA-Z0-9!@$()`.+,_\"-]{1,32}))?", 0),
	// Version/project IDs are more restrictive: [a-zA-Z0-9]+ (base62)
	regexp2.MustCompile("^https?://cdn\\.modrinth\\.com/data/(?<slug>[a-zA-Z0-9]+)/versions/(?<versionID>[a-zA-Z0-9]+)/(?<filename>[^/]+)$", 0),
	regexp2.MustCompile("^(?<slug>[a-zA-Z0-9!@$()`.+,_\"-]{3,64})$", 0),
}

const slugRegexIdx = 2

var urlCategories = []string{
	"mod", "plugin", "datapack", "shader", "resourcepack", "modpack", "project",
}

// Reference is a project reference given on the command line
type Reference struct {
	Slug      string
	Version   string
	VersionID string
	Filename  string
	// IsURL is false when the input was a bare slug or ID, which may also be a search query
	IsURL bool
}

// ParseReference parses a slug or project ID, or a project, version or CDN URL. Input that is none
// of these returns an empty reference, to be used as a search query.
func ParseReference(input string) (Reference, error) {
	input = strings.TrimSpace(input)
	for regexIdx, r := range urlRegexes {
		m, err := r.FindStringMatch(input)
		if err != nil {
			return Reference{}, err
		}
		if m == nil {
			continue
		}
		ref := Reference{IsURL: regexIdx != slugRegexIdx}
		if category := group(m, "urlCategory"); category != "" && !slices.Contains(urlCategories, category) {
			return Reference{}, errors.New("unknown project type: " + category)
		}
		ref.Slug = group(m, "slug")
		ref.Version = group(m, "version")
		ref.VersionID = group(m, "versionID")
		if filename := group(m, "filename"); filename != "" {
			ref.Filename, err = url.PathUnescape(filename)
			if err != nil {
				return Reference{}, err
			}
		}
		return ref, nil
	}
	return Reference{}, nil
}

func group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil {
		return ""
	}
	return g.String()
}
