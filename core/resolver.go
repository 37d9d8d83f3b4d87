package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
	"github.com/unascribed/FlexVer/go/flexver"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Chooser asks the user to pick one of several search results
type Chooser interface {
	Choose(query string, candidates []RemoteProject) (RemoteProject, error)
}

// Resolver turns project requests into installable entries along with their dependency closure
type Resolver struct {
	Catalog Catalog
	// Chooser is consulted when a search has no clear winner; nil means no interactive selection is possible
	Chooser Chooser
	Log     *log.Logger
	// Concurrency bounds the number of catalog lookups in flight while expanding dependencies
	Concurrency int
}

// UnresolvedDependency is a required dependency that could not be installed
type UnresolvedDependency struct {
	ProjectID  string
	RequiredBy string
	Err        error
}

// Resolution is the outcome of resolving one install request
type Resolution struct {
	Query   string
	Project RemoteProject
	Version RemoteVersion
	// Entries are the entries to write: the requested entry first, then new dependencies sorted by slug.
	// Empty when the request was already satisfied.
	Entries []Entry
	// Satisfied holds the project IDs of required dependencies that were already installed
	Satisfied  []string
	Unresolved []UnresolvedDependency
	// Promoted is set when the request turned an installed dependency into an explicit entry
	Promoted bool
	// Replaced is set when the request wrote a different version over an installed entry
	Replaced bool
	// Pruned lists the dependencies that were removed because the replaced version needed them
	Pruned []Entry
}

func (r *Resolver) logger() *log.Logger {
	if r.Log == nil {
		return log.Default()
	}
	return r.Log
}

// ResolveProject finds the single project a user query refers to. Exact IDs, slugs and URLs are
// looked up directly; anything else is searched for and disambiguated.
func (r *Resolver) ResolveProject(ctx context.Context, query string, gameVersion string) (RemoteProject, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return RemoteProject{}, fmt.Errorf("%w: empty query", ErrProjectNotFound)
	}
	project, err := r.Catalog.GetProject(ctx, query)
	if err == nil {
		return project, nil
	}
	if errors.Is(err, ErrNetworkFailure) {
		return RemoteProject{}, err
	}
	r.logger().Debug("no exact match, searching", "query", query, "reason", err)

	hits, err := r.Catalog.Search(ctx, query, gameVersion)
	if err != nil {
		return RemoteProject{}, fmt.Errorf("failed to search for %s: %w", query, err)
	}
	hit, err := r.disambiguate(query, hits)
	if err != nil {
		return RemoteProject{}, err
	}
	// Search results only carry a summary
	return r.Catalog.GetProject(ctx, hit.ID)
}

func (r *Resolver) disambiguate(query string, hits []RemoteProject) (RemoteProject, error) {
	if len(hits) == 0 {
		return RemoteProject{}, fmt.Errorf("%w: no projects match %q", ErrProjectNotFound, query)
	}
	if len(hits) == 1 {
		return hits[0], nil
	}
	for _, h := range hits {
		if strings.EqualFold(h.Title, query) || strings.EqualFold(h.Slug, query) {
			return h, nil
		}
	}

	titles := make([]string, len(hits))
	for i, h := range hits {
		titles[i] = h.Title
	}
	matches := fuzzy.Find(query, titles)
	if len(matches) == 1 || (len(matches) > 1 && matches[0].Score > matches[1].Score) {
		return hits[matches[0].Index], nil
	}

	if r.Chooser != nil {
		return r.Chooser.Choose(query, hits)
	}
	slugs := make([]string, len(hits))
	for i, h := range hits {
		slugs[i] = h.Slug
	}
	return RemoteProject{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousQuery, query, strings.Join(slugs, ", "))
}

// ResolveInstall resolves a request to install a project, with its required dependencies, on top of
// the installed entries. Dependencies already installed are left untouched; new ones are implicit.
func (r *Resolver) ResolveInstall(ctx context.Context, query string, q VersionQuery, installed []Entry) (Resolution, error) {
	res := Resolution{Query: query}
	project, err := r.ResolveProject(ctx, query, q.GameVersion)
	if err != nil {
		return res, err
	}
	res.Project = project
	kind, ok := project.ContentKind()
	if !ok {
		return res, fmt.Errorf("%w: %s is a %s", ErrUnsupportedProject, project.Slug, project.Kind)
	}

	existing, isInstalled := FindByProject(installed, project.ID)
	if isInstalled && q.VersionNumber == "" {
		if !existing.Explicit {
			existing.Explicit = true
			res.Entries = []Entry{existing}
			res.Promoted = true
		}
		r.logger().Debug("already installed", "slug", existing.Slug, "version", existing.VersionNumber)
		return res, nil
	}

	version, err := SelectVersion(ctx, r.Catalog, project, q, r.Log)
	if err != nil {
		return res, err
	}
	res.Version = version
	if isInstalled && existing.VersionID == version.ID {
		if !existing.Explicit {
			existing.Explicit = true
			res.Entries = []Entry{existing}
			res.Promoted = true
		}
		return res, nil
	}

	deps, err := r.requiredDependencies(ctx, version, q)
	if err != nil {
		return res, err
	}
	top, err := NewEntry(project, kind, version, deps, true)
	if err != nil {
		return res, err
	}

	skip := make(map[string]bool, len(installed)+1)
	for _, e := range installed {
		skip[e.ProjectID] = true
	}
	skip[project.ID] = true
	exp, err := r.expand(ctx, q, []pendingDependency{{ids: deps, requiredBy: project.Slug}}, skip)
	if err != nil {
		return res, err
	}
	res.Replaced = isInstalled
	res.Entries = append([]Entry{top}, exp.entries...)
	res.Satisfied = exp.satisfied
	res.Unresolved = exp.unresolved
	return res, nil
}

type pendingDependency struct {
	ids        []string
	requiredBy string
}

type expansion struct {
	// entries are implicit, sorted by slug
	entries    []Entry
	satisfied  []string
	unresolved []UnresolvedDependency
}

type dependencyResult struct {
	entry      Entry
	deps       []string
	unresolved error
}

// expand resolves the dependency closure of the pending dependencies, one frontier at a time.
// Project IDs in skip count as already satisfied; skip is updated as projects are visited, so a
// project is never resolved twice.
func (r *Resolver) expand(ctx context.Context, q VersionQuery, frontier []pendingDependency, skip map[string]bool) (expansion, error) {
	var exp expansion
	depQuery := VersionQuery{GameVersion: q.GameVersion, Loader: q.Loader}
	satisfied := make(map[string]bool)
	preinstalled := make(map[string]bool, len(skip))
	for id := range skip {
		preinstalled[id] = true
	}

	for len(frontier) > 0 {
		var ids []string
		requiredBy := make(map[string]string)
		for _, p := range frontier {
			for _, id := range p.ids {
				if skip[id] {
					if preinstalled[id] {
						satisfied[id] = true
					}
					continue
				}
				if _, ok := requiredBy[id]; !ok {
					ids = append(ids, id)
					requiredBy[id] = p.requiredBy
				}
			}
		}
		sort.Strings(ids)
		for _, id := range ids {
			skip[id] = true
		}

		results := make([]dependencyResult, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency())
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				res, err := r.resolveDependency(gctx, id, depQuery)
				if err != nil {
					if errors.Is(err, ErrNetworkFailure) || errors.Is(err, context.Canceled) {
						return err
					}
					res.unresolved = err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return exp, err
		}

		frontier = nil
		for i, res := range results {
			if res.unresolved != nil {
				r.logger().Warn("skipping dependency", "project", ids[i], "required-by", requiredBy[ids[i]], "err", res.unresolved)
				exp.unresolved = append(exp.unresolved, UnresolvedDependency{ProjectID: ids[i], RequiredBy: requiredBy[ids[i]], Err: res.unresolved})
				continue
			}
			r.logger().Debug("resolved dependency", "slug", res.entry.Slug, "version", res.entry.VersionNumber, "required-by", requiredBy[ids[i]])
			exp.entries = append(exp.entries, res.entry)
			if len(res.deps) > 0 {
				frontier = append(frontier, pendingDependency{ids: res.deps, requiredBy: res.entry.Slug})
			}
		}
	}

	sort.Slice(exp.entries, func(i, j int) bool {
		return exp.entries[i].Slug < exp.entries[j].Slug
	})
	for id := range satisfied {
		exp.satisfied = append(exp.satisfied, id)
	}
	sort.Strings(exp.satisfied)
	return exp, nil
}

func (r *Resolver) resolveDependency(ctx context.Context, projectID string, q VersionQuery) (dependencyResult, error) {
	project, err := r.Catalog.GetProject(ctx, projectID)
	if err != nil {
		return dependencyResult{}, err
	}
	kind, ok := project.ContentKind()
	if !ok {
		return dependencyResult{}, fmt.Errorf("%w: %s is a %s", ErrUnsupportedProject, project.Slug, project.Kind)
	}
	version, err := SelectVersion(ctx, r.Catalog, project, q, r.Log)
	if err != nil {
		return dependencyResult{}, err
	}
	deps, err := r.requiredDependencies(ctx, version, q)
	if err != nil {
		return dependencyResult{}, err
	}
	entry, err := NewEntry(project, kind, version, deps, false)
	if err != nil {
		return dependencyResult{}, err
	}
	return dependencyResult{entry: entry, deps: deps}, nil
}

func (r *Resolver) requiredDependencies(ctx context.Context, v RemoteVersion, q VersionQuery) ([]string, error) {
	return RequiredDependencies(ctx, r.Catalog, v, q)
}

// RequiredDependencies returns the project IDs of the required dependencies of a version, in
// declaration order, with Fabric libraries mapped to their Quilt equivalents for Quilt queries.
// Dependencies that only name a version are looked up to find their project.
func RequiredDependencies(ctx context.Context, catalog Catalog, v RemoteVersion, q VersionQuery) ([]string, error) {
	ids := []string{}
	for _, dep := range v.Dependencies {
		if dep.DependencyType != DependencyRequired {
			continue
		}
		id := dep.ProjectID
		if id == "" && dep.VersionID != "" {
			depVersion, err := catalog.GetVersion(ctx, dep.VersionID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up dependency version %s: %w", dep.VersionID, err)
			}
			id = depVersion.ProjectID
		}
		if id == "" {
			continue
		}
		id = MapDependencyOverride(id, strings.EqualFold(q.Loader, "quilt"), q.GameVersion)
		if id == v.ProjectID || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *Resolver) concurrency() int {
	if r.Concurrency < 1 {
		return 4
	}
	return r.Concurrency
}

// NewEntry builds the installed entry for a remote version of a project
func NewEntry(project RemoteProject, kind ContentKind, v RemoteVersion, deps []string, explicit bool) (Entry, error) {
	file, ok := v.PrimaryFile()
	if !ok {
		return Entry{}, fmt.Errorf("%w: version %s of %s has no files", ErrNoCompatibleVersion, v.VersionNumber, project.Slug)
	}
	if file.Hashes["sha512"] == "" {
		return Entry{}, fmt.Errorf("%w: file %s of %s has no sha512 hash", ErrMalformedRecord, file.Filename, project.Slug)
	}
	slug := project.Slug
	if slug == "" {
		slug = project.ID
	}
	if deps == nil {
		deps = []string{}
	}
	e := Entry{
		ProjectID:     project.ID,
		Slug:          slug,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		Side:          project.Side(),
		File: EntryFile{
			URL:      file.URL,
			Filename: file.Filename,
			SHA512:   file.Hashes["sha512"],
			SHA1:     file.Hashes["sha1"],
			Size:     file.Size,
		},
		Explicit:     explicit,
		Dependencies: deps,
	}
	e.SetKind(kind)
	return e, nil
}

// MapDependencyOverride transforms dependencies on Fabric libraries into their Quilt equivalents when using Quilt
func MapDependencyOverride(depID string, isQuilt bool, mcVersion string) string {
	if isQuilt && (depID == "P7dR8mSH" || depID == "fabric-api") {
		// Transform FAPI dependencies to QFAPI/QSL dependencies when using Quilt
		return "qvIfYCYJ"
	}
	if isQuilt && (depID == "Ha28R6CL" || depID == "fabric-language-kotlin") {
		// Transform FLK dependencies to QKL dependencies when using Quilt >=1.19.2 non-snapshot
		if flexver.Less("1.19.1", mcVersion) && flexver.Less(mcVersion, "2.0.0") {
			return "lwVhp9o5"
		}
	}
	return depID
}
