package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// CheckStatus classifies an explicit entry against a target Minecraft version
type CheckStatus string

const (
	// StatusCompatible means the installed version is still valid for the target
	StatusCompatible CheckStatus = "compatible"
	// StatusUpgradable means a different version is needed, and one is available
	StatusUpgradable CheckStatus = "upgradable"
	// StatusUnavailable means no version of the project supports the target
	StatusUnavailable CheckStatus = "unavailable"
	StatusFailed      CheckStatus = "failed"
)

type CheckItem struct {
	Entry  Entry
	Status CheckStatus
	// Version is the version that would be installed; empty when unavailable or failed
	Version RemoteVersion
	Err     error
}

type CheckReport struct {
	Target string
	Loader string
	// Items are sorted by slug
	Items []CheckItem
}

// Count returns the number of items with the given status
func (r CheckReport) Count(status CheckStatus) int {
	n := 0
	for _, i := range r.Items {
		if i.Status == status {
			n++
		}
	}
	return n
}

// Check reports, for each explicit entry, whether it can be used with the requested Minecraft
// version. Nothing is written.
func (m *Manager) Check(ctx context.Context, requested string) (CheckReport, error) {
	target, err := m.resolveTarget(ctx, requested)
	if err != nil {
		return CheckReport{}, err
	}
	entries, err := m.Store.ReadAll()
	if err != nil {
		return CheckReport{}, err
	}
	report := CheckReport{Target: target, Loader: m.Pack.Manifest.Loader}
	explicit := explicitEntries(entries)
	sort.SliceStable(explicit, func(i, j int) bool {
		return explicit[i].Slug < explicit[j].Slug
	})
	report.Items = make([]CheckItem, len(explicit))
	q := m.query(target, "")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency())
	for i, e := range explicit {
		i, e := i, e
		g.Go(func() error {
			item, err := m.checkEntry(gctx, e, q)
			if err != nil {
				return err
			}
			report.Items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CheckReport{}, err
	}
	return report, nil
}

func (m *Manager) checkEntry(ctx context.Context, e Entry, q VersionQuery) (CheckItem, error) {
	item := CheckItem{Entry: e}
	versions, err := m.Catalog.ListVersions(ctx, e.ProjectID)
	if err != nil {
		if errors.Is(err, ErrNetworkFailure) {
			return item, err
		}
		item.Status, item.Err = StatusFailed, err
		return item, nil
	}
	for _, v := range versions {
		if v.ID == e.VersionID && q.Matches(v) {
			item.Status, item.Version = StatusCompatible, v
			return item, nil
		}
	}
	v, err := SelectVersion(ctx, m.Catalog, RemoteProject{ID: e.ProjectID, Slug: e.Slug}, q, m.Log)
	switch {
	case err == nil:
		item.Status, item.Version = StatusUpgradable, v
	case errors.Is(err, ErrNoCompatibleVersion):
		item.Status, item.Err = StatusUnavailable, err
	case errors.Is(err, ErrNetworkFailure):
		return item, err
	default:
		item.Status, item.Err = StatusFailed, err
	}
	return item, nil
}

// UpgradeOptions changes how an upgrade plan is applied
type UpgradeOptions struct {
	// Partial applies the entries that resolved even when some explicit entries have no compatible version
	Partial bool
	// Force rewrites entries whose version did not change
	Force bool
}

// UpgradeChange is the new state of one entry in an upgrade plan
type UpgradeChange struct {
	// Old is empty for dependencies the upgrade newly pulls in
	Old     Entry
	New     Entry
	Changed bool
}

type UpgradeFailure struct {
	Entry Entry
	Err   error
}

// UpgradePlan is everything an upgrade would do, computed without touching the pack
type UpgradePlan struct {
	From   string
	Target string
	Loader string
	// LoaderVersion is the loader build to switch to; empty keeps the current one
	LoaderVersion string
	Options       UpgradeOptions
	// Explicit follows store order; Implicit is sorted by slug
	Explicit   []UpgradeChange
	Implicit   []UpgradeChange
	Failures   []UpgradeFailure
	Unresolved []UnresolvedDependency
	// Prune lists implicit entries that the new versions no longer need
	Prune []Entry
}

// Blocked reports whether any explicit entry has no version for the target
func (p UpgradePlan) Blocked() bool {
	return len(p.Failures) > 0
}

// Writes returns the entries applying the plan would write, sorted by slug
func (p UpgradePlan) Writes() []Entry {
	var writes []Entry
	for _, c := range append(append([]UpgradeChange{}, p.Explicit...), p.Implicit...) {
		if c.Changed || p.Options.Force {
			writes = append(writes, c.New)
		}
	}
	sort.SliceStable(writes, func(i, j int) bool {
		return writes[i].Slug < writes[j].Slug
	})
	return writes
}

type UpgradeResult struct {
	Plan    UpgradePlan
	Written []Entry
	Pruned  []Entry
}

// PlanUpgrade computes what upgrading the pack to the requested Minecraft version would change.
// An empty request upgrades to the latest release.
func (m *Manager) PlanUpgrade(ctx context.Context, requested string, opts UpgradeOptions) (UpgradePlan, error) {
	if strings.TrimSpace(requested) == "" {
		requested = "latest"
	}
	target, err := m.resolveTarget(ctx, requested)
	if err != nil {
		return UpgradePlan{}, err
	}
	return m.planUpgrade(ctx, target, opts)
}

// Upgrade plans and applies an upgrade to the requested Minecraft version
func (m *Manager) Upgrade(ctx context.Context, requested string, opts UpgradeOptions) (UpgradeResult, error) {
	plan, err := m.PlanUpgrade(ctx, requested, opts)
	if err != nil {
		return UpgradeResult{Plan: plan}, err
	}
	return m.ApplyUpgrade(plan)
}

// PlanUpdate computes an upgrade to the pack's current Minecraft version, picking up newer builds
func (m *Manager) PlanUpdate(ctx context.Context, opts UpgradeOptions) (UpgradePlan, error) {
	return m.planUpgrade(ctx, m.Pack.Manifest.MinecraftVersion, opts)
}

// UpdateAll re-resolves every explicit entry to the newest version for the current constraints
func (m *Manager) UpdateAll(ctx context.Context, opts UpgradeOptions) (UpgradeResult, error) {
	plan, err := m.PlanUpdate(ctx, opts)
	if err != nil {
		return UpgradeResult{Plan: plan}, err
	}
	return m.ApplyUpgrade(plan)
}

type explicitResult struct {
	change UpgradeChange
	deps   []string
	err    error
}

func (m *Manager) planUpgrade(ctx context.Context, target string, opts UpgradeOptions) (UpgradePlan, error) {
	plan := UpgradePlan{
		From:    m.Pack.Manifest.MinecraftVersion,
		Target:  target,
		Loader:  m.Pack.Manifest.Loader,
		Options: opts,
	}
	entries, err := m.Store.ReadAll()
	if err != nil {
		return plan, err
	}
	explicit := explicitEntries(entries)
	q := m.query(target, "")
	r := m.resolver()

	results := make([]explicitResult, len(explicit))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency())
	for i, e := range explicit {
		i, e := i, e
		g.Go(func() error {
			res := explicitResult{change: UpgradeChange{Old: e}}
			project, err := m.Catalog.GetProject(gctx, e.ProjectID)
			if err == nil {
				var v RemoteVersion
				v, err = SelectVersion(gctx, m.Catalog, project, q, m.Log)
				if err == nil {
					res.deps, err = r.requiredDependencies(gctx, v, q)
				}
				if err == nil {
					var updated Entry
					updated, err = NewEntry(project, e.Kind(), v, res.deps, true)
					updated.Side = e.Side
					res.change.New = updated
					res.change.Changed = updated.VersionID != e.VersionID
				}
			}
			if err != nil {
				if errors.Is(err, ErrNetworkFailure) {
					return err
				}
				res.err = err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return plan, err
	}

	// Explicit entries are never re-resolved as dependencies; failed ones keep their current
	// dependencies so a partial upgrade leaves them working as before
	skip := make(map[string]bool)
	for _, e := range explicit {
		skip[e.ProjectID] = true
	}
	var frontier []pendingDependency
	var finalState []Entry
	// failedClosure holds the failed explicit entries and every stored implicit entry
	var failedClosure []Entry
	for _, e := range entries {
		if !e.Explicit {
			failedClosure = append(failedClosure, e)
		}
	}
	for _, res := range results {
		if res.err != nil {
			m.Log.Warn("no version for target", "slug", res.change.Old.Slug, "target", target, "err", res.err)
			plan.Failures = append(plan.Failures, UpgradeFailure{Entry: res.change.Old, Err: res.err})
			finalState = append(finalState, res.change.Old)
			failedClosure = append(failedClosure, res.change.Old)
			continue
		}
		plan.Explicit = append(plan.Explicit, res.change)
		finalState = append(finalState, res.change.New)
		frontier = append(frontier, pendingDependency{ids: res.deps, requiredBy: res.change.New.Slug})
	}
	if len(plan.Failures) > 0 {
		// Only the stored dependencies of failed entries are kept as they are
		keep := Reachable(failedClosure)
		for _, e := range entries {
			if !e.Explicit && keep[e.ProjectID] {
				skip[e.ProjectID] = true
			}
		}
	}

	exp, err := r.expand(ctx, q, frontier, skip)
	if err != nil {
		return plan, err
	}
	plan.Unresolved = exp.unresolved
	replaced := make(map[string]bool)
	for _, e := range exp.entries {
		change := UpgradeChange{New: e, Changed: true}
		if old, ok := FindByProject(entries, e.ProjectID); ok {
			change.Old = old
			change.Changed = old.VersionID != e.VersionID
			// Keep the kind folder the entry already lives in
			change.New.SetKind(old.Kind())
			change.New.Side = old.Side
			replaced[e.ProjectID] = true
		}
		plan.Implicit = append(plan.Implicit, change)
		finalState = append(finalState, change.New)
	}
	for _, e := range entries {
		if !e.Explicit && !replaced[e.ProjectID] {
			finalState = append(finalState, e)
		}
	}
	plan.Prune = Unreachable(finalState)

	if m.Loaders != nil {
		plan.LoaderVersion = m.latestLoader(ctx, target)
	}
	return plan, nil
}

func (m *Manager) latestLoader(ctx context.Context, target string) string {
	loader := m.Pack.Manifest.Loader
	if _, ok := ModLoaders[strings.ToLower(loader)]; !ok {
		return ""
	}
	versions, err := m.Loaders.LoaderVersions(ctx, loader, target)
	if err != nil {
		m.Log.Warn("could not resolve a loader version, keeping the current one", "loader", loader, "target", target, "err", err)
		return ""
	}
	v, err := LatestStableLoader(versions)
	if err != nil {
		m.Log.Warn("could not resolve a loader version, keeping the current one", "loader", loader, "target", target, "err", err)
		return ""
	}
	return v
}

// ApplyUpgrade writes the entries of a plan, prunes dependencies that are no longer needed and
// updates the manifest. A blocked plan is refused unless it was made with the Partial option.
func (m *Manager) ApplyUpgrade(plan UpgradePlan) (UpgradeResult, error) {
	result := UpgradeResult{Plan: plan}
	if plan.Blocked() && !plan.Options.Partial {
		slugs := make([]string, len(plan.Failures))
		for i, f := range plan.Failures {
			slugs[i] = f.Entry.Slug
		}
		return result, fmt.Errorf("%w: no version of %s for Minecraft %s", ErrUpgradeBlocked, strings.Join(slugs, ", "), plan.Target)
	}

	for _, e := range plan.Writes() {
		if err := m.Store.Write(e); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", e.Slug, err)
		}
		m.Log.Debug("wrote entry", "slug", e.Slug, "version", e.VersionNumber)
		result.Written = append(result.Written, e)
	}
	pruned, err := m.Prune()
	result.Pruned = pruned
	if err != nil {
		return result, err
	}

	m.Pack.Manifest.MinecraftVersion = plan.Target
	if plan.LoaderVersion != "" {
		m.Pack.Manifest.LoaderVersion = plan.LoaderVersion
	}
	if err := m.Pack.Write(); err != nil {
		return result, fmt.Errorf("failed to write manifest: %w", err)
	}
	return result, nil
}

func (m *Manager) resolveTarget(ctx context.Context, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return m.Pack.Manifest.MinecraftVersion, nil
	}
	gameVersions, err := m.Catalog.GameVersions(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch Minecraft versions: %w", err)
	}
	return ResolveTargetMC(requested, m.Pack.Manifest.MinecraftVersion, gameVersions)
}

func (m *Manager) concurrency() int {
	if m.Concurrency < 1 {
		return 4
	}
	return m.Concurrency
}

func explicitEntries(entries []Entry) []Entry {
	var explicit []Entry
	for _, e := range entries {
		if e.Explicit {
			explicit = append(explicit, e)
		}
	}
	return explicit
}
