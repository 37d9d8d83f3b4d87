package cmdshared

import (
	"fmt"
	"io"
	"strings"

	"github.com/azalea-mc/azalea/core"
)

func projectName(p core.RemoteProject, fallback string) string {
	if p.Title != "" {
		return p.Title
	}
	if p.Slug != "" {
		return p.Slug
	}
	return fallback
}

// PrintResolution describes the outcome of a single install
func PrintResolution(w io.Writer, res core.Resolution) {
	name := projectName(res.Project, res.Query)
	switch {
	case res.Promoted:
		_, _ = fmt.Fprintf(w, "Project \"%s\" was installed as a dependency and is now explicit\n", name)
	case len(res.Entries) == 0:
		_, _ = fmt.Fprintf(w, "Project \"%s\" is already installed\n", name)
	default:
		top := res.Entries[0]
		_, _ = fmt.Fprintf(w, "Project \"%s\" successfully added! (%s)\n", name, top.File.Filename)
		for _, dep := range res.Entries[1:] {
			_, _ = fmt.Fprintf(w, "Dependency \"%s\" successfully added! (%s)\n", dep.Slug, dep.File.Filename)
		}
	}
	if len(res.Satisfied) > 0 {
		_, _ = fmt.Fprintf(w, "%d required dependencies were already installed\n", len(res.Satisfied))
	}
	PrintUnresolved(w, res.Unresolved)
	PrintPruned(w, res.Pruned)
}

func PrintUnresolved(w io.Writer, unresolved []core.UnresolvedDependency) {
	for _, u := range unresolved {
		_, _ = fmt.Fprintf(w, "Warning: dependency %s of %s could not be installed: %v\n", u.ProjectID, u.RequiredBy, u.Err)
	}
}

// PrintBatch describes the outcome of a batch install and returns the number of failed lines
func PrintBatch(w io.Writer, items []core.BatchItem) int {
	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "Line %d (%s): %v\n", item.Line, item.Query, item.Err)
			continue
		}
		PrintResolution(w, item.Resolution)
	}
	_, _ = fmt.Fprintf(w, "%d of %d projects added\n", len(items)-failed, len(items))
	return failed
}

func PrintPruned(w io.Writer, pruned []core.Entry) {
	for _, e := range pruned {
		_, _ = fmt.Fprintf(w, "Removed unused dependency %s\n", e.Slug)
	}
}

// PrintEntries lists entries one per line, optionally with their version and kind
func PrintEntries(w io.Writer, entries []core.Entry, verbose bool) {
	for _, e := range entries {
		if verbose {
			marker := ""
			if !e.Explicit {
				marker = " [dependency]"
			}
			_, _ = fmt.Fprintf(w, "%s %s (%s, %s)%s\n", e.Slug, e.VersionNumber, e.Kind(), e.Side, marker)
		} else {
			_, _ = fmt.Fprintln(w, e.Slug)
		}
	}
}

func PrintCheckReport(w io.Writer, report core.CheckReport) {
	_, _ = fmt.Fprintf(w, "Checking %d projects against Minecraft %s (%s)\n", len(report.Items), report.Target, report.Loader)
	for _, item := range report.Items {
		switch item.Status {
		case core.StatusCompatible:
			_, _ = fmt.Fprintf(w, "  ✓ %s %s\n", item.Entry.Slug, item.Entry.VersionNumber)
		case core.StatusUpgradable:
			_, _ = fmt.Fprintf(w, "  ↑ %s %s -> %s\n", item.Entry.Slug, item.Entry.VersionNumber, item.Version.VersionNumber)
		case core.StatusUnavailable:
			_, _ = fmt.Fprintf(w, "  ✗ %s has no version for %s\n", item.Entry.Slug, report.Target)
		default:
			_, _ = fmt.Fprintf(w, "  ! %s: %v\n", item.Entry.Slug, item.Err)
		}
	}
	_, _ = fmt.Fprintf(w, "%d compatible, %d upgradable, %d unavailable, %d failed\n",
		report.Count(core.StatusCompatible), report.Count(core.StatusUpgradable),
		report.Count(core.StatusUnavailable), report.Count(core.StatusFailed))
}

// PrintUpgradePlan describes the changes of an upgrade or update before they are applied
func PrintUpgradePlan(w io.Writer, plan core.UpgradePlan) {
	if plan.From != plan.Target {
		_, _ = fmt.Fprintf(w, "Upgrading from Minecraft %s to %s\n", plan.From, plan.Target)
	}
	if plan.LoaderVersion != "" {
		_, _ = fmt.Fprintf(w, "%s loader: %s\n", core.ComponentToFriendlyName(plan.Loader), plan.LoaderVersion)
	}
	printChanges(w, plan.Explicit)
	printChanges(w, plan.Implicit)
	for _, f := range plan.Failures {
		_, _ = fmt.Fprintf(w, "  ✗ %s: %v\n", f.Entry.Slug, f.Err)
	}
	PrintUnresolved(w, plan.Unresolved)
	if len(plan.Prune) > 0 {
		slugs := make([]string, len(plan.Prune))
		for i, e := range plan.Prune {
			slugs[i] = e.Slug
		}
		_, _ = fmt.Fprintf(w, "No longer needed: %s\n", strings.Join(slugs, ", "))
	}
	if len(plan.Writes()) == 0 && len(plan.Prune) == 0 && len(plan.Failures) == 0 {
		_, _ = fmt.Fprintln(w, "All projects are up to date!")
	}
}

func printChanges(w io.Writer, changes []core.UpgradeChange) {
	for _, c := range changes {
		if !c.Changed {
			continue
		}
		if c.Old.VersionID == "" {
			_, _ = fmt.Fprintf(w, "  + %s %s\n", c.New.Slug, c.New.VersionNumber)
		} else {
			_, _ = fmt.Fprintf(w, "  %s: %s -> %s\n", c.New.Slug, c.Old.VersionNumber, c.New.VersionNumber)
		}
	}
}
