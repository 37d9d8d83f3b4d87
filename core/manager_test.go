package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func modAModBCatalog() *fakeCatalog {
	c := newFakeCatalog()
	c.addProject("idA", "moda", "mod")
	c.addProject("idB", "modb", "mod")
	c.addVersion("idA", "a1", "1.0", []string{"1.21.4"}, []string{"fabric"}, required("idB"))
	c.addVersion("idB", "b1", "1.0", []string{"1.21.4"}, []string{"fabric"})
	return c
}

func TestAddWritesEntries(t *testing.T) {
	m := newTestManager(t, modAModBCatalog())
	if _, err := m.Add(context.Background(), "moda", ""); err != nil {
		t.Fatal(err)
	}
	entries := mustReadAll(t, m)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	a, b := mustEntry(t, entries, "moda"), mustEntry(t, entries, "modb")
	if !a.Explicit || b.Explicit {
		t.Errorf("Expected moda explicit and modb implicit, got %v and %v", a.Explicit, b.Explicit)
	}
	if !a.DependsOn("idB") {
		t.Errorf("Expected moda to depend on modb, got %v", a.Dependencies)
	}
}

func TestAddKeepsExistingDependencyFlag(t *testing.T) {
	m := newTestManager(t, modAModBCatalog())
	if _, err := m.Add(context.Background(), "modb", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Add(context.Background(), "moda", ""); err != nil {
		t.Fatal(err)
	}
	entries := mustReadAll(t, m)
	if len(entries) != 2 {
		t.Fatalf("Expected no duplicate entries, got %d", len(entries))
	}
	if !mustEntry(t, entries, "modb").Explicit {
		t.Error("Installing a dependent should not change the explicit flag of an installed dependency")
	}
}

func TestPinnedReAddPrunesOldDependencies(t *testing.T) {
	c := newFakeCatalog()
	c.addProject("idA", "moda", "mod")
	c.addProject("idB", "modb", "mod")
	c.addVersion("idA", "a2", "2.0", []string{"1.21.4"}, []string{"fabric"}, required("idB"))
	c.addVersion("idA", "a1", "1.0", []string{"1.21.4"}, []string{"fabric"})
	c.addVersion("idB", "b1", "1.0", []string{"1.21.4"}, []string{"fabric"})
	m := newTestManager(t, c)
	if _, err := m.Add(context.Background(), "moda", ""); err != nil {
		t.Fatal(err)
	}

	res, err := m.Add(context.Background(), "moda", "1.0")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pruned) != 1 || res.Pruned[0].Slug != "modb" {
		t.Errorf("Expected modb to be pruned, got %+v", res.Pruned)
	}
	entries := mustReadAll(t, m)
	if len(entries) != 1 {
		t.Fatalf("Expected only moda to remain, got %d entries", len(entries))
	}
	if a := mustEntry(t, entries, "moda"); a.VersionID != "a1" || !a.Explicit {
		t.Errorf("Expected moda pinned to a1, got %+v", a)
	}
	if orphans := Unreachable(entries); len(orphans) != 0 {
		t.Errorf("Expected no unreachable entries, got %d", len(orphans))
	}
}

func TestRemovePrunesOrphans(t *testing.T) {
	m := newTestManager(t, modAModBCatalog())
	if _, err := m.Add(context.Background(), "moda", ""); err != nil {
		t.Fatal(err)
	}
	res, err := m.Remove("moda")
	if err != nil {
		t.Fatal(err)
	}
	if res.Removed.Slug != "moda" {
		t.Errorf("Expected moda to be removed, got %s", res.Removed.Slug)
	}
	if len(res.Pruned) != 1 || res.Pruned[0].Slug != "modb" {
		t.Errorf("Expected modb to be pruned, got %+v", res.Pruned)
	}
	if entries := mustReadAll(t, m); len(entries) != 0 {
		t.Errorf("Expected an empty pack, got %d entries", len(entries))
	}
}

func TestRemoveNotInstalled(t *testing.T) {
	m := newTestManager(t, newFakeCatalog())
	if _, err := m.Remove("nope"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected not installed, got %v", err)
	}
}

func writeEntries(t *testing.T, m *Manager, entries ...Entry) {
	t.Helper()
	for _, e := range entries {
		e.Side = UniversalSide
		e.VersionID = "v-" + e.ProjectID
		e.File = EntryFile{URL: "https://cdn.example/" + e.Slug + ".jar", Filename: e.Slug + ".jar", SHA512: "hash"}
		if err := m.Store.Write(e); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPruneFixedPoint(t *testing.T) {
	m := newTestManager(t, newFakeCatalog())
	writeEntries(t, m,
		Entry{ProjectID: "root", Slug: "root", Explicit: true, Dependencies: []string{"kept"}},
		Entry{ProjectID: "kept", Slug: "kept"},
		// chain of orphans: o1 -> o2 -> o3
		Entry{ProjectID: "o1", Slug: "o1", Dependencies: []string{"o2"}},
		Entry{ProjectID: "o2", Slug: "o2", Dependencies: []string{"o3"}},
		Entry{ProjectID: "o3", Slug: "o3"},
		Entry{ProjectID: "lonely", Slug: "lonely", Explicit: true},
	)

	removed, err := m.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 3 {
		t.Errorf("Expected the 3 orphans to be removed, got %d", len(removed))
	}
	entries := mustReadAll(t, m)
	for _, slug := range []string{"root", "kept", "lonely"} {
		mustEntry(t, entries, slug)
	}
	for _, e := range entries {
		if !e.Explicit && !Reachable(entries)[e.ProjectID] {
			t.Errorf("Implicit entry %s is not reachable after pruning", e.Slug)
		}
	}

	removed, err = m.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 0 {
		t.Errorf("Expected pruning to be idempotent, but removed %d more entries", len(removed))
	}
}

func TestAddFromReader(t *testing.T) {
	c := modAModBCatalog()
	c.addProject("AANobbMI", "sodium", "mod")
	c.addVersion("AANobbMI", "s1", "0.6.5", []string{"1.21.4"}, []string{"fabric"})
	c.addProject("idOld", "oldmod", "mod")
	c.addVersion("idOld", "o1", "1.0", []string{"1.20.1"}, []string{"fabric"})

	m := newTestManager(t, c)
	input := strings.Join([]string{
		"# performance",
		"sodium",
		"",
		"oldmod",
		"moda",
		"   ",
		"modb",
	}, "\n")
	items, err := m.AddFromReader(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Fatalf("Expected 4 processed lines, got %d", len(items))
	}
	if items[1].Line != 4 || !errors.Is(items[1].Err, ErrNoCompatibleVersion) {
		t.Errorf("Expected line 4 to fail with no compatible version, got %+v", items[1])
	}
	if items[3].Err != nil || !items[3].Resolution.Promoted {
		t.Errorf("Expected modb to be promoted by the last line, got %+v", items[3])
	}
	entries := mustReadAll(t, m)
	if len(entries) != 3 {
		t.Errorf("Expected sodium, moda and modb to be installed, got %d entries", len(entries))
	}
	if !mustEntry(t, entries, "modb").Explicit {
		t.Error("Expected modb to be explicit after being listed")
	}
}

func TestAddFromReaderNetworkFailureAborts(t *testing.T) {
	c := modAModBCatalog()
	m := newTestManager(t, c)
	c.networkDown = true
	items, err := m.AddFromReader(context.Background(), strings.NewReader("moda\nmodb\n"))
	if !errors.Is(err, ErrNetworkFailure) {
		t.Errorf("Expected a network failure, got %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected the batch to stop after the first line, got %d items", len(items))
	}
}
