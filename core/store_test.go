package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirStoreRoundTrip(t *testing.T) {
	pack := Pack{Root: t.TempDir()}
	s := NewDirStore(pack)
	e := Entry{
		ProjectID:     "YL57xq9U",
		Slug:          "iris",
		VersionID:     "kuOV4Ece",
		VersionNumber: "1.8.8+1.21.4-fabric",
		Side:          ClientSide,
		File:          EntryFile{URL: "https://cdn.modrinth.com/iris.jar", Filename: "iris.jar", SHA512: "abc"},
		Explicit:      true,
	}
	e.SetKind(KindShader)
	if err := s.Write(e); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(pack.Root, "shaderpacks", "iris.json")); err != nil {
		t.Fatalf("Expected the entry to be written to shaderpacks: %v", err)
	}

	read, err := s.Read(KindShader, "iris")
	if err != nil {
		t.Fatal(err)
	}
	if read.Kind() != KindShader || read.VersionID != e.VersionID || read.Dependencies == nil {
		t.Errorf("Unexpected entry read back: %+v", read)
	}
	if read.Path() != "shaderpacks/iris.jar" {
		t.Errorf("Unexpected path %s", read.Path())
	}

	if err := s.Delete(read); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read(KindShader, "iris"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Expected a deleted entry to be not installed, got %v", err)
	}
}

func TestDirStoreMalformedRecords(t *testing.T) {
	cases := map[string]string{
		"not-json.json":   "{this is not json",
		"array.json":      "[1, 2, 3]",
		"no-hash.json":    `{"project_id": "p", "slug": "s", "version_id": "v", "side": "both", "file": {"url": "u", "filename": "f"}}`,
		"bad-side.json":   `{"project_id": "p", "slug": "s", "version_id": "v", "side": "everywhere", "file": {"url": "u", "filename": "f", "sha512": "h"}}`,
		"wrong-type.json": `{"project_id": 5, "slug": "s"}`,
	}
	for name, content := range cases {
		pack := Pack{Root: t.TempDir()}
		if err := os.MkdirAll(filepath.Join(pack.Root, "mods"), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(pack.Root, "mods", name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := NewDirStore(pack).ReadAll()
		if !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("Expected %s to be a malformed record, got %v", name, err)
			continue
		}
		if !strings.Contains(err.Error(), "mods/"+name) {
			t.Errorf("Expected the error to name the file, got %v", err)
		}
	}
}

func TestDirStoreIgnoresOtherFiles(t *testing.T) {
	pack := Pack{Root: t.TempDir()}
	dir := filepath.Join(pack.Root, "mods")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"README.txt", ".sodium.json.123.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("junk"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := NewDirStore(pack).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestLoadPackMissing(t *testing.T) {
	if _, err := LoadPack(t.TempDir()); !errors.Is(err, ErrNoPack) {
		t.Errorf("Expected no pack, got %v", err)
	}
}

func TestLoadPackMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ManifestFile), []byte(`{"name": "x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPack(root); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("Expected a malformed manifest, got %v", err)
	}
}
