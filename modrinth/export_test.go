package modrinth

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/azalea-mc/azalea/core"
	"github.com/charmbracelet/log"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testPlan(overrides string) core.ExportPlan {
	return core.ExportPlan{
		Manifest: core.Manifest{
			Name:             "Example Pack",
			Version:          "1.0.0",
			MinecraftVersion: "1.21.4",
			Loader:           "fabric",
			LoaderVersion:    "0.16.10",
		},
		Files: []core.ExportFile{
			{Path: "mods/sodium.jar", Entry: core.Entry{
				Slug: "sodium",
				Side: core.ClientSide,
				File: core.EntryFile{URL: "https://cdn.modrinth.com/data/AANobbMI/versions/a/sodium [fabric].jar", Filename: "sodium.jar", SHA512: "s512", SHA1: "s1", Size: 42},
			}},
			{Path: "mods/lithium.jar", Entry: core.Entry{
				Slug: "lithium",
				Side: core.UniversalSide,
				File: core.EntryFile{URL: "https://cdn.modrinth.com/data/gvQqBUqZ/versions/b/lithium.jar", Filename: "lithium.jar", SHA512: "l512"},
			}},
		},
		Overrides: overrides,
	}
}

func TestBuildIndex(t *testing.T) {
	index := BuildIndex(testPlan(""), quietLogger())
	if index.FormatVersion != 1 || index.Game != "minecraft" {
		t.Errorf("unexpected format %d / %s", index.FormatVersion, index.Game)
	}
	if index.Name != "Example Pack" || index.VersionID != "1.0.0" {
		t.Errorf("unexpected name %s / version %s", index.Name, index.VersionID)
	}
	if index.Dependencies["minecraft"] != "1.21.4" || index.Dependencies["fabric-loader"] != "0.16.10" {
		t.Errorf("unexpected dependencies %v", index.Dependencies)
	}
	if len(index.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(index.Files))
	}

	sodium := index.Files[0]
	if sodium.Downloads[0] != "https://cdn.modrinth.com/data/AANobbMI/versions/a/sodium%20%5Bfabric%5D.jar" {
		t.Errorf("download url was not encoded: %s", sodium.Downloads[0])
	}
	if sodium.Hashes["sha1"] != "s1" || sodium.Hashes["sha512"] != "s512" || sodium.FileSize != 42 {
		t.Errorf("unexpected sodium file %+v", sodium)
	}
	if *sodium.Env != (PackFileEnv{Client: "required", Server: "unsupported"}) {
		t.Errorf("expected a client only env, got %+v", *sodium.Env)
	}

	lithium := index.Files[1]
	if _, ok := lithium.Hashes["sha1"]; ok {
		t.Error("a missing sha1 should not be written")
	}
	if *lithium.Env != (PackFileEnv{Client: "required", Server: "required"}) {
		t.Errorf("expected a universal env, got %+v", *lithium.Env)
	}
}

func TestBuildIndexWithoutLoaderVersion(t *testing.T) {
	plan := testPlan("")
	plan.Manifest.Loader = "quilt"
	plan.Manifest.LoaderVersion = ""
	index := BuildIndex(plan, quietLogger())
	if len(index.Dependencies) != 1 {
		t.Errorf("expected only the minecraft dependency, got %v", index.Dependencies)
	}
}

func TestEnvForServer(t *testing.T) {
	if env := envForSide(core.ServerSide); *env != (PackFileEnv{Client: "unsupported", Server: "required"}) {
		t.Errorf("unexpected server env %+v", *env)
	}
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWriteArchive(t *testing.T) {
	root := t.TempDir()
	overrides := filepath.Join(root, "overrides")
	writeFile(t, filepath.Join(overrides, "config", "sodium-options.json"), "{}")
	writeFile(t, filepath.Join(overrides, "options.txt"), "fov:90")
	writeFile(t, filepath.Join(overrides, "logs", "latest.log"), "noise")
	writeFile(t, filepath.Join(overrides, "notes.bak"), "old")
	writeFile(t, filepath.Join(root, IgnoreFile), "logs/\n*.bak\n")

	ig, err := LoadIgnore(root)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteArchive(&buf, testPlan(overrides), ig, quietLogger()); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	var index Pack
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == IndexFile {
			r, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			if err := json.NewDecoder(r).Decode(&index); err != nil {
				t.Fatal(err)
			}
			_ = r.Close()
		}
	}
	sort.Strings(names)
	want := []string{"modrinth.index.json", "overrides/", "overrides/config/sodium-options.json", "overrides/options.txt"}
	if len(names) != len(want) {
		t.Fatalf("expected archive entries %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected archive entries %v, got %v", want, names)
			break
		}
	}
	if len(index.Files) != 2 || index.Files[1].Path != "mods/lithium.jar" {
		t.Errorf("unexpected index files %+v", index.Files)
	}
}

func TestExportToFileWithoutOverrides(t *testing.T) {
	root := t.TempDir()
	ig, err := LoadIgnore(root)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "dist", "pack.mrpack")
	if err := ExportToFile(out, testPlan(filepath.Join(root, "overrides")), ig, quietLogger()); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("expected the index and an empty overrides folder, got %d entries", len(zr.File))
	}
}
