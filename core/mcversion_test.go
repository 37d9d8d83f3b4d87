package core

import (
	"context"
	"embed"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
)

// For reproducability, we store sample responses of the loader meta servers
// these have been cut down to a few entries, but are otherwise taken from the endpoints themselves

//go:embed loader_test_files/*
var loaderTestFiles embed.FS

func registerMock(url string, filename string) {
	bytes, err := loaderTestFiles.ReadFile("loader_test_files/" + filename)
	if err != nil {
		println("Error " + filename + " not in loader_test_files/")
		os.Exit(1)
	}
	httpmock.RegisterResponder("GET", url, httpmock.NewBytesResponder(200, bytes))
}

func queryWithMock(t *testing.T, loader string, mcVersion string) []LoaderVersion {
	httpmock.Activate(t)

	registerMock("https://meta.fabricmc.net/v2/versions/loader/1.21.4", "fabric.json")
	registerMock("https://meta.quiltmc.org/v3/versions/loader/1.21.4", "quilt.json")

	meta := LoaderMeta{Client: NewHTTPClient(HTTPOptions{Retries: 0})}
	versions, err := meta.LoaderVersions(context.Background(), loader, mcVersion)
	if err != nil {
		t.Logf("Error fetching versions for %s: %s", loader, err)
		if strings.Contains(err.Error(), "no responder found") {
			t.Log("You likely need to register a mock for this url")
		}
		t.FailNow()
	}
	return versions
}

func expectLatestLoader(t *testing.T, loader string, mcVersion string, expectedLatest string) {
	versions := queryWithMock(t, loader, mcVersion)
	if len(versions) == 0 {
		t.Error("There should be at least one version")
	}
	latest, err := LatestStableLoader(versions)
	if err != nil {
		t.Fatal(err)
	}
	if latest != expectedLatest {
		t.Errorf("Expected latest version to be %s, found %s", expectedLatest, latest)
	}
}

func TestFabric1214(t *testing.T) {
	expectLatestLoader(t, "fabric", "1.21.4", "0.16.10")
}

func TestQuilt1214SkipsBeta(t *testing.T) {
	expectLatestLoader(t, "quilt", "1.21.4", "0.27.1")
}

func TestLoaderMetaServerError(t *testing.T) {
	httpmock.Activate(t)
	httpmock.RegisterResponder("GET", "https://meta.fabricmc.net/v2/versions/loader/1.21.4", httpmock.NewStringResponder(503, "down"))

	meta := LoaderMeta{Client: NewHTTPClient(HTTPOptions{Retries: 1})}
	_, err := meta.LoaderVersions(context.Background(), "fabric", "1.21.4")
	if !errors.Is(err, ErrNetworkFailure) {
		t.Errorf("Expected a network failure, got %v", err)
	}
	if calls := httpmock.GetTotalCallCount(); calls != 2 {
		t.Errorf("Expected the request to be retried once, got %d calls", calls)
	}
}

func TestLoaderMetaNotFoundIsNotRetried(t *testing.T) {
	httpmock.Activate(t)
	httpmock.RegisterResponder("GET", "https://meta.fabricmc.net/v2/versions/loader/0.1", httpmock.NewStringResponder(404, "not found"))

	meta := LoaderMeta{Client: NewHTTPClient(HTTPOptions{Retries: 3})}
	_, err := meta.LoaderVersions(context.Background(), "fabric", "0.1")
	if err == nil || errors.Is(err, ErrNetworkFailure) {
		t.Errorf("Expected a plain error for a 404, got %v", err)
	}
	if calls := httpmock.GetTotalCallCount(); calls != 1 {
		t.Errorf("Expected a single request, got %d calls", calls)
	}
}

func TestMCVersionMatches(t *testing.T) {
	cases := []struct {
		candidate, target string
		expected          bool
	}{
		{"1.21.4", "1.21.4", true},
		{"1.21.4", "1.21", true},
		{"1.21", "1.21", true},
		{"1.21.4", "1.21.5", false},
		{"1.21", "1.21.4", false},
		{"1.21.4", "1.2", false},
		{"1.21.x", "1.21.4", true},
		{"1.21.4", "1.21.x", true},
		{"1.20.x", "1.21.4", false},
		{"24w14a", "24w14a", true},
		{"1.21-pre1", "1.21", false},
	}
	for _, c := range cases {
		if got := MCVersionMatches(c.candidate, c.target); got != c.expected {
			t.Errorf("MCVersionMatches(%q, %q) = %v, expected %v", c.candidate, c.target, got, c.expected)
		}
	}
}

var testGameVersions = []GameVersion{
	{Version: "25w02a", VersionType: "snapshot"},
	{Version: "1.21.5-rc1", VersionType: "snapshot"},
	{Version: "1.21.4", VersionType: "release"},
	{Version: "1.21.3", VersionType: "release"},
	{Version: "1.21", VersionType: "release"},
}

func TestResolveTargetMCLatest(t *testing.T) {
	for _, requested := range []string{"latest", "LATEST", " latest "} {
		v, err := ResolveTargetMC(requested, "1.20.1", testGameVersions)
		if err != nil {
			t.Fatal(err)
		}
		if v != "1.21.4" {
			t.Errorf("Expected %q to resolve to 1.21.4, got %s", requested, v)
		}
	}
}

func TestResolveTargetMCDefaultsToCurrent(t *testing.T) {
	v, err := ResolveTargetMC("", "1.20.1", testGameVersions)
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.20.1" {
		t.Errorf("Expected the current version, got %s", v)
	}
}

func TestResolveTargetMCLiteral(t *testing.T) {
	v, err := ResolveTargetMC("1.21.3", "1.20.1", testGameVersions)
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.21.3" {
		t.Errorf("Expected 1.21.3, got %s", v)
	}

	for _, bad := range []string{"1.99", "25w02a", "not a version", "1.21.5-rc1"} {
		if _, err := ResolveTargetMC(bad, "1.20.1", testGameVersions); !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("Expected %q to be an unknown version, got %v", bad, err)
		}
	}
}

func TestLatestReleaseOnlySnapshots(t *testing.T) {
	_, err := LatestRelease(testGameVersions[:2])
	if !errors.Is(err, ErrNoStableVersion) {
		t.Errorf("Expected no stable version, got %v", err)
	}
	_, err = LatestStableLoader(nil)
	if !errors.Is(err, ErrNoStableVersion) {
		t.Errorf("Expected no stable loader version, got %v", err)
	}
}

func TestCompatibleLoaders(t *testing.T) {
	quilt := CompatibleLoaders("Quilt")
	if len(quilt) != 2 || quilt[0] != "quilt" || quilt[1] != "fabric" {
		t.Errorf("Expected quilt packs to accept quilt and fabric builds, got %v", quilt)
	}
	fabric := CompatibleLoaders("fabric")
	if len(fabric) != 1 || fabric[0] != "fabric" {
		t.Errorf("Expected fabric packs to only accept fabric builds, got %v", fabric)
	}
}
