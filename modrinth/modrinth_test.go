package modrinth

import (
	"context"
	"errors"
	"testing"
	"time"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
	"github.com/azalea-mc/azalea/core"
	"github.com/jarcoal/httpmock"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		input string
		want  Reference
	}{
		{"sodium", Reference{Slug: "sodium"}},
		{"  AANobbMI  ", Reference{Slug: "AANobbMI"}},
		{"https://modrinth.com/mod/sodium", Reference{Slug: "sodium", IsURL: true}},
		{"https://www.modrinth.com/shader/complementary-reimagined", Reference{Slug: "complementary-reimagined", IsURL: true}},
		{"https://modrinth.com/mod/sodium/version/mc1.21.4-0.6.5-fabric", Reference{Slug: "sodium", Version: "mc1.21.4-0.6.5-fabric", IsURL: true}},
		{
			"https://cdn.modrinth.com/data/AANobbMI/versions/c3YkZvne/sodium-fabric-0.6.5%2Bmc1.21.4.jar",
			Reference{Slug: "AANobbMI", VersionID: "c3YkZvne", Filename: "sodium-fabric-0.6.5+mc1.21.4.jar", IsURL: true},
		},
		{"fabric api", Reference{}},
		{"ab", Reference{}},
	}
	for _, tt := range tests {
		got, err := ParseReference(tt.input)
		if err != nil {
			t.Errorf("ParseReference(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseReference(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestParseReferenceUnknownCategory(t *testing.T) {
	if _, err := ParseReference("https://modrinth.com/user/jellysquid3"); err == nil {
		t.Error("expected an error for a user page")
	}
}

func TestProjectURL(t *testing.T) {
	if got := ProjectURL("AANobbMI"); got != "https://modrinth.com/project/AANobbMI" {
		t.Errorf("unexpected project url %s", got)
	}
}

func strPtr(s string) *string {
	return &s
}

func TestToRemoteVersion(t *testing.T) {
	published := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	size := uint32(1024)
	v := &modrinthApi.Version{
		ID:            strPtr("c3YkZvne"),
		ProjectID:     strPtr("AANobbMI"),
		VersionNumber: strPtr("0.6.5"),
		VersionType:   strPtr("release"),
		GameVersions:  []string{"1.21.4"},
		Loaders:       []string{"fabric", "quilt"},
		DatePublished: &published,
		Files: []*modrinthApi.File{
			{URL: strPtr("https://cdn.modrinth.com/a.jar"), Filename: strPtr("a.jar")},
			nil,
			{URL: strPtr("https://cdn.modrinth.com/b.jar"), Filename: strPtr("b.jar"), Hashes: map[string]string{"sha512": "abc"}, Size: &size},
			{Filename: strPtr("no-url.jar")},
		},
	}
	v.Files[2].Primary = new(bool)
	*v.Files[2].Primary = true

	rv := toRemoteVersion(v)
	if rv.ID != "c3YkZvne" || rv.ProjectID != "AANobbMI" || rv.VersionNumber != "0.6.5" || rv.VersionType != "release" {
		t.Errorf("unexpected version fields %+v", rv)
	}
	if !rv.DatePublished.Equal(published) {
		t.Errorf("expected publish date %v, got %v", published, rv.DatePublished)
	}
	if len(rv.Files) != 2 {
		t.Fatalf("expected 2 usable files, got %d", len(rv.Files))
	}
	primary, ok := rv.PrimaryFile()
	if !ok || primary.Filename != "b.jar" {
		t.Errorf("expected b.jar to be primary, got %+v", primary)
	}
	if primary.Size != 1024 || primary.Hashes["sha512"] != "abc" {
		t.Errorf("unexpected primary file %+v", primary)
	}
}

func TestGameVersions(t *testing.T) {
	httpmock.Activate(t)
	httpmock.RegisterResponder("GET", APIBase+"/tag/game_version", httpmock.NewStringResponder(200, `[
		{"version": "25w02a", "version_type": "snapshot", "date": "2025-01-08T12:00:00Z", "major": false},
		{"version": "1.21.4", "version_type": "release", "date": "2024-12-03T10:12:57Z", "major": false}
	]`))

	c := NewClient(core.NewHTTPClient(core.HTTPOptions{Retries: 0}), nil)
	versions, err := c.GameVersions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].Version != "25w02a" || versions[0].IsRelease() {
		t.Errorf("expected the snapshot first, got %+v", versions[0])
	}
	if versions[1].Version != "1.21.4" || !versions[1].IsRelease() {
		t.Errorf("expected 1.21.4 release second, got %+v", versions[1])
	}
}

func TestGameVersionsServerDown(t *testing.T) {
	httpmock.Activate(t)
	httpmock.RegisterResponder("GET", APIBase+"/tag/game_version", httpmock.NewStringResponder(503, "down"))

	c := NewClient(core.NewHTTPClient(core.HTTPOptions{Retries: 0}), nil)
	_, err := c.GameVersions(context.Background())
	if !errors.Is(err, core.ErrNetworkFailure) {
		t.Errorf("expected a network failure, got %v", err)
	}
}

func TestGetProjectRejectsInvalidInput(t *testing.T) {
	httpmock.Activate(t)

	c := NewClient(core.NewHTTPClient(core.HTTPOptions{Retries: 0}), nil)
	_, err := c.GetProject(context.Background(), "not a slug")
	if !errors.Is(err, core.ErrProjectNotFound) {
		t.Errorf("expected project not found, got %v", err)
	}
	if calls := httpmock.GetTotalCallCount(); calls != 0 {
		t.Errorf("expected no requests, got %d", calls)
	}
}

func TestGetProjectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(core.NewHTTPClient(core.HTTPOptions{Retries: 0}), nil)
	if _, err := c.GetProject(ctx, "sodium"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
