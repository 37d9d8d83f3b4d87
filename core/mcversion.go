package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MCVersionMatches reports whether a game version declared by a remote version (candidate) can be
// used for the pack's target game version.
// A target without a patch component ("1.21") matches every candidate in that family ("1.21.4"), and
// a ".x" wildcard on either side ("1.21.x") covers the whole family; otherwise the versions must be equal.
func MCVersionMatches(candidate string, target string) bool {
	if candidate == target {
		return true
	}
	if family, ok := wildcardFamily(target); ok {
		return inFamily(candidate, family)
	}
	if family, ok := wildcardFamily(candidate); ok {
		return inFamily(target, family)
	}
	if isMajorMinor(target) {
		return inFamily(candidate, target)
	}
	return false
}

func wildcardFamily(v string) (string, bool) {
	if strings.HasSuffix(v, ".x") {
		return strings.TrimSuffix(v, ".x"), true
	}
	return "", false
}

func inFamily(v string, family string) bool {
	return v == family || strings.HasPrefix(v, family+".")
}

func isMajorMinor(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return false
		}
	}
	return true
}

// ResolveTargetMC turns a requested game version into a concrete one.
// An empty request means the pack's current version, "latest" means the newest release, and anything
// else must be a well-formed version present in the catalog's release list.
func ResolveTargetMC(requested string, current string, versions []GameVersion) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return current, nil
	}
	if strings.EqualFold(requested, "latest") {
		return LatestRelease(versions)
	}
	if _, err := semver.NewVersion(requested); err != nil {
		return "", fmt.Errorf("%w: %s is not a valid Minecraft version", ErrUnknownVersion, requested)
	}
	for _, v := range versions {
		if v.IsRelease() && v.Version == requested {
			return v.Version, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownVersion, requested)
}

// LatestRelease returns the first release in a newest-first game version list
func LatestRelease(versions []GameVersion) (string, error) {
	for _, v := range versions {
		if v.IsRelease() {
			return v.Version, nil
		}
	}
	return "", fmt.Errorf("%w: no Minecraft release found", ErrNoStableVersion)
}

// LoaderVersion is one published build of a mod loader
type LoaderVersion struct {
	Version string
	Stable  bool
}

// LatestStableLoader returns the first stable build in a newest-first loader version list
func LatestStableLoader(versions []LoaderVersion) (string, error) {
	for _, v := range versions {
		if v.Stable {
			return v.Version, nil
		}
	}
	return "", fmt.Errorf("%w: no stable loader build found", ErrNoStableVersion)
}

type ModLoaderComponent struct {
	Name         string
	FriendlyName string
	// MetaURL is formatted with the Minecraft version to get the loader builds for it
	MetaURL string
}

var ModLoaders = map[string]ModLoaderComponent{
	"fabric": {
		Name:         "fabric",
		FriendlyName: "Fabric loader",
		MetaURL:      "https://meta.fabricmc.net/v2/versions/loader/%s",
	},
	"quilt": {
		Name:         "quilt",
		FriendlyName: "Quilt loader",
		MetaURL:      "https://meta.quiltmc.org/v3/versions/loader/%s",
	},
}

// Groups of loaders that should be treated the same as the key
// e.g. a quilt pack can use fabric builds, but a fabric pack can't use quilt builds
var loaderCompatGroups = map[string][]string{
	"fabric": {"quilt"},
}

// CompatibleLoaders returns the loaders whose builds can run on the given pack loader, the pack loader first
func CompatibleLoaders(loader string) []string {
	loader = strings.ToLower(loader)
	loaders := []string{loader}
	for k, v := range loaderCompatGroups {
		for _, l := range v {
			if l == loader {
				loaders = append(loaders, k)
			}
		}
	}
	return loaders
}

func ComponentToFriendlyName(component string) string {
	if component == "minecraft" {
		return "Minecraft"
	}
	loader, ok := ModLoaders[component]
	if ok {
		return loader.FriendlyName
	} else {
		return component
	}
}

// LoaderSource provides the builds of a mod loader available for a Minecraft version
type LoaderSource interface {
	LoaderVersions(ctx context.Context, loader string, mcVersion string) ([]LoaderVersion, error)
}

// LoaderMeta fetches loader builds from the fabric and quilt meta servers
type LoaderMeta struct {
	Client *http.Client
}

type loaderMetaEntry struct {
	Loader struct {
		Version string `json:"version"`
		Stable  *bool  `json:"stable"`
	} `json:"loader"`
}

func (m LoaderMeta) LoaderVersions(ctx context.Context, loader string, mcVersion string) ([]LoaderVersion, error) {
	component, ok := ModLoaders[strings.ToLower(loader)]
	if !ok {
		return nil, fmt.Errorf("unknown loader %s", loader)
	}
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	var entries []loaderMetaEntry
	if err := GetJSON(ctx, client, fmt.Sprintf(component.MetaURL, mcVersion), &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch %s versions for %s: %w", component.FriendlyName, mcVersion, err)
	}
	versions := make([]LoaderVersion, 0, len(entries))
	for _, e := range entries {
		v := LoaderVersion{Version: e.Loader.Version}
		if e.Loader.Stable != nil {
			v.Stable = *e.Loader.Stable
		} else {
			// Quilt meta has no stable flag; pre-releases carry a suffix such as -beta.1
			v.Stable = !strings.Contains(v.Version, "-")
		}
		versions = append(versions, v)
	}
	return versions, nil
}
