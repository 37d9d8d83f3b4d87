package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/unascribed/FlexVer/go/flexver"
)

// "Loaders" that are supported regardless of the pack's mod loader
var contentLoaders = []string{
	"canvas",
	"iris",
	"optifine",
	"vanilla",   // Core shaders
	"minecraft", // Resource packs
	"datapack",
}

// VersionQuery is the set of constraints a remote version has to satisfy to be installed
type VersionQuery struct {
	GameVersion string
	Loader      string
	// VersionNumber, if set, only accepts the version with exactly this version number (or version ID)
	VersionNumber string
}

// LoaderMatches reports whether a remote version declaring the given loaders can be used in a pack
// with the given loader. Versions declaring no loaders, or only content loaders, are loader-agnostic.
func LoaderMatches(versionLoaders []string, packLoader string) bool {
	if len(versionLoaders) == 0 {
		return true
	}
	compatible := CompatibleLoaders(packLoader)
	onlyContent := true
	for _, l := range versionLoaders {
		l = strings.ToLower(l)
		for _, c := range compatible {
			if l == c {
				return true
			}
		}
		if !containsFold(contentLoaders, l) {
			onlyContent = false
		}
	}
	return onlyContent
}

// GameVersionMatches reports whether any of the game versions declared by a remote version is usable for target
func GameVersionMatches(gameVersions []string, target string) bool {
	for _, v := range gameVersions {
		if MCVersionMatches(v, target) {
			return true
		}
	}
	return false
}

// Matches reports whether a remote version satisfies every constraint of the query
func (q VersionQuery) Matches(v RemoteVersion) bool {
	if !GameVersionMatches(v.GameVersions, q.GameVersion) {
		return false
	}
	if !LoaderMatches(v.Loaders, q.Loader) {
		return false
	}
	if q.VersionNumber != "" && v.VersionNumber != q.VersionNumber && v.ID != q.VersionNumber {
		return false
	}
	return true
}

// SelectVersion picks the version of a project to install: the newest version, in the catalog's
// own ordering, that satisfies the query. ErrNoCompatibleVersion is returned when nothing does.
func SelectVersion(ctx context.Context, catalog Catalog, project RemoteProject, q VersionQuery, logger *log.Logger) (RemoteVersion, error) {
	versions, err := catalog.ListVersions(ctx, project.ID)
	if err != nil {
		return RemoteVersion{}, fmt.Errorf("failed to fetch versions of %s: %w", project.Slug, err)
	}
	var candidates []RemoteVersion
	for _, v := range versions {
		if q.Matches(v) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		if q.VersionNumber != "" {
			return RemoteVersion{}, fmt.Errorf("%w: %s has no version %s for Minecraft %s (%s)", ErrNoCompatibleVersion, project.Slug, q.VersionNumber, q.GameVersion, q.Loader)
		}
		return RemoteVersion{}, fmt.Errorf("%w: %s has no version for Minecraft %s (%s)", ErrNoCompatibleVersion, project.Slug, q.GameVersion, q.Loader)
	}

	chosen := candidates[0]
	if logger != nil {
		flexverLatest := chosen
		for _, v := range candidates[1:] {
			if flexver.Less(flexverLatest.VersionNumber, v.VersionNumber) {
				flexverLatest = v
			}
		}
		if flexverLatest.ID != chosen.ID {
			logger.Warn("versions inconsistent between latest version number and newest release", "project", project.Slug, "number", flexverLatest.VersionNumber, "newest", chosen.VersionNumber)
		}
	}
	return chosen, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
