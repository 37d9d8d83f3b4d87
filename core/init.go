package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
)

// FallbackMinecraftVersion is used by InitPack when the catalog can't be reached
const FallbackMinecraftVersion = "1.21"

// Defaults for new packs
const (
	DefaultPackName    = "My Pack"
	DefaultPackAuthor  = "Created by Azalea"
	DefaultPackVersion = "1.0.0"
	DefaultLoader      = "fabric"
)

// InitPack creates a pack in root, filling in the fields of the manifest left empty: the latest
// Minecraft release and the latest stable build of the loader.
// Failing to look either up is not fatal; the fallback version or an empty loader version is used.
func InitPack(ctx context.Context, root string, manifest Manifest, catalog Catalog, loaders LoaderSource, logger *log.Logger) (Pack, error) {
	if logger == nil {
		logger = log.Default()
	}
	if manifest.Name == "" {
		manifest.Name = DefaultPackName
	}
	if manifest.Author == "" {
		manifest.Author = DefaultPackAuthor
	}
	if manifest.Version == "" {
		manifest.Version = DefaultPackVersion
	}
	if _, err := semver.NewVersion(manifest.Version); err != nil {
		return Pack{}, fmt.Errorf("pack version %s is not a valid version: %w", manifest.Version, err)
	}
	manifest.Loader = strings.ToLower(manifest.Loader)
	if manifest.Loader == "" {
		manifest.Loader = DefaultLoader
	}
	if _, ok := ModLoaders[manifest.Loader]; !ok {
		keys := make([]string, 0, len(ModLoaders))
		for k := range ModLoaders {
			keys = append(keys, k)
		}
		return Pack{}, fmt.Errorf("mod loader %s is not supported, use one of: %s", manifest.Loader, strings.Join(keys, ", "))
	}

	if manifest.MinecraftVersion == "" {
		manifest.MinecraftVersion = FallbackMinecraftVersion
		if catalog != nil {
			if gameVersions, err := catalog.GameVersions(ctx); err != nil {
				logger.Warn("could not resolve latest Minecraft version, using fallback", "fallback", FallbackMinecraftVersion, "err", err)
			} else if latest, err := LatestRelease(gameVersions); err != nil {
				logger.Warn("could not resolve latest Minecraft version, using fallback", "fallback", FallbackMinecraftVersion, "err", err)
			} else {
				manifest.MinecraftVersion = latest
			}
		}
	} else if catalog != nil {
		gameVersions, err := catalog.GameVersions(ctx)
		if err == nil {
			resolved, err := ResolveTargetMC(manifest.MinecraftVersion, "", gameVersions)
			if err != nil {
				return Pack{}, err
			}
			manifest.MinecraftVersion = resolved
		}
	}
	logger.Info("using Minecraft", "version", manifest.MinecraftVersion)

	if manifest.LoaderVersion == "" && loaders != nil {
		versions, err := loaders.LoaderVersions(ctx, manifest.Loader, manifest.MinecraftVersion)
		if err == nil {
			manifest.LoaderVersion, err = LatestStableLoader(versions)
		}
		if err != nil {
			logger.Warn("could not resolve a compatible loader version", "loader", ComponentToFriendlyName(manifest.Loader), "err", err)
		} else {
			logger.Info("using loader", "loader", ComponentToFriendlyName(manifest.Loader), "version", manifest.LoaderVersion)
		}
	}

	pack := Pack{Root: root, Manifest: manifest}
	return pack, pack.Write()
}
