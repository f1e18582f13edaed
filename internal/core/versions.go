package core

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// Game versions before this one launch through an applet and need the
// launcher's noapplet trait.
var noAppletBefore = semver.MustParse("1.6.0-pre+06251516")

// versionCache memoizes parsed versions. Loader listings are scanned
// repeatedly while the CLI filters them.
type versionCache struct {
	mu     sync.Mutex
	parsed map[string]*semver.Version
	failed map[string]error
}

func newVersionCache() *versionCache {
	return &versionCache{
		parsed: map[string]*semver.Version{},
		failed: map[string]error{},
	}
}

var parsedVersions = newVersionCache()

// semver returns a parsed version, caching both successes and failures.
func (c *versionCache) semver(value string) (*semver.Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if parsed, ok := c.parsed[value]; ok {
		return parsed, nil
	}
	if err, ok := c.failed[value]; ok {
		return nil, err
	}
	parsed, err := semver.NewVersion(value)
	if err != nil {
		c.failed[value] = err
		return nil, err
	}
	c.parsed[value] = parsed
	return parsed, nil
}

// IsStableLoader reports whether a loader version is a stable release. The
// service flag wins; otherwise a version without a prerelease part is
// stable. Unparseable versions fall back to the dash heuristic.
func IsStableLoader(version types.LoaderVersion) bool {
	if version.HasStable {
		return version.Stable
	}
	parsed, err := parsedVersions.semver(version.Version)
	if err != nil {
		return !strings.Contains(version.Version, "-")
	}
	return parsed.Prerelease() == ""
}

// LatestLoader returns the first stable (or first unstable when stable is
// false) version in service order.
func LatestLoader(available []types.LoaderVersion, stable bool) (string, bool) {
	for _, version := range available {
		if IsStableLoader(version) == stable {
			return version.Version, true
		}
	}
	return "", false
}

// SelectLoaderVersion picks the loader version to install. A requested
// version must be listed by the service; without one the latest stable
// version is used.
func SelectLoaderVersion(available []types.LoaderVersion, requested string) (string, error) {
	if requested != "" {
		for _, version := range available {
			if version.Version == requested {
				return requested, nil
			}
		}
		return "", shared.LookupError(fmt.Sprintf("loader version %s was not found", requested))
	}
	if len(available) == 0 {
		return "", shared.LookupError("no loader versions were found")
	}
	latest, ok := LatestLoader(available, true)
	if !ok {
		return "", shared.LookupError("no stable loader version was found")
	}
	return latest, nil
}

// NeedsNoApplet reports whether a game version, given by its normalized
// semver form, predates the applet removal. Versions that do not parse are
// treated as modern.
func NeedsNoApplet(normalizedVersion string) bool {
	if normalizedVersion == "" {
		return false
	}
	parsed, err := parsedVersions.semver(normalizedVersion)
	if err != nil {
		return false
	}
	return parsed.LessThan(noAppletBefore)
}
