package types

import "strings"

type IntermediaryGenerations struct {
	Latest int
	Stable int
}

type IntermediaryVersion struct {
	Version string
	Maven   string
	Stable  bool
}

// IntermediaryVersions keeps the service's ordering of intermediary entries.
type IntermediaryVersions []IntermediaryVersion

func (v IntermediaryVersions) Find(version string) (IntermediaryVersion, bool) {
	for _, entry := range v {
		if entry.Version == version {
			return entry, true
		}
	}
	return IntermediaryVersion{}, false
}

type LoaderVersion struct {
	Version string
	// Stable is only meaningful when HasStable is set by the service.
	Stable    bool
	HasStable bool
}

// Library is one entry of a profile's libraries array.
type Library struct {
	Name string
	URL  string
}

// Coordinate splits Name into group, artifact and version. Extra
// classifier parts are returned through rest.
func (l Library) Coordinate() (group string, artifact string, version string, rest []string, ok bool) {
	parts := strings.Split(l.Name, ":")
	if len(parts) < 3 {
		return "", "", "", nil, false
	}
	return parts[0], parts[1], parts[2], parts[3:], true
}

// VersionDetails is the per-version supplementary document.
type VersionDetails struct {
	Version           string
	Manifests         []string
	SharedMappings    bool
	LWJGLVersion      string
	NormalizedVersion string
}

// IDForSide returns the mapping id of version for side: shared mappings use
// the plain id, split mappings append the side.
func (d VersionDetails) IDForSide(side GameSide) string {
	if d.SharedMappings {
		return d.Version
	}
	return d.Version + "-" + string(side)
}
