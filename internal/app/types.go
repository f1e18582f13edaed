package app

import (
	"time"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

// Settings configures the remote sources and transport of a Service.
type Settings struct {
	MetaURL     string
	ManifestURL string
	HTTPTimeout time.Duration
	HTTPRetries int
	CacheTTL    time.Duration
	RulesFile   string
}

type ListRequest struct {
	Loader types.LoaderType
	// Kinds restricts the listing to the named version kinds. When empty the
	// Snapshots, Legacy and All switches decide.
	Kinds     []types.VersionKind
	Snapshots bool
	Legacy    bool
	All       bool
}

type VersionSummary struct {
	ID          string
	Kind        types.VersionKind
	ReleaseTime time.Time
}

type ListResult struct {
	LatestRelease      string
	LatestSnapshot     string
	LatestStableLoader string
	LatestBetaLoader   string
	Versions           []VersionSummary
}

type InstallRequest struct {
	Launcher      types.LauncherType
	Loader        types.LoaderType
	GameVersion   string
	LoaderVersion string
	Generation    int
	Dir           string
	NoProfile     bool
}

type InstallResult struct {
	Launcher      types.LauncherType
	GameVersion   string
	LoaderVersion string
	Generation    int
	// Paths lists the written profile files or the bundle archive.
	Paths      []string
	ProfileKey string
}

type SynthesizeRequest struct {
	GameVersion   string
	Side          types.GameSide
	Loader        types.LoaderType
	LoaderVersion string
	Generation    int
	Format        types.ProfileFormat
}

type SynthesizeResult struct {
	LoaderVersion string
	Generation    int
	// Document maps output paths to the synthesized documents in write order.
	Document *jsondoc.Value
}
