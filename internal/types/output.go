package types

import "strings"

// BundleFile is one entry of an instance bundle archive.
type BundleFile struct {
	Path string
	Data []byte
}

// PackComponent is one entry of the bundle's component list.
type PackComponent struct {
	UID         string
	CachedName  string
	Version     string
	Important   bool
	DependsOnly bool
}

// LWJGL describes the windowing library a game version depends on.
type LWJGL struct {
	Version string
	URL     string
}

const (
	DefaultLibraryHost = "https://libraries.minecraft.net/"
	OrnitheMavenHost   = "https://maven.ornithemc.net/releases/"
)

func (l LWJGL) MajorVersion() string {
	major, _, _ := strings.Cut(l.Version, ".")
	return major
}

// UID returns the bundle component uid for the LWJGL major version.
func (l LWJGL) UID() string {
	if l.MajorVersion() == "3" {
		return "org.lwjgl3"
	}
	return "org.lwjgl"
}

// IsCustom reports whether the library is served from somewhere other than
// the default upstream host.
func (l LWJGL) IsCustom() bool {
	return !strings.HasPrefix(l.URL, DefaultLibraryHost)
}

// LauncherProfile is an entry added to the native launcher's profile list.
type LauncherProfile struct {
	Key     string
	Name    string
	Version string
	Icon    string
}
