package ports

import (
	"context"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

// ProfileWriterPort writes loose profiles for the native launcher.
type ProfileWriterPort interface {
	WriteVersionProfile(id string, profile *jsondoc.Value) (string, error)
	WriteLauncherProfile(profile types.LauncherProfile) error
}

// BundleWriterPort writes instance bundles. Implementations must not leave
// a partial archive at the returned path.
type BundleWriterPort interface {
	WriteBundle(ctx context.Context, dir string, name string, files []types.BundleFile) (string, error)
}
