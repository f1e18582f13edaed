package ports

import (
	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

// ProfilePolicyPort applies the declarative profile rules.
type ProfilePolicyPort interface {
	RewriteLibraries(profile *jsondoc.Value) int
	InjectJVMArguments(profile *jsondoc.Value, loader types.LoaderType, loaderVersion string) int
	ExcludedFromBundle(libraryName string) bool
}
