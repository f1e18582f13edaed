package ports

import (
	"context"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

// MetadataPort resolves a set of endpoint descriptors against a base URL.
// The returned set holds one decoded value per distinct path or the call
// fails as a whole.
type MetadataPort interface {
	Resolve(ctx context.Context, baseURL string, descriptors ...types.Descriptor) (types.MetadataSet, error)
}

// DocumentPort fetches standalone JSON documents by absolute URL.
type DocumentPort interface {
	FetchDocument(ctx context.Context, url string) (*jsondoc.Value, error)
}
