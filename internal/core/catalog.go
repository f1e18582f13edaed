package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/rs/zerolog/log"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const catalogDocument = "version manifest"

type DetailsState int

const (
	DetailsUnresolved DetailsState = iota
	DetailsResolving
	DetailsResolved
	DetailsFailed
)

func (s DetailsState) String() string {
	switch s {
	case DetailsResolving:
		return "resolving"
	case DetailsResolved:
		return "resolved"
	case DetailsFailed:
		return "failed"
	default:
		return "unresolved"
	}
}

// VersionCatalog is the ordered set of known game versions.
type VersionCatalog struct {
	latestRelease  *VersionRecord
	latestSnapshot *VersionRecord
	versions       *linkedhashmap.Map
}

// VersionRecord is one catalog entry. Its detail document is fetched on the
// first call to Details and kept for the lifetime of the record.
type VersionRecord struct {
	ID          string
	Kind        types.VersionKind
	SourceURL   string
	DetailsURL  string
	Time        time.Time
	ReleaseTime time.Time

	documents ports.DocumentPort
	mu        sync.Mutex
	state     DetailsState
	done      chan struct{}
	details   types.VersionDetails
	err       error
}

// ReadCatalog builds a catalog from the version list document. Entries
// sharing an id collapse into one record: the later entry's fields win and
// the record stays at the position where the id was first seen.
func ReadCatalog(doc *jsondoc.Value, documents ports.DocumentPort) (*VersionCatalog, error) {
	if !doc.IsObject() {
		return nil, shared.MalformedError(catalogDocument, "$", "object")
	}
	catalog := &VersionCatalog{versions: linkedhashmap.New()}
	if raw, ok := doc.Get("versions"); ok {
		if !raw.IsArray() {
			return nil, shared.MalformedError(catalogDocument, "versions", "array")
		}
		for idx, entry := range raw.Items() {
			record, err := readVersionRecord(entry, idx, documents)
			if err != nil {
				return nil, err
			}
			if _, exists := catalog.versions.Get(record.ID); exists {
				log.Debug().Str("version", record.ID).Msg("duplicate version id in manifest, later entry wins")
			}
			catalog.versions.Put(record.ID, record)
		}
	}
	if latest, ok := doc.Get("latest"); ok {
		if !latest.IsObject() {
			return nil, shared.MalformedError(catalogDocument, "latest", "object")
		}
		release, err := optionalString(latest, "release")
		if err != nil {
			return nil, err
		}
		snapshot, err := optionalString(latest, "snapshot")
		if err != nil {
			return nil, err
		}
		catalog.latestRelease, _ = catalog.Lookup(release)
		catalog.latestSnapshot, _ = catalog.Lookup(snapshot)
	}
	return catalog, nil
}

// DecodeCatalog reads and parses a version list document from r.
func DecodeCatalog(r io.Reader, documents ports.DocumentPort) (*VersionCatalog, error) {
	doc, err := jsondoc.Decode(r)
	if err != nil {
		return nil, shared.MalformedErrorWithCause(catalogDocument, err)
	}
	return ReadCatalog(doc, documents)
}

// LoadCatalog fetches the version list document from url.
func LoadCatalog(ctx context.Context, documents ports.DocumentPort, url string) (*VersionCatalog, error) {
	doc, err := documents.FetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return ReadCatalog(doc, documents)
}

func readVersionRecord(entry *jsondoc.Value, idx int, documents ports.DocumentPort) (*VersionRecord, error) {
	if !entry.IsObject() {
		return nil, shared.MalformedError(catalogDocument, fmt.Sprintf("versions[%d]", idx), "object")
	}
	fields := map[string]string{}
	for _, key := range []string{"id", "type", "url", "details"} {
		value, err := requiredString(entry, catalogDocument, fmt.Sprintf("versions[%d].%s", idx, key), key)
		if err != nil {
			return nil, err
		}
		fields[key] = value
	}
	record := &VersionRecord{
		ID:         fields["id"],
		Kind:       types.VersionKind(fields["type"]),
		SourceURL:  fields["url"],
		DetailsURL: fields["details"],
		documents:  documents,
	}
	if raw, ok := entry.Get("time"); ok {
		value, _ := raw.Str()
		record.Time = parseTimeFlexible(value)
	}
	if raw, ok := entry.Get("releaseTime"); ok {
		value, _ := raw.Str()
		record.ReleaseTime = parseTimeFlexible(value)
	}
	return record, nil
}

func optionalString(obj *jsondoc.Value, key string) (string, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return "", nil
	}
	value, ok := raw.Str()
	if !ok {
		return "", shared.MalformedError(catalogDocument, "latest."+key, "string")
	}
	return value, nil
}

// Lookup returns the record for id.
func (c *VersionCatalog) Lookup(id string) (*VersionRecord, bool) {
	if c == nil || id == "" {
		return nil, false
	}
	raw, ok := c.versions.Get(id)
	if !ok {
		return nil, false
	}
	return raw.(*VersionRecord), true
}

// Versions lists the records in document order.
func (c *VersionCatalog) Versions() []*VersionRecord {
	if c == nil {
		return nil
	}
	values := c.versions.Values()
	records := make([]*VersionRecord, 0, len(values))
	for _, value := range values {
		records = append(records, value.(*VersionRecord))
	}
	return records
}

func (c *VersionCatalog) Len() int {
	if c == nil {
		return 0
	}
	return c.versions.Size()
}

// LatestRelease may be nil when the manifest names an unknown version.
func (c *VersionCatalog) LatestRelease() *VersionRecord {
	return c.latestRelease
}

func (c *VersionCatalog) LatestSnapshot() *VersionRecord {
	return c.latestSnapshot
}

func (r *VersionRecord) DetailsState() DetailsState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Details returns the detail document, fetching it on first use. Concurrent
// first calls share one fetch. A failed fetch is remembered, except when it
// failed because ctx ended; the next caller then fetches again.
func (r *VersionRecord) Details(ctx context.Context) (types.VersionDetails, error) {
	for {
		r.mu.Lock()
		switch r.state {
		case DetailsResolved:
			details := r.details
			r.mu.Unlock()
			return details, nil
		case DetailsFailed:
			err := r.err
			r.mu.Unlock()
			return types.VersionDetails{}, err
		case DetailsResolving:
			done := r.done
			r.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return types.VersionDetails{}, shared.NetworkError("version details canceled", ctx.Err())
			}
		}

		r.state = DetailsResolving
		done := make(chan struct{})
		r.done = done
		r.mu.Unlock()

		details, err := r.fetchDetails(ctx)

		r.mu.Lock()
		switch {
		case err == nil:
			r.state = DetailsResolved
			r.details = details
		case ctx.Err() != nil:
			r.state = DetailsUnresolved
		default:
			r.state = DetailsFailed
			r.err = err
		}
		close(done)
		r.mu.Unlock()
		return details, err
	}
}

// IDForSide returns the mapping id of the version for side.
func (r *VersionRecord) IDForSide(ctx context.Context, side types.GameSide) (string, error) {
	details, err := r.Details(ctx)
	if err != nil {
		return "", err
	}
	return details.IDForSide(side), nil
}

func (r *VersionRecord) fetchDetails(ctx context.Context) (types.VersionDetails, error) {
	if r.documents == nil {
		return types.VersionDetails{}, shared.LookupError(fmt.Sprintf("no detail source for version %s", r.ID))
	}
	log.Ctx(ctx).Debug().Str("version", r.ID).Str("url", r.DetailsURL).Msg("fetching version details")
	doc, err := r.documents.FetchDocument(ctx, r.DetailsURL)
	if err != nil {
		return types.VersionDetails{}, err
	}
	return ParseVersionDetails(r.ID, doc)
}

var lwjglPrefixes = []string{"org.lwjgl:lwjgl:", "org.lwjgl.lwjgl:lwjgl:"}

// ParseVersionDetails reads a detail document. manifests and sharedMappings
// are required; the LWJGL version is taken from the first matching library
// and left empty when none matches.
func ParseVersionDetails(version string, doc *jsondoc.Value) (types.VersionDetails, error) {
	document := "version details " + version
	if !doc.IsObject() {
		return types.VersionDetails{}, shared.MalformedError(document, "$", "object")
	}
	details := types.VersionDetails{Version: version}

	manifests, ok := doc.Get("manifests")
	if !ok || !manifests.IsArray() {
		return types.VersionDetails{}, shared.MalformedError(document, "manifests", "array")
	}
	for idx, entry := range manifests.Items() {
		if !entry.IsObject() {
			return types.VersionDetails{}, shared.MalformedError(document, fmt.Sprintf("manifests[%d]", idx), "object")
		}
		raw, ok := entry.Get("url")
		if !ok {
			continue
		}
		url, ok := raw.Str()
		if !ok {
			return types.VersionDetails{}, shared.MalformedError(document, fmt.Sprintf("manifests[%d].url", idx), "string")
		}
		details.Manifests = append(details.Manifests, url)
	}

	sharedMappings, ok := doc.Get("sharedMappings")
	if !ok {
		return types.VersionDetails{}, shared.MalformedError(document, "sharedMappings", "boolean")
	}
	if details.SharedMappings, ok = sharedMappings.BoolValue(); !ok {
		return types.VersionDetails{}, shared.MalformedError(document, "sharedMappings", "boolean")
	}

	if libraries, ok := doc.Get("libraries"); ok {
		if !libraries.IsArray() {
			return types.VersionDetails{}, shared.MalformedError(document, "libraries", "array")
		}
		for idx, entry := range libraries.Items() {
			name, ok := entry.Str()
			if !ok {
				return types.VersionDetails{}, shared.MalformedError(document, fmt.Sprintf("libraries[%d]", idx), "string")
			}
			if found := lwjglVersionOf(name); found != "" {
				details.LWJGLVersion = found
				break
			}
		}
	}

	if normalized, ok := doc.Get("normalizedVersion"); ok {
		details.NormalizedVersion, _ = normalized.Str()
	}
	return details, nil
}

func lwjglVersionOf(name string) string {
	for _, prefix := range lwjglPrefixes {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return ""
}

func parseTimeFlexible(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
