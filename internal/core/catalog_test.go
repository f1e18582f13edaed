package core

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// fakeDocuments serves canned documents by URL and counts fetches.
type fakeDocuments struct {
	mu    sync.Mutex
	docs  map[string]string
	calls map[string]int
	delay time.Duration
	fail  map[string]error
}

func newFakeDocuments(docs map[string]string) *fakeDocuments {
	return &fakeDocuments{docs: docs, calls: map[string]int{}, fail: map[string]error{}}
}

func (f *fakeDocuments) FetchDocument(ctx context.Context, url string) (*jsondoc.Value, error) {
	f.mu.Lock()
	f.calls[url]++
	raw, ok := f.docs[url]
	failure := f.fail[url]
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, shared.NetworkError("canceled", ctx.Err())
		}
	}
	if failure != nil {
		return nil, failure
	}
	if !ok {
		return nil, shared.LookupError("no document at " + url)
	}
	return jsondoc.Parse([]byte(raw))
}

func (f *fakeDocuments) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

const sampleManifest = `{
  "latest": {"release": "1.2.5", "snapshot": "12w08a"},
  "versions": [
    {"id": "12w08a", "type": "snapshot", "url": "https://v/12w08a.json", "details": "https://d/12w08a.json", "time": "2012-02-23T00:00:00+00:00", "releaseTime": "2012-02-23T00:00:00+00:00"},
    {"id": "1.2.5", "type": "release", "url": "https://v/1.2.5.json", "details": "https://d/1.2.5.json"},
    {"id": "b1.7.3", "type": "old_beta", "url": "https://v/b1.7.3.json", "details": "https://d/b1.7.3.json"}
  ]
}`

func readTestCatalog(t *testing.T, raw string, docs *fakeDocuments) *VersionCatalog {
	t.Helper()
	catalog, err := DecodeCatalog(strings.NewReader(raw), docs)
	require.NoError(t, err)
	return catalog
}

func catalogIDs(catalog *VersionCatalog) []string {
	var ids []string
	for _, record := range catalog.Versions() {
		ids = append(ids, record.ID)
	}
	return ids
}

func TestReadCatalogPreservesDocumentOrder(t *testing.T) {
	catalog := readTestCatalog(t, sampleManifest, newFakeDocuments(nil))

	if diff := cmp.Diff([]string{"12w08a", "1.2.5", "b1.7.3"}, catalogIDs(catalog)); diff != "" {
		t.Fatalf("unexpected catalog order (-want +got):\n%s", diff)
	}
	require.NotNil(t, catalog.LatestRelease())
	assert.Equal(t, "1.2.5", catalog.LatestRelease().ID)
	assert.Equal(t, "12w08a", catalog.LatestSnapshot().ID)

	snapshot, ok := catalog.Lookup("12w08a")
	require.True(t, ok)
	assert.Equal(t, types.VersionKindSnapshot, snapshot.Kind)
	assert.Equal(t, 2012, snapshot.ReleaseTime.Year())
	beta, _ := catalog.Lookup("b1.7.3")
	assert.True(t, beta.Kind.IsLegacy())
}

func TestReadCatalogDuplicateIDKeepsFirstPositionLaterValue(t *testing.T) {
	raw := `{"versions": [
		{"id": "a", "type": "release", "url": "https://v/a-old.json", "details": "https://d/a.json"},
		{"id": "b", "type": "release", "url": "https://v/b.json", "details": "https://d/b.json"},
		{"id": "a", "type": "snapshot", "url": "https://v/a-new.json", "details": "https://d/a.json"}
	]}`
	catalog := readTestCatalog(t, raw, newFakeDocuments(nil))

	assert.Equal(t, []string{"a", "b"}, catalogIDs(catalog))
	record, ok := catalog.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "https://v/a-new.json", record.SourceURL)
	assert.Equal(t, types.VersionKindSnapshot, record.Kind)
}

func TestReadCatalogMissingLatestIsEmpty(t *testing.T) {
	raw := `{"latest": {"release": "9.9.9"}, "versions": [
		{"id": "1.0", "type": "release", "url": "u", "details": "d"}
	]}`
	catalog := readTestCatalog(t, raw, newFakeDocuments(nil))
	assert.Nil(t, catalog.LatestRelease())
	assert.Nil(t, catalog.LatestSnapshot())
	assert.Equal(t, 1, catalog.Len())
}

func TestReadCatalogRequiresFields(t *testing.T) {
	for _, key := range []string{"id", "type", "url", "details"} {
		t.Run(key, func(t *testing.T) {
			entry := map[string]string{"id": `"1.0"`, "type": `"release"`, "url": `"u"`, "details": `"d"`}
			delete(entry, key)
			var parts []string
			for _, field := range []string{"id", "type", "url", "details"} {
				if value, ok := entry[field]; ok {
					parts = append(parts, `"`+field+`":`+value)
				}
			}
			raw := `{"versions":[{` + strings.Join(parts, ",") + `}]}`

			_, err := DecodeCatalog(strings.NewReader(raw), nil)
			require.Error(t, err)
			assert.Equal(t, shared.KindMalformed, shared.KindOf(err))
			assert.Contains(t, err.Error(), "versions[0]."+key)
		})
	}
}

func TestDetailsResolvesOnceUnderConcurrency(t *testing.T) {
	docs := newFakeDocuments(map[string]string{
		"https://d/1.2.5.json": `{"manifests":[{"url":"https://m/1.json"},{"url":"https://m/2.json"}],"sharedMappings":false,"libraries":["net.java:jinput:2","org.lwjgl.lwjgl:lwjgl:2.9.0"],"normalizedVersion":"1.2.5"}`,
	})
	docs.delay = 30 * time.Millisecond
	catalog := readTestCatalog(t, sampleManifest, docs)
	record, _ := catalog.Lookup("1.2.5")
	assert.Equal(t, DetailsUnresolved, record.DetailsState())

	var wg sync.WaitGroup
	var failures atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			details, err := record.Details(context.Background())
			if err != nil || details.LWJGLVersion != "2.9.0" {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())
	assert.Equal(t, 1, docs.Calls("https://d/1.2.5.json"))
	assert.Equal(t, DetailsResolved, record.DetailsState())

	details, err := record.Details(t.Context())
	require.NoError(t, err)
	if diff := cmp.Diff(types.VersionDetails{
		Version:           "1.2.5",
		Manifests:         []string{"https://m/1.json", "https://m/2.json"},
		SharedMappings:    false,
		LWJGLVersion:      "2.9.0",
		NormalizedVersion: "1.2.5",
	}, details); diff != "" {
		t.Fatalf("unexpected details (-want +got):\n%s", diff)
	}
	client, err := record.IDForSide(t.Context(), types.SideClient)
	require.NoError(t, err)
	assert.Equal(t, "1.2.5-client", client)
}

func TestDetailsFailureIsMemoized(t *testing.T) {
	docs := newFakeDocuments(map[string]string{
		"https://d/1.2.5.json": `{"manifests":[]}`,
	})
	catalog := readTestCatalog(t, sampleManifest, docs)
	record, _ := catalog.Lookup("1.2.5")

	_, err := record.Details(t.Context())
	require.Error(t, err)
	assert.Equal(t, shared.KindMalformed, shared.KindOf(err))
	_, err = record.Details(t.Context())
	require.Error(t, err)

	assert.Equal(t, DetailsFailed, record.DetailsState())
	assert.Equal(t, 1, docs.Calls("https://d/1.2.5.json"))
}

func TestDetailsCancellationResetsState(t *testing.T) {
	docs := newFakeDocuments(map[string]string{
		"https://d/1.2.5.json": `{"manifests":[],"sharedMappings":true}`,
	})
	docs.delay = time.Second
	catalog := readTestCatalog(t, sampleManifest, docs)
	record, _ := catalog.Lookup("1.2.5")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := record.Details(ctx)
	require.Error(t, err)
	assert.Equal(t, DetailsUnresolved, record.DetailsState())

	docs.mu.Lock()
	docs.delay = 0
	docs.mu.Unlock()
	details, err := record.Details(t.Context())
	require.NoError(t, err)
	assert.True(t, details.SharedMappings)
	assert.Equal(t, "1.2.5", details.IDForSide(types.SideServer))
}

func TestParseVersionDetailsTolerance(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
		lwjgl   string
	}{
		{name: "no lwjgl match", raw: `{"manifests":[],"sharedMappings":true,"libraries":["a:b:1"]}`},
		{name: "lwjgl3 prefix", raw: `{"manifests":[],"sharedMappings":true,"libraries":["org.lwjgl:lwjgl:3.2.2"]}`, lwjgl: "3.2.2"},
		{name: "missing shared mappings", raw: `{"manifests":[]}`, wantErr: "sharedMappings"},
		{name: "missing manifests", raw: `{"sharedMappings":true}`, wantErr: "manifests"},
		{name: "shared mappings type", raw: `{"manifests":[],"sharedMappings":"yes"}`, wantErr: "expected boolean"},
		{name: "library type", raw: `{"manifests":[],"sharedMappings":true,"libraries":[1]}`, wantErr: "libraries[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := jsondoc.Parse([]byte(tt.raw))
			require.NoError(t, err)
			details, err := ParseVersionDetails("1.0", doc)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lwjgl, details.LWJGLVersion)
		})
	}
}
