package core

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ornithe-installer/internal/policies"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// fakeMetadata decodes canned bodies by endpoint path.
type fakeMetadata struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  map[string]int
}

func newFakeMetadata(bodies map[string]string) *fakeMetadata {
	return &fakeMetadata{bodies: bodies, calls: map[string]int{}}
}

func (f *fakeMetadata) Resolve(ctx context.Context, baseURL string, descriptors ...types.Descriptor) (types.MetadataSet, error) {
	results := map[string]any{}
	for _, descriptor := range descriptors {
		f.mu.Lock()
		f.calls[descriptor.Path()]++
		body, ok := f.bodies[descriptor.Path()]
		f.mu.Unlock()
		if !ok {
			return types.MetadataSet{}, shared.LookupError("not found: " + descriptor.Path())
		}
		value, err := descriptor.DecodeAny([]byte(body))
		if err != nil {
			return types.MetadataSet{}, err
		}
		results[descriptor.Path()] = value
	}
	return types.NewMetadataSet(baseURL, results), nil
}

func (f *fakeMetadata) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func testPolicy() policies.ProfilePolicy {
	return policies.NewProfilePolicy(types.RulesFile{
		Substitutions: []types.SubstitutionRule{
			{
				Name:    "fabric-intermediary",
				Match:   types.LibraryMatch{Group: "net.fabricmc", Artifact: "intermediary"},
				Replace: types.LibraryReplacement{Group: "net.ornithemc", Artifact: "calamus-intermediary", URL: types.OrnitheMavenHost},
			},
		},
		JVMArguments: []types.JVMArgumentRule{
			{Name: "beacon", Loader: types.LoaderQuilt, Versions: []string{"0.17.0"}, Argument: "-Dloader.disable_beacon=true"},
		},
		BundleExcludedLibraries: []string{"org.lwjgl*", "org.ow2.asm*"},
	})
}

const (
	fixtureCatalog = `{
  "latest": {"release": "1.2.5", "snapshot": "1.2.5"},
  "versions": [
    {"id": "1.2.5", "type": "release", "url": "https://piston/1.2.5.json", "details": "https://meta/1.2.5/details.json"}
  ]
}`
	fixtureDetails = `{
  "manifests": [{"url": "https://meta/1.2.5/client.json"}, {"url": "https://meta/1.2.5/extra.json"}],
  "sharedMappings": false,
  "libraries": ["org.lwjgl.lwjgl:lwjgl:2.9.0"],
  "normalizedVersion": "1.2.5"
}`
	fixtureSource = `{
  "id": "1.2.5",
  "type": "release",
  "mainClass": "net.minecraft.launchwrapper.Launch",
  "libraries": [
    {"name": "net.java.jinput:jinput:2.0.5", "url": "https://libraries.minecraft.net/"},
    {"name": "org.lwjgl.lwjgl:lwjgl:2.9.0", "url": "https://libraries.minecraft.net/"},
    {"name": "org.ow2.asm:asm-all:4.1", "url": "https://libraries.minecraft.net/"}
  ],
  "downloads": {"client": {"sha1": "4a2fac7", "size": 4, "url": "https://piston/client.jar"}},
  "releaseTime": "2012-03-29T22:00:00+00:00"
}`
	fixtureClientManifest = `{"minimumLauncherVersion": 18, "assets": "pre-1.6", "type": "old_release"}`
	fixtureExtraManifest  = `{"minecraftArguments": "${auth_player_name} ${auth_session}", "assetIndex": {"id": "pre-1.6"}}`

	fixtureProfilePath = "/v3/versions/gen2/fabric-loader/1.2.5-client/0.15.11/profile/json"
	fixtureProfile     = `{
  "id": "fabric-loader-0.15.11-1.2.5",
  "inheritsFrom": "1.2.5",
  "mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
  "libraries": [
    {"name": "net.fabricmc:intermediary:1.2.5-client", "url": "https://maven.fabricmc.net/"},
    {"name": "net.fabricmc:fabric-loader:0.15.11", "url": "https://maven.fabricmc.net/"},
    {"name": "org.apache.logging.log4j:log4j-core:2.19.0", "url": "https://libraries.minecraft.net/"}
  ]
}`
	fixtureIntermediaryPath = "/v3/versions/gen2/intermediary"
	fixtureIntermediary     = `[{"version": "1.2.5-client", "maven": "net.ornithemc:calamus-intermediary-gen2:1.2.5-client", "stable": true}]`
)

type fixture struct {
	documents   *fakeDocuments
	metadata    *fakeMetadata
	catalog     *VersionCatalog
	synthesizer *ProfileSynthesizer
}

// newFixture wires a synthesizer against the 1.2.5 documents. Overrides
// replace document bodies by URL or endpoint path.
func newFixture(t *testing.T, overrides map[string]string) fixture {
	t.Helper()
	docs := map[string]string{
		"https://meta/1.2.5/details.json": fixtureDetails,
		"https://piston/1.2.5.json":       fixtureSource,
		"https://meta/1.2.5/client.json":  fixtureClientManifest,
		"https://meta/1.2.5/extra.json":   fixtureExtraManifest,
	}
	bodies := map[string]string{
		fixtureProfilePath:      fixtureProfile,
		fixtureIntermediaryPath: fixtureIntermediary,
	}
	for key, value := range overrides {
		if strings.HasPrefix(key, "/") {
			bodies[key] = value
		} else {
			docs[key] = value
		}
	}
	documents := newFakeDocuments(docs)
	metadata := newFakeMetadata(bodies)
	catalog, err := DecodeCatalog(strings.NewReader(fixtureCatalog), documents)
	require.NoError(t, err)
	synthesizer := NewProfileSynthesizer(metadata, documents, NewMetaEndpoints(nil), testPolicy(), "https://meta")
	return fixture{documents: documents, metadata: metadata, catalog: catalog, synthesizer: synthesizer}
}

func (f fixture) request(t *testing.T, format types.ProfileFormat) SynthesisRequest {
	t.Helper()
	record, ok := f.catalog.Lookup("1.2.5")
	require.True(t, ok)
	return SynthesisRequest{
		Record:        record,
		Side:          types.SideClient,
		Loader:        types.LoaderFabric,
		LoaderVersion: "0.15.11",
		Generation:    2,
		Format:        format,
	}
}
