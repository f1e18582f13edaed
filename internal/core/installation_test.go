package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const (
	fixtureGenerationsPath = "/v3/versions/intermediary_generations"
	fixtureLoadersPath     = "/v3/versions/fabric-loader"
)

func installationFixture(t *testing.T, overrides map[string]string) (fixture, InstallationResolver) {
	t.Helper()
	bodies := map[string]string{
		fixtureGenerationsPath: `{"latest": 3, "stable": 2}`,
		fixtureLoadersPath: `[
  {"version": "0.16.0-beta.1", "stable": false},
  {"version": "0.15.11", "stable": true},
  {"version": "0.15.10", "stable": true}
]`,
	}
	for key, value := range overrides {
		bodies[key] = value
	}
	f := newFixture(t, bodies)
	return f, NewInstallationResolver(f.metadata, NewMetaEndpoints(nil), "https://meta")
}

func TestResolveInstallationDefaults(t *testing.T) {
	f, resolver := installationFixture(t, nil)

	installation, err := resolver.Resolve(t.Context(), InstallationRequest{
		Catalog:     f.catalog,
		GameVersion: "1.2.5",
		Loader:      types.LoaderFabric,
	})
	require.NoError(t, err)
	assert.Equal(t, "1.2.5", installation.Record.ID)
	assert.Equal(t, types.SideClient, installation.Side)
	assert.Equal(t, 2, installation.Generation)
	assert.Equal(t, "0.15.11", installation.LoaderVersion)
	assert.Equal(t, "net.ornithemc:calamus-intermediary-gen2:1.2.5-client", installation.Intermediary.Maven)
	assert.Equal(t, 1, f.metadata.Calls(fixtureGenerationsPath))

	req := installation.SynthesisRequest(types.ProfileFormatBundle)
	assert.Equal(t, types.ProfileFormatBundle, req.Format)
	assert.Equal(t, 2, req.Generation)
	assert.Same(t, installation.Record, req.Record)
}

func TestResolveInstallationExplicitChoices(t *testing.T) {
	f, resolver := installationFixture(t, nil)

	installation, err := resolver.Resolve(t.Context(), InstallationRequest{
		Catalog:       f.catalog,
		GameVersion:   " 1.2.5 ",
		Loader:        types.LoaderFabric,
		LoaderVersion: "0.15.10",
		Generation:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, "0.15.10", installation.LoaderVersion)
	assert.Equal(t, 0, f.metadata.Calls(fixtureGenerationsPath))
}

func TestResolveInstallationFailures(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		req       InstallationRequest
		kind      shared.ErrorKind
	}{
		{
			name: "empty game version",
			req:  InstallationRequest{Loader: types.LoaderFabric},
			kind: shared.KindInvalid,
		},
		{
			name: "negative generation",
			req:  InstallationRequest{GameVersion: "1.2.5", Loader: types.LoaderFabric, Generation: -1},
			kind: shared.KindInvalid,
		},
		{
			name: "unknown game version",
			req:  InstallationRequest{GameVersion: "1.99", Loader: types.LoaderFabric},
			kind: shared.KindLookup,
		},
		{
			name:      "no intermediary for version",
			overrides: map[string]string{fixtureIntermediaryPath: `[{"version": "1.3.2", "maven": "net.ornithemc:calamus-intermediary-gen2:1.3.2"}]`},
			req:       InstallationRequest{GameVersion: "1.2.5", Loader: types.LoaderFabric},
			kind:      shared.KindLookup,
		},
		{
			name: "unknown loader version",
			req:  InstallationRequest{GameVersion: "1.2.5", Loader: types.LoaderFabric, LoaderVersion: "9.9.9"},
			kind: shared.KindLookup,
		},
		{
			name:      "no stable loader",
			overrides: map[string]string{fixtureLoadersPath: `[{"version": "0.16.0-beta.1", "stable": false}]`},
			req:       InstallationRequest{GameVersion: "1.2.5", Loader: types.LoaderFabric},
			kind:      shared.KindLookup,
		},
		{
			name:      "malformed generations",
			overrides: map[string]string{fixtureGenerationsPath: `{"latest": 3}`},
			req:       InstallationRequest{GameVersion: "1.2.5", Loader: types.LoaderFabric},
			kind:      shared.KindMalformed,
		},
		{
			name:      "zero stable generation",
			overrides: map[string]string{fixtureGenerationsPath: `{"latest": 0, "stable": 0}`},
			req:       InstallationRequest{GameVersion: "1.2.5", Loader: types.LoaderFabric},
			kind:      shared.KindMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, resolver := installationFixture(t, tt.overrides)
			req := tt.req
			req.Catalog = f.catalog
			_, err := resolver.Resolve(t.Context(), req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, shared.KindOf(err))
		})
	}
}

func TestInstallationLoaderVersions(t *testing.T) {
	_, resolver := installationFixture(t, nil)

	versions, err := resolver.LoaderVersions(t.Context(), types.LoaderFabric)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	latest, ok := LatestLoader(versions, false)
	assert.True(t, ok)
	assert.Equal(t, "0.16.0-beta.1", latest)

	_, err = resolver.LoaderVersions(t.Context(), types.LoaderQuilt)
	assert.Equal(t, shared.KindLookup, shared.KindOf(err))
}
