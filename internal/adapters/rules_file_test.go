package adapters

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

func TestRulesFileAdapterBuiltInRules(t *testing.T) {
	rules, err := NewRulesFileAdapter(afero.NewMemMapFs()).Load("")
	require.NoError(t, err)

	require.Len(t, rules.Substitutions, 2)
	assert.Equal(t, types.LibraryMatch{Group: "net.fabricmc", Artifact: "intermediary"}, rules.Substitutions[0].Match)
	assert.Equal(t, "calamus-intermediary", rules.Substitutions[1].Replace.Artifact)
	require.Len(t, rules.JVMArguments, 1)
	assert.Equal(t, types.LoaderQuilt, rules.JVMArguments[0].Loader)
	assert.Contains(t, rules.JVMArguments[0].Versions, "0.17.0")
	assert.Equal(t, []string{"org.lwjgl*", "org.ow2.asm*"}, rules.BundleExcludedLibraries)
}

func TestRulesFileAdapterOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/rules.yaml", []byte(`substitutions:
  - name: legacy
    match: {group: net.legacyfabric, artifact: intermediary}
    replace: {group: net.ornithemc, artifact: calamus-intermediary, url: https://example.invalid/maven/}
`), 0o644))

	rules, err := NewRulesFileAdapter(fs).Load("/etc/rules.yaml")
	require.NoError(t, err)
	require.Len(t, rules.Substitutions, 1)
	assert.Equal(t, "https://example.invalid/maven/", rules.Substitutions[0].Replace.URL)
	assert.Empty(t, rules.JVMArguments)
}

func TestRulesFileAdapterErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "broken.yaml", []byte("substitutions: [\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "invalid.yaml", []byte(`jvm_arguments:
  - name: empty
    loader: forge
`), 0o644))

	tests := []struct {
		name string
		path string
		kind shared.ErrorKind
	}{
		{name: "missing file", path: "missing.yaml", kind: shared.KindFilesystem},
		{name: "broken yaml", path: "broken.yaml", kind: shared.KindInvalid},
		{name: "invalid rules", path: "invalid.yaml", kind: shared.KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRulesFileAdapter(fs).Load(tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.kind, shared.KindOf(err))
		})
	}
}

func TestInstanceIconIsCopied(t *testing.T) {
	icon := InstanceIcon()
	require.NotEmpty(t, icon)
	icon[0] = 0
	assert.NotEqual(t, byte(0), InstanceIcon()[0])
}
