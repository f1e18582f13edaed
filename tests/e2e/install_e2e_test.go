package e2e

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ornithe-installer/tests/testutil"
)

func runInstaller(t *testing.T, server *testutil.MetaServer, args ...string) (string, error) {
	t.Helper()
	root := testutil.RepoRoot(t)
	cmd := exec.Command("go", append([]string{
		"run", "./cmd/ornithe-installer",
		"--meta-url", server.URL,
		"--manifest-url", server.ManifestURL(),
	}, args...)...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on")
	out, err := cmd.Output()
	return string(out), err
}

func TestInstallCommandE2E(t *testing.T) {
	server := testutil.NewMetaServer(t)
	launcherDir := t.TempDir()

	out, err := runInstaller(t, server, "install",
		"--game-version", "1.2.5",
		"--loader", "fabric",
		"--dir", launcherDir,
	)
	require.NoError(t, err, out)

	require.FileExists(t, filepath.Join(launcherDir, "versions", "1.2.5-vanilla", "1.2.5-vanilla.json"))
	require.FileExists(t, filepath.Join(launcherDir, "versions", "fabric-loader-0.15.11-1.2.5", "fabric-loader-0.15.11-1.2.5.json"))
	require.FileExists(t, filepath.Join(launcherDir, "launcher_profiles.json"))
}

func TestInstallBundleCommandE2E(t *testing.T) {
	server := testutil.NewMetaServer(t)
	outDir := t.TempDir()

	out, err := runInstaller(t, server, "install",
		"--launcher", "multimc",
		"--loader", "quilt",
		"--game-version", "1.2.5",
		"--dir", outDir,
	)
	require.NoError(t, err, out)
	require.FileExists(t, filepath.Join(outDir, "Ornithe-Gen2-Quilt-1.2.5.zip"))
}

func TestSynthesizeCommandE2E(t *testing.T) {
	server := testutil.NewMetaServer(t)

	out, err := runInstaller(t, server, "synthesize",
		"--game-version", "1.2.5",
		"--side", "server",
	)
	require.NoError(t, err, out)

	var document map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &document))
	loader, ok := document["versions/fabric-loader-0.15.11-1.2.5-server/fabric-loader-0.15.11-1.2.5-server.json"]
	require.True(t, ok, out)
	assert.NotContains(t, loader, "inheritsFrom")
	libraries, err := json.Marshal(loader["libraries"])
	require.NoError(t, err)
	assert.Contains(t, string(libraries), "net.ornithemc:calamus-intermediary:1.2.5-server")
}

func TestUnknownGameVersionExitCodeE2E(t *testing.T) {
	server := testutil.NewMetaServer(t)

	_, err := runInstaller(t, server, "synthesize", "--game-version", "9.9")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 5, exitErr.ExitCode())
}
