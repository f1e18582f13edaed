package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// installHints returns follow-up steps the launcher still needs after an
// install.
func installHints(req InstallRequest, result InstallResult) []string {
	var hints []string
	switch {
	case req.Launcher == types.LauncherMultiMC && len(result.Paths) > 0:
		hints = append(hints, fmt.Sprintf(
			"hint: import %s with Add Instance > Import from zip",
			result.Paths[0],
		))
	case req.Launcher == types.LauncherOfficial && req.NoProfile && len(result.Paths) > 0:
		id := strings.TrimSuffix(filepath.Base(result.Paths[len(result.Paths)-1]), ".json")
		hints = append(hints, fmt.Sprintf(
			"hint: no launcher profile was added; create an installation using version %s",
			id,
		))
	}
	if strings.TrimSpace(req.LoaderVersion) == "" {
		hints = append(hints, fmt.Sprintf(
			"hint: installed the latest stable loader %s; use --loader-version to pin another",
			result.LoaderVersion,
		))
	}
	return hints
}

// ErrorHints suggests what to check after a failed operation, based on the
// kind of failure.
func ErrorHints(err error) []string {
	switch shared.KindOf(err) {
	case shared.KindNetwork:
		return []string{"hint: the metadata service could not be reached; check the connection or set --meta-url (ORNITHE_INSTALLER_META_URL)"}
	case shared.KindMalformed:
		hints := []string{"hint: a metadata document had an unexpected shape; the service may be mid-update, retry later"}
		if docErr, ok := shared.DocumentErrorOf(err); ok {
			hints = append(hints, fmt.Sprintf("hint: offending document %s at %q", docErr.Document, docErr.Key))
		}
		return hints
	case shared.KindLookup:
		return []string{"hint: run `ornithe-installer list --all` to see the supported game and loader versions"}
	case shared.KindFilesystem:
		return []string{"hint: check that the install directory exists and is writable"}
	default:
		return nil
	}
}

// EmitErrorHints writes the hints for err to stderr.
func EmitErrorHints(err error) {
	emitHints(ErrorHints(err))
}

// emitHints writes hint messages to stderr.
func emitHints(hints []string) {
	for _, h := range hints {
		fmt.Fprintln(os.Stderr, h)
	}
}
