package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"ornithe-installer/internal/app"
	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

type synthesizeOptions struct {
	GameVersion   string
	Loader        string
	LoaderVersion string
	Generation    int
	Side          string
	Format        string
	Output        string
}

// synthesizeFs is where --output files are written.
var synthesizeFs = afero.NewOsFs()

func newSynthesizeCommand() *cobra.Command {
	opts := synthesizeOptions{}
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Print the profiles an install would write without writing them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSynthesize(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.GameVersion, "game-version", "", "Game version")
	cmd.Flags().StringVar(&opts.Loader, "loader", "fabric", "Loader type (fabric or quilt)")
	cmd.Flags().StringVar(&opts.LoaderVersion, "loader-version", "", "Loader version (defaults to the latest stable)")
	cmd.Flags().IntVar(&opts.Generation, "generation", 0, "Intermediary generation (0 selects the stable generation)")
	cmd.Flags().StringVar(&opts.Side, "side", "client", "Game side (client or server)")
	cmd.Flags().StringVar(&opts.Format, "format", "native", "Profile format (native or bundle)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write the document to this file instead of stdout")

	return cmd
}

func runSynthesize(ctx context.Context, cmd *cobra.Command, opts synthesizeOptions) error {
	loader, err := parseFlag(types.ParseLoaderType, resolveString(cmd, opts.Loader, "loader", "loader"))
	if err != nil {
		return err
	}
	side, err := parseFlag(types.ParseGameSide, resolveString(cmd, opts.Side, "side", "side"))
	if err != nil {
		return err
	}
	format, err := parseFlag(types.ParseProfileFormat, resolveString(cmd, opts.Format, "format", "format"))
	if err != nil {
		return err
	}
	gameVersion := strings.TrimSpace(resolveString(cmd, opts.GameVersion, "game_version", "game-version"))
	if gameVersion == "" {
		return shared.InvalidError("--game-version is required")
	}

	service := newAppService()
	result, err := service.Synthesize(ctx, app.SynthesizeRequest{
		GameVersion:   gameVersion,
		Side:          side,
		Loader:        loader,
		LoaderVersion: resolveString(cmd, opts.LoaderVersion, "loader_version", "loader-version"),
		Generation:    resolveInt(cmd, opts.Generation, "generation", "generation"),
		Format:        format,
	})
	if err != nil {
		return err
	}

	output := resolveString(cmd, opts.Output, "output", "output")
	if output == "" {
		return writeDocument(cmd.OutOrStdout(), result.Document)
	}
	return writeDocumentFile(synthesizeFs, output, result.Document)
}

func writeDocument(out io.Writer, document *jsondoc.Value) error {
	data, err := jsondoc.MarshalIndent(document, "  ")
	if err != nil {
		return shared.FilesystemError("failed to encode document", err)
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return shared.FilesystemError("failed to write document", err)
	}
	return nil
}

func writeDocumentFile(fs afero.Fs, path string, document *jsondoc.Value) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return shared.FilesystemError("failed to create "+dir, err)
		}
	}
	file, err := fs.Create(path)
	if err != nil {
		return shared.FilesystemError("failed to create "+path, err)
	}
	defer file.Close()
	return writeDocument(file, document)
}
