package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ornithe-installer/internal/app"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const spinnerRefresh = 120 * time.Millisecond

type installOptions struct {
	Launcher      string
	Loader        string
	GameVersion   string
	LoaderVersion string
	Generation    int
	Dir           string
	NoProfile     bool
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a loader for the official launcher or as an instance bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Launcher, "launcher", "official", "Target launcher (official or multimc)")
	cmd.Flags().StringVar(&opts.Loader, "loader", "fabric", "Loader type (fabric or quilt)")
	cmd.Flags().StringVar(&opts.GameVersion, "game-version", "", "Game version to install for")
	cmd.Flags().StringVar(&opts.LoaderVersion, "loader-version", "", "Loader version (defaults to the latest stable)")
	cmd.Flags().IntVar(&opts.Generation, "generation", 0, "Intermediary generation (0 selects the stable generation)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Launcher directory, or the output directory for bundles")
	cmd.Flags().BoolVar(&opts.NoProfile, "no-profile", false, "Do not add a launcher profile")

	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, opts installOptions) error {
	launcher, err := parseFlag(types.ParseLauncherType, resolveString(cmd, opts.Launcher, "launcher", "launcher"))
	if err != nil {
		return err
	}
	loader, err := parseFlag(types.ParseLoaderType, resolveString(cmd, opts.Loader, "loader", "loader"))
	if err != nil {
		return err
	}

	service := newAppService()
	gameVersion := strings.TrimSpace(resolveString(cmd, opts.GameVersion, "game_version", "game-version"))
	if gameVersion == "" {
		gameVersion, err = promptGameVersion(ctx, service, loader)
		if err != nil {
			return err
		}
	}

	progress := startProgress(fmt.Sprintf("installing %s loader for %s", loader.DisplayName(), gameVersion))
	result, err := service.Install(ctx, app.InstallRequest{
		Launcher:      launcher,
		Loader:        loader,
		GameVersion:   gameVersion,
		LoaderVersion: resolveString(cmd, opts.LoaderVersion, "loader_version", "loader-version"),
		Generation:    resolveInt(cmd, opts.Generation, "generation", "generation"),
		Dir:           resolveString(cmd, opts.Dir, "install_dir", "dir"),
		NoProfile:     resolveBool(cmd, opts.NoProfile, "no_profile", "no-profile"),
	})
	progress.Stop()
	if err != nil {
		return err
	}
	writeInstallResult(cmd.OutOrStdout(), loader, result)
	return nil
}

func writeInstallResult(out io.Writer, loader types.LoaderType, result app.InstallResult) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s %s loader %s for %s (intermediary gen%d)\n",
		green("installed"), loader.DisplayName(), result.LoaderVersion, result.GameVersion, result.Generation)
	for _, path := range result.Paths {
		fmt.Fprintf(out, "  wrote %s\n", path)
	}
	if result.ProfileKey != "" {
		fmt.Fprintf(out, "  launcher profile %s\n", result.ProfileKey)
	}
}

// promptGameVersion asks for the game version on interactive terminals.
func promptGameVersion(ctx context.Context, service app.Service, loader types.LoaderType) (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stderr.Fd()) {
		return "", shared.InvalidError("--game-version is required")
	}
	listing, err := service.List(ctx, app.ListRequest{Loader: loader})
	if err != nil {
		return "", err
	}
	if len(listing.Versions) == 0 {
		return "", shared.LookupError("no game versions are available")
	}
	options := make([]string, 0, len(listing.Versions))
	for _, version := range listing.Versions {
		options = append(options, version.ID)
	}
	var selected string
	prompt := &survey.Select{
		Message:  "Select a game version:",
		Options:  options,
		PageSize: 15,
	}
	for _, option := range options {
		if option == listing.LatestRelease {
			prompt.Default = option
		}
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", shared.InvalidError("no game version selected: " + err.Error())
	}
	return selected, nil
}

// startProgress shows a spinner on stderr when it is a terminal.
func startProgress(label string) *spinner.Spinner {
	writer := io.Discard
	if isatty.IsTerminal(os.Stderr.Fd()) {
		writer = os.Stderr
	}
	sp := spinner.New(spinner.CharSets[11], spinnerRefresh,
		spinner.WithWriter(writer), spinner.WithColor("fgCyan"))
	sp.Suffix = " " + label
	sp.Start()
	return sp
}
