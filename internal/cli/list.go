package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ornithe-installer/internal/app"
	"ornithe-installer/internal/types"
)

type listOptions struct {
	Loader    string
	Snapshots bool
	Betas     bool
	All       bool
	Kinds     []string
}

func newListCommand() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List game versions and the latest loader versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Loader, "loader", "fabric", "Loader type (fabric or quilt)")
	cmd.Flags().BoolVar(&opts.Snapshots, "snapshots", false, "Include snapshots")
	cmd.Flags().BoolVar(&opts.Betas, "betas", false, "Include beta and alpha versions")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Include every version kind")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "Only list these version kinds")

	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, opts listOptions) error {
	loader, err := parseFlag(types.ParseLoaderType, resolveString(cmd, opts.Loader, "loader", "loader"))
	if err != nil {
		return err
	}
	var kinds []types.VersionKind
	for _, kind := range resolveStrings(cmd, opts.Kinds, "list_kinds", "kind") {
		kinds = append(kinds, types.VersionKind(kind))
	}

	service := newAppService()
	result, err := service.List(ctx, app.ListRequest{
		Loader:    loader,
		Kinds:     kinds,
		Snapshots: resolveBool(cmd, opts.Snapshots, "list_snapshots", "snapshots"),
		Legacy:    resolveBool(cmd, opts.Betas, "list_betas", "betas"),
		All:       resolveBool(cmd, opts.All, "list_all", "all"),
	})
	if err != nil {
		return err
	}
	writeListing(cmd.OutOrStdout(), loader, result)
	return nil
}

func writeListing(out io.Writer, loader types.LoaderType, result app.ListResult) {
	value := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "latest release:  %s\n", value(orNone(result.LatestRelease)))
	fmt.Fprintf(out, "latest snapshot: %s\n", value(orNone(result.LatestSnapshot)))
	fmt.Fprintf(out, "latest %s loader: %s (beta: %s)\n\n",
		loader.DisplayName(), value(orNone(result.LatestStableLoader)), value(orNone(result.LatestBetaLoader)))

	table := tablewriter.NewWriter(out)
	table.SetBorder(false)
	table.SetHeader([]string{
		"Version",
		"Type",
		"Released",
	})
	for _, version := range result.Versions {
		released := ""
		if !version.ReleaseTime.IsZero() {
			released = version.ReleaseTime.Format("2006-01-02")
		}
		table.Append([]string{
			version.ID,
			string(version.Kind),
			released,
		})
	}
	table.Render()
}

func orNone(value string) string {
	if value == "" {
		return "none"
	}
	return value
}
