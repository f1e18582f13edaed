package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"ornithe-installer/internal/core"
	"ornithe-installer/internal/types"
)

func (s Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	loader := req.Loader
	if loader == "" {
		loader = types.LoaderFabric
	}

	var catalog *core.VersionCatalog
	var loaderVersions []types.LoaderVersion
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		catalog, err = s.loadCatalog(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		loaderVersions, err = s.installations().LoaderVersions(groupCtx, loader)
		return err
	})
	if err := group.Wait(); err != nil {
		return ListResult{}, err
	}

	result := ListResult{}
	if latest := catalog.LatestRelease(); latest != nil {
		result.LatestRelease = latest.ID
	}
	if latest := catalog.LatestSnapshot(); latest != nil {
		result.LatestSnapshot = latest.ID
	}
	result.LatestStableLoader, _ = core.LatestLoader(loaderVersions, true)
	result.LatestBetaLoader, _ = core.LatestLoader(loaderVersions, false)

	include := kindFilter(req)
	for _, record := range catalog.Versions() {
		if !include(record.Kind) {
			continue
		}
		result.Versions = append(result.Versions, VersionSummary{
			ID:          record.ID,
			Kind:        record.Kind,
			ReleaseTime: record.ReleaseTime,
		})
	}
	return result, nil
}

// kindFilter lists releases by default. Snapshots and legacy versions are
// opt-in; an explicit kind list overrides the switches.
func kindFilter(req ListRequest) func(types.VersionKind) bool {
	if req.All {
		return func(types.VersionKind) bool { return true }
	}
	if len(req.Kinds) > 0 {
		allowed := make(map[types.VersionKind]bool, len(req.Kinds))
		for _, kind := range req.Kinds {
			allowed[kind] = true
		}
		return func(kind types.VersionKind) bool { return allowed[kind] }
	}
	return func(kind types.VersionKind) bool {
		switch {
		case kind == types.VersionKindRelease:
			return true
		case kind == types.VersionKindSnapshot:
			return req.Snapshots
		default:
			return req.Legacy && kind.IsLegacy()
		}
	}
}
