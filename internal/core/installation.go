package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// InstallationResolver settles the open choices of an install request
// against the metadata service: which intermediary generation, which
// loader version, and whether the game version is supported at all.
type InstallationResolver struct {
	metadata  ports.MetadataPort
	endpoints MetaEndpoints
	baseURL   string
}

func NewInstallationResolver(metadata ports.MetadataPort, endpoints MetaEndpoints, baseURL string) InstallationResolver {
	return InstallationResolver{metadata: metadata, endpoints: endpoints, baseURL: baseURL}
}

type InstallationRequest struct {
	Catalog     *VersionCatalog
	GameVersion string
	Side        types.GameSide
	Loader      types.LoaderType
	// LoaderVersion is optional; the latest stable version is used when empty.
	LoaderVersion string
	// Generation 0 selects the service's stable generation.
	Generation int
}

// Installation is a fully resolved install request.
type Installation struct {
	Record        *VersionRecord
	Side          types.GameSide
	Loader        types.LoaderType
	LoaderVersion string
	Generation    int
	Intermediary  types.IntermediaryVersion
}

// SynthesisRequest converts the installation into a synthesis request for
// format.
func (i Installation) SynthesisRequest(format types.ProfileFormat) SynthesisRequest {
	return SynthesisRequest{
		Record:        i.Record,
		Side:          i.Side,
		Loader:        i.Loader,
		LoaderVersion: i.LoaderVersion,
		Generation:    i.Generation,
		Format:        format,
	}
}

func (r InstallationResolver) Resolve(ctx context.Context, req InstallationRequest) (Installation, error) {
	gameVersion := strings.TrimSpace(req.GameVersion)
	if gameVersion == "" {
		return Installation{}, shared.InvalidError("game version is required")
	}
	if req.Generation < 0 {
		return Installation{}, shared.InvalidError("intermediary generation must not be negative")
	}
	record, ok := req.Catalog.Lookup(gameVersion)
	if !ok {
		return Installation{}, shared.LookupError(fmt.Sprintf("unknown game version %s", gameVersion))
	}
	side := req.Side
	if side == "" {
		side = types.SideClient
	}

	generation := req.Generation
	if generation == 0 {
		stable, err := r.StableGeneration(ctx)
		if err != nil {
			return Installation{}, err
		}
		generation = stable
	}

	loaderEndpoint := r.endpoints.LoaderVersions(req.Loader)
	intermediaryEndpoint := r.endpoints.Intermediary(generation)
	var set types.MetadataSet
	var intermediaryID string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		set, err = r.metadata.Resolve(groupCtx, r.baseURL, loaderEndpoint, intermediaryEndpoint)
		return err
	})
	group.Go(func() error {
		var err error
		intermediaryID, err = record.IDForSide(groupCtx, side)
		return err
	})
	if err := group.Wait(); err != nil {
		return Installation{}, err
	}

	intermediaryVersions, _ := types.Lookup(set, intermediaryEndpoint)
	intermediary, ok := intermediaryVersions.Find(intermediaryID)
	if !ok {
		return Installation{}, shared.LookupError(fmt.Sprintf("game version %s is not supported by intermediary generation %d", intermediaryID, generation))
	}
	loaderVersions, ok := types.Lookup(set, loaderEndpoint)
	if !ok {
		return Installation{}, errMissingResult(loaderEndpoint.Path())
	}
	loaderVersion, err := SelectLoaderVersion(loaderVersions, strings.TrimSpace(req.LoaderVersion))
	if err != nil {
		return Installation{}, err
	}

	log.Ctx(ctx).Debug().
		Str("version", record.ID).
		Str("loader", string(req.Loader)).
		Str("loader_version", loaderVersion).
		Int("generation", generation).
		Msg("installation resolved")
	return Installation{
		Record:        record,
		Side:          side,
		Loader:        req.Loader,
		LoaderVersion: loaderVersion,
		Generation:    generation,
		Intermediary:  intermediary,
	}, nil
}

// StableGeneration asks the service for its stable intermediary generation.
func (r InstallationResolver) StableGeneration(ctx context.Context) (int, error) {
	endpoint := r.endpoints.IntermediaryGenerations()
	set, err := r.metadata.Resolve(ctx, r.baseURL, endpoint)
	if err != nil {
		return 0, err
	}
	generations, ok := types.Lookup(set, endpoint)
	if !ok {
		return 0, errMissingResult(endpoint.Path())
	}
	if generations.Stable <= 0 {
		return 0, shared.MalformedError("intermediary generations", "stable", "positive integer")
	}
	return generations.Stable, nil
}

// LoaderVersions lists the service's versions of loader in service order.
func (r InstallationResolver) LoaderVersions(ctx context.Context, loader types.LoaderType) ([]types.LoaderVersion, error) {
	endpoint := r.endpoints.LoaderVersions(loader)
	set, err := r.metadata.Resolve(ctx, r.baseURL, endpoint)
	if err != nil {
		return nil, err
	}
	versions, ok := types.Lookup(set, endpoint)
	if !ok {
		return nil, errMissingResult(endpoint.Path())
	}
	return versions, nil
}
