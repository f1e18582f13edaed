package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ornithe-installer/internal/core"
	"ornithe-installer/internal/types"
)

// resolveInstallation loads the version catalog and settles the loader
// version and intermediary generation of a request.
func (s Service) resolveInstallation(ctx context.Context, gameVersion string, side types.GameSide, loader types.LoaderType, loaderVersion string, generation int) (core.Installation, error) {
	gameVersion = strings.TrimSpace(gameVersion)
	if gameVersion == "" {
		return core.Installation{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("game version is required")
	}
	if loader == "" {
		return core.Installation{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("loader type is required")
	}
	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return core.Installation{}, err
	}
	return s.installations().Resolve(ctx, core.InstallationRequest{
		Catalog:       catalog,
		GameVersion:   gameVersion,
		Side:          side,
		Loader:        loader,
		LoaderVersion: loaderVersion,
		Generation:    generation,
	})
}
