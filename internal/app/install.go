package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"ornithe-installer/internal/adapters"
	"ornithe-installer/internal/core"
	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

func (s Service) Install(ctx context.Context, req InstallRequest) (InstallResult, error) {
	dir := strings.TrimSpace(req.Dir)
	switch req.Launcher {
	case types.LauncherOfficial:
		if dir == "" {
			return InstallResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("install directory is required for the official launcher")
		}
	case types.LauncherMultiMC:
		if dir == "" {
			dir = "."
		}
	default:
		return InstallResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("launcher type is required")
	}

	installation, err := s.resolveInstallation(ctx, req.GameVersion, types.SideClient, req.Loader, req.LoaderVersion, req.Generation)
	if err != nil {
		return InstallResult{}, err
	}
	policy, err := s.loadPolicy()
	if err != nil {
		return InstallResult{}, err
	}
	synthesizer := s.synthesizer(policy)

	result := InstallResult{
		Launcher:      req.Launcher,
		GameVersion:   installation.Record.ID,
		LoaderVersion: installation.LoaderVersion,
		Generation:    installation.Generation,
	}
	if req.Launcher == types.LauncherMultiMC {
		path, err := s.installBundle(ctx, synthesizer, installation, dir)
		if err != nil {
			return InstallResult{}, err
		}
		result.Paths = []string{path}
	} else {
		paths, key, err := s.installNative(ctx, synthesizer, installation, dir, !req.NoProfile)
		if err != nil {
			return InstallResult{}, err
		}
		result.Paths = paths
		result.ProfileKey = key
	}

	emitHints(installHints(req, result))
	log.Ctx(ctx).Debug().
		Str("launcher", string(req.Launcher)).
		Strs("paths", result.Paths).
		Msg("installation written")
	return result, nil
}

func (s Service) installNative(ctx context.Context, synthesizer *core.ProfileSynthesizer, installation core.Installation, dir string, withProfile bool) ([]string, string, error) {
	synthesis, err := synthesizer.Synthesize(ctx, installation.SynthesisRequest(types.ProfileFormatNative))
	if err != nil {
		return nil, "", err
	}
	writer := adapters.NewProfileWriterAdapter(dir, s.fs())
	writer.Now = s.now

	var paths []string
	var loaderID string
	for _, profile := range []*jsondoc.Value{synthesis.Vanilla, synthesis.Loader} {
		raw, _ := profile.Get("id")
		id, _ := raw.Str()
		path, err := writer.WriteVersionProfile(id, profile)
		if err != nil {
			return nil, "", err
		}
		paths = append(paths, path)
		loaderID = id
	}
	if !withProfile {
		return paths, "", nil
	}

	key := launcherProfileKey(installation)
	err = writer.WriteLauncherProfile(types.LauncherProfile{
		Key:     key,
		Name:    fmt.Sprintf("Ornithe %s %s", installation.Loader.DisplayName(), installation.Record.ID),
		Version: loaderID,
		Icon:    iconDataURL(s.Icon),
	})
	if err != nil {
		return nil, "", err
	}
	return paths, key, nil
}

func (s Service) installBundle(ctx context.Context, synthesizer *core.ProfileSynthesizer, installation core.Installation, dir string) (string, error) {
	synthesis, err := synthesizer.Synthesize(ctx, installation.SynthesisRequest(types.ProfileFormatBundle))
	if err != nil {
		return "", err
	}
	packager := core.NewBundlePackager(core.NewPackComposer(s.Icon), adapters.NewBundleArchiveAdapter(s.fs()))
	return packager.Package(ctx, dir, s.packRequest(installation, synthesis))
}

func (s Service) packRequest(installation core.Installation, synthesis core.SynthesisResult) core.PackRequest {
	return core.PackRequest{
		Loader:        installation.Loader,
		LoaderVersion: installation.LoaderVersion,
		Generation:    installation.Generation,
		Fragments:     *synthesis.Bundle,
		GOOS:          s.GOOS,
	}
}

func launcherProfileKey(installation core.Installation) string {
	return fmt.Sprintf("ornithe-%s-%s", installation.Loader, installation.Record.ID)
}

// iconDataURL embeds the icon the way the launcher stores custom icons.
func iconDataURL(icon []byte) string {
	if len(icon) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(icon)
}
