package app

import (
	"context"
	"path"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ornithe-installer/internal/core"
	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/types"
)

// Synthesize builds the documents an install would write without touching
// the filesystem. Native profiles are keyed by their path below the install
// directory; bundle entries by their path inside the archive.
func (s Service) Synthesize(ctx context.Context, req SynthesizeRequest) (SynthesizeResult, error) {
	format := req.Format
	if format == "" {
		format = types.ProfileFormatNative
	}
	side := req.Side
	if format == types.ProfileFormatBundle && side == types.SideServer {
		return SynthesizeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundles are only available for the client side")
	}

	installation, err := s.resolveInstallation(ctx, req.GameVersion, side, req.Loader, req.LoaderVersion, req.Generation)
	if err != nil {
		return SynthesizeResult{}, err
	}
	policy, err := s.loadPolicy()
	if err != nil {
		return SynthesizeResult{}, err
	}
	synthesis, err := s.synthesizer(policy).Synthesize(ctx, installation.SynthesisRequest(format))
	if err != nil {
		return SynthesizeResult{}, err
	}

	document := jsondoc.Object()
	if format == types.ProfileFormatBundle {
		files, err := core.NewPackComposer(s.Icon).Compose(ctx, s.packRequest(installation, synthesis))
		if err != nil {
			return SynthesizeResult{}, err
		}
		for _, file := range files {
			entry, ok, err := bundleEntry(file)
			if err != nil {
				return SynthesizeResult{}, err
			}
			if ok {
				document.Set(file.Path, entry)
			}
		}
	} else {
		for _, profile := range []*jsondoc.Value{synthesis.Vanilla, synthesis.Loader} {
			raw, _ := profile.Get("id")
			id, _ := raw.Str()
			document.Set(path.Join("versions", id, id+".json"), profile)
		}
	}
	return SynthesizeResult{
		LoaderVersion: installation.LoaderVersion,
		Generation:    installation.Generation,
		Document:      document,
	}, nil
}

// bundleEntry renders an archive entry as a document value. Binary entries
// are skipped.
func bundleEntry(file types.BundleFile) (*jsondoc.Value, bool, error) {
	switch {
	case strings.HasSuffix(file.Path, ".json"):
		doc, err := jsondoc.Parse(file.Data)
		if err != nil {
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("bundle entry " + file.Path + " is not valid json").
				WithCause(err)
		}
		return doc, true, nil
	case strings.HasSuffix(file.Path, ".cfg"):
		return jsondoc.String(string(file.Data)), true, nil
	default:
		return nil, false, nil
	}
}
