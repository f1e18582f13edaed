package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const (
	lwjglVersionVariable = "${lwjgl_version}"
	lwjglUIDVariable     = "${lwjgl_uid}"
	minecraftUID         = "net.minecraft"
)

type ProfileSynthesizer struct {
	metadata  ports.MetadataPort
	documents ports.DocumentPort
	endpoints MetaEndpoints
	policy    ports.ProfilePolicyPort
	baseURL   string
}

func NewProfileSynthesizer(metadata ports.MetadataPort, documents ports.DocumentPort, endpoints MetaEndpoints, policy ports.ProfilePolicyPort, baseURL string) *ProfileSynthesizer {
	return &ProfileSynthesizer{
		metadata:  metadata,
		documents: documents,
		endpoints: endpoints,
		policy:    policy,
		baseURL:   baseURL,
	}
}

type SynthesisRequest struct {
	Record        *VersionRecord
	Side          types.GameSide
	Loader        types.LoaderType
	LoaderVersion string
	Generation    int
	Format        types.ProfileFormat
}

// SynthesisResult holds the vanilla and loader profiles for the native
// format, or the bundle fragments for the bundle format.
type SynthesisResult struct {
	Format  types.ProfileFormat
	Vanilla *jsondoc.Value
	Loader  *jsondoc.Value
	Bundle  *BundleFragments
}

// BundleFragments is everything the packager needs from the metadata
// service and the vanilla profile.
type BundleFragments struct {
	GameID         string
	Game           *jsondoc.Value
	LWJGL          types.LWJGL
	LWJGLLibraries *jsondoc.Value
	Upgrades       []types.Library
	Intermediary   types.IntermediaryVersion
	Details        types.VersionDetails
}

func (r SynthesisRequest) validate() error {
	if r.Record == nil {
		return shared.InvalidError("game version is required")
	}
	if r.LoaderVersion == "" {
		return shared.InvalidError("loader version is required")
	}
	if r.Generation <= 0 {
		return shared.InvalidError("intermediary generation must be positive")
	}
	return nil
}

func (s *ProfileSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	if err := req.validate(); err != nil {
		return SynthesisResult{}, err
	}
	assert.NotEmpty(ctx, req.Record.ID, "game version id must be set")
	if req.Format == types.ProfileFormatBundle {
		fragments, err := s.BundleFragments(ctx, req)
		if err != nil {
			return SynthesisResult{}, err
		}
		return SynthesisResult{Format: types.ProfileFormatBundle, Bundle: &fragments}, nil
	}

	var vanilla, loader *jsondoc.Value
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		vanilla, err = s.VanillaProfile(groupCtx, req.Record)
		return err
	})
	group.Go(func() error {
		var err error
		loader, err = s.LoaderProfile(groupCtx, req)
		return err
	})
	if err := group.Wait(); err != nil {
		return SynthesisResult{}, err
	}
	if loader.Has("inheritsFrom") {
		vanillaID, _ := vanilla.Get("id")
		loader.Set("inheritsFrom", vanillaID.Clone())
	}
	log.Ctx(ctx).Debug().
		Str("version", req.Record.ID).
		Str("loader", string(req.Loader)).
		Str("loader_version", req.LoaderVersion).
		Msg("native profiles synthesized")
	return SynthesisResult{Format: types.ProfileFormatNative, Vanilla: vanilla, Loader: loader}, nil
}

// VanillaProfile fetches the game's source document and folds every
// manifest fragment into it in declared order. The fragments are fetched
// concurrently.
func (s *ProfileSynthesizer) VanillaProfile(ctx context.Context, record *VersionRecord) (*jsondoc.Value, error) {
	details, err := record.Details(ctx)
	if err != nil {
		return nil, err
	}
	document := "vanilla profile " + record.ID

	fragments := make([]*jsondoc.Value, len(details.Manifests))
	var source *jsondoc.Value
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		source, err = s.documents.FetchDocument(groupCtx, record.SourceURL)
		return err
	})
	for idx, url := range details.Manifests {
		group.Go(func() error {
			fragment, err := s.documents.FetchDocument(groupCtx, url)
			if err != nil {
				return err
			}
			fragments[idx] = fragment
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if !source.IsObject() {
		return nil, shared.MalformedError(document, "$", "object")
	}

	for idx, fragment := range fragments {
		if !fragment.IsObject() {
			return nil, shared.MalformedError(fmt.Sprintf("manifest fragment %s", details.Manifests[idx]), "$", "object")
		}
		MergeDocuments(source, fragment, func(conflict MergeConflict) {
			log.Ctx(ctx).Warn().
				Str("version", record.ID).
				Str("path", conflict.Path).
				Str("kept", conflict.Primary.String()).
				Str("dropped", conflict.Secondary.String()).
				Msg("manifest fragment value discarded")
		})
	}

	if _, err := requiredString(source, document, "id", "id"); err != nil {
		return nil, err
	}
	source.Set("id", jsondoc.String(record.ID+"-vanilla"))
	return source, nil
}

// LoaderProfile resolves the loader's launch profile and applies the
// library substitution and argument rules to a private copy.
func (s *ProfileSynthesizer) LoaderProfile(ctx context.Context, req SynthesisRequest) (*jsondoc.Value, error) {
	profile, _, err := s.resolveLoader(ctx, req, false)
	return profile, err
}

func (s *ProfileSynthesizer) resolveLoader(ctx context.Context, req SynthesisRequest, withIntermediary bool) (*jsondoc.Value, types.IntermediaryVersions, error) {
	gameID, err := req.Record.IDForSide(ctx, req.Side)
	if err != nil {
		return nil, nil, err
	}
	profileEndpoint := s.endpoints.LoaderProfile(req.Generation, req.Side, req.Loader, gameID, req.LoaderVersion)
	descriptors := []types.Descriptor{profileEndpoint}
	intermediaryEndpoint := s.endpoints.Intermediary(req.Generation)
	if withIntermediary {
		descriptors = append(descriptors, intermediaryEndpoint)
	}

	set, err := s.metadata.Resolve(ctx, s.baseURL, descriptors...)
	if err != nil {
		return nil, nil, err
	}
	cached, _ := types.Lookup(set, profileEndpoint)
	if cached == nil {
		return nil, nil, errMissingResult(profileEndpoint.Path())
	}
	profile := cached.Clone()
	if _, err := requiredString(profile, "loader profile", "id", "id"); err != nil {
		return nil, nil, err
	}

	rewritten := s.policy.RewriteLibraries(profile)
	injected := s.policy.InjectJVMArguments(profile, req.Loader, req.LoaderVersion)
	log.Ctx(ctx).Debug().
		Str("profile", profileEndpoint.Path()).
		Int("rewritten_libraries", rewritten).
		Int("injected_arguments", injected).
		Msg("loader profile rules applied")

	var intermediary types.IntermediaryVersions
	if withIntermediary {
		intermediary, _ = types.Lookup(set, intermediaryEndpoint)
	}
	return profile, intermediary, nil
}

// BundleFragments derives the reduced game document and collects the
// libraries the bundle ships as separate components.
func (s *ProfileSynthesizer) BundleFragments(ctx context.Context, req SynthesisRequest) (BundleFragments, error) {
	if err := req.validate(); err != nil {
		return BundleFragments{}, err
	}
	clientReq := req
	clientReq.Side = types.SideClient

	var vanilla, loader *jsondoc.Value
	var intermediaryVersions types.IntermediaryVersions
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		vanilla, err = s.VanillaProfile(groupCtx, req.Record)
		return err
	})
	group.Go(func() error {
		var err error
		loader, intermediaryVersions, err = s.resolveLoader(groupCtx, clientReq, true)
		return err
	})
	if err := group.Wait(); err != nil {
		return BundleFragments{}, err
	}

	details, err := req.Record.Details(ctx)
	if err != nil {
		return BundleFragments{}, err
	}
	intermediaryID := details.IDForSide(types.SideClient)
	intermediary, ok := intermediaryVersions.Find(intermediaryID)
	if !ok {
		return BundleFragments{}, shared.LookupError(fmt.Sprintf("game version %s has no intermediary in generation %d", intermediaryID, req.Generation))
	}
	lwjgl, err := FindLWJGL(vanilla, req.Record.ID)
	if err != nil {
		return BundleFragments{}, err
	}
	upgrades, err := UpgradeLibraries(loader)
	if err != nil {
		return BundleFragments{}, err
	}
	game, stripped, err := DeriveBundleGame(vanilla, req.Record.ID, s.policy)
	if err != nil {
		return BundleFragments{}, err
	}
	lwjglLibraries := stripped.Filter(func(item *jsondoc.Value) bool {
		name, _ := item.Get("name")
		value, _ := name.Str()
		return strings.HasPrefix(value, "org.lwjgl")
	})

	return BundleFragments{
		GameID:         req.Record.ID,
		Game:           game,
		LWJGL:          lwjgl,
		LWJGLLibraries: lwjglLibraries,
		Upgrades:       upgrades,
		Intermediary:   intermediary,
		Details:        details,
	}, nil
}

// DeriveBundleGame reduces a vanilla profile to the document shape of a
// bundle's game component. It returns the reduced document and the
// libraries that were stripped from it.
func DeriveBundleGame(vanilla *jsondoc.Value, gameID string, policy ports.ProfilePolicyPort) (*jsondoc.Value, *jsondoc.Value, error) {
	document := "vanilla profile " + gameID
	libraries, ok := vanilla.Get("libraries")
	if !ok || !libraries.IsArray() {
		return nil, nil, shared.MalformedError(document, "libraries", "array")
	}
	kept := jsondoc.Array()
	stripped := jsondoc.Array()
	for _, library := range libraries.Items() {
		name := ""
		if raw, ok := library.Get("name"); ok {
			name, _ = raw.Str()
		}
		if name != "" && policy.ExcludedFromBundle(name) {
			stripped.Append(library.Clone())
			continue
		}
		kept.Append(library.Clone())
	}

	client, ok := vanilla.Lookup("downloads", "client")
	if !ok || !client.IsObject() {
		return nil, nil, shared.MalformedError(document, "downloads.client", "object")
	}
	mainClass, err := requiredString(vanilla, document, "mainClass", "mainClass")
	if err != nil {
		return nil, nil, err
	}
	mainJar := jsondoc.Object().
		Set("downloads", jsondoc.Object().Set("artifact", client.Clone())).
		Set("name", jsondoc.String(fmt.Sprintf("com.mojang:minecraft:%s:client", gameID)))

	game := jsondoc.Object().Set("formatVersion", jsondoc.Int(1))
	copyKey(game, vanilla, "assetIndex")
	game.Set("compatibleJavaMajors", jsondoc.Array(jsondoc.Int(8)))
	game.Set("libraries", kept)
	game.Set("mainClass", jsondoc.String(mainClass))
	game.Set("mainJar", mainJar)
	if arguments, ok := legacyArguments(vanilla); ok {
		game.Set("minecraftArguments", jsondoc.String(arguments))
	}
	game.Set("name", jsondoc.String("Minecraft"))
	copyKey(game, vanilla, "releaseTime")
	game.Set("requires", jsondoc.Array(jsondoc.Object().
		Set("suggests", jsondoc.String(lwjglVersionVariable)).
		Set("uid", jsondoc.String(lwjglUIDVariable))))
	copyKey(game, vanilla, "type")
	game.Set("uid", jsondoc.String(minecraftUID))
	game.Set("version", jsondoc.String(gameID))
	if strings.Contains(mainClass, "launchwrapper") {
		game.Set("+traits", jsondoc.Strings("texturepacks"))
	}
	return game, stripped, nil
}

// legacyArguments returns minecraftArguments when the document carries it,
// otherwise the string game arguments joined by spaces.
func legacyArguments(vanilla *jsondoc.Value) (string, bool) {
	if raw, ok := vanilla.Get("minecraftArguments"); ok {
		if value, ok := raw.Str(); ok {
			return value, true
		}
	}
	game, ok := vanilla.Lookup("arguments", "game")
	if !ok || !game.IsArray() {
		return "", false
	}
	var parts []string
	for _, item := range game.Items() {
		if value, ok := item.Str(); ok {
			parts = append(parts, value)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), true
}

func copyKey(dst *jsondoc.Value, src *jsondoc.Value, key string) {
	if value, ok := src.Get(key); ok {
		dst.Set(key, value.Clone())
	}
}

func errMissingResult(path string) error {
	return shared.LookupError(fmt.Sprintf("metadata result for %s is missing", path))
}
