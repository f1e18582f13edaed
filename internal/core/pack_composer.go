package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const (
	packDescriptorPath = "mmc-pack.json"
	instanceConfigPath = "instance.cfg"
	instanceIconPath   = "ornithe.png"
	intermediaryUID    = "net.fabricmc.intermediary"
	patchesDir         = "patches/"
)

// PackRequest describes one instance bundle.
type PackRequest struct {
	Loader        types.LoaderType
	LoaderVersion string
	Generation    int
	Fragments     BundleFragments
	// GOOS selects host specific instance settings. Empty means the
	// running host.
	GOOS string
}

type PackComposer struct {
	icon []byte
}

func NewPackComposer(icon []byte) PackComposer {
	return PackComposer{icon: icon}
}

// ArchiveName is the file name of the bundle for a game version.
func ArchiveName(generation int, loader types.LoaderType, gameID string) string {
	return fmt.Sprintf("Ornithe-Gen%d-%s-%s.zip", generation, loader.DisplayName(), gameID)
}

// Compose lays out the bundle entries in archive order: the component
// list, the instance settings, the icon and then one patch per injected
// component.
func (c PackComposer) Compose(ctx context.Context, req PackRequest) ([]types.BundleFile, error) {
	fragments := req.Fragments
	if fragments.Game == nil || fragments.GameID == "" {
		return nil, shared.InvalidError("bundle requires a synthesized game document")
	}
	if fragments.LWJGL.Version == "" {
		return nil, shared.LookupError(fmt.Sprintf("no lwjgl version known for game version %s", fragments.GameID))
	}
	intermediaryVersion := fragments.Details.IDForSide(types.SideClient)
	if fragments.Details.Version == "" {
		intermediaryVersion = fragments.GameID
	}

	components := []types.PackComponent{
		{UID: fragments.LWJGL.UID(), CachedName: lwjglName(fragments.LWJGL), Version: fragments.LWJGL.Version, DependsOnly: true},
		{UID: minecraftUID, CachedName: "Minecraft", Version: fragments.GameID, Important: true},
		{UID: intermediaryUID, CachedName: "Intermediary Mappings", Version: intermediaryVersion},
	}
	var upgradePatches []types.BundleFile
	for _, library := range fragments.Upgrades {
		component, patch, err := upgradePatch(library)
		if err != nil {
			return nil, err
		}
		components = append(components, component)
		upgradePatches = append(upgradePatches, patch)
	}
	components = append(components, types.PackComponent{
		UID:        req.Loader.MavenUID(),
		CachedName: req.Loader.DisplayName() + " Loader",
		Version:    req.LoaderVersion,
	})

	descriptor, err := marshalDocument(packDescriptor(components))
	if err != nil {
		return nil, err
	}
	files := []types.BundleFile{
		{Path: packDescriptorPath, Data: descriptor},
		{Path: instanceConfigPath, Data: []byte(instanceConfig(req))},
		{Path: instanceIconPath, Data: c.icon},
	}

	intermediary, err := marshalDocument(intermediaryPatch(fragments, intermediaryVersion))
	if err != nil {
		return nil, err
	}
	files = append(files, types.BundleFile{Path: patchPath(intermediaryUID), Data: intermediary})

	if fragments.LWJGL.IsCustom() {
		lwjgl, err := marshalDocument(lwjglPatch(fragments))
		if err != nil {
			return nil, err
		}
		files = append(files, types.BundleFile{Path: patchPath(fragments.LWJGL.UID()), Data: lwjgl})
	}

	game, err := marshalDocument(fragments.Game)
	if err != nil {
		return nil, err
	}
	resolved := strings.NewReplacer(
		lwjglVersionVariable, fragments.LWJGL.Version,
		lwjglUIDVariable, fragments.LWJGL.UID(),
	).Replace(string(game))
	files = append(files, types.BundleFile{Path: patchPath(minecraftUID), Data: []byte(resolved)})
	files = append(files, upgradePatches...)

	log.Ctx(ctx).Debug().
		Str("version", fragments.GameID).
		Int("components", len(components)).
		Int("entries", len(files)).
		Bool("custom_lwjgl", fragments.LWJGL.IsCustom()).
		Msg("bundle composed")
	return files, nil
}

// BundlePackager composes a bundle and hands it to a bundle writer.
type BundlePackager struct {
	composer PackComposer
	writer   ports.BundleWriterPort
}

func NewBundlePackager(composer PackComposer, writer ports.BundleWriterPort) BundlePackager {
	return BundlePackager{composer: composer, writer: writer}
}

// Package writes the bundle archive into dir and returns its path.
func (p BundlePackager) Package(ctx context.Context, dir string, req PackRequest) (string, error) {
	files, err := p.composer.Compose(ctx, req)
	if err != nil {
		return "", err
	}
	name := ArchiveName(req.Generation, req.Loader, req.Fragments.GameID)
	return p.writer.WriteBundle(ctx, dir, name, files)
}

func packDescriptor(components []types.PackComponent) *jsondoc.Value {
	list := jsondoc.Array()
	for _, component := range components {
		entry := jsondoc.Object().Set("cachedName", jsondoc.String(component.CachedName))
		entry.Set("cachedVersion", jsondoc.String(component.Version))
		if component.DependsOnly {
			entry.Set("cachedVolatile", jsondoc.Bool(true))
			entry.Set("dependencyOnly", jsondoc.Bool(true))
		}
		if component.Important {
			entry.Set("important", jsondoc.Bool(true))
		}
		entry.Set("uid", jsondoc.String(component.UID))
		entry.Set("version", jsondoc.String(component.Version))
		list.Append(entry)
	}
	return jsondoc.Object().
		Set("components", list).
		Set("formatVersion", jsondoc.Int(1))
}

func instanceConfig(req PackRequest) string {
	lines := []string{
		"InstanceType=OneSix",
		fmt.Sprintf("name=Ornithe %s %s", req.Loader.DisplayName(), req.Fragments.GameID),
		"iconKey=ornithe",
	}
	if shared.IsLinuxLike(req.GOOS) {
		lines = append(lines,
			"OverrideCommands=true",
			`WrapperCommand="env __GL_THREADED_OPTIMIZATIONS=0"`,
		)
	}
	return strings.Join(lines, "\n") + "\n"
}

func intermediaryPatch(fragments BundleFragments, version string) *jsondoc.Value {
	patch := jsondoc.Object().
		Set("formatVersion", jsondoc.Int(1)).
		Set("name", jsondoc.String("Intermediary Mappings")).
		Set("uid", jsondoc.String(intermediaryUID)).
		Set("version", jsondoc.String(version))
	if NeedsNoApplet(fragments.Details.NormalizedVersion) {
		patch.Set("+traits", jsondoc.Strings("noapplet"))
	}
	library := jsondoc.Object().
		Set("name", jsondoc.String(fragments.Intermediary.Maven)).
		Set("url", jsondoc.String(types.OrnitheMavenHost))
	return patch.
		Set("libraries", jsondoc.Array(library)).
		Set("requires", jsondoc.Array(jsondoc.Object().
			Set("equals", jsondoc.String(fragments.GameID)).
			Set("uid", jsondoc.String(minecraftUID)))).
		Set("type", jsondoc.String("release"))
}

func lwjglPatch(fragments BundleFragments) *jsondoc.Value {
	libraries := fragments.LWJGLLibraries
	if libraries == nil {
		libraries = jsondoc.Array()
	}
	return jsondoc.Object().
		Set("formatVersion", jsondoc.Int(1)).
		Set("name", jsondoc.String(lwjglName(fragments.LWJGL))).
		Set("uid", jsondoc.String(fragments.LWJGL.UID())).
		Set("version", jsondoc.String(fragments.LWJGL.Version)).
		Set("libraries", libraries.Clone()).
		Set("type", jsondoc.String("release")).
		Set("volatile", jsondoc.Bool(true))
}

// upgradePatch splits an upgrade library coordinate into a component and
// its standalone patch document.
func upgradePatch(library types.Library) (types.PackComponent, types.BundleFile, error) {
	parts, ok := shared.SplitMaven(library.Name)
	if !ok {
		return types.PackComponent{}, types.BundleFile{}, shared.MalformedError("loader profile", "libraries.name", "maven coordinate")
	}
	group, artifact, version := parts[0], parts[1], parts[2]
	uid := group + "." + artifact
	component := types.PackComponent{UID: uid, CachedName: artifact, Version: version}

	patch := jsondoc.Object().
		Set("formatVersion", jsondoc.Int(1)).
		Set("name", jsondoc.String(artifact)).
		Set("uid", jsondoc.String(uid)).
		Set("version", jsondoc.String(version)).
		Set("libraries", jsondoc.Array(jsondoc.Object().
			Set("name", jsondoc.String(library.Name)).
			Set("url", jsondoc.String(library.URL)))).
		Set("type", jsondoc.String("release"))
	data, err := marshalDocument(patch)
	if err != nil {
		return types.PackComponent{}, types.BundleFile{}, err
	}
	return component, types.BundleFile{Path: patchPath(uid), Data: data}, nil
}

func lwjglName(lwjgl types.LWJGL) string {
	return "LWJGL " + lwjgl.MajorVersion()
}

func patchPath(uid string) string {
	return patchesDir + uid + ".json"
}

func marshalDocument(doc *jsondoc.Value) ([]byte, error) {
	data, err := jsondoc.MarshalIndent(doc, "  ")
	if err != nil {
		return nil, shared.MalformedErrorWithCause("bundle document", err)
	}
	return data, nil
}
