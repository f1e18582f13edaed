package core

import (
	"fmt"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// MetaEndpoints builds the metadata service endpoints through a shared
// registry so that repeated requests reuse one descriptor per path.
type MetaEndpoints struct {
	registry *types.EndpointRegistry
}

func NewMetaEndpoints(registry *types.EndpointRegistry) MetaEndpoints {
	if registry == nil {
		registry = types.NewEndpointRegistry()
	}
	return MetaEndpoints{registry: registry}
}

func (m MetaEndpoints) Registry() *types.EndpointRegistry {
	return m.registry
}

func (m MetaEndpoints) IntermediaryGenerations() *types.Endpoint[types.IntermediaryGenerations] {
	return types.Register(m.registry, "/v3/versions/intermediary_generations", decodeGenerations)
}

func (m MetaEndpoints) LoaderVersions(loader types.LoaderType) *types.Endpoint[[]types.LoaderVersion] {
	return types.Register(m.registry, "/v3/versions/"+loader.MetaName(), decodeLoaderVersions)
}

func (m MetaEndpoints) Intermediary(generation int) *types.Endpoint[types.IntermediaryVersions] {
	return types.Register(m.registry, fmt.Sprintf("/v3/versions/gen%d/intermediary", generation), decodeIntermediary)
}

// LoaderProfile is the launch profile of a loader for one game version.
// The decoded document is shared by every caller and must be cloned before
// it is modified.
func (m MetaEndpoints) LoaderProfile(generation int, side types.GameSide, loader types.LoaderType, gameID string, loaderVersion string) *types.Endpoint[*jsondoc.Value] {
	return types.Register(m.registry, profilePath(generation, side, loader, gameID, loaderVersion), decodeProfile)
}

func profilePath(generation int, side types.GameSide, loader types.LoaderType, gameID string, loaderVersion string) string {
	suffix := "profile/json"
	if side == types.SideServer {
		suffix = "server/json"
	}
	return fmt.Sprintf("/v3/versions/gen%d/%s/%s/%s/%s", generation, loader.MetaName(), gameID, loaderVersion, suffix)
}

func decodeGenerations(data []byte) (types.IntermediaryGenerations, error) {
	const document = "intermediary generations"
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return types.IntermediaryGenerations{}, shared.MalformedErrorWithCause(document, err)
	}
	if !doc.IsObject() {
		return types.IntermediaryGenerations{}, shared.MalformedError(document, "$", "object")
	}
	latest, err := requiredInt(doc, document, "latest")
	if err != nil {
		return types.IntermediaryGenerations{}, err
	}
	stable, err := requiredInt(doc, document, "stable")
	if err != nil {
		return types.IntermediaryGenerations{}, err
	}
	return types.IntermediaryGenerations{Latest: int(latest), Stable: int(stable)}, nil
}

func decodeLoaderVersions(data []byte) ([]types.LoaderVersion, error) {
	const document = "loader versions"
	entries, err := parseObjectArray(data, document)
	if err != nil {
		return nil, err
	}
	versions := make([]types.LoaderVersion, 0, len(entries))
	for idx, entry := range entries {
		version, err := requiredString(entry, document, fmt.Sprintf("[%d].version", idx), "version")
		if err != nil {
			return nil, err
		}
		loaderVersion := types.LoaderVersion{Version: version}
		if stable, ok := entry.Get("stable"); ok {
			flag, ok := stable.BoolValue()
			if !ok {
				return nil, shared.MalformedError(document, fmt.Sprintf("[%d].stable", idx), "boolean")
			}
			loaderVersion.Stable = flag
			loaderVersion.HasStable = true
		}
		versions = append(versions, loaderVersion)
	}
	return versions, nil
}

func decodeIntermediary(data []byte) (types.IntermediaryVersions, error) {
	const document = "intermediary versions"
	entries, err := parseObjectArray(data, document)
	if err != nil {
		return nil, err
	}
	versions := make(types.IntermediaryVersions, 0, len(entries))
	for idx, entry := range entries {
		version, err := requiredString(entry, document, fmt.Sprintf("[%d].version", idx), "version")
		if err != nil {
			return nil, err
		}
		maven, err := requiredString(entry, document, fmt.Sprintf("[%d].maven", idx), "maven")
		if err != nil {
			return nil, err
		}
		stable := false
		if raw, ok := entry.Get("stable"); ok {
			stable, _ = raw.BoolValue()
		}
		versions = append(versions, types.IntermediaryVersion{Version: version, Maven: maven, Stable: stable})
	}
	return versions, nil
}

func decodeProfile(data []byte) (*jsondoc.Value, error) {
	const document = "loader profile"
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, shared.MalformedErrorWithCause(document, err)
	}
	if !doc.IsObject() {
		return nil, shared.MalformedError(document, "$", "object")
	}
	return doc, nil
}

// UpgradeLibraries returns the libraries of a client loader profile that
// are hosted on the default library host. Bundles ship them as separate
// components.
func UpgradeLibraries(profile *jsondoc.Value) ([]types.Library, error) {
	libraries, err := ReadLibraries(profile, "loader profile")
	if err != nil {
		return nil, err
	}
	var upgrades []types.Library
	for _, library := range libraries {
		if library.URL == types.DefaultLibraryHost {
			upgrades = append(upgrades, library)
		}
	}
	return upgrades, nil
}

// ReadLibraries reads the name and url of every entry of doc's libraries
// array. Entries without a url get an empty one.
func ReadLibraries(doc *jsondoc.Value, document string) ([]types.Library, error) {
	raw, ok := doc.Get("libraries")
	if !ok {
		return nil, shared.MalformedError(document, "libraries", "array")
	}
	if !raw.IsArray() {
		return nil, shared.MalformedError(document, "libraries", "array")
	}
	libraries := make([]types.Library, 0, raw.Len())
	for idx, entry := range raw.Items() {
		if !entry.IsObject() {
			return nil, shared.MalformedError(document, fmt.Sprintf("libraries[%d]", idx), "object")
		}
		name, err := requiredString(entry, document, fmt.Sprintf("libraries[%d].name", idx), "name")
		if err != nil {
			return nil, err
		}
		library := types.Library{Name: name}
		if url, ok := entry.Get("url"); ok {
			library.URL, _ = url.Str()
		}
		libraries = append(libraries, library)
	}
	return libraries, nil
}

func parseObjectArray(data []byte, document string) ([]*jsondoc.Value, error) {
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, shared.MalformedErrorWithCause(document, err)
	}
	if !doc.IsArray() {
		return nil, shared.MalformedError(document, "$", "array")
	}
	for idx, entry := range doc.Items() {
		if !entry.IsObject() {
			return nil, shared.MalformedError(document, fmt.Sprintf("[%d]", idx), "object")
		}
	}
	return doc.Items(), nil
}

// requiredString reads key from obj; path names the key in error reports.
func requiredString(obj *jsondoc.Value, document string, path string, key string) (string, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return "", shared.MalformedError(document, path, "string")
	}
	value, ok := raw.Str()
	if !ok {
		return "", shared.MalformedError(document, path, "string")
	}
	return value, nil
}

func requiredInt(obj *jsondoc.Value, document string, key string) (int64, error) {
	raw, ok := obj.Get(key)
	if !ok {
		return 0, shared.MalformedError(document, key, "integer")
	}
	value, ok := raw.IntValue()
	if !ok {
		return 0, shared.MalformedError(document, key, "integer")
	}
	return value, nil
}
