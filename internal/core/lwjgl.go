package core

import (
	"fmt"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// FindLWJGL scans the libraries of a vanilla profile for the lwjgl artifact.
// The download location is read from the flat url field, or from
// downloads.artifact.url for newer documents.
func FindLWJGL(vanilla *jsondoc.Value, gameVersion string) (types.LWJGL, error) {
	raw, ok := vanilla.Get("libraries")
	if !ok || !raw.IsArray() {
		return types.LWJGL{}, shared.MalformedError("vanilla profile "+gameVersion, "libraries", "array")
	}
	for _, entry := range raw.Items() {
		nameValue, ok := entry.Get("name")
		if !ok {
			continue
		}
		name, _ := nameValue.Str()
		_, artifact, version, _, ok := types.Library{Name: name}.Coordinate()
		if !ok || artifact != "lwjgl" {
			continue
		}
		url := libraryURL(entry)
		if url == "" {
			continue
		}
		return types.LWJGL{Version: version, URL: url}, nil
	}
	return types.LWJGL{}, shared.LookupError(fmt.Sprintf("unable to find lwjgl version for game version %s", gameVersion))
}

func libraryURL(entry *jsondoc.Value) string {
	if raw, ok := entry.Get("url"); ok {
		if url, ok := raw.Str(); ok && url != "" {
			return url
		}
	}
	if raw, ok := entry.Lookup("downloads", "artifact", "url"); ok {
		if url, ok := raw.Str(); ok {
			return url
		}
	}
	return ""
}
