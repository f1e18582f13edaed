package adapters

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"ornithe-installer/internal/jsondoc"
	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

const launcherProfilesFile = "launcher_profiles.json"

// ProfileWriterAdapter writes loose version profiles into a native launcher
// directory.
type ProfileWriterAdapter struct {
	Dir string
	Fs  afero.Fs
	Now func() time.Time
}

func NewProfileWriterAdapter(dir string, fs afero.Fs) ProfileWriterAdapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return ProfileWriterAdapter{Dir: dir, Fs: fs, Now: time.Now}
}

// WriteVersionProfile replaces versions/<id> with the profile document and
// an empty jar named after it, which the launcher expects to exist.
func (a ProfileWriterAdapter) WriteVersionProfile(id string, profile *jsondoc.Value) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", shared.InvalidError("invalid profile id " + id)
	}
	versionDir, err := a.ensurePath(filepath.Join("versions", id), true)
	if err != nil {
		return "", err
	}
	data, err := jsondoc.MarshalIndent(profile, "  ")
	if err != nil {
		return "", shared.MalformedErrorWithCause("profile "+id, err)
	}
	if err := afero.WriteFile(a.Fs, filepath.Join(versionDir, id+".jar"), nil, 0o644); err != nil {
		return "", shared.FilesystemError("failed to create placeholder jar", err)
	}
	path := filepath.Join(versionDir, id+".json")
	if err := afero.WriteFile(a.Fs, path, data, 0o644); err != nil {
		return "", shared.FilesystemError("failed to write profile "+id, err)
	}
	return path, nil
}

// WriteLauncherProfile adds or replaces one entry of launcher_profiles.json,
// keeping every other entry and key in place.
func (a ProfileWriterAdapter) WriteLauncherProfile(profile types.LauncherProfile) error {
	dir, err := a.ensurePath("", false)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, launcherProfilesFile)

	doc := jsondoc.Object()
	data, err := afero.ReadFile(a.Fs, path)
	switch {
	case err == nil:
		doc, err = jsondoc.Parse(data)
		if err != nil {
			return shared.MalformedErrorWithCause(launcherProfilesFile, err)
		}
		if !doc.IsObject() {
			return shared.MalformedError(launcherProfilesFile, "$", "object")
		}
	case !os.IsNotExist(err):
		return shared.FilesystemError("failed to read "+launcherProfilesFile, err)
	}

	profiles, ok := doc.Get("profiles")
	if !ok {
		profiles = jsondoc.Object()
		doc.Set("profiles", profiles)
	}
	if !profiles.IsObject() {
		return shared.MalformedError(launcherProfilesFile, "profiles", "object")
	}

	now := a.now().UTC().Format(time.RFC3339)
	entry := jsondoc.Object().
		Set("name", jsondoc.String(profile.Name)).
		Set("type", jsondoc.String("custom")).
		Set("created", jsondoc.String(now)).
		Set("lastUsed", jsondoc.String(now)).
		Set("icon", jsondoc.String(profile.Icon)).
		Set("lastVersionId", jsondoc.String(profile.Version))
	if existing, ok := profiles.Get(profile.Key); ok {
		if created, ok := existing.Get("created"); ok {
			entry.Set("created", created.Clone())
		}
	}
	profiles.Set(profile.Key, entry)

	out, err := jsondoc.MarshalIndent(doc, "  ")
	if err != nil {
		return shared.MalformedErrorWithCause(launcherProfilesFile, err)
	}
	if err := afero.WriteFile(a.Fs, path, out, 0o644); err != nil {
		return shared.FilesystemError("failed to write "+launcherProfilesFile, err)
	}
	return nil
}

// ensurePath returns Dir joined with sub, creating it. With clear set the
// directory is emptied first.
func (a ProfileWriterAdapter) ensurePath(sub string, clear bool) (string, error) {
	if a.Dir == "" {
		return "", shared.InvalidError("install directory is empty")
	}
	path := filepath.Join(a.Dir, sub)
	if clear {
		if err := a.Fs.RemoveAll(path); err != nil {
			return "", shared.FilesystemError("failed to clear "+path, err)
		}
	}
	if err := a.Fs.MkdirAll(path, 0o755); err != nil {
		return "", shared.FilesystemError("failed to create "+path, err)
	}
	return path, nil
}

func (a ProfileWriterAdapter) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

var _ ports.ProfileWriterPort = ProfileWriterAdapter{}
