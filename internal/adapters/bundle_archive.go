package adapters

import (
	"archive/zip"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"ornithe-installer/internal/ports"
	"ornithe-installer/internal/shared"
	"ornithe-installer/internal/types"
)

// BundleArchiveAdapter writes instance bundles as zip archives. The archive
// is assembled in a temporary file next to the target and renamed into
// place, so a failed write never leaves a partial archive behind.
type BundleArchiveAdapter struct {
	Fs afero.Fs
	// Modified is stamped on every entry. Zero means the time of writing.
	Modified time.Time
}

func NewBundleArchiveAdapter(fs afero.Fs) BundleArchiveAdapter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return BundleArchiveAdapter{Fs: fs}
}

func (a BundleArchiveAdapter) WriteBundle(ctx context.Context, dir string, name string, files []types.BundleFile) (string, error) {
	if dir == "" {
		return "", shared.InvalidError("output directory is empty")
	}
	if name == "" || filepath.Base(name) != name {
		return "", shared.InvalidError(fmt.Sprintf("invalid archive name %q", name))
	}
	if err := a.Fs.MkdirAll(dir, 0o755); err != nil {
		return "", shared.FilesystemError("failed to create output directory", err)
	}
	target := filepath.Join(dir, name)

	tmp, err := afero.TempFile(a.Fs, dir, name+".*.tmp")
	if err != nil {
		return "", shared.FilesystemError("failed to create temporary archive", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = a.Fs.Remove(tmpName)
		}
	}()

	if err := a.writeEntries(ctx, tmp, files); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", shared.FilesystemError("failed to flush archive", err)
	}
	if err := a.Fs.Rename(tmpName, target); err != nil {
		return "", shared.FilesystemError(fmt.Sprintf("failed to move archive to %s", target), err)
	}
	committed = true

	log.Ctx(ctx).Debug().Str("archive", target).Int("entries", len(files)).Msg("bundle archive written")
	return target, nil
}

func (a BundleArchiveAdapter) writeEntries(ctx context.Context, out afero.File, files []types.BundleFile) error {
	modified := a.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	archive := zip.NewWriter(out)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return shared.FilesystemError("archive write canceled", err)
		}
		header := &zip.FileHeader{
			Name:     file.Path,
			Method:   zip.Deflate,
			Modified: modified,
		}
		entry, err := archive.CreateHeader(header)
		if err != nil {
			return shared.FilesystemError(fmt.Sprintf("failed to add %s to archive", file.Path), err)
		}
		if _, err := entry.Write(file.Data); err != nil {
			return shared.FilesystemError(fmt.Sprintf("failed to write %s to archive", file.Path), err)
		}
	}
	if err := archive.Close(); err != nil {
		return shared.FilesystemError("failed to finish archive", err)
	}
	return nil
}

var _ ports.BundleWriterPort = BundleArchiveAdapter{}
