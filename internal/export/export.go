package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/systrix/internal/errors"
)

// FilenameLayout is the time layout embedded in export file names.
const FilenameLayout = "20060102_150405"

// Filename is systrix_export_YYYYMMDD_HHMMSS.<ext> for now in local time.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("systrix_export_%s.%s", now.Local().Format(FilenameLayout), f.Extension())
}

// Render writes b to w in format f.
func Render(w io.Writer, b Bundle, f Format) error {
	wr, err := WriterFor(f)
	if err != nil {
		return err
	}
	if err := wr.Write(w, b); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Failed to render %s report", f), "")
	}
	return nil
}

// Export writes b into dir under a timestamped name and returns the path.
// dir is created when missing; an empty dir means the working directory.
func Export(b Bundle, f Format, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	return WriteFile(b, f, filepath.Join(dir, Filename(f, now)))
}

// WriteFile writes b to path. The file appears only once it is complete.
func WriteFile(b Bundle, f Format, path string) (string, error) {
	wr, err := WriterFor(f)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Cannot create export directory %s", dir),
			"Check the export.dir setting and directory permissions")
	}

	tmp, err := os.CreateTemp(dir, ".systrix_export_*")
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Cannot write to %s", dir),
			"Check the export.dir setting and directory permissions")
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := wr.Write(tmp, b); err != nil {
		cleanup()
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Failed to write %s report", f), "")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Failed to write %s report", f), "")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", errors.WrapWithCode(err, errors.ErrExport, "Failed to set report permissions", "")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Cannot move report into place at %s", path), "")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
