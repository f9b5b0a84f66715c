package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

// maxNameAttempts bounds the "name (n).ext" search
const maxNameAttempts = 1000

// DownloadWriter saves artifacts into the download directory without
// overwriting existing files
type DownloadWriter struct {
	dir    string
	logger *zap.Logger
}

// NewDownloadWriter creates a new download writer
func NewDownloadWriter(dir string, logger *zap.Logger) *DownloadWriter {
	return &DownloadWriter{dir: dir, logger: logger}
}

// Dir returns the download directory
func (w *DownloadWriter) Dir() string {
	return w.dir
}

// Save moves the artifact to the download directory under filename and
// returns the final path. The artifact file is consumed.
func (w *DownloadWriter) Save(artifact *domain.Artifact, filename string) (string, error) {
	if artifact == nil || artifact.Path == "" {
		return "", fmt.Errorf("no artifact to save")
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := SanitizeFilename(filename)
	if name == "" {
		name = domain.DefaultArchiveName
	}

	dest, reserved, err := w.reserve(name)
	if err != nil {
		return "", err
	}
	reserved.Close()

	if err := os.Rename(artifact.Path, dest); err != nil {
		// Cross-device moves need a copy
		w.logger.Debug("Rename failed, copying artifact", zap.String("dest", dest), zap.Error(err))
		if err := copyFile(artifact.Path, dest); err != nil {
			os.Remove(dest)
			return "", fmt.Errorf("failed to save %s: %w", name, err)
		}
	}

	w.logger.Info("Artifact saved", zap.String("path", dest), zap.Int64("size", artifact.Size))
	return dest, nil
}

// reserve creates the first free "name", "name (1)", ... in the directory
func (w *DownloadWriter) reserve(name string) (string, *os.File, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(w.dir, candidate)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return path, f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("failed to create %s: %w", candidate, err)
		}
	}
	return "", nil, fmt.Errorf("no free file name for %s", name)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
