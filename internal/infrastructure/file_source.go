package infrastructure

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yourusername/fileconv-go/internal/domain"
)

// LocalFile opens a file from the local filesystem at upload time
type LocalFile struct {
	Path string
}

// Open opens the file for reading
func (l LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(l.Path)
}

// StatFiles turns local paths into raw files. Only names and sizes are
// read here; contents are opened when the upload streams them.
func StatFiles(paths []string) ([]domain.RawFile, error) {
	files := make([]domain.RawFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		files = append(files, domain.RawFile{
			Name:   filepath.Base(p),
			Size:   info.Size(),
			Source: LocalFile{Path: p},
		})
	}
	return files, nil
}
