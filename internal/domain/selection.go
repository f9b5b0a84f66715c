package domain

import (
	"io"
	"path/filepath"
)

// FileSource opens the bytes of a user-chosen file at upload time
type FileSource interface {
	Open() (io.ReadCloser, error)
}

// RawFile is a file handle as handed over by the user, before validation
type RawFile struct {
	Name   string
	Size   int64
	Source FileSource
}

// SelectedFile is a validated, classified file of the current selection
type SelectedFile struct {
	Name      string     `json:"name"`
	SizeBytes int64      `json:"size_bytes"`
	Extension string     `json:"extension"`
	Source    FileSource `json:"-"`
}

// NewSelectedFile derives a SelectedFile from a raw file handle
func NewSelectedFile(raw RawFile) SelectedFile {
	return SelectedFile{
		Name:      raw.Name,
		SizeBytes: raw.Size,
		Extension: FileExtension(raw.Name),
		Source:    raw.Source,
	}
}

// FileExtension returns the lowercase extension of a file name without the dot
func FileExtension(name string) string {
	return NormalizeExtension(filepath.Ext(name))
}

// Category returns the catalog category of the file
func (f SelectedFile) Category() (Category, bool) {
	return LookupCategory(f.Extension)
}

// BaseName returns the file name without its extension
func (f SelectedFile) BaseName() string {
	base := filepath.Base(f.Name)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Selection is the set of chosen files and the chosen target format.
// An empty TargetFormat means no format has been chosen yet.
type Selection struct {
	Files        []SelectedFile `json:"files"`
	TargetFormat string         `json:"target_format,omitempty"`
}

// IsEmpty checks if no files are selected
func (s Selection) IsEmpty() bool {
	return len(s.Files) == 0
}

// TotalSize returns the aggregate size of all selected files
func (s Selection) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.SizeBytes
	}
	return total
}

// SourceCategory returns the category shared by every file.
// It reports false for an empty or mixed selection.
func (s Selection) SourceCategory() (Category, bool) {
	if len(s.Files) == 0 {
		return "", false
	}
	first, ok := s.Files[0].Category()
	if !ok {
		return "", false
	}
	for _, f := range s.Files[1:] {
		if c, ok := f.Category(); !ok || c != first {
			return "", false
		}
	}
	return first, true
}

// SourceExtension returns the extension shared by every file, or "" when
// the files disagree
func (s Selection) SourceExtension() string {
	if len(s.Files) == 0 {
		return ""
	}
	ext := s.Files[0].Extension
	for _, f := range s.Files[1:] {
		if f.Extension != ext {
			return ""
		}
	}
	return ext
}

// FileNames returns the names of the selected files in order
func (s Selection) FileNames() []string {
	names := make([]string, len(s.Files))
	for i, f := range s.Files {
		names[i] = f.Name
	}
	return names
}
