package domain

import "strings"

// FormatEntry is a single row of the format catalog
type FormatEntry struct {
	Code     string   `json:"code"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// IsHeader reports whether the entry only groups the display
func (e FormatEntry) IsHeader() bool {
	return e.Category == CategoryHeader
}

func header(group Category, label string) FormatEntry {
	return FormatEntry{Code: "header-" + string(group), Label: label, Category: CategoryHeader}
}

// catalog order drives grouped display order
var catalog = []FormatEntry{
	header(CategoryDocument, "Documents"),
	{Code: "pdf", Label: "PDF", Category: CategoryDocument},
	{Code: "docx", Label: "DOCX", Category: CategoryDocument},
	{Code: "doc", Label: "DOC", Category: CategoryDocument},
	{Code: "odt", Label: "ODT", Category: CategoryDocument},
	{Code: "txt", Label: "TXT", Category: CategoryDocument},
	{Code: "rtf", Label: "RTF", Category: CategoryDocument},

	header(CategoryImage, "Images"),
	{Code: "png", Label: "PNG", Category: CategoryImage},
	{Code: "jpg", Label: "JPG", Category: CategoryImage},
	{Code: "jpeg", Label: "JPEG", Category: CategoryImage},
	{Code: "gif", Label: "GIF", Category: CategoryImage},
	{Code: "webp", Label: "WEBP", Category: CategoryImage},
	{Code: "bmp", Label: "BMP", Category: CategoryImage},
	{Code: "svg", Label: "SVG", Category: CategoryImage},
	{Code: "ico", Label: "ICO", Category: CategoryImage},

	header(CategoryAudio, "Audio"),
	{Code: "mp3", Label: "MP3", Category: CategoryAudio},
	{Code: "wav", Label: "WAV", Category: CategoryAudio},
	{Code: "ogg", Label: "OGG", Category: CategoryAudio},
	{Code: "m4a", Label: "M4A", Category: CategoryAudio},
	{Code: "flac", Label: "FLAC", Category: CategoryAudio},

	header(CategoryVideo, "Video"),
	{Code: "mp4", Label: "MP4", Category: CategoryVideo},
	{Code: "avi", Label: "AVI", Category: CategoryVideo},
	{Code: "mov", Label: "MOV", Category: CategoryVideo},
	{Code: "mkv", Label: "MKV", Category: CategoryVideo},
	{Code: "webm", Label: "WEBM", Category: CategoryVideo},
}

// ListEntries returns the full catalog, headers included, in display order
func ListEntries() []FormatEntry {
	entries := make([]FormatEntry, len(catalog))
	copy(entries, catalog)
	return entries
}

// Selectable returns the catalog without header entries
func Selectable() []FormatEntry {
	entries := make([]FormatEntry, 0, len(catalog))
	for _, e := range catalog {
		if !e.IsHeader() {
			entries = append(entries, e)
		}
	}
	return entries
}

// NormalizeExtension lowercases an extension and strips a leading dot
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// FindEntry returns the selectable entry for a format code
func FindEntry(code string) (FormatEntry, bool) {
	code = NormalizeExtension(code)
	for _, e := range catalog {
		if !e.IsHeader() && e.Code == code {
			return e, true
		}
	}
	return FormatEntry{}, false
}

// LookupCategory returns the category of a file extension.
// Header entries never match.
func LookupCategory(ext string) (Category, bool) {
	e, ok := FindEntry(ext)
	if !ok {
		return "", false
	}
	return e.Category, true
}
