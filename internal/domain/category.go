package domain

// Category is the coarse file-type classification that drives which
// conversions are legal
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryAudio    Category = "audio"
	CategoryVideo    Category = "video"

	// CategoryHeader tags catalog entries that only group the display
	CategoryHeader Category = "header"
)

// Categories returns the closed set of real categories in display order
func Categories() []Category {
	return []Category{CategoryDocument, CategoryImage, CategoryAudio, CategoryVideo}
}

// ValidCategory checks if a category is one of the real categories
func ValidCategory(c Category) bool {
	switch c {
	case CategoryImage, CategoryDocument, CategoryAudio, CategoryVideo:
		return true
	default:
		return false
	}
}
