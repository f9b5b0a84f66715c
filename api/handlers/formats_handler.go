package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/domain"
)

// FormatsHandler serves the format catalog and target lookups
type FormatsHandler struct{}

// NewFormatsHandler creates a new formats handler
func NewFormatsHandler() *FormatsHandler {
	return &FormatsHandler{}
}

// ListFormats handles GET /api/v1/formats
func (h *FormatsHandler) ListFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": domain.Categories(),
		"entries":    domain.ListEntries(),
	})
}

// ListTargets handles GET /api/v1/formats/targets
//
// Either category or extension is required. When only the extension is
// given, its category is looked up in the catalog.
func (h *FormatsHandler) ListTargets(c *gin.Context) {
	category := domain.Category(c.Query("category"))
	extension := domain.NormalizeExtension(c.Query("extension"))

	if category == "" {
		if extension == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category or extension is required"})
			return
		}
		found, ok := domain.LookupCategory(extension)
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Unsupported file type: ." + extension,
				"kind":  string(domain.KindIncompatibleFileSet),
			})
			return
		}
		category = found
	}

	entries, err := app.CompatibleTargets(category, extension)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error(), "kind": errorKind(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"extension": extension,
		"entries":   entries,
	})
}
