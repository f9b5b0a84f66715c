package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/domain"
)

// statusForError maps a conversion error kind to an HTTP status
func statusForError(err error) int {
	var ce *domain.ConversionError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError
	}

	switch ce.Kind {
	case domain.KindBusy, domain.KindNotSubmittable:
		return http.StatusConflict
	case domain.KindNetworkFailure, domain.KindServiceError:
		return http.StatusBadGateway
	case domain.KindCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

// errorKind returns the kind of a conversion error, or "" for other errors
func errorKind(err error) string {
	var ce *domain.ConversionError
	if errors.As(err, &ce) {
		return string(ce.Kind)
	}
	return ""
}

// respondView writes the controller view, attaching the error if the
// event was rejected
func respondView(c *gin.Context, view app.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}
	c.JSON(statusForError(err), gin.H{
		"error": err.Error(),
		"kind":  errorKind(err),
		"view":  view,
	})
}
