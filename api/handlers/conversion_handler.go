package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

// ConversionHandler starts conversions and serves their history
type ConversionHandler struct {
	ctx        context.Context
	controller *app.Controller
	repo       domain.ConversionRepository
	logger     *zap.Logger
}

// NewConversionHandler creates a new conversion handler. Submissions run
// under ctx rather than the request context so they outlive the request;
// repo may be nil when history is disabled.
func NewConversionHandler(
	ctx context.Context,
	controller *app.Controller,
	repo domain.ConversionRepository,
	logger *zap.Logger,
) *ConversionHandler {
	return &ConversionHandler{
		ctx:        ctx,
		controller: controller,
		repo:       repo,
		logger:     logger,
	}
}

// Convert handles POST /api/v1/convert
func (h *ConversionHandler) Convert(c *gin.Context) {
	done, err := h.controller.StartSubmit(h.ctx)
	if err != nil {
		respondView(c, h.controller.View(), err)
		return
	}

	go func() {
		for view := range done {
			h.logger.Info("Conversion finished",
				zap.String("status", string(view.Status.Level)),
				zap.String("message", view.Status.Text),
				zap.String("saved_path", view.SavedPath))
		}
	}()

	c.JSON(http.StatusAccepted, h.controller.View())
}

// ListConversions handles GET /api/v1/conversions
func (h *ConversionHandler) ListConversions(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		if !domain.ValidateStatus(domain.ConversionStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filters["status"] = status
	}
	if target := c.Query("target_format"); target != "" {
		filters["target_format"] = domain.NormalizeExtension(target)
	}

	records, err := h.repo.FindAll(filters)
	if err != nil {
		h.logger.Error("Failed to list conversions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetStats handles GET /api/v1/conversions/stats
func (h *ConversionHandler) GetStats(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	stats, err := h.repo.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetConversion handles GET /api/v1/conversions/:id
func (h *ConversionHandler) GetConversion(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	record, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteConversion handles DELETE /api/v1/conversions/:id
func (h *ConversionHandler) DeleteConversion(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	id := c.Param("id")
	if _, err := h.repo.FindByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion not found"})
		return
	}

	if err := h.repo.Delete(id); err != nil {
		h.logger.Error("Failed to delete conversion", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversion deleted"})
}

func (h *ConversionHandler) historyEnabled(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "conversion history is disabled"})
		return false
	}
	return true
}
