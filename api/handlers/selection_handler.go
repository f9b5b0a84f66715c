package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/infrastructure"
	"go.uber.org/zap"
)

// SelectionHandler drives the controller's selection from HTTP requests
type SelectionHandler struct {
	controller *app.Controller
	logger     *zap.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(controller *app.Controller, logger *zap.Logger) *SelectionHandler {
	return &SelectionHandler{
		controller: controller,
		logger:     logger,
	}
}

// SelectFilesRequest names local files to select
type SelectFilesRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

// ChooseTargetRequest picks a target format
type ChooseTargetRequest struct {
	Format string `json:"format" binding:"required"`
}

// GetSelection handles GET /api/v1/selection
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.View())
}

// SelectFiles handles POST /api/v1/selection
func (h *SelectionHandler) SelectFiles(c *gin.Context) {
	var req SelectFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := infrastructure.StatFiles(req.Paths)
	if err != nil {
		h.logger.Warn("Failed to read selected files", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.controller.Dispatch(c.Request.Context(), app.FilesSelected{Files: files})
	respondView(c, view, err)
}

// ChooseTarget handles PUT /api/v1/selection/target
func (h *SelectionHandler) ChooseTarget(c *gin.Context) {
	var req ChooseTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.controller.Dispatch(c.Request.Context(), app.TargetChosen{Code: req.Format})
	respondView(c, view, err)
}

// ResetSelection handles DELETE /api/v1/selection
func (h *SelectionHandler) ResetSelection(c *gin.Context) {
	view, err := h.controller.Dispatch(c.Request.Context(), app.ResetRequested{})
	respondView(c, view, err)
}
