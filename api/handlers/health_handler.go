package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/fileconv-go/internal/app"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Pinger checks whether the conversion service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	controller  *app.Controller
	pinger      Pinger
	pingTimeout time.Duration
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(controller *app.Controller, pinger Pinger) *HealthHandler {
	return &HealthHandler{
		controller:  controller,
		pinger:      pinger,
		pingTimeout: 10 * time.Second,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Conversion struct {
		Busy bool `json:"busy"`
	} `json:"conversion"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Conversion.Busy = h.controller.View().Busy

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
