package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/fileconv-go/api/handlers"
	"github.com/yourusername/fileconv-go/api/middleware"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/domain"
)

// RouterDeps collects what the gateway routes need
type RouterDeps struct {
	// Ctx bounds background conversions started over HTTP
	Ctx        context.Context
	Controller *app.Controller
	Pinger     handlers.Pinger
	Hub        *handlers.ProgressHub
	// Repo is nil when history is disabled
	Repo    domain.ConversionRepository
	LogsDir string
	Logger  *zap.Logger
	ErrLog  middleware.ErrorLogger
}

// SetupRouter sets up the HTTP router of the local gateway
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(deps.Logger, deps.ErrLog))
	router.Use(middleware.Recovery(deps.Logger, deps.ErrLog))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(deps.Controller, deps.Pinger)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		formatsHandler := handlers.NewFormatsHandler()
		formats := v1.Group("/formats")
		{
			formats.GET("", formatsHandler.ListFormats)
			formats.GET("/targets", formatsHandler.ListTargets)
		}

		selectionHandler := handlers.NewSelectionHandler(deps.Controller, deps.Logger)
		selection := v1.Group("/selection")
		{
			selection.GET("", selectionHandler.GetSelection)
			selection.POST("", selectionHandler.SelectFiles)
			selection.PUT("/target", selectionHandler.ChooseTarget)
			selection.DELETE("", selectionHandler.ResetSelection)
		}

		conversionHandler := handlers.NewConversionHandler(deps.Ctx, deps.Controller, deps.Repo, deps.Logger)
		v1.POST("/convert", conversionHandler.Convert)
		conversions := v1.Group("/conversions")
		{
			conversions.GET("", conversionHandler.ListConversions)
			conversions.GET("/stats", conversionHandler.GetStats)
			conversions.GET("/:id", conversionHandler.GetConversion)
			conversions.DELETE("/:id", conversionHandler.DeleteConversion)
		}

		if deps.Hub != nil {
			v1.GET("/progress/ws", deps.Hub.HandleWebSocket)
		}

		logHandler := handlers.NewLogHandler(deps.LogsDir)
		logs := v1.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
			logs.GET("/:category/search", logHandler.SearchLogs)
			logs.GET("/:category/export", logHandler.ExportLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
