package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/fileconv-go/api"
	"github.com/yourusername/fileconv-go/api/handlers"
	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/infrastructure"
	"github.com/yourusername/fileconv-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting fileconv gateway",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("backend", config.Backend.BaseURL),
		zap.String("download_dir", config.Download.Dir))

	if err := os.MkdirAll(config.Download.Dir, 0755); err != nil {
		log.Fatal("Failed to create download directory", zap.Error(err))
	}

	var opts []app.ControllerOption

	// Categorized event logs are optional
	var multiLog *logger.MultiLogger
	if config.Logging.LogsDir != "" {
		multiLog, err = logger.NewMultiLogger(logger.MultiLoggerConfig{
			Level:   config.Logging.Level,
			LogsDir: config.Logging.LogsDir,
		})
		if err != nil {
			log.Fatal("Failed to initialize event logs", zap.Error(err))
		}
		defer multiLog.Close()
		opts = append(opts, app.WithEventLogger(multiLog))
	}

	var repo *infrastructure.SQLiteConversionRepository
	if config.History.Enabled {
		repo, err = infrastructure.NewSQLiteConversionRepository(config.History.DatabasePath)
		if err != nil {
			log.Fatal("Failed to initialize repository", zap.Error(err))
		}
		defer repo.Close()
		opts = append(opts, app.WithHistory(repo))
	}

	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	hub := handlers.NewProgressHub(log)
	opts = append(opts, app.WithNotifier(notifier), app.WithProgressSink(hub))

	client := infrastructure.NewConvertClient(config.Backend, log)
	orchestrator := app.NewOrchestrator(
		client,
		app.NewPresenter(config.Progress.FrameInterval),
		config.Progress,
		config.Download,
		log,
	)
	controller := app.NewController(
		app.NewValidator(config.Limits),
		orchestrator,
		infrastructure.NewDownloadWriter(config.Download.Dir, log),
		log,
		opts...,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := api.RouterDeps{
		Ctx:        ctx,
		Controller: controller,
		Pinger:     client,
		Hub:        hub,
		LogsDir:    config.Logging.LogsDir,
		Logger:     log,
	}
	// Keep the interfaces nil rather than typed nil pointers
	if repo != nil {
		deps.Repo = repo
	}
	if multiLog != nil {
		deps.ErrLog = multiLog
	}
	router := api.SetupRouter(deps)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Abandon a running conversion; its temp file is cleaned up by the orchestrator
	cancel()
	waitIdle(controller, 5*time.Second)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// waitIdle polls until no conversion is running or the timeout passes
func waitIdle(controller *app.Controller, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for controller.View().Busy && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
}
