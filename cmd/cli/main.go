package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/yourusername/fileconv-go/internal/app"
	"github.com/yourusername/fileconv-go/internal/domain"
	"github.com/yourusername/fileconv-go/internal/infrastructure"
	"github.com/yourusername/fileconv-go/pkg/logger"
)

var (
	configPath string
	verbose    bool
	rootCmd    = &cobra.Command{
		Use:   "fileconv",
		Short: "fileconv - convert files with a remote conversion service",
		Long: `A command-line client that uploads documents, images, audio and video
to a conversion service and saves the converted result.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging to stderr")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statsCmd)
}

// exitOnError prints err and exits when err is not nil
func exitOnError(err error) {
	if err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig loads configuration and a stderr logger. Without --verbose
// only errors are logged so the progress bar stays readable.
func loadConfig() (*domain.Config, *zap.Logger) {
	config, err := app.LoadConfig(configPath)
	exitOnError(err)

	level := "error"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", OutputPath: "stderr"})
	exitOnError(err)
	return config, log
}

// openHistory opens the conversion history database
func openHistory(config *domain.Config) *infrastructure.SQLiteConversionRepository {
	if !config.History.Enabled {
		exitOnError(fmt.Errorf("conversion history is disabled"))
	}
	repo, err := infrastructure.NewSQLiteConversionRepository(config.History.DatabasePath)
	exitOnError(err)
	return repo
}

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert files to another format",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, _ := cmd.Flags().GetString("to")
		outDir, _ := cmd.Flags().GetString("out")
		noProgress, _ := cmd.Flags().GetBool("no-progress")

		config, log := loadConfig()
		defer log.Sync()
		if outDir != "" {
			config.Download.Dir = outDir
		}
		exitOnError(os.MkdirAll(config.Download.Dir, 0755))

		files, err := infrastructure.StatFiles(args)
		exitOnError(err)

		// The bar redraws one line, which only makes sense on a terminal
		var sink domain.ProgressSink = domain.NopSink
		if !noProgress && term.IsTerminal(int(os.Stderr.Fd())) {
			sink = newProgressRenderer(os.Stderr)
		}
		opts := []app.ControllerOption{
			app.WithProgressSink(sink),
			app.WithNotifier(infrastructure.NewNotificationService(&config.Notification, log)),
		}

		if config.History.Enabled {
			repo, err := infrastructure.NewSQLiteConversionRepository(config.History.DatabasePath)
			if err != nil {
				// History is a convenience; conversions still work without it
				log.Warn("Conversion history unavailable", zap.Error(err))
			} else {
				defer repo.Close()
				opts = append(opts, app.WithHistory(repo))
			}
		}
		if config.Logging.LogsDir != "" {
			multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
				Level:   config.Logging.Level,
				LogsDir: config.Logging.LogsDir,
			})
			if err != nil {
				log.Warn("Event logs unavailable", zap.Error(err))
			} else {
				defer multiLog.Close()
				opts = append(opts, app.WithEventLogger(multiLog))
			}
		}

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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		view, err := controller.Dispatch(ctx, app.FilesSelected{Files: files})
		exitOnError(err)
		if view.Status.Level == app.StatusInfo {
			printInfo(os.Stderr, view.Status.Text)
		}
		printSelection(os.Stderr, view.Selection)

		_, err = controller.Dispatch(ctx, app.TargetChosen{Code: target})
		exitOnError(err)

		view, err = controller.Dispatch(ctx, app.SubmitRequested{})
		exitOnError(err)

		printSuccess(os.Stdout, view.Status.Text)
		fmt.Println(view.SavedPath)
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported formats",
	Run: func(cmd *cobra.Command, args []string) {
		category, _ := cmd.Flags().GetString("category")

		entries := domain.ListEntries()
		if category != "" {
			c := domain.Category(strings.ToLower(category))
			if !domain.ValidCategory(c) {
				exitOnError(fmt.Errorf("unknown category: %s", category))
			}
			filtered := []domain.FormatEntry{}
			for _, e := range entries {
				if e.Category == c || e.Code == "header-"+string(c) {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}

		printEntries(os.Stdout, entries)
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets [file-or-extension]",
	Short: "List the formats a file can be converted to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := targetsFor(args[0])
		exitOnError(err)
		printEntries(os.Stdout, entries)
	},
}

// targetsFor resolves the compatible targets of a file name or bare extension
func targetsFor(arg string) ([]domain.FormatEntry, error) {
	ext := domain.FileExtension(arg)
	if ext == "" {
		ext = domain.NormalizeExtension(arg)
	}

	category, ok := domain.LookupCategory(ext)
	if !ok {
		return nil, fmt.Errorf("Unsupported file type: .%s", ext)
	}
	return app.CompatibleTargets(category, ext)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the conversion service is reachable",
	Run: func(cmd *cobra.Command, args []string) {
		wait, _ := cmd.Flags().GetDuration("wait")

		config, log := loadConfig()
		defer log.Sync()

		client := infrastructure.NewConvertClient(config.Backend, log)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		start := time.Now()
		exitOnError(waitForBackend(ctx, client, wait, backendPollInterval))
		printSuccess(os.Stdout, fmt.Sprintf("%s is ready (%s)", config.Backend.BaseURL, time.Since(start).Round(time.Millisecond)))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversions",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")

		config, log := loadConfig()
		defer log.Sync()
		repo := openHistory(config)
		defer repo.Close()

		filters := make(map[string]interface{})
		if status != "" {
			if !domain.ValidateStatus(domain.ConversionStatus(status)) {
				exitOnError(fmt.Errorf("invalid status: %s", status))
			}
			filters["status"] = status
		}

		records, err := repo.FindAll(filters)
		exitOnError(err)
		printHistory(os.Stdout, records)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get conversion details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, log := loadConfig()
		defer log.Sync()
		repo := openHistory(config)
		defer repo.Close()

		record, err := repo.FindByID(args[0])
		exitOnError(err)
		printRecord(os.Stdout, record)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show conversion statistics",
	Run: func(cmd *cobra.Command, args []string) {
		config, log := loadConfig()
		defer log.Sync()
		repo := openHistory(config)
		defer repo.Close()

		stats, err := repo.GetStats()
		exitOnError(err)
		printStats(os.Stdout, stats)
	},
}

func init() {
	convertCmd.Flags().StringP("to", "t", "", "Target format (e.g. pdf, png, mp3)")
	convertCmd.MarkFlagRequired("to")
	convertCmd.Flags().StringP("out", "o", "", "Directory to save the result (default from config)")
	convertCmd.Flags().Bool("no-progress", false, "Don't draw the progress bar")
	formatsCmd.Flags().StringP("category", "c", "", "Only list one category (document, image, audio, video)")
	pingCmd.Flags().Duration("wait", 0, "Keep retrying for this long while the service wakes up")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
