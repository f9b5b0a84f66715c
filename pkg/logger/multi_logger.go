package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryTransfer LogCategory = "transfer" // Conversion lifecycle events (JSON)
	CategoryError    LogCategory = "error"    // Application errors (JSON)
)

// Categories returns all known log categories
func Categories() []LogCategory {
	return []LogCategory{CategoryTransfer, CategoryError}
}

// ValidCategory checks if a category is known
func ValidCategory(category LogCategory) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// MultiLogger provides categorized logging with separate output files
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	files   map[LogCategory]*os.File
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		files:   make(map[LogCategory]*os.File),
		config:  config,
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if err := ml.addCategory(CategoryTransfer, level); err != nil {
		ml.Close()
		return nil, fmt.Errorf("failed to create transfer logger: %w", err)
	}

	// Error category only ever receives errors
	if err := ml.addCategory(CategoryError, zapcore.ErrorLevel); err != nil {
		ml.Close()
		return nil, fmt.Errorf("failed to create error logger: %w", err)
	}

	return ml, nil
}

// addCategory creates a JSON-formatted logger for a category
func (ml *MultiLogger) addCategory(category LogCategory, level zapcore.Level) error {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "msg"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = ""

	file, err := os.OpenFile(ml.categoryLogPath(category), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level)
	ml.loggers[category] = zap.New(core).With(zap.String("category", string(category)))
	ml.files[category] = file
	return nil
}

// categoryLogPath generates a log file path for a category with current date
func (ml *MultiLogger) categoryLogPath(category LogCategory) string {
	return LogPath(ml.config.LogsDir, category, time.Now())
}

// LogPath returns the file holding a category's entries for one day
func LogPath(logsDir string, category LogCategory, date time.Time) string {
	filename := fmt.Sprintf("%s-%s.log", category, date.Format("20060102"))
	return filepath.Join(logsDir, filename)
}

// LogsDir returns the logs directory path
func (ml *MultiLogger) LogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the structured logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return zap.NewNop()
}

// Transfer returns the transfer logger
func (ml *MultiLogger) Transfer() *zap.Logger {
	return ml.GetLogger(CategoryTransfer)
}

// Error returns the error logger
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogTransferEvent logs a conversion lifecycle event with structured data
func (ml *MultiLogger) LogTransferEvent(event string, fields ...zap.Field) {
	ml.Transfer().Info(event, fields...)
}

// LogAppError logs an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes their files
func (ml *MultiLogger) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	var lastErr error
	for category, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
		delete(ml.loggers, category)
	}
	for category, file := range ml.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
		delete(ml.files, category)
	}
	return lastErr
}
