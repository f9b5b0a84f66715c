package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/fileconv-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.fileconv")
		v.AddConfigPath("/etc/fileconv")
	}

	v.SetEnvPrefix("FILECONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnvKeys makes env-only overrides visible to Unmarshal, which only
// sees keys viper already knows about
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.host", "server.port",
		"backend.base_url", "backend.timeout", "backend.file_field", "backend.format_field",
		"limits.max_files", "limits.max_total_size", "limits.too_many_policy", "limits.mixed_policy",
		"progress.upload", "progress.processing", "progress.finalizing", "progress.complete", "progress.frame_interval",
		"download.dir", "download.temp_dir", "download.archive_name",
		"history.enabled", "history.database_path",
		"notification.enabled", "notification.method",
		"logging.level", "logging.format", "logging.output_path", "logging.logs_dir",
	} {
		_ = v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.Dir = expandPath(config.Download.Dir)
	config.Download.TempDir = expandPath(config.Download.TempDir)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// $HOME first so it resolves even when the variable is unset
	if strings.Contains(path, "$HOME") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL not configured")
	}

	if config.Backend.FileField == "" || config.Backend.FormatField == "" {
		return fmt.Errorf("backend form field names not configured")
	}

	if config.Limits.MaxFiles < 1 {
		return fmt.Errorf("max files must be at least 1")
	}

	if config.Limits.MaxTotalSize < 1 {
		return fmt.Errorf("max total size must be positive")
	}

	switch config.Limits.TooManyPolicy {
	case domain.TooManyTruncate, domain.TooManyReject:
	default:
		return fmt.Errorf("unknown too_many_policy: %q", config.Limits.TooManyPolicy)
	}

	switch config.Limits.MixedPolicy {
	case domain.MixedStrict, domain.MixedRelaxed:
	default:
		return fmt.Errorf("unknown mixed_policy: %q", config.Limits.MixedPolicy)
	}

	if config.Progress.FrameInterval <= 0 {
		return fmt.Errorf("progress frame interval must be positive")
	}

	if config.Download.Dir == "" {
		return fmt.Errorf("download directory not configured")
	}

	if config.Download.ArchiveName == "" {
		config.Download.ArchiveName = domain.DefaultArchiveName
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	settings := map[string]interface{}{
		"server.host":             config.Server.Host,
		"server.port":             config.Server.Port,
		"backend.base_url":        config.Backend.BaseURL,
		"backend.timeout":         config.Backend.Timeout.String(),
		"backend.file_field":      config.Backend.FileField,
		"backend.format_field":    config.Backend.FormatField,
		"limits.max_files":        config.Limits.MaxFiles,
		"limits.max_total_size":   config.Limits.MaxTotalSize,
		"limits.too_many_policy":  string(config.Limits.TooManyPolicy),
		"limits.mixed_policy":     string(config.Limits.MixedPolicy),
		"progress.upload":         config.Progress.Upload.String(),
		"progress.processing":     config.Progress.Processing.String(),
		"progress.finalizing":     config.Progress.Finalizing.String(),
		"progress.complete":       config.Progress.Complete.String(),
		"progress.frame_interval": config.Progress.FrameInterval.String(),
		"download.dir":            config.Download.Dir,
		"download.temp_dir":       config.Download.TempDir,
		"download.archive_name":   config.Download.ArchiveName,
		"history.enabled":         config.History.Enabled,
		"history.database_path":   config.History.DatabasePath,
		"notification.enabled":    config.Notification.Enabled,
		"notification.method":     config.Notification.Method,
		"logging.level":           config.Logging.Level,
		"logging.format":          config.Logging.Format,
		"logging.output_path":     config.Logging.OutputPath,
		"logging.logs_dir":        config.Logging.LogsDir,
	}
	for key, value := range settings {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
