package domain

import "time"

// TooManyPolicy decides what happens when more than MaxFiles are selected
type TooManyPolicy string

const (
	TooManyTruncate TooManyPolicy = "truncate" // keep the first MaxFiles
	TooManyReject   TooManyPolicy = "reject"   // fail with TooManyFiles
)

// MixedPolicy decides whether a multi-file selection may span categories
type MixedPolicy string

const (
	MixedStrict  MixedPolicy = "strict"  // all files share one category
	MixedRelaxed MixedPolicy = "relaxed" // several files may mix categories, full catalog offered
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Limits       LimitsConfig       `mapstructure:"limits"`
	Progress     ProgressConfig     `mapstructure:"progress"`
	Download     DownloadConfig     `mapstructure:"download"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains local gateway configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BackendConfig describes the remote conversion endpoint
type BackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"` // 0 disables the timeout
	FileField   string        `mapstructure:"file_field"`
	FormatField string        `mapstructure:"format_field"`
}

// LimitsConfig contains client-enforced selection limits
type LimitsConfig struct {
	MaxFiles      int           `mapstructure:"max_files"`
	MaxTotalSize  int64         `mapstructure:"max_total_size"`
	TooManyPolicy TooManyPolicy `mapstructure:"too_many_policy"`
	MixedPolicy   MixedPolicy   `mapstructure:"mixed_policy"`
}

// ProgressConfig contains the scripted animation timings
type ProgressConfig struct {
	Upload        time.Duration `mapstructure:"upload"`
	Processing    time.Duration `mapstructure:"processing"`
	Finalizing    time.Duration `mapstructure:"finalizing"`
	Complete      time.Duration `mapstructure:"complete"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir         string `mapstructure:"dir"`
	TempDir     string `mapstructure:"temp_dir"`
	ArchiveName string `mapstructure:"archive_name"`
}

// HistoryConfig contains conversion history configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // categorized event logs, empty disables
}

const (
	DefaultMaxFiles     = 4
	DefaultMaxTotalSize = 1024 * 1024 * 1024 // 1 GiB
	DefaultArchiveName  = "converted_files.zip"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Backend: BackendConfig{
			BaseURL:     "https://freefileconverters-backend.onrender.com",
			Timeout:     10 * time.Minute,
			FileField:   "files",
			FormatField: "targetFormat",
		},
		Limits: LimitsConfig{
			MaxFiles:      DefaultMaxFiles,
			MaxTotalSize:  DefaultMaxTotalSize,
			TooManyPolicy: TooManyTruncate,
			MixedPolicy:   MixedStrict,
		},
		Progress: ProgressConfig{
			Upload:        1500 * time.Millisecond,
			Processing:    2 * time.Second,
			Finalizing:    time.Second,
			Complete:      300 * time.Millisecond,
			FrameInterval: 16 * time.Millisecond,
		},
		Download: DownloadConfig{
			Dir:         "$HOME/Downloads",
			TempDir:     "",
			ArchiveName: DefaultArchiveName,
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.fileconv/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			LogsDir:    "$HOME/.fileconv/logs",
		},
	}
}
