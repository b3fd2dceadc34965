package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// Config holds all application configuration
// Includes HTTP, storage, media tooling and job runner configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// HTTP Configuration:
// - HTTP_ADDR: Listen address (default: :8080)
// - UI_STATIC_DIR: Directory with the built web UI (default: /app/web)
// - UI_ENABLED: Serve the web UI (default: true)
//
// Storage Configuration:
// - DATA_DIR: Base data directory (default: /app/data)
// - UPLOAD_DIR: Directory for uploaded sources (default: DATA_DIR/uploads)
// - OUTPUT_DIR: Directory for generated and split files (default: DATA_DIR/outputs)
// - MAX_UPLOAD_MB: Upload size cap in megabytes (default: 16384)
//
// Media Tooling Configuration:
// - FFMPEG_BIN: ffmpeg binary name or path (default: ffmpeg)
// - FFPROBE_BIN: ffprobe binary name or path (default: ffprobe)
// - ENCODE_TIMEOUT_SECONDS: Per-invocation subprocess timeout (default: 600)
//
// Job Runner Configuration:
// - JOB_WORKERS: Concurrent job workers (default: 2)
//
// Cleanup Configuration:
// - CLEANUP_CRON: Retention sweep schedule (default: 0 3 * * *)
// - RETENTION_HOURS: Hours before outputs become stale (default: 72)
//
// Fill Content Configuration:
// - FILL_LANG: Language of generated filler text (default: zh)
// - CJK_FONT_PATH: TTF font used for CJK document output (optional)
//
// System Configuration:
// - APP_ENV: production or development (default: production)
// - TZ: Timezone (default: UTC)

type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig `json:"http"`

	// Storage Configuration
	Storage StorageConfig `json:"storage"`

	// Media Tooling Configuration
	Media MediaConfig `json:"media"`

	// Job Runner Configuration
	Jobs JobsConfig `json:"jobs"`

	// Cleanup Configuration
	Cleanup CleanupConfig `json:"cleanup"`

	// Fill Content Configuration
	Fill FillConfig `json:"fill"`

	// System Configuration
	System SystemConfig `json:"system"`
}

// HTTPConfig holds the listener and UI serving configuration
type HTTPConfig struct {
	Addr        string `json:"addr"`
	UIStaticDir string `json:"ui_static_dir"`
	UIEnabled   bool   `json:"ui_enabled"`
}

// StorageConfig holds the managed directory layout
type StorageConfig struct {
	DataDir     string `json:"data_dir"`
	UploadDir   string `json:"upload_dir"`
	OutputDir   string `json:"output_dir"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

// MaxUploadBytes converts the upload cap to bytes.
func (c StorageConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// MediaConfig holds the external encoder tooling configuration
type MediaConfig struct {
	FFmpegBin            string `json:"ffmpeg_bin"`
	FFprobeBin           string `json:"ffprobe_bin"`
	EncodeTimeoutSeconds int    `json:"encode_timeout_seconds"`
}

// EncodeTimeout returns the per-invocation subprocess deadline.
func (c MediaConfig) EncodeTimeout() time.Duration {
	return time.Duration(c.EncodeTimeoutSeconds) * time.Second
}

// JobsConfig holds the background job runner configuration
type JobsConfig struct {
	Workers int `json:"workers"`
}

// CleanupConfig holds the output retention configuration
type CleanupConfig struct {
	CronExpr       string `json:"cron_expr"`
	RetentionHours int    `json:"retention_hours"`
}

// Retention returns the configured retention as a duration.
func (c CleanupConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// FillConfig holds the filler content configuration
type FillConfig struct {
	Language    language.Tag `json:"language"`
	CJKFontPath string       `json:"cjk_font_path"`
}

// SystemConfig holds the system configuration
type SystemConfig struct {
	Env string `json:"env"`
	TZ  string `json:"tz"`
}

// IsProduction reports whether the app runs with production defaults.
func (c SystemConfig) IsProduction() bool {
	return c.Env != "development"
}

// DBPath returns the SQLite database location under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Storage.DataDir, "bytefit.db")
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	dataDir := getEnvString("DATA_DIR", "/app/data")

	fillLang := language.Chinese
	if tag, err := language.Parse(getEnvString("FILL_LANG", "zh")); err == nil {
		fillLang = tag
	}

	config := &Config{
		HTTP: HTTPConfig{
			Addr:        getEnvString("HTTP_ADDR", ":8080"),
			UIStaticDir: getEnvString("UI_STATIC_DIR", "/app/web"),
			UIEnabled:   getEnvBool("UI_ENABLED", true),
		},
		Storage: StorageConfig{
			DataDir:     dataDir,
			UploadDir:   getEnvString("UPLOAD_DIR", filepath.Join(dataDir, "uploads")),
			OutputDir:   getEnvString("OUTPUT_DIR", filepath.Join(dataDir, "outputs")),
			MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 16384),
		},
		Media: MediaConfig{
			FFmpegBin:            getEnvString("FFMPEG_BIN", "ffmpeg"),
			FFprobeBin:           getEnvString("FFPROBE_BIN", "ffprobe"),
			EncodeTimeoutSeconds: getEnvInt("ENCODE_TIMEOUT_SECONDS", 600),
		},
		Jobs: JobsConfig{
			Workers: getEnvInt("JOB_WORKERS", 2),
		},
		Cleanup: CleanupConfig{
			CronExpr:       getEnvString("CLEANUP_CRON", "0 3 * * *"),
			RetentionHours: getEnvInt("RETENTION_HOURS", 72),
		},
		Fill: FillConfig{
			Language:    fillLang,
			CJKFontPath: getEnvString("CJK_FONT_PATH", ""),
		},
		System: SystemConfig{
			Env: getEnvString("APP_ENV", "production"),
			TZ:  getEnvString("TZ", "UTC"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.Storage.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be positive")
	}
	if c.Media.EncodeTimeoutSeconds <= 0 {
		return fmt.Errorf("ENCODE_TIMEOUT_SECONDS must be positive")
	}
	if err := c.RuntimeSettings().Validate(); err != nil {
		return err
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
