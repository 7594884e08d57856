package config

import (
	"os"
	"strconv"
	"time"

	"datapilot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Session SessionConfig
	Chart   ChartConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxFileSize   int64 // bytes
	PreviewRows   int
	InferenceRows int // sample size for column type inference
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	CookieName    string
}

// ChartConfig holds chart rendering settings
type ChartConfig struct {
	Width         int
	Height        int
	HistogramBins int
	BarTopN       int
	PieTopN       int
	MaxPerSession int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			ReadTimeout:     getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Upload: UploadConfig{
			MaxFileSize:   int64(getEnvIntOrDefault("UPLOAD_MAX_FILE_SIZE_MB", 50)) * 1024 * 1024,
			PreviewRows:   getEnvIntOrDefault("UPLOAD_PREVIEW_ROWS", 15),
			InferenceRows: getEnvIntOrDefault("UPLOAD_INFERENCE_ROWS", 500),
		},
		Session: SessionConfig{
			TTL:           getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
			SweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			CookieName:    getEnvOrDefault("SESSION_COOKIE_NAME", "datapilot_session"),
		},
		Chart: ChartConfig{
			Width:         getEnvIntOrDefault("CHART_WIDTH", 640),
			Height:        getEnvIntOrDefault("CHART_HEIGHT", 400),
			HistogramBins: getEnvIntOrDefault("CHART_HISTOGRAM_BINS", 20),
			BarTopN:       getEnvIntOrDefault("CHART_BAR_TOP_N", 8),
			PieTopN:       getEnvIntOrDefault("CHART_PIE_TOP_N", 5),
			MaxPerSession: getEnvIntOrDefault("CHART_MAX_PER_SESSION", 9),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxFileSize <= 0 {
		return errors.ConfigInvalid("upload max file size must be positive")
	}
	if config.Chart.HistogramBins < 2 {
		return errors.ConfigInvalid("histogram bin count must be at least 2")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("session TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
