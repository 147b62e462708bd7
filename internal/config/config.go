package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sadopc/billr/internal/logger"
	"github.com/sadopc/billr/internal/store"
)

type Config struct {
	// Storage
	DBPath string

	// Where exported PDFs and reports are written
	ExportDir string

	// PDF rendering
	ChromeRemoteURL string
	ChromeNoSandbox bool
	ExportTimeout   time.Duration

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment, after loading any .env
// file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaultDB, err := store.DefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve default db path: %w", err)
	}
	home, _ := os.UserHomeDir()

	config := &Config{
		DBPath:          getEnv("BILLR_DB_PATH", defaultDB),
		ExportDir:       getEnv("BILLR_EXPORT_DIR", home),
		ChromeRemoteURL: getEnv("CHROME_REMOTE_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:       getEnv("LOG_OUTPUT", ""),
	}

	if config.ChromeNoSandbox, err = strconv.ParseBool(getEnv("CHROME_NO_SANDBOX", "false")); err != nil {
		return nil, fmt.Errorf("CHROME_NO_SANDBOX: %w", err)
	}
	if config.ExportTimeout, err = time.ParseDuration(getEnv("BILLR_EXPORT_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("BILLR_EXPORT_TIMEOUT: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("BILLR_DB_PATH is required")
	}
	if c.ExportTimeout <= 0 {
		return fmt.Errorf("BILLR_EXPORT_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns the logger configuration. The TUI owns the
// terminal, so when no output is configured logs go to billr.log next to
// the database.
func (c *Config) GetLoggerConfig(tui bool) logger.LogConfig {
	output := c.LogOutput
	if output == "" {
		output = "stderr"
		if tui {
			output = filepath.Join(filepath.Dir(c.DBPath), "billr.log")
		}
	}
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     output,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
