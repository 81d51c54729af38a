package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for configuration values.
const (
	DefaultPort            = "8080"
	DefaultLogLevel        = "info"
	DefaultBufferBps       = 20.0
	DefaultDebounce        = 300 * time.Millisecond
	DefaultDBPath          = "data/scenarios.db"
	DefaultAlertCooldown   = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
	DefaultRequestTimeout  = 30 * time.Second
)

// Config holds all application configuration.
type Config struct {
	Port     string
	LogLevel string

	// Calculation settings
	BufferBps float64
	Debounce  time.Duration

	// Scenario presets; empty DBPath disables them
	DBPath string

	AlertCooldown  time.Duration
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables (and .env file if present).
func Load() Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := Config{
		Port:           DefaultPort,
		LogLevel:       DefaultLogLevel,
		BufferBps:      DefaultBufferBps,
		Debounce:       DefaultDebounce,
		DBPath:         DefaultDBPath,
		AlertCooldown:  DefaultAlertCooldown,
		CORSOrigins:    []string{"*"},
		RequestTimeout: DefaultRequestTimeout,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("BUFFER_BPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BufferBps = f
		}
	}

	if v := os.Getenv("DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Debounce = time.Duration(ms) * time.Millisecond
		}
	}

	// DB_PATH set to an empty string turns presets off.
	if v, ok := os.LookupEnv("DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v := os.Getenv("ALERT_COOLDOWN_SEC"); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.AlertCooldown = time.Duration(s) * time.Second
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.RequestTimeout = time.Duration(s) * time.Second
		}
	}

	return cfg
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug|info|warn|error, got %q", cfg.LogLevel)
	}
	if cfg.BufferBps < 0 {
		return fmt.Errorf("BUFFER_BPS must be non-negative, got %f", cfg.BufferBps)
	}
	if cfg.Debounce < 10*time.Millisecond || cfg.Debounce > 10*time.Second {
		return fmt.Errorf("DEBOUNCE_MS must be between 10ms and 10s, got %v", cfg.Debounce)
	}
	if cfg.AlertCooldown < 0 {
		return fmt.Errorf("ALERT_COOLDOWN_SEC must be non-negative, got %v", cfg.AlertCooldown)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SEC must be positive, got %v", cfg.RequestTimeout)
	}
	return nil
}

// FormatBuffer returns a human-readable string for the arbitrage buffer.
func FormatBuffer(bps float64) string {
	if bps <= 0 {
		return "none"
	}
	return fmt.Sprintf("%.0fbps (%.2f%%)", bps, bps/100)
}
