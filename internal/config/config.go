package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Database   DatabaseConfig
	Generation GenerationOptions
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds Postgres connection parameters. An empty URL means the
// service runs without persistence and only dry-run generation is available.
type DatabaseConfig struct {
	URL           string
	MigrationsDir string
}

// GenerationOptions bounds one content generation run. Loaded once at
// startup and passed by value; requested targets are clamped into the
// min/max ranges.
type GenerationOptions struct {
	MinStatistics    int
	MaxStatistics    int
	MinAntystics     int
	MaxAntystics     int
	SourcesPath      string
	FetchTimeout     time.Duration
	HealthTimeout    time.Duration
	WorkerCount      int
	FetchRatePerSec  float64
	FetchBurst       int
	ScheduleInterval time.Duration // 0 disables scheduled runs
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultMinStatistics = 0
	defaultMaxStatistics = 10
	defaultMinAntystics  = 0
	defaultMaxAntystics  = 5
	defaultSourcesPath   = "./sources.yaml"
	defaultFetchTimeout  = 30 * time.Second
	defaultHealthTimeout = 5 * time.Second
	defaultWorkerCount   = 3
	defaultFetchRate     = 2.0
	defaultFetchBurst    = 4
	defaultMigrationsDir = "./migrations"
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided or invalid.
func Load() (Config, error) {
	// Cloud Run sets PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MigrationsDir: getEnv("MIGRATIONS_DIR", defaultMigrationsDir),
		},
		Generation: GenerationOptions{
			MinStatistics:   defaultMinStatistics,
			MaxStatistics:   defaultMaxStatistics,
			MinAntystics:    defaultMinAntystics,
			MaxAntystics:    defaultMaxAntystics,
			SourcesPath:     getEnv("SOURCES_PATH", defaultSourcesPath),
			FetchTimeout:    defaultFetchTimeout,
			HealthTimeout:   defaultHealthTimeout,
			WorkerCount:     defaultWorkerCount,
			FetchRatePerSec: defaultFetchRate,
			FetchBurst:      defaultFetchBurst,
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if err := loadGeneration(&cfg.Generation); err != nil {
		return Config{}, err
	}

	if cfg.Generation.MinStatistics > cfg.Generation.MaxStatistics {
		return Config{}, fmt.Errorf("GENERATION_MIN_STATISTICS (%d) exceeds GENERATION_MAX_STATISTICS (%d)",
			cfg.Generation.MinStatistics, cfg.Generation.MaxStatistics)
	}
	if cfg.Generation.MinAntystics > cfg.Generation.MaxAntystics {
		return Config{}, fmt.Errorf("GENERATION_MIN_ANTYSTICS (%d) exceeds GENERATION_MAX_ANTYSTICS (%d)",
			cfg.Generation.MinAntystics, cfg.Generation.MaxAntystics)
	}

	return cfg, nil
}

func loadGeneration(opts *GenerationOptions) error {
	intVars := []struct {
		name   string
		target *int
	}{
		{"GENERATION_MIN_STATISTICS", &opts.MinStatistics},
		{"GENERATION_MAX_STATISTICS", &opts.MaxStatistics},
		{"GENERATION_MIN_ANTYSTICS", &opts.MinAntystics},
		{"GENERATION_MAX_ANTYSTICS", &opts.MaxAntystics},
		{"GENERATION_WORKERS", &opts.WorkerCount},
	}

	for _, v := range intVars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s: must be a non-negative integer", v.name)
		}
		*v.target = n
	}

	if opts.WorkerCount == 0 {
		opts.WorkerCount = 1
	}

	if v := os.Getenv("GENERATION_FETCH_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_FETCH_TIMEOUT_SECONDS: %w", err)
		}
		opts.FetchTimeout = d
	}

	if v := os.Getenv("GENERATION_HEALTH_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_HEALTH_TIMEOUT_SECONDS: %w", err)
		}
		opts.HealthTimeout = d
	}

	if v := os.Getenv("GENERATION_INTERVAL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 0 {
			return fmt.Errorf("invalid GENERATION_INTERVAL_MINUTES: must be a non-negative integer")
		}
		opts.ScheduleInterval = time.Duration(minutes) * time.Minute
	}

	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
