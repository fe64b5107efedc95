package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Config captures environment driven configuration values for the timetable service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	GridCacheSize int
	GridCacheTTL  time.Duration
	// TemplateFile names an optional TOML file with template form defaults.
	TemplateFile string
	LogLevel     slog.Level
}

// Load parses configuration values from the current process environment.
//
// Variables from TIMETABLE_ENV_FILE, or from .env in the working directory
// when present, are loaded first without overriding the real environment.
// Invalid values are collected and reported together.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "timetable.db",
		GridCacheSize: 256,
		GridCacheTTL:  5 * time.Minute,
		LogLevel:      slog.LevelInfo,
	}

	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(os.Getenv("TIMETABLE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "TIMETABLE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TIMETABLE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if sizeValue := strings.TrimSpace(os.Getenv("TIMETABLE_GRID_CACHE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size < 0 {
			invalid = append(invalid, "TIMETABLE_GRID_CACHE_SIZE")
		} else {
			cfg.GridCacheSize = size
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TIMETABLE_GRID_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TIMETABLE_GRID_CACHE_TTL")
		} else {
			cfg.GridCacheTTL = ttl
		}
	}

	cfg.TemplateFile = strings.TrimSpace(os.Getenv("TIMETABLE_TEMPLATE_FILE"))

	if levelValue := strings.TrimSpace(os.Getenv("TIMETABLE_LOG_LEVEL")); levelValue != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "TIMETABLE_LOG_LEVEL")
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func loadEnvFile() error {
	path := strings.TrimSpace(os.Getenv("TIMETABLE_ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}
