// Package config reads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/scraper"
)

// DefaultEnvFile is loaded when no --env-file is given.
const DefaultEnvFile = ".env"

// ErrMissingDatabaseURL is returned by RequireDatabase when neither
// DATABASE_URL nor DB_URL is set.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL (or DB_URL) is not set")

type Config struct {
	DatabaseURL string
	LogLevel    logger.Level

	BaseURL        string
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
}

// Load reads envFile (DefaultEnvFile when empty) into the process
// environment, then builds a Config from it. A missing env file is not an
// error; variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	var c Config

	c.DatabaseURL = firstEnv("DATABASE_URL", "DB_URL")

	level, err := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logger.Warn("unknown LOG_LEVEL, using INFO", logger.Fields{"value": os.Getenv("LOG_LEVEL")})
	}
	c.LogLevel = level

	c.BaseURL = strings.TrimRight(envOr("CRAWL_BASE_URL", scraper.DefaultBaseURL), "/")
	c.UserAgent = envOr("CRAWL_USER_AGENT", scraper.DefaultUserAgent)
	c.AcceptLanguage = envOr("CRAWL_ACCEPT_LANGUAGE", scraper.DefaultAcceptLanguage)

	c.Timeout = scraper.DefaultTimeout
	if raw := strings.TrimSpace(os.Getenv("CRAWL_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return c, fmt.Errorf("parsing CRAWL_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return c, fmt.Errorf("CRAWL_TIMEOUT must be positive, got %s", d)
		}
		c.Timeout = d
	}

	return c, nil
}

// RequireDatabase checks that a connection string is configured.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
