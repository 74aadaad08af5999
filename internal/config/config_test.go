package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/scraper"
)

var envKeys = []string{
	"DATABASE_URL", "DB_URL", "LOG_LEVEL",
	"CRAWL_BASE_URL", "CRAWL_USER_AGENT", "CRAWL_ACCEPT_LANGUAGE", "CRAWL_TIMEOUT",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k) // nolint:errcheck
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.LogLevel != logger.LevelInfo {
		t.Errorf("LogLevel = %q, want INFO", cfg.LogLevel)
	}
	if cfg.BaseURL != scraper.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.UserAgent != scraper.DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.AcceptLanguage != "ko-KR,ko;q=0.9,en;q=0.8" {
		t.Errorf("AcceptLanguage = %q", cfg.AcceptLanguage)
	}
	if cfg.Timeout != 20*time.Second {
		t.Errorf("Timeout = %v, want 20s", cfg.Timeout)
	}
	if err := cfg.RequireDatabase(); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Errorf("RequireDatabase() = %v, want ErrMissingDatabaseURL", err)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tournaments")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CRAWL_BASE_URL", "http://localhost:8080/")
	t.Setenv("CRAWL_TIMEOUT", "5s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseURL != "postgres://localhost/tournaments" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.LogLevel != logger.LevelDebug {
		t.Errorf("LogLevel = %q, want DEBUG", cfg.LogLevel)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if err := cfg.RequireDatabase(); err != nil {
		t.Errorf("RequireDatabase() = %v", err)
	}
}

func TestLoad_AltDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://alt/db")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://alt/db" {
		t.Errorf("DatabaseURL = %q, want DB_URL value", cfg.DatabaseURL)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=postgres://from-file/db\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://from-file/db" {
		t.Errorf("DatabaseURL = %q, want value from file", cfg.DatabaseURL)
	}
	if cfg.LogLevel != logger.LevelError {
		t.Errorf("LogLevel = %q, environment should win over the file", cfg.LogLevel)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"bad timeout", "CRAWL_TIMEOUT", "soon", true},
		{"negative timeout", "CRAWL_TIMEOUT", "-1s", true},
		{"unknown log level falls back", "LOG_LEVEL", "chatty", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := FromEnv()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.LogLevel != logger.LevelInfo {
				t.Errorf("LogLevel = %q, want INFO", cfg.LogLevel)
			}
		})
	}
}
