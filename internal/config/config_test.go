package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ListenAddr: ":8080",
		LogFormat:  "json",
		LogLevel:   "info",
		Storage:    StorageConfig{Driver: "sqlite", SQLite: SQLiteConfig{Path: "test.db"}},
		Upstream: UpstreamConfig{
			BaseURL: "https://api.open-meteo.com/v1/forecast",
			Timeout: 30 * time.Second,
			Source:  "open-meteo",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid sqlite config", mutate: func(*Config) {}},
		{
			name: "valid postgres config",
			mutate: func(c *Config) {
				c.Storage = StorageConfig{Driver: "postgres", Postgres: PostgresConfig{DSN: "postgres://localhost/db"}}
			},
		},
		{name: "invalid driver", mutate: func(c *Config) { c.Storage.Driver = "mysql" }, wantErr: true},
		{name: "sqlite missing path", mutate: func(c *Config) { c.Storage.SQLite.Path = "" }, wantErr: true},
		{
			name:    "postgres missing dsn",
			mutate:  func(c *Config) { c.Storage = StorageConfig{Driver: "postgres"} },
			wantErr: true,
		},
		{name: "bad listen addr", mutate: func(c *Config) { c.ListenAddr = "8080" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "relative base url", mutate: func(c *Config) { c.Upstream.BaseURL = "/v1/forecast" }, wantErr: true},
		{name: "non-http base url", mutate: func(c *Config) { c.Upstream.BaseURL = "ftp://example.com/x" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Upstream.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `
listen_addr: ":9090"
log_format: text
log_level: debug

storage:
  driver: sqlite
  sqlite:
    path: data/weather.db

upstream:
  timeout: 5s
  source: test-feed
`
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want %q", cfg.ListenAddr, ":9090")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("log_format = %q, want text", cfg.LogFormat)
	}
	if cfg.DSN() != "data/weather.db" {
		t.Errorf("DSN() = %q, want data/weather.db", cfg.DSN())
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("upstream.timeout = %s, want 5s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Source != "test-feed" {
		t.Errorf("upstream.source = %q, want test-feed", cfg.Upstream.Source)
	}
	if cfg.Upstream.BaseURL != "https://api.open-meteo.com/v1/forecast" {
		t.Errorf("upstream.base_url default = %q", cfg.Upstream.BaseURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("listen_addr: \":9090\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WEATHERREPORTD_STORAGE_DRIVER", "postgres")
	t.Setenv("WEATHERREPORTD_STORAGE_POSTGRES_DSN", "postgres://weather@db/weather")
	t.Setenv("WEATHERREPORTD_UPSTREAM_TIMEOUT", "10s")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Storage.Driver)
	}
	if cfg.DSN() != "postgres://weather@db/weather" {
		t.Errorf("DSN() = %q", cfg.DSN())
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("upstream.timeout = %s, want 10s", cfg.Upstream.Timeout)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte("WEATHERREPORTD_LISTEN_ADDR=127.0.0.1:7070\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_level: warn\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process env directly; register cleanup through t.Setenv.
	t.Setenv("WEATHERREPORTD_LISTEN_ADDR", "")
	os.Unsetenv("WEATHERREPORTD_LISTEN_ADDR") //nolint:errcheck

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7070" {
		t.Errorf("listen_addr = %q, want value from %s", cfg.ListenAddr, DotEnvFile)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log_level = %q, want warn", cfg.LogLevel)
	}
}

func TestConfig_DSN(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		cfg := Config{Storage: StorageConfig{Driver: "sqlite", SQLite: SQLiteConfig{Path: "/tmp/test.db"}}}
		if dsn := cfg.DSN(); dsn != "/tmp/test.db" {
			t.Errorf("DSN() = %q, want %q", dsn, "/tmp/test.db")
		}
	})

	t.Run("postgres", func(t *testing.T) {
		cfg := Config{Storage: StorageConfig{Driver: "postgres", Postgres: PostgresConfig{DSN: "postgres://localhost/db"}}}
		if dsn := cfg.DSN(); dsn != "postgres://localhost/db" {
			t.Errorf("DSN() = %q, want %q", dsn, "postgres://localhost/db")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
