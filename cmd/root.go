package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/chadmayfield/weatherreportd/internal/config"
	"github.com/chadmayfield/weatherreportd/internal/openmeteo"
	"github.com/chadmayfield/weatherreportd/internal/store"
)

var (
	cfgFile   string
	logFormat string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "weatherreportd",
	Short: "Hourly weather ingest and report service",
	Long: `weatherreportd fetches hourly temperature and humidity for a location from
the Open-Meteo API, stores each hour once in SQLite or PostgreSQL, and serves
spreadsheet and PDF reports of the stored readings over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text or json, overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, overrides config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration, applies the global flag overrides and
// installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := setupLogging(cfg.LogFormat, cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(format, level string) error {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})
	case "json", "":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	default:
		return fmt.Errorf("log format must be 'text' or 'json', got %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.DSN())
	case "postgres":
		return store.NewPostgresStore(cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func newFetcher(cfg *config.Config) *openmeteo.Client {
	return openmeteo.NewClient(slog.Default(),
		openmeteo.WithBaseURL(cfg.Upstream.BaseURL),
		openmeteo.WithTimeout(cfg.Upstream.Timeout),
		openmeteo.WithSource(cfg.Upstream.Source),
	)
}
