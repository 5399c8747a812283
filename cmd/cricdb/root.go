package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cricdb/internal/config"
	"cricdb/internal/slogutil"
	"cricdb/internal/storage"
	"cricdb/internal/version"

	"github.com/spf13/cobra"
)

var (
	// configFlag is the CLI --config flag value
	configFlag string
	// verboseFlag raises the log level one step per occurrence
	verboseFlag int
	// quietFlag suppresses everything below warnings
	quietFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "cricdb",
	Short: "cricdb - cricket match database",
	Long: `cricdb ingests raw Cricsheet JSON match records into a relational store
(SQLite by default, PostgreSQL optionally) and answers a fixed catalog of
aggregate cricket statistics over the loaded matches.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cricdb version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Config file (default: cricdb.json or cricdb.yaml in the working directory)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v",
		"Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Only log warnings and errors")
}

// loadConfig resolves the effective configuration.
// Precedence: --config file > cricdb.{json,yaml} in cwd > defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFile(configFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger. The -v and -q flags override the
// configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verboseFlag > 0 || quietFlag {
		level = slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	}
	return slogutil.NewLogger(os.Stderr, level)
}

// openStore opens the configured store for a command's lifetime.
func openStore(cfg *config.Config, logger *slog.Logger) (*storage.DB, error) {
	return storage.Open(cfg.Storage, logger)
}

// newContext returns a context cancelled on SIGINT or SIGTERM, so a long load
// commits the match in flight and stops cleanly.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
