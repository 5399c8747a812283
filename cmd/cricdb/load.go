package main

import (
	"fmt"
	"sort"
	"time"

	"cricdb/internal/errors"
	"cricdb/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	loadOnDuplicate string
	loadSample      int
)

var loadCmd = &cobra.Command{
	Use:   "load <path>...",
	Short: "Ingest Cricsheet JSON records",
	Long: `Parses Cricsheet JSON match records and writes them to the store.
Each path may be a .json file, a directory (walked recursively), or a .zip
archive as published by cricsheet.org.

Each match is written in its own transaction; a record that fails to parse or
violates an integrity check is skipped and counted, never fatal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadOnDuplicate, "on-duplicate", "",
		"Policy for already-loaded match ids: reject or replace (default from config)")
	loadCmd.Flags().IntVar(&loadSample, "sample", 0,
		"Load at most N records per directory or archive (0 = no limit)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if loadOnDuplicate != "" {
		cfg.Load.OnDuplicate = loadOnDuplicate
	}
	if loadSample > 0 {
		cfg.Load.SampleLimit = loadSample
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	summary, runErr := pipeline.New(db, logger, cfg.Load).Run(ctx, args)

	fmt.Printf("Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	fmt.Printf("  records: %d\n", summary.Records)
	fmt.Printf("  loaded:  %d\n", summary.Loaded)
	fmt.Printf("  skipped: %d (duplicates)\n", summary.Skipped)
	fmt.Printf("  failed:  %d\n", summary.Failed)
	if len(summary.ByCode) > 0 {
		codes := make([]string, 0, len(summary.ByCode))
		for code := range summary.ByCode {
			codes = append(codes, string(code))
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Printf("    %s: %d\n", code, summary.ByCode[errors.ErrorCode(code)])
		}
	}

	return runErr
}
