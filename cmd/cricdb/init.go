package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the cricket database schema",
	Long: `Creates the teams, matches, innings, and deliveries tables in the
configured store. Safe to run repeatedly: an existing schema at the current
version is left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
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

	fmt.Println("Schema ready.")
	if cfg.Storage.Driver == "sqlite" {
		fmt.Printf("Database at: %s\n", cfg.Storage.Path)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'cricdb load <path>' to ingest Cricsheet JSON records")
	fmt.Println("  2. Run 'cricdb report --all' to see the statistics")

	return nil
}
