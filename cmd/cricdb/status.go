package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cricdb/internal/version"

	"github.com/spf13/cobra"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store status",
	Long:  "Displays the configured store and the current row counts.",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

// statusResponse is the status payload for JSON output
type statusResponse struct {
	Version    string `json:"version"`
	Driver     string `json:"driver"`
	Teams      int64  `json:"teams"`
	Matches    int64  `json:"matches"`
	Innings    int64  `json:"innings"`
	Deliveries int64  `json:"deliveries"`
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	counts, err := db.Counts(ctx)
	if err != nil {
		return err
	}

	resp := statusResponse{
		Version:    version.Version,
		Driver:     cfg.Storage.Driver,
		Teams:      counts.Teams,
		Matches:    counts.Matches,
		Innings:    counts.Innings,
		Deliveries: counts.Deliveries,
	}

	if statusFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("cricdb %s\n", version.Info())
	fmt.Printf("Store: %s", cfg.Storage.Driver)
	if cfg.Storage.Driver == "sqlite" {
		fmt.Printf(" (%s)", cfg.Storage.Path)
	}
	fmt.Println()
	fmt.Printf("  teams:      %d\n", resp.Teams)
	fmt.Printf("  matches:    %d\n", resp.Matches)
	fmt.Printf("  innings:    %d\n", resp.Innings)
	fmt.Printf("  deliveries: %d\n", resp.Deliveries)

	return nil
}
