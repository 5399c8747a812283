// Package pipeline orchestrates one load run: enumerate raw records, parse
// each into rows, and write them through the row sink one match at a time.
// A bad record is skipped and counted, never fatal; all-or-nothing applies
// only within a single match's rows.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cricdb/internal/config"
	"cricdb/internal/cricsheet"
	"cricdb/internal/errors"
	"cricdb/internal/storage"
)

// Summary is the run-level report: how many records were loaded, skipped as
// duplicates, or failed, with failures broken down by error code.
type Summary struct {
	RunID    string
	Records  int
	Loaded   int
	Skipped  int // duplicates under the reject policy
	Failed   int
	ByCode   map[errors.ErrorCode]int
	Duration time.Duration
}

// Loader runs the parse-and-load pipeline against a row sink.
type Loader struct {
	sink   storage.RowSink
	logger *slog.Logger
	cfg    config.LoadConfig
}

// New creates a loader with the given sink and load policy.
func New(sink storage.RowSink, logger *slog.Logger, cfg config.LoadConfig) *Loader {
	return &Loader{sink: sink, logger: logger, cfg: cfg}
}

// Run ingests every record reachable from paths and returns the run summary.
// The error return covers run-level problems only (unreadable inputs,
// cancellation); record-level failures land in the summary.
func (l *Loader) Run(ctx context.Context, paths []string) (*Summary, error) {
	summary := &Summary{
		RunID:  uuid.New().String(),
		ByCode: make(map[errors.ErrorCode]int),
	}
	start := time.Now()
	logger := l.logger.With("run_id", summary.RunID)

	logger.Info("load run starting", "paths", len(paths), "on_duplicate", l.cfg.OnDuplicate)

	err := cricsheet.Walk(paths, l.cfg.SampleLimit, func(rec cricsheet.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Records++
		l.loadRecord(ctx, logger, rec, summary)
		return nil
	})

	summary.Duration = time.Since(start)
	logger.Info("load run finished",
		"records", summary.Records,
		"loaded", summary.Loaded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", summary.Duration)

	if err != nil {
		return summary, err
	}
	return summary, nil
}

// loadRecord parses and writes one record, folding the outcome into the
// summary. Nothing here is retried: a failed record needs re-submission.
func (l *Loader) loadRecord(ctx context.Context, logger *slog.Logger, rec cricsheet.Record, summary *Summary) {
	rows, err := cricsheet.Parse(rec.Name, rec.Data)
	if err != nil {
		code := errors.CodeOf(err)
		summary.Failed++
		summary.ByCode[code]++
		logger.Warn("record skipped", "record", rec.Name, "source", rec.Source, "error", err)
		return
	}

	if err := l.sink.WriteMatch(ctx, rows, l.cfg.OnDuplicate); err != nil {
		if errors.HasCode(err, errors.DuplicateMatch) {
			summary.Skipped++
			logger.Info("duplicate match skipped",
				"record", rec.Name, "match_id", rows.Match.MatchID)
			return
		}
		code := errors.CodeOf(err)
		summary.Failed++
		summary.ByCode[code]++
		logger.Warn("record skipped", "record", rec.Name, "source", rec.Source, "error", err)
		return
	}

	summary.Loaded++
	logger.Debug("match loaded",
		"match_id", rows.Match.MatchID,
		"innings", len(rows.Innings),
		"deliveries", len(rows.Deliveries))
}
