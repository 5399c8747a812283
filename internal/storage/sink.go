package storage

import (
	"context"

	"cricdb/internal/model"
)

// RowSink is the storage-agnostic contract the load pipeline writes through:
// it accepts parsed rows and commits them in per-match batches. *DB is the
// provided relational implementation; any store that can satisfy these
// semantics (all-or-nothing per match, explicit duplicate policy) can stand
// in for it.
type RowSink interface {
	// EnsureSchema idempotently prepares the target schema.
	EnsureSchema(ctx context.Context) error

	// HasMatch reports whether a match_id is already loaded.
	HasMatch(ctx context.Context, matchID string) (bool, error)

	// WriteMatch writes all rows for one match transactionally under the
	// given duplicate policy (config.DuplicateReject or
	// config.DuplicateReplace). Either every row is committed or none are.
	WriteMatch(ctx context.Context, rows *model.MatchRows, onDuplicate string) error

	Close() error
}

var _ RowSink = (*DB)(nil)
