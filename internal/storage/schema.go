package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// schemaDDL lists the tables and indexes of the match schema in dependency
// order. Every statement is idempotent and portable across both drivers:
// TEXT/INTEGER/REAL column types, composite primary keys, no auto-increment.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		team_name TEXT PRIMARY KEY
	)`,

	`CREATE TABLE IF NOT EXISTS matches (
		match_id        TEXT PRIMARY KEY,
		match_type      TEXT NOT NULL,
		match_date      TEXT,
		venue           TEXT,
		city            TEXT,
		team1           TEXT NOT NULL REFERENCES teams(team_name),
		team2           TEXT NOT NULL REFERENCES teams(team_name),
		toss_winner     TEXT REFERENCES teams(team_name),
		toss_decision   TEXT,
		winner          TEXT REFERENCES teams(team_name),
		result_type     TEXT,
		result_margin   INTEGER,
		super_over      INTEGER NOT NULL DEFAULT 0,
		player_of_match TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS innings (
		match_id       TEXT NOT NULL REFERENCES matches(match_id),
		innings_number INTEGER NOT NULL,
		batting_team   TEXT NOT NULL REFERENCES teams(team_name),
		bowling_team   TEXT NOT NULL REFERENCES teams(team_name),
		total_runs     INTEGER NOT NULL,
		total_wickets  INTEGER NOT NULL,
		overs          REAL NOT NULL,
		is_super_over  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, innings_number)
	)`,

	`CREATE TABLE IF NOT EXISTS deliveries (
		match_id       TEXT NOT NULL REFERENCES matches(match_id),
		innings_number INTEGER NOT NULL,
		over           INTEGER NOT NULL,
		ball           INTEGER NOT NULL,
		batting_team   TEXT NOT NULL,
		bowling_team   TEXT NOT NULL,
		batter         TEXT NOT NULL,
		non_striker    TEXT NOT NULL,
		bowler         TEXT NOT NULL,
		runs_batter    INTEGER NOT NULL,
		runs_extras    INTEGER NOT NULL,
		runs_total     INTEGER NOT NULL,
		extras_type    TEXT,
		wicket_kind    TEXT,
		player_out     TEXT,
		PRIMARY KEY (match_id, innings_number, over, ball),
		FOREIGN KEY (match_id, innings_number) REFERENCES innings(match_id, innings_number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_deliveries_batter ON deliveries(batter)`,
	`CREATE INDEX IF NOT EXISTS idx_deliveries_bowler ON deliveries(bowler)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_match_type ON matches(match_type)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner)`,
}

// EnsureSchema idempotently creates the match schema. Running it against an
// already-initialized store changes nothing. It performs DDL only, never data
// mutation.
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, ddl := range schemaDDL {
			if _, err := tx.ExecContext(ctx, ddl); err != nil {
				return fmt.Errorf("schema statement failed: %w", err)
			}
		}

		version, err := schemaVersion(ctx, tx)
		if err != nil {
			return err
		}
		if version == 0 {
			if _, err := tx.ExecContext(ctx,
				db.rebind("INSERT INTO schema_version (version) VALUES (?)"),
				currentSchemaVersion); err != nil {
				return fmt.Errorf("failed to record schema version: %w", err)
			}
			db.logger.Info("database schema initialized", "version", currentSchemaVersion)
			return nil
		}
		if version != currentSchemaVersion {
			return fmt.Errorf("database schema version %d is not supported (want %d)",
				version, currentSchemaVersion)
		}
		db.logger.Debug("database schema is up to date", "version", version)
		return nil
	})
}

func schemaVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// TableCounts reports the row counts of the four schema tables.
type TableCounts struct {
	Teams      int64
	Matches    int64
	Innings    int64
	Deliveries int64
}

// Counts returns the current row counts, reflecting the last committed load.
func (db *DB) Counts(ctx context.Context) (*TableCounts, error) {
	counts := &TableCounts{}
	for _, q := range []struct {
		table string
		dest  *int64
	}{
		{"teams", &counts.Teams},
		{"matches", &counts.Matches},
		{"innings", &counts.Innings},
		{"deliveries", &counts.Deliveries},
	} {
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return counts, nil
}
