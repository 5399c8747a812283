package storage

import (
	"context"
	"path/filepath"
	"testing"

	"cricdb/internal/config"
	"cricdb/internal/slogutil"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	cfg := config.StorageConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "cricket.db"),
	}
	db, err := Open(cfg, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}
	return db
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Running again against an initialized store must be a no-op
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("third EnsureSchema failed: %v", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}

	var rows int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&rows); err != nil {
		t.Fatalf("count schema_version rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("schema_version rows = %d, want 1 (no duplicates on re-run)", rows)
	}
}

func TestSchemaTablesExist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"teams", "matches", "innings", "deliveries"} {
		var count int64
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
		if count != 0 {
			t.Errorf("table %s should start empty, has %d rows", table, count)
		}
	}
}

func TestCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.WriteMatch(ctx, fixtureMatch("m1"), config.DuplicateReject); err != nil {
		t.Fatalf("WriteMatch: %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Matches != 1 {
		t.Errorf("matches = %d, want 1", counts.Matches)
	}
	if counts.Innings != 2 {
		t.Errorf("innings = %d, want 2", counts.Innings)
	}
	if counts.Deliveries != 4 {
		t.Errorf("deliveries = %d, want 4", counts.Deliveries)
	}
	if counts.Teams != 2 {
		t.Errorf("teams = %d, want 2", counts.Teams)
	}
}

func TestRebind(t *testing.T) {
	sqlite := &DB{driver: config.DriverSQLite}
	if got := sqlite.rebind("SELECT 1 FROM matches WHERE match_id = ?"); got != "SELECT 1 FROM matches WHERE match_id = ?" {
		t.Errorf("sqlite rebind changed the query: %q", got)
	}

	pg := &DB{driver: config.DriverPostgres}
	got := pg.rebind("INSERT INTO teams (team_name) VALUES (?), (?), (?)")
	want := "INSERT INTO teams (team_name) VALUES ($1), ($2), ($3)"
	if got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}
