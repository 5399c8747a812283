package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cricdb/internal/config"
	"cricdb/internal/errors"
	"cricdb/internal/slogutil"
	"cricdb/internal/storage"
)

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	cfg := config.StorageConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := storage.Open(cfg, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return db
}

func newTestLoader(db *storage.DB, onDuplicate string) *Loader {
	return New(db, slogutil.NewDiscardLogger(), config.LoadConfig{OnDuplicate: onDuplicate})
}

// validDoc is a minimal two-innings v2 record with the given match id and
// winner. Each innings is a single legal delivery.
func validDoc(matchID, winner string) string {
	return fmt.Sprintf(`{
		"info": {
			"match_id": %q,
			"match_type": "T20",
			"dates": ["2024-06-01"],
			"teams": ["Alpha", "Beta"],
			"venue": "Test Ground",
			"toss": {"winner": "Alpha", "decision": "bat"},
			"outcome": {"winner": %q, "by": {"runs": 4}}
		},
		"innings": [
			{"team": "Alpha", "overs": [{"over": 0, "deliveries": [
				{"batter": "A One", "bowler": "B One", "non_striker": "A Two",
				 "runs": {"batter": 4, "extras": 0, "total": 4}}
			]}]},
			{"team": "Beta", "overs": [{"over": 0, "deliveries": [
				{"batter": "B One", "bowler": "A One", "non_striker": "B Two",
				 "runs": {"batter": 0, "extras": 0, "total": 0}}
			]}]}
		]
	}`, matchID, winner)
}

// badTotalDoc declares a runs total that does not match batter plus extras.
func badTotalDoc(matchID string) string {
	return fmt.Sprintf(`{
		"info": {
			"match_id": %q,
			"match_type": "T20",
			"teams": ["Alpha", "Beta"],
			"toss": {"winner": "Alpha", "decision": "bat"},
			"outcome": {"winner": "Alpha", "by": {"runs": 1}}
		},
		"innings": [
			{"team": "Alpha", "overs": [{"over": 0, "deliveries": [
				{"batter": "A One", "bowler": "B One", "non_striker": "A Two",
				 "runs": {"batter": 1, "extras": 0, "total": 9}}
			]}]}
		]
	}`, matchID)
}

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func matchCount(t *testing.T, db *storage.DB) int {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM matches").Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestRunLoadsValidRecords(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeFile(t, dir, "1001.json", validDoc("1001", "Alpha"))
	writeFile(t, dir, "1002.json", validDoc("1002", "Beta"))

	summary, err := newTestLoader(db, config.DuplicateReject).Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.RunID == "" {
		t.Error("expected a run id")
	}
	if summary.Records != 2 || summary.Loaded != 2 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if got := matchCount(t, db); got != 2 {
		t.Errorf("expected 2 matches stored, got %d", got)
	}
}

func TestRunBadRecordDoesNotAbort(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeFile(t, dir, "1001.json", validDoc("1001", "Alpha"))
	writeFile(t, dir, "broken.json", badTotalDoc("1002"))
	writeFile(t, dir, "garbage.json", "{not json")

	summary, err := newTestLoader(db, config.DuplicateReject).Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Loaded != 1 {
		t.Errorf("expected 1 loaded, got %d", summary.Loaded)
	}
	if summary.Failed != 2 {
		t.Errorf("expected 2 failed, got %d", summary.Failed)
	}
	if summary.ByCode[errors.DataIntegrity] != 1 {
		t.Errorf("expected 1 DATA_INTEGRITY failure, got %d", summary.ByCode[errors.DataIntegrity])
	}
	if summary.ByCode[errors.BadRecord] != 1 {
		t.Errorf("expected 1 BAD_RECORD failure, got %d", summary.ByCode[errors.BadRecord])
	}

	// The failed match must leave no partial rows behind.
	var n int
	err = db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM deliveries WHERE match_id = ?", "1002").Scan(&n)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no rows for the failed match, found %d deliveries", n)
	}
}

func TestRunDuplicateReject(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeFile(t, dir, "1001.json", validDoc("1001", "Alpha"))
	loader := newTestLoader(db, config.DuplicateReject)

	if _, err := loader.Run(context.Background(), []string{dir}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second, err := loader.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Loaded != 0 || second.Skipped != 1 || second.Failed != 0 {
		t.Errorf("unexpected second-run summary: %+v", second)
	}
	if got := matchCount(t, db); got != 1 {
		t.Errorf("expected 1 match after reloading, got %d", got)
	}
}

func TestRunDuplicateReplace(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeFile(t, dir, "1001.json", validDoc("1001", "Alpha"))
	loader := newTestLoader(db, config.DuplicateReplace)

	if _, err := loader.Run(context.Background(), []string{dir}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	writeFile(t, dir, "1001.json", validDoc("1001", "Beta"))
	second, err := loader.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Loaded != 1 || second.Skipped != 0 {
		t.Errorf("unexpected second-run summary: %+v", second)
	}

	var winner string
	err = db.QueryRowContext(context.Background(),
		"SELECT winner FROM matches WHERE match_id = ?", "1001").Scan(&winner)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if winner != "Beta" {
		t.Errorf("expected replaced winner Beta, got %q", winner)
	}
	if got := matchCount(t, db); got != 1 {
		t.Errorf("expected 1 match after replace, got %d", got)
	}
}

func TestRunMissingPath(t *testing.T) {
	db := setupTestDB(t)
	loader := newTestLoader(db, config.DuplicateReject)

	_, err := loader.Run(context.Background(), []string{filepath.Join(t.TempDir(), "absent")})
	if err == nil {
		t.Fatal("expected an error for a missing input path")
	}
}

func TestRunCancelled(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writeFile(t, dir, "1001.json", validDoc("1001", "Alpha"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(db, config.DuplicateReject).Run(ctx, []string{dir})
	if err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
