package storage

import (
	"context"
	"testing"

	"cricdb/internal/config"
	"cricdb/internal/errors"
	"cricdb/internal/model"
)

// fixtureMatch builds a small two-innings match with four deliveries.
func fixtureMatch(matchID string) *model.MatchRows {
	winner := "Alpha"
	resultType := "runs"
	margin := 3
	return &model.MatchRows{
		Match: model.Match{
			MatchID:      matchID,
			MatchType:    "T20",
			Team1:        "Alpha",
			Team2:        "Beta",
			Winner:       &winner,
			ResultType:   &resultType,
			ResultMargin: &margin,
		},
		Innings: []model.Innings{
			{MatchID: matchID, InningsNum: 1, BattingTeam: "Alpha", BowlingTeam: "Beta", TotalRuns: 10, TotalWickets: 0, Overs: 0.5},
			{MatchID: matchID, InningsNum: 2, BattingTeam: "Beta", BowlingTeam: "Alpha", TotalRuns: 7, TotalWickets: 1, Overs: 0.5},
		},
		Deliveries: []model.Delivery{
			{MatchID: matchID, InningsNum: 1, Over: 0, Ball: 1, BattingTeam: "Alpha", BowlingTeam: "Beta", Batter: "p1", NonStriker: "p2", Bowler: "q1", RunsBatter: 4, RunsTotal: 4},
			{MatchID: matchID, InningsNum: 1, Over: 0, Ball: 2, BattingTeam: "Alpha", BowlingTeam: "Beta", Batter: "p1", NonStriker: "p2", Bowler: "q1", RunsBatter: 6, RunsTotal: 6},
			{MatchID: matchID, InningsNum: 2, Over: 0, Ball: 1, BattingTeam: "Beta", BowlingTeam: "Alpha", Batter: "q1", NonStriker: "q2", Bowler: "p1", RunsBatter: 7, RunsTotal: 7},
			{MatchID: matchID, InningsNum: 2, Over: 0, Ball: 2, BattingTeam: "Beta", BowlingTeam: "Alpha", Batter: "q2", NonStriker: "q1", Bowler: "p1", WicketKind: strPtr("bowled"), PlayerOut: strPtr("q2")},
		},
	}
}

func strPtr(s string) *string { return &s }

func tableCounts(t *testing.T, db *DB) *TableCounts {
	t.Helper()
	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	return counts
}

func TestWriteMatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.WriteMatch(ctx, fixtureMatch("m1"), config.DuplicateReject); err != nil {
		t.Fatalf("WriteMatch: %v", err)
	}

	exists, err := db.HasMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("HasMatch: %v", err)
	}
	if !exists {
		t.Error("HasMatch = false after write")
	}

	var winner string
	if err := db.QueryRowContext(ctx,
		"SELECT winner FROM matches WHERE match_id = ?", "m1").Scan(&winner); err != nil {
		t.Fatalf("read match: %v", err)
	}
	if winner != "Alpha" {
		t.Errorf("winner = %q, want Alpha", winner)
	}
}

func TestWriteMatchDuplicateReject(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.WriteMatch(ctx, fixtureMatch("m1"), config.DuplicateReject); err != nil {
		t.Fatalf("first write: %v", err)
	}
	before := tableCounts(t, db)

	err := db.WriteMatch(ctx, fixtureMatch("m1"), config.DuplicateReject)
	if err == nil {
		t.Fatal("expected DUPLICATE_MATCH on re-run")
	}
	if !errors.HasCode(err, errors.DuplicateMatch) {
		t.Errorf("error code = %s, want DUPLICATE_MATCH", errors.CodeOf(err))
	}

	// Counts unchanged after the rejected attempt
	after := tableCounts(t, db)
	if *after != *before {
		t.Errorf("counts changed by rejected duplicate: before %+v, after %+v", before, after)
	}
}

func TestWriteMatchDuplicateReplace(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.WriteMatch(ctx, fixtureMatch("m1"), config.DuplicateReject); err != nil {
		t.Fatalf("first write: %v", err)
	}
	before := tableCounts(t, db)

	// Replacement carries a corrected winner
	replacement := fixtureMatch("m1")
	newWinner := "Beta"
	replacement.Match.Winner = &newWinner
	if err := db.WriteMatch(ctx, replacement, config.DuplicateReplace); err != nil {
		t.Fatalf("replace write: %v", err)
	}

	// Counts unchanged overall, content replaced
	after := tableCounts(t, db)
	if *after != *before {
		t.Errorf("replace changed counts: before %+v, after %+v", before, after)
	}
	var winner string
	if err := db.QueryRowContext(ctx,
		"SELECT winner FROM matches WHERE match_id = ?", "m1").Scan(&winner); err != nil {
		t.Fatalf("read match: %v", err)
	}
	if winner != "Beta" {
		t.Errorf("winner = %q, want replaced value Beta", winner)
	}
}

func TestWriteMatchRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Duplicate (over, ball) within an innings violates the delivery primary
	// key mid-transaction; nothing from the match may survive.
	bad := fixtureMatch("m1")
	bad.Deliveries = append(bad.Deliveries, bad.Deliveries[0])

	err := db.WriteMatch(ctx, bad, config.DuplicateReject)
	if err == nil {
		t.Fatal("expected a storage error for conflicting delivery rows")
	}
	if !errors.HasCode(err, errors.Storage) {
		t.Errorf("error code = %s, want STORAGE", errors.CodeOf(err))
	}

	counts := tableCounts(t, db)
	if counts.Matches != 0 || counts.Innings != 0 || counts.Deliveries != 0 || counts.Teams != 0 {
		t.Errorf("partial rows survived a failed write: %+v", counts)
	}

	exists, err := db.HasMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("HasMatch: %v", err)
	}
	if exists {
		t.Error("failed match must not be visible")
	}
}

func TestWriteMatchIndependentMatches(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		if err := db.WriteMatch(ctx, fixtureMatch(id), config.DuplicateReject); err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
	}

	counts := tableCounts(t, db)
	if counts.Matches != 3 || counts.Deliveries != 12 {
		t.Errorf("counts = %+v, want 3 matches / 12 deliveries", counts)
	}
	// Shared team names collapse in the lookup
	if counts.Teams != 2 {
		t.Errorf("teams = %d, want 2", counts.Teams)
	}
}
