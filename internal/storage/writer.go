package storage

import (
	"context"
	"database/sql"

	"cricdb/internal/config"
	"cricdb/internal/errors"
	"cricdb/internal/model"
)

// HasMatch reports whether the given match_id has already been loaded.
func (db *DB) HasMatch(ctx context.Context, matchID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM matches WHERE match_id = ?", matchID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(errors.Storage, "duplicate check failed", err)
	}
	return true, nil
}

// WriteMatch writes one match's rows in a single transaction: team lookup
// upserts, the match row, its innings, and its deliveries either all commit
// or all roll back. An already-loaded match_id is rejected with
// DUPLICATE_MATCH under the reject policy, or atomically replaced under the
// replace policy; under no policy can a re-run double delivery counts.
func (db *DB) WriteMatch(ctx context.Context, rows *model.MatchRows, onDuplicate string) error {
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := matchExistsTx(ctx, tx, db, rows.Match.MatchID)
		if err != nil {
			return err
		}
		if exists {
			if onDuplicate != config.DuplicateReplace {
				return errors.Newf(errors.DuplicateMatch,
					"match %s is already loaded", rows.Match.MatchID)
			}
			if err := deleteMatchTx(ctx, tx, db, rows.Match.MatchID); err != nil {
				return err
			}
		}

		if err := upsertTeamsTx(ctx, tx, db, rows.Teams()); err != nil {
			return err
		}
		if err := insertMatchTx(ctx, tx, db, &rows.Match); err != nil {
			return err
		}
		if err := insertInningsTx(ctx, tx, db, rows.Innings); err != nil {
			return err
		}
		return insertDeliveriesTx(ctx, tx, db, rows.Deliveries)
	})
	if err != nil && errors.CodeOf(err) == errors.Storage {
		return errors.Wrap(errors.Storage, "write match "+rows.Match.MatchID, err)
	}
	return err
}

func matchExistsTx(ctx context.Context, tx *sql.Tx, db *DB, matchID string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		db.rebind("SELECT 1 FROM matches WHERE match_id = ?"), matchID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// deleteMatchTx removes a match and its dependent rows, children first to
// satisfy the foreign keys.
func deleteMatchTx(ctx context.Context, tx *sql.Tx, db *DB, matchID string) error {
	for _, stmt := range []string{
		"DELETE FROM deliveries WHERE match_id = ?",
		"DELETE FROM innings WHERE match_id = ?",
		"DELETE FROM matches WHERE match_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, db.rebind(stmt), matchID); err != nil {
			return err
		}
	}
	return nil
}

func upsertTeamsTx(ctx context.Context, tx *sql.Tx, db *DB, teams []string) error {
	stmt, err := tx.PrepareContext(ctx, db.rebind(
		"INSERT INTO teams (team_name) VALUES (?) ON CONFLICT (team_name) DO NOTHING"))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, team := range teams {
		if _, err := stmt.ExecContext(ctx, team); err != nil {
			return err
		}
	}
	return nil
}

func insertMatchTx(ctx context.Context, tx *sql.Tx, db *DB, m *model.Match) error {
	_, err := tx.ExecContext(ctx, db.rebind(`
		INSERT INTO matches (
			match_id, match_type, match_date, venue, city, team1, team2,
			toss_winner, toss_decision, winner, result_type, result_margin,
			super_over, player_of_match
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.MatchID, m.MatchType, m.MatchDate, m.Venue, m.City, m.Team1, m.Team2,
		m.TossWinner, m.TossDecision, m.Winner, m.ResultType, m.ResultMargin,
		boolToInt(m.SuperOver), m.PlayerOfMatch)
	return err
}

func insertInningsTx(ctx context.Context, tx *sql.Tx, db *DB, innings []model.Innings) error {
	stmt, err := tx.PrepareContext(ctx, db.rebind(`
		INSERT INTO innings (
			match_id, innings_number, batting_team, bowling_team,
			total_runs, total_wickets, overs, is_super_over
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := range innings {
		inn := &innings[i]
		if _, err := stmt.ExecContext(ctx,
			inn.MatchID, inn.InningsNum, inn.BattingTeam, inn.BowlingTeam,
			inn.TotalRuns, inn.TotalWickets, inn.Overs, boolToInt(inn.IsSuperOver)); err != nil {
			return err
		}
	}
	return nil
}

func insertDeliveriesTx(ctx context.Context, tx *sql.Tx, db *DB, deliveries []model.Delivery) error {
	stmt, err := tx.PrepareContext(ctx, db.rebind(`
		INSERT INTO deliveries (
			match_id, innings_number, over, ball, batting_team, bowling_team,
			batter, non_striker, bowler, runs_batter, runs_extras, runs_total,
			extras_type, wicket_kind, player_out
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := range deliveries {
		d := &deliveries[i]
		if _, err := stmt.ExecContext(ctx,
			d.MatchID, d.InningsNum, d.Over, d.Ball, d.BattingTeam, d.BowlingTeam,
			d.Batter, d.NonStriker, d.Bowler, d.RunsBatter, d.RunsExtras, d.RunsTotal,
			d.ExtrasType, d.WicketKind, d.PlayerOut); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
