package cricsheet

import (
	"encoding/json"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"cricdb/internal/errors"
	"cricdb/internal/model"
)

// rawBall is one delivery with its position restored, style differences
// already flattened away.
type rawBall struct {
	over int
	ball int
	ev   deliveryEvent
}

// rawInnings is one innings in either style, balls in over/ball order.
type rawInnings struct {
	team      string
	superOver bool
	balls     []rawBall
}

// Parse transforms one raw Cricsheet match record into normalized rows.
// name is the record's source name (typically the file name inside the
// archive); its stem is the match_id fallback when info.match_id is absent,
// which is how Cricsheet identifies matches in practice.
//
// Parse is a pure transform: it touches no storage and returns either a
// complete row set or a coded error describing why the record must be
// skipped.
func Parse(name string, data []byte) (*model.MatchRows, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.BadRecord, "record is not valid Cricsheet JSON", err)
	}

	matchID := doc.Info.MatchID
	if matchID == "" {
		matchID = stemOf(name)
	}
	if matchID == "" {
		return nil, errors.New(errors.MissingKey, "record has no match_id and no usable source name")
	}

	team1, team2 := "", ""
	if len(doc.Info.Teams) > 0 {
		team1 = doc.Info.Teams[0]
	}
	if len(doc.Info.Teams) > 1 {
		team2 = doc.Info.Teams[1]
	}

	innings, err := parseInnings(doc.Innings)
	if err != nil {
		return nil, err
	}

	rows := &model.MatchRows{
		Match: model.Match{
			MatchID:       matchID,
			MatchType:     doc.Info.MatchType,
			MatchDate:     normalizeDate(doc.Info.Dates),
			Venue:         optional(doc.Info.Venue),
			City:          optional(doc.Info.City),
			Team1:         team1,
			Team2:         team2,
			TossWinner:    optional(doc.Info.Toss.Winner),
			TossDecision:  optional(doc.Info.Toss.Decision),
			PlayerOfMatch: firstOf(doc.Info.PlayerOfMatch),
		},
	}
	applyOutcome(&rows.Match, doc.Info.Outcome)

	for seq, inn := range innings {
		inningsNum := seq + 1
		battingTeam := inn.team
		bowlingTeam := team1
		if battingTeam == team1 {
			bowlingTeam = team2
		}

		totalRuns := 0
		totalWickets := 0
		lastOver, lastBall := 0, 0

		for _, b := range inn.balls {
			d, err := buildDelivery(matchID, inningsNum, battingTeam, bowlingTeam, b)
			if err != nil {
				return nil, err
			}
			rows.Deliveries = append(rows.Deliveries, *d)

			totalRuns += d.RunsTotal
			if d.WicketKind != nil {
				totalWickets++
			}
			lastOver, lastBall = b.over, b.ball
		}

		if inn.superOver {
			rows.Match.SuperOver = true
		}
		rows.Innings = append(rows.Innings, model.Innings{
			MatchID:      matchID,
			InningsNum:   inningsNum,
			BattingTeam:  battingTeam,
			BowlingTeam:  bowlingTeam,
			TotalRuns:    totalRuns,
			TotalWickets: totalWickets,
			Overs:        float64(lastOver) + float64(lastBall)/6.0,
			IsSuperOver:  inn.superOver,
		})
	}

	return rows, nil
}

// buildDelivery validates and converts one ball. The declared runs total is
// checked against batter + extras and never silently corrected; a wicket kind
// and the dismissed player must appear together. The dismissed player is
// taken verbatim from the record: run-outs can dismiss the non-striker.
func buildDelivery(matchID string, inningsNum int, battingTeam, bowlingTeam string, b rawBall) (*model.Delivery, error) {
	runsBatter := b.ev.Runs.batterRuns()
	runsExtras := b.ev.Runs.Extras
	runsTotal := runsBatter + runsExtras
	if b.ev.Runs.Total != nil && *b.ev.Runs.Total != runsTotal {
		return nil, errors.Newf(errors.DataIntegrity,
			"match %s innings %d over %d.%d: declared total %d != batter %d + extras %d",
			matchID, inningsNum, b.over, b.ball, *b.ev.Runs.Total, runsBatter, runsExtras)
	}

	d := &model.Delivery{
		MatchID:     matchID,
		InningsNum:  inningsNum,
		Over:        b.over,
		Ball:        b.ball,
		BattingTeam: battingTeam,
		BowlingTeam: bowlingTeam,
		Batter:      b.ev.striker(),
		NonStriker:  b.ev.NonStriker,
		Bowler:      b.ev.Bowler,
		RunsBatter:  runsBatter,
		RunsExtras:  runsExtras,
		RunsTotal:   runsTotal,
		ExtrasType:  extrasType(b.ev.Extras),
	}

	if w := b.ev.wicket(); w != nil {
		if w.Kind == "" || w.PlayerOut == "" {
			return nil, errors.Newf(errors.DataIntegrity,
				"match %s innings %d over %d.%d: wicket kind and player_out must appear together",
				matchID, inningsNum, b.over, b.ball)
		}
		d.WicketKind = optional(w.Kind)
		d.PlayerOut = optional(w.PlayerOut)
	}

	return d, nil
}

// parseInnings detects the record style and normalizes the innings list.
func parseInnings(raw []json.RawMessage) ([]rawInnings, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var probe struct {
		Team  *string         `json:"team"`
		Overs json.RawMessage `json:"overs"`
	}
	if err := json.Unmarshal(raw[0], &probe); err == nil && probe.Team != nil && len(probe.Overs) > 0 {
		return parseInningsV2(raw)
	}
	return parseInningsV1(raw)
}

func parseInningsV2(raw []json.RawMessage) ([]rawInnings, error) {
	out := make([]rawInnings, 0, len(raw))
	for _, entry := range raw {
		var inn inningsV2
		if err := json.Unmarshal(entry, &inn); err != nil {
			return nil, errors.Wrap(errors.BadRecord, "malformed v2 innings entry", err)
		}
		ri := rawInnings{team: inn.Team, superOver: inn.SuperOver}
		for _, over := range inn.Overs {
			for i, ev := range over.Deliveries {
				ri.balls = append(ri.balls, rawBall{over: over.Over, ball: i + 1, ev: ev})
			}
		}
		out = append(out, ri)
	}
	return out, nil
}

func parseInningsV1(raw []json.RawMessage) ([]rawInnings, error) {
	out := make([]rawInnings, 0, len(raw))
	for _, entry := range raw {
		var keyed map[string]inningsV1
		if err := json.Unmarshal(entry, &keyed); err != nil {
			return nil, errors.Wrap(errors.BadRecord, "malformed v1 innings entry", err)
		}
		for _, inn := range keyed {
			ri := rawInnings{team: inn.Team}
			for _, keyedBall := range inn.Deliveries {
				for ballKey, ev := range keyedBall {
					over, ball, ok := splitOverBall(ballKey)
					if !ok {
						return nil, errors.Newf(errors.BadRecord, "unparseable ball key %q", ballKey)
					}
					ri.balls = append(ri.balls, rawBall{over: over, ball: ball, ev: ev})
				}
			}
			// JSON object iteration loses the source order; the ball keys
			// restore it.
			sort.Slice(ri.balls, func(i, j int) bool {
				if ri.balls[i].over != ri.balls[j].over {
					return ri.balls[i].over < ri.balls[j].over
				}
				return ri.balls[i].ball < ri.balls[j].ball
			})
			out = append(out, ri)
			break // single-key object
		}
	}
	return out, nil
}

// splitOverBall splits a v1 ball key like "12.3" into over 12, ball 3.
func splitOverBall(key string) (over, ball int, ok bool) {
	overPart, ballPart, found := strings.Cut(key, ".")
	if !found {
		ballPart = "0"
	}
	over, err := strconv.Atoi(overPart)
	if err != nil {
		return 0, 0, false
	}
	ball, err = strconv.Atoi(ballPart)
	if err != nil {
		return 0, 0, false
	}
	return over, ball, true
}

// applyOutcome maps the record's outcome object onto winner, result_type and
// result_margin. A match with no official winner keeps winner NULL; no
// placeholder team is ever invented.
func applyOutcome(m *model.Match, o outcome) {
	if o.Result != "" {
		m.ResultType = optional(o.Result)
		return
	}
	if o.Winner == "" {
		return
	}
	m.Winner = optional(o.Winner)
	switch {
	case o.By == nil:
		if o.Method != "" {
			m.ResultType = optional(o.Method)
		} else {
			m.ResultType = optional("won")
		}
	default:
		if _, innings := o.By["innings"]; innings {
			m.ResultType = optional("innings")
			margin := o.By["runs"]
			m.ResultMargin = &margin
		} else if runs, ok := o.By["runs"]; ok {
			m.ResultType = optional("runs")
			m.ResultMargin = &runs
		} else if wickets, ok := o.By["wickets"]; ok {
			m.ResultType = optional("wickets")
			m.ResultMargin = &wickets
		} else {
			m.ResultType = optional("won")
		}
	}
}

// extrasType returns the extras classification for a ball, or nil for a fair
// delivery with no extras. When a ball carries more than one kind the
// lexicographically first is recorded, keeping the choice deterministic.
func extrasType(extras map[string]int) *string {
	if len(extras) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return optional(keys[0])
}

// normalizeDate returns the first listed date in ISO form (multi-day matches
// list every day; the first is the start date).
func normalizeDate(dates []string) *string {
	if len(dates) == 0 {
		return nil
	}
	d := dates[0]
	if t, err := time.Parse("2006-01-02", d); err == nil {
		iso := t.Format("2006-01-02")
		return &iso
	}
	if len(d) >= 10 {
		trimmed := d[:10]
		return &trimmed
	}
	return optional(d)
}

// stemOf returns the base name of a record path without its extension.
func stemOf(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstOf(list []string) *string {
	if len(list) == 0 {
		return nil
	}
	return optional(list[0])
}
