// Package cricsheet parses raw Cricsheet JSON match records into normalized
// rows and enumerates records from files, directories, and zip archives.
//
// Both published Cricsheet JSON styles are handled:
//
//	v1: innings: [{"1st innings": {"team": ..., "deliveries": [{"0.1": {...}}, ...]}}]
//	v2: innings: [{"team": ..., "overs": [{"over": 0, "deliveries": [...]}, ...]}]
package cricsheet

import "encoding/json"

// document is the top-level shape shared by both styles. Innings entries are
// kept raw until the style has been detected.
type document struct {
	Info    matchInfo         `json:"info"`
	Innings []json.RawMessage `json:"innings"`
}

type matchInfo struct {
	MatchID       string    `json:"match_id"`
	MatchType     string    `json:"match_type"`
	Dates         []string  `json:"dates"`
	Teams         []string  `json:"teams"`
	Venue         string    `json:"venue"`
	City          string    `json:"city"`
	Toss          tossInfo  `json:"toss"`
	Outcome       outcome   `json:"outcome"`
	PlayerOfMatch []string  `json:"player_of_match"`
}

type tossInfo struct {
	Winner   string `json:"winner"`
	Decision string `json:"decision"`
}

type outcome struct {
	Winner string         `json:"winner"`
	Result string         `json:"result"` // "tie", "draw", "no result"
	Method string         `json:"method"` // "D/L", "eliminator", ...
	By     map[string]int `json:"by"`     // {"runs": 25} / {"wickets": 7} / {"innings": 1, "runs": 46}
}

// inningsV2 is one entry of a v2-style innings list.
type inningsV2 struct {
	Team      string    `json:"team"`
	Overs     []overV2  `json:"overs"`
	SuperOver bool      `json:"super_over"`
}

type overV2 struct {
	Over       int             `json:"over"`
	Deliveries []deliveryEvent `json:"deliveries"`
}

// inningsV1 is the value of a v1-style innings entry, keyed by a label such
// as "1st innings". Each deliveries element is a single-key object mapping
// "over.ball" to the event.
type inningsV1 struct {
	Team       string                     `json:"team"`
	Deliveries []map[string]deliveryEvent `json:"deliveries"`
}

// deliveryEvent is one ball in either style. v1 spells the striker "batsman";
// v2 spells it "batter". Wickets are a list in v2 and a single object (or
// list) under "wicket" in v1.
type deliveryEvent struct {
	Batter     string          `json:"batter"`
	Batsman    string          `json:"batsman"`
	Bowler     string          `json:"bowler"`
	NonStriker string          `json:"non_striker"`
	Runs       runsBreakdown   `json:"runs"`
	Extras     map[string]int  `json:"extras"`
	Wickets    []wicketEvent   `json:"wickets"`
	Wicket     json.RawMessage `json:"wicket"`
}

// striker returns the batter name regardless of style.
func (e *deliveryEvent) striker() string {
	if e.Batter != "" {
		return e.Batter
	}
	return e.Batsman
}

type runsBreakdown struct {
	Batter  *int `json:"batter"`
	Batsman *int `json:"batsman"`
	Extras  int  `json:"extras"`
	Total   *int `json:"total"`
}

// batterRuns returns the runs credited to the striker regardless of style.
// Absent values are zero: a dot ball, not a missing field.
func (r *runsBreakdown) batterRuns() int {
	if r.Batter != nil {
		return *r.Batter
	}
	if r.Batsman != nil {
		return *r.Batsman
	}
	return 0
}

type wicketEvent struct {
	Kind      string `json:"kind"`
	PlayerOut string `json:"player_out"`
}

// wicket returns the first wicket recorded on the delivery, handling both
// the v2 "wickets" list and the v1 "wicket" object-or-list.
func (e *deliveryEvent) wicket() *wicketEvent {
	if len(e.Wickets) > 0 {
		w := e.Wickets[0]
		return &w
	}
	if len(e.Wicket) == 0 {
		return nil
	}
	var single wicketEvent
	if err := json.Unmarshal(e.Wicket, &single); err == nil && (single.Kind != "" || single.PlayerOut != "") {
		return &single
	}
	var list []wicketEvent
	if err := json.Unmarshal(e.Wicket, &list); err == nil && len(list) > 0 {
		w := list[0]
		return &w
	}
	return nil
}
