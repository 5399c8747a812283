// Package model defines the normalized row types produced by the record
// parser and consumed by the storage layer. One Cricsheet match record maps
// to exactly one Match row, one Innings row per innings played, and one
// Delivery row per ball bowled.
package model

// Match is one played fixture. Optional fields that the source may omit
// (winner, result margin, player of match) are pointers so absence survives
// as SQL NULL rather than a zero value.
type Match struct {
	MatchID       string
	MatchType     string
	MatchDate     *string // ISO date, first day for multi-day matches
	Venue         *string
	City          *string
	Team1         string
	Team2         string
	TossWinner    *string
	TossDecision  *string
	Winner        *string // nil for ties, draws, and abandoned matches
	ResultType    *string // "runs", "wickets", "innings", "tie", "draw", "no result"
	ResultMargin  *int
	SuperOver     bool
	PlayerOfMatch *string
}

// Innings is one team's batting innings within a match. Super overs are
// ordinary innings rows with IsSuperOver set; their sequence numbers continue
// after the regulation innings.
type Innings struct {
	MatchID      string
	InningsNum   int
	BattingTeam  string
	BowlingTeam  string
	TotalRuns    int
	TotalWickets int
	Overs        float64 // last over reached + balls/6
	IsSuperOver  bool
}

// Delivery is one bowled ball and its outcome. (MatchID, InningsNum, Over,
// Ball) uniquely identifies a delivery. PlayerOut is taken from the source
// wicket entry verbatim: on run-outs it can name the non-striker.
type Delivery struct {
	MatchID     string
	InningsNum  int
	Over        int
	Ball        int
	BattingTeam string
	BowlingTeam string
	Batter      string
	NonStriker  string
	Bowler      string
	RunsBatter  int
	RunsExtras  int
	RunsTotal   int
	ExtrasType  *string // first key of the extras object: "wides", "legbyes", ...
	WicketKind  *string
	PlayerOut   *string
}

// MatchRows is the complete parsed output for one match record, ready to be
// written as a single transaction.
type MatchRows struct {
	Match      Match
	Innings    []Innings
	Deliveries []Delivery
}

// Teams returns the distinct team names referenced by the match row and its
// innings, in first-appearance order. The storage layer upserts these into
// the teams lookup before inserting the match.
func (r *MatchRows) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			teams = append(teams, name)
		}
	}
	add(r.Match.Team1)
	add(r.Match.Team2)
	if r.Match.TossWinner != nil {
		add(*r.Match.TossWinner)
	}
	if r.Match.Winner != nil {
		add(*r.Match.Winner)
	}
	for i := range r.Innings {
		add(r.Innings[i].BattingTeam)
		add(r.Innings[i].BowlingTeam)
	}
	return teams
}
