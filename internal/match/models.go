package match

import (
	"time"
)

// Stage is the lifecycle stage of a match.
type Stage string

const (
	StageUpcoming  Stage = "upcoming"
	StageLive      Stage = "live"
	StageCompleted Stage = "completed"
)

// Format identifies the match format, which determines the legal innings limits.
type Format string

const (
	FormatT10  Format = "t10"
	FormatT20  Format = "t20"
	FormatODI  Format = "odi"
	FormatTest Format = "test"
)

// MaxOvers returns the per-innings over limit for the format, or 0 when the
// format has no over cap (test cricket).
func (f Format) MaxOvers() float64 {
	switch f {
	case FormatT10:
		return 10
	case FormatT20:
		return 20
	case FormatODI:
		return 50
	default:
		return 0
	}
}

// MaxWickets is the innings-ending wicket count for all formats.
const MaxWickets = 10

// Team identifies one side of a match.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Score is a current-score snapshot. All fields are pointers: a nil field means
// the provider did not supply a value, which is distinct from zero.
type Score struct {
	Runs    *int     `json:"runs,omitempty"`
	Wickets *int     `json:"wickets,omitempty"`
	Overs   *float64 `json:"overs,omitempty"`
	Balls   *int     `json:"balls,omitempty"`
}

// InningsScore is one entry of the ordered innings list used for scorecards.
type InningsScore struct {
	TeamID  string   `json:"team_id"`
	Title   string   `json:"title,omitempty"`
	Runs    *int     `json:"runs,omitempty"`
	Wickets *int     `json:"wickets,omitempty"`
	Overs   *float64 `json:"overs,omitempty"`
	Balls   *int     `json:"balls,omitempty"`
	RunRate *float64 `json:"run_rate,omitempty"`
}

// BattingEntry is a per-batter line. PlayerName may be empty until enrichment
// resolves it; that is valid state, not an error.
type BattingEntry struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name,omitempty"`
	Runs       *int     `json:"runs,omitempty"`
	Balls      *int     `json:"balls,omitempty"`
	Fours      *int     `json:"fours,omitempty"`
	Sixes      *int     `json:"sixes,omitempty"`
	StrikeRate *float64 `json:"strike_rate,omitempty"`
	Dismissal  string   `json:"dismissal,omitempty"`
	Active     bool     `json:"active,omitempty"`
}

// BowlingEntry is a per-bowler line.
type BowlingEntry struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name,omitempty"`
	Overs      *float64 `json:"overs,omitempty"`
	Maidens    *int     `json:"maidens,omitempty"`
	Runs       *int     `json:"runs,omitempty"`
	Wickets    *int     `json:"wickets,omitempty"`
	Economy    *float64 `json:"economy,omitempty"`
	Active     bool     `json:"active,omitempty"`
}

// Partnership is the current-partnership fragment. Populated only when the
// provider supplies it explicitly.
type Partnership struct {
	Runs  *int `json:"runs,omitempty"`
	Balls *int `json:"balls,omitempty"`
}

// LastWicket describes the most recent dismissal, again provider-supplied only.
type LastWicket struct {
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Runs       *int   `json:"runs,omitempty"`
	Dismissal  string `json:"dismissal,omitempty"`
}

// LiveMatchRecord is the document held by the live store while a match is in
// progress. It never carries a Result.
type LiveMatchRecord struct {
	MatchID   string    `json:"match_id"`
	Name      string    `json:"name,omitempty"`
	Format    Format    `json:"format"`
	Venue     string    `json:"venue,omitempty"`
	StartTime time.Time `json:"start_time"`

	HomeTeam Team `json:"home_team"`
	AwayTeam Team `json:"away_team"`

	Status  string         `json:"status,omitempty"`
	Score   *Score         `json:"score,omitempty"`
	Innings []InningsScore `json:"innings,omitempty"`

	Batting     []BattingEntry `json:"batting,omitempty"`
	Bowling     []BowlingEntry `json:"bowling,omitempty"`
	Partnership *Partnership   `json:"partnership,omitempty"`
	LastWicket  *LastWicket    `json:"last_wicket,omitempty"`

	UpdateCount int64     `json:"update_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CompletedMatchRecord is the durable record written exactly once per match by
// the transition engine (or the catalog sync). Result is mandatory.
type CompletedMatchRecord struct {
	MatchID   string    `json:"match_id"`
	Name      string    `json:"name,omitempty"`
	Format    Format    `json:"format"`
	Venue     string    `json:"venue,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	HomeTeam Team `json:"home_team"`
	AwayTeam Team `json:"away_team"`

	FinalScore *Score         `json:"final_score,omitempty"`
	Innings    []InningsScore `json:"innings,omitempty"`
	Batting    []BattingEntry `json:"batting,omitempty"`
	Bowling    []BowlingEntry `json:"bowling,omitempty"`

	Result *Result `json:"result"`

	IngestedAt time.Time `json:"ingested_at"`
}
