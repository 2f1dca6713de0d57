package cricketdata

import (
	"encoding/json"
	"time"
)

// Match is the provider's raw match payload. Field availability is wildly
// inconsistent between the list and detail endpoints, so nearly everything is
// optional; pointers distinguish "absent" from a genuine zero.
type Match struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MatchType   string `json:"matchType"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
	State       string `json:"state,omitempty"`
	Venue       string `json:"venue,omitempty"`
	DateTimeGMT string `json:"dateTimeGMT,omitempty"`

	MatchStarted *bool `json:"matchStarted,omitempty"`
	MatchEnded   *bool `json:"matchEnded,omitempty"`
	IsLive       *bool `json:"isLive,omitempty"`

	CurrentInnings string `json:"currentInnings,omitempty"`

	// WinnerRef is the provider's asserted winner as a team reference
	// (team id on some fetches, team name on others).
	WinnerRef string       `json:"matchWinner,omitempty"`
	Result    *MatchResult `json:"result,omitempty"`

	TeamInfo []TeamInfo   `json:"teamInfo,omitempty"`
	Score    []ScoreEntry `json:"score,omitempty"`

	Scorecard   []InningsCard   `json:"scorecard,omitempty"`
	Partnership *PartnershipRaw `json:"partnership,omitempty"`
	LastWicket  *LastWicketRaw  `json:"lastWicket,omitempty"`
}

// StartTime parses the GMT start timestamp. Returns the zero time when the
// field is absent or malformed.
func (m *Match) StartTime() time.Time {
	if m.DateTimeGMT == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, m.DateTimeGMT); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// MatchResult is the structured result object, present only on some completed
// match payloads.
type MatchResult struct {
	WinnerRef  string `json:"winner,omitempty"`
	Margin     *int   `json:"margin,omitempty"`
	MarginType string `json:"marginType,omitempty"`
	Text       string `json:"text,omitempty"`
	Tied       bool   `json:"tied,omitempty"`
	NoResult   bool   `json:"noResult,omitempty"`
}

// TeamInfo describes one side. The provider keys score entries by team
// reference, which may be the id or the name depending on the endpoint.
type TeamInfo struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"shortname,omitempty"`
	Img       string `json:"img,omitempty"`
}

// Ref returns the reference other payload sections use for this team.
func (t TeamInfo) Ref() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Name
}

// ScoreEntry is one innings-level score line, e.g. {r: 183, w: 7, o: 20,
// inning: "India Inning 1"}.
type ScoreEntry struct {
	Runs    *int     `json:"r,omitempty"`
	Wickets *int     `json:"w,omitempty"`
	Overs   *float64 `json:"o,omitempty"`
	Balls   *int     `json:"b,omitempty"`
	RunRate *float64 `json:"rr,omitempty"`
	Inning  string   `json:"inning,omitempty"`
	TeamRef string   `json:"team,omitempty"`
}

// InningsCard is a per-innings scorecard with batting and bowling lines.
type InningsCard struct {
	Inning  string        `json:"inning,omitempty"`
	TeamRef string        `json:"team,omitempty"`
	Batting []BattingLine `json:"batting,omitempty"`
	Bowling []BowlingLine `json:"bowling,omitempty"`
}

// BattingLine is one batter's line. The batter identity lives in one of
// several nested shapes; see ExtractPlayer.
type BattingLine struct {
	Batsman       json.RawMessage `json:"batsman,omitempty"`
	Runs          *int            `json:"r,omitempty"`
	Balls         *int            `json:"b,omitempty"`
	Fours         *int            `json:"4s,omitempty"`
	Sixes         *int            `json:"6s,omitempty"`
	StrikeRate    *float64        `json:"sr,omitempty"`
	DismissalText string          `json:"dismissal-text,omitempty"`
	Dismissed     *bool           `json:"dismissed,omitempty"`
	Active        *bool           `json:"active,omitempty"`
}

// BowlingLine is one bowler's line.
type BowlingLine struct {
	Bowler  json.RawMessage `json:"bowler,omitempty"`
	Overs   *float64        `json:"o,omitempty"`
	Maidens *int            `json:"m,omitempty"`
	Runs    *int            `json:"r,omitempty"`
	Wickets *int            `json:"w,omitempty"`
	Economy *float64        `json:"eco,omitempty"`
	Active  *bool           `json:"active,omitempty"`
}

// PartnershipRaw is the current partnership, supplied explicitly or not at all.
type PartnershipRaw struct {
	Runs  *int `json:"runs,omitempty"`
	Balls *int `json:"balls,omitempty"`
}

// LastWicketRaw is the most recent dismissal, supplied explicitly or not at all.
type LastWicketRaw struct {
	Player json.RawMessage `json:"player,omitempty"`
	Runs   *int            `json:"runs,omitempty"`
	Text   string          `json:"text,omitempty"`
}

// Player is the payload of the player-info endpoint, used for name enrichment.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
