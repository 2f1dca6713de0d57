// Package normalize maps the provider's heterogeneous payloads into the
// canonical match representation. Nothing here invents data: a field the
// provider omitted stays absent, and results can only come from the two
// provider-backed sources (see result.go).
package normalize

import (
	"log"
	"strings"
	"time"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// NormalizeLive maps a raw payload to a live record. Returns nil when the
// payload carries no usable identity; callers drop such payloads.
func NormalizeLive(m *cricketdata.Match) *match.LiveMatchRecord {
	if m == nil || !match.ValidID(m.ID) {
		return nil
	}
	home, away, ok := resolveTeams(m)
	if !ok {
		log.Printf("[normalize] dropping %s: teams not resolvable", m.ID)
		return nil
	}

	rec := &match.LiveMatchRecord{
		MatchID:   m.ID,
		Name:      m.Name,
		Format:    normalizeFormat(m.MatchType),
		Venue:     m.Venue,
		StartTime: m.StartTime(),
		HomeTeam:  home,
		AwayTeam:  away,
		Status:    m.Status,
	}

	rec.Innings = buildInnings(m, home, away)
	rec.Score = currentScore(m, rec.Innings)
	rec.Batting, rec.Bowling = buildScorecard(m)

	// Derived live fragments come only from explicit provider fields.
	if m.Partnership != nil {
		rec.Partnership = &match.Partnership{Runs: m.Partnership.Runs, Balls: m.Partnership.Balls}
	}
	if m.LastWicket != nil {
		lw := &match.LastWicket{Runs: m.LastWicket.Runs, Dismissal: m.LastWicket.Text}
		if ref, ok := cricketdata.ExtractPlayer(m.LastWicket.Player); ok {
			lw.PlayerID = ref.ID
			lw.PlayerName = ref.Name
		}
		rec.LastWicket = lw
	}

	return rec
}

// NormalizeCompleted maps a raw payload to a completed record, deriving the
// result through the two approved sources. Returns ErrNoResult when neither
// source yields one; the match is simply not eligible for the completed store
// yet.
func NormalizeCompleted(m *cricketdata.Match, endTime time.Time) (*match.CompletedMatchRecord, error) {
	live := NormalizeLive(m)
	if live == nil {
		return nil, match.ErrIncompleteRecord
	}

	result, err := DeriveResult(m, live.HomeTeam, live.AwayTeam)
	if err != nil {
		return nil, err
	}

	if endTime.IsZero() {
		endTime = time.Now().UTC()
	}

	return &match.CompletedMatchRecord{
		MatchID:    live.MatchID,
		Name:       live.Name,
		Format:     live.Format,
		Venue:      live.Venue,
		StartTime:  live.StartTime,
		EndTime:    endTime,
		HomeTeam:   live.HomeTeam,
		AwayTeam:   live.AwayTeam,
		FinalScore: live.Score,
		Innings:    live.Innings,
		Batting:    live.Batting,
		Bowling:    live.Bowling,
		Result:     result,
		IngestedAt: time.Now().UTC(),
	}, nil
}

func normalizeFormat(matchType string) match.Format {
	switch strings.ToLower(strings.TrimSpace(matchType)) {
	case "t10":
		return match.FormatT10
	case "t20", "t20i":
		return match.FormatT20
	case "odi", "oneday", "list-a":
		return match.FormatODI
	case "test", "first-class":
		return match.FormatTest
	default:
		return match.FormatT20
	}
}

// resolveTeams maps the provider's team list onto home/away slots. The
// provider lists home first; two distinguishable sides are required.
func resolveTeams(m *cricketdata.Match) (home, away match.Team, ok bool) {
	if len(m.TeamInfo) < 2 {
		return home, away, false
	}
	home = toTeam(m.TeamInfo[0])
	away = toTeam(m.TeamInfo[1])
	if home.ID == "" || away.ID == "" || home.ID == away.ID {
		return home, away, false
	}
	return home, away, true
}

func toTeam(t cricketdata.TeamInfo) match.Team {
	return match.Team{
		ID:        t.Ref(),
		Name:      t.Name,
		ShortName: t.ShortName,
		ImageURL:  t.Img,
	}
}

// buildInnings resolves each score entry to its team and returns the ordered
// innings list. Entries whose team reference collides (the known provider bug
// where both slots point at the same team) are corrected by searching the
// full list for the counterpart; when no counterpart exists, the missing side
// simply has no innings yet — it is never zero-filled.
func buildInnings(m *cricketdata.Match, home, away match.Team) []match.InningsScore {
	if len(m.Score) == 0 {
		return nil
	}

	refs := make([]string, len(m.Score))
	for i, e := range m.Score {
		refs[i] = cricketdata.TeamRefForEntry(e, m.TeamInfo)
	}

	// Collision correction: if every resolvable entry points at one team but
	// the innings titles name the other side too, re-resolve by title only.
	if collision(refs) {
		log.Printf("[normalize] %s: score entries collide on one team reference, re-resolving by innings title", m.ID)
		for i, e := range m.Score {
			refs[i] = refByTitle(e.Inning, home, away)
		}
	}

	var innings []match.InningsScore
	for i, e := range m.Score {
		if refs[i] == "" {
			log.Printf("[normalize] %s: score entry %q has no resolvable team, leaving it out", m.ID, e.Inning)
			continue
		}
		// The run rate is carried only when the provider sent one. Deriving it
		// here would also get the arithmetic wrong: overs notation is
		// balls-in-sixths, not a decimal.
		innings = append(innings, match.InningsScore{
			TeamID:  refs[i],
			Title:   e.Inning,
			Runs:    e.Runs,
			Wickets: e.Wickets,
			Overs:   e.Overs,
			Balls:   e.Balls,
			RunRate: e.RunRate,
		})
	}
	return innings
}

// collision reports whether two or more entries resolve to a single team
// reference with no second team represented.
func collision(refs []string) bool {
	seen := ""
	n := 0
	for _, r := range refs {
		if r == "" {
			continue
		}
		n++
		if seen == "" {
			seen = r
		} else if r != seen {
			return false
		}
	}
	return n >= 2
}

func refByTitle(title string, home, away match.Team) string {
	t := strings.ToLower(title)
	homeNamed := teamNamed(t, home)
	awayNamed := teamNamed(t, away)
	switch {
	case homeNamed && !awayNamed:
		return home.ID
	case awayNamed && !homeNamed:
		return away.ID
	default:
		return ""
	}
}

func teamNamed(title string, team match.Team) bool {
	if team.Name != "" && strings.Contains(title, strings.ToLower(team.Name)) {
		return true
	}
	return team.ShortName != "" && strings.Contains(title, strings.ToLower(team.ShortName))
}

// currentScore picks the innings currently in play: the one matching the
// provider's current-innings description, or the last entry otherwise.
func currentScore(m *cricketdata.Match, innings []match.InningsScore) *match.Score {
	if len(innings) == 0 {
		return nil
	}
	pick := innings[len(innings)-1]
	if cur := strings.ToLower(m.CurrentInnings); cur != "" {
		for _, in := range innings {
			if in.Title != "" && strings.ToLower(in.Title) == cur {
				pick = in
				break
			}
		}
	}
	return &match.Score{Runs: pick.Runs, Wickets: pick.Wickets, Overs: pick.Overs, Balls: pick.Balls}
}

// buildScorecard flattens the innings cards into batting and bowling entries.
// A line is marked active only when the provider flagged it active AND it
// belongs to the innings the provider says is current; activity is never
// inferred from who has the freshest numbers. Lines without a resolvable
// player identity are skipped.
func buildScorecard(m *cricketdata.Match) ([]match.BattingEntry, []match.BowlingEntry) {
	var batting []match.BattingEntry
	var bowling []match.BowlingEntry

	current := strings.ToLower(m.CurrentInnings)

	for _, card := range m.Scorecard {
		inCurrent := current != "" && strings.ToLower(card.Inning) == current

		for _, line := range card.Batting {
			ref, ok := cricketdata.ExtractPlayer(line.Batsman)
			if !ok {
				continue
			}
			batting = append(batting, match.BattingEntry{
				PlayerID:   ref.ID,
				PlayerName: ref.Name,
				Runs:       line.Runs,
				Balls:      line.Balls,
				Fours:      line.Fours,
				Sixes:      line.Sixes,
				StrikeRate: line.StrikeRate,
				Dismissal:  line.DismissalText,
				Active:     inCurrent && line.Active != nil && *line.Active,
			})
		}
		for _, line := range card.Bowling {
			ref, ok := cricketdata.ExtractPlayer(line.Bowler)
			if !ok {
				continue
			}
			bowling = append(bowling, match.BowlingEntry{
				PlayerID:   ref.ID,
				PlayerName: ref.Name,
				Overs:      line.Overs,
				Maidens:    line.Maidens,
				Runs:       line.Runs,
				Wickets:    line.Wickets,
				Economy:    line.Economy,
				Active:     inCurrent && line.Active != nil && *line.Active,
			})
		}
	}
	return batting, bowling
}
