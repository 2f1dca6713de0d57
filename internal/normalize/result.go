package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// ErrNoResult means neither approved source produced a result. This is a
// normal "not yet ready" state, not a failure: the match stays live and the
// derivation is retried on the next cycle.
var ErrNoResult = errors.New("no provider-asserted result available")

// wonByPattern matches "India won by 5 wickets", "Australia won by 118 runs".
var wonByPattern = regexp.MustCompile(`(?i)^(.+?)\s+won\s+by\s+(\d+)\s+(runs?|wickets?)\b`)

// DeriveResult produces a match result from one of the two acceptable
// sources, in order:
//
//  1. the provider's structured result object;
//  2. a free-text result note, cross-checked against the provider-asserted
//     winner reference.
//
// There is no third path. Computing a winner from the scoreboard is forbidden
// and the Result type makes it unrepresentable.
func DeriveResult(m *cricketdata.Match, home, away match.Team) (*match.Result, error) {
	if r := m.Result; r != nil {
		return fromStructured(r, home, away)
	}
	if r, err := fromNote(m, home, away); err == nil {
		return r, nil
	}
	// Terminal no-contest states are themselves provider assertions: an
	// abandoned/cancelled state code with no winner is a draw with no result.
	if stateIsNoContest(m.State) {
		return match.FromProvider(match.WinnerDraw, "", nil, "", "No Result"), nil
	}
	return nil, ErrNoResult
}

func fromStructured(r *cricketdata.MatchResult, home, away match.Team) (*match.Result, error) {
	text := r.Text
	if r.Tied {
		if text == "" {
			text = "Match tied"
		}
		return match.FromProvider(match.WinnerDraw, "", nil, "", text), nil
	}
	if r.NoResult {
		if text == "" {
			text = "No Result"
		}
		return match.FromProvider(match.WinnerDraw, "", nil, "", text), nil
	}

	winner, name, ok := sideForRef(r.WinnerRef, home, away)
	if !ok {
		return nil, fmt.Errorf("%w: structured result names unknown team %q", ErrNoResult, r.WinnerRef)
	}
	var marginType match.MarginType
	switch strings.ToLower(strings.TrimSuffix(r.MarginType, "s")) {
	case "run":
		marginType = match.MarginRuns
	case "wicket":
		marginType = match.MarginWickets
	}
	return match.FromProvider(winner, name, r.Margin, marginType, text), nil
}

// fromNote parses a free-text result note. The parse alone is not enough: the
// named winner must agree with the provider's asserted winner reference.
func fromNote(m *cricketdata.Match, home, away match.Team) (*match.Result, error) {
	note := m.Note
	if note == "" {
		note = m.Status
	}
	lower := strings.ToLower(note)

	switch {
	case strings.Contains(lower, "tied"):
		return match.FromParsedNote(match.WinnerDraw, "", nil, "", note), nil
	case strings.Contains(lower, "no result"), strings.Contains(lower, "abandoned"), strings.Contains(lower, "drawn"):
		return match.FromParsedNote(match.WinnerDraw, "", nil, "", note), nil
	}

	groups := wonByPattern.FindStringSubmatch(note)
	if groups == nil {
		return nil, ErrNoResult
	}
	namedSide, _, ok := sideForName(groups[1], home, away)
	if !ok {
		return nil, fmt.Errorf("%w: note winner %q matches neither team", ErrNoResult, groups[1])
	}

	// Cross-check: the note alone is hearsay until the provider's winner
	// reference agrees with it.
	assertedSide, assertedName, ok := sideForRef(m.WinnerRef, home, away)
	if !ok {
		return nil, fmt.Errorf("%w: no provider winner reference to cross-check note against", ErrNoResult)
	}
	if assertedSide != namedSide {
		return nil, fmt.Errorf("%w: note names %q but provider asserts winner %q", ErrNoResult, groups[1], m.WinnerRef)
	}

	margin, err := strconv.Atoi(groups[2])
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable margin %q", ErrNoResult, groups[2])
	}
	marginType := match.MarginRuns
	if strings.HasPrefix(strings.ToLower(groups[3]), "wicket") {
		marginType = match.MarginWickets
	}
	return match.FromParsedNote(assertedSide, assertedName, &margin, marginType, note), nil
}

func stateIsNoContest(state string) bool {
	s := strings.ToLower(state)
	for _, marker := range []string{"abandon", "cancel", "no result"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// sideForRef maps a provider winner reference (team id or name) to a side.
func sideForRef(ref string, home, away match.Team) (match.Winner, string, bool) {
	if ref == "" {
		return "", "", false
	}
	if teamMatchesRef(ref, home) {
		return match.WinnerHome, home.Name, true
	}
	if teamMatchesRef(ref, away) {
		return match.WinnerAway, away.Name, true
	}
	return "", "", false
}

// sideForName maps a team name parsed out of free text to a side.
func sideForName(name string, home, away match.Team) (match.Winner, string, bool) {
	return sideForRef(strings.TrimSpace(name), home, away)
}

func teamMatchesRef(ref string, team match.Team) bool {
	r := strings.ToLower(strings.TrimSpace(ref))
	return r != "" && (r == strings.ToLower(team.ID) ||
		r == strings.ToLower(team.Name) ||
		r == strings.ToLower(team.ShortName))
}
