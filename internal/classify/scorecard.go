package classify

import (
	"log"
	"strings"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// reconcileWithScorecard cross-checks a verdict against innings-level score
// evidence. It only fires when both teams' entries are distinguishable: on
// ambiguous data (the home/away collision bug, missing team refs) the
// top-level verdict stands untouched.
//
// Escalation: live verdict + both innings independently over ⇒ completed.
// Demotion: completed verdict + either innings demonstrably still running ⇒
// live; the scorecard outranks a stale top-level flag. No-contest matches
// (abandoned, no result, cancelled) are exempt from demotion, since those end
// legitimately with an innings mid-flight.
func reconcileWithScorecard(m *cricketdata.Match, c Classification) Classification {
	first, second, ok := distinctInnings(m)
	if !ok {
		return c
	}
	format := match.Format(strings.ToLower(m.MatchType))

	firstOver := inningsOver(first, format, nil)
	secondOver := inningsOver(second, format, first.Runs)

	if c.Stage == match.StageLive && firstOver && secondOver {
		log.Printf("[classify] %s: both innings over on the scorecard, escalating live verdict to completed", m.ID)
		return Classification{
			Stage:      match.StageCompleted,
			Confidence: ConfidenceHigh,
			Reason:     "scorecard: both teams reached an innings-ending condition (" + c.Reason + ")",
		}
	}

	if c.Stage == match.StageCompleted && !noContest(m) && (!firstOver || !secondOver) {
		// Neither side can still be mid-innings in a contested finish: the
		// chasing side ends its innings all out, at the over cap, or past the
		// target. The completed flag is stale.
		log.Printf("[classify] %s: completed verdict contradicted by an in-progress innings, forcing back to live", m.ID)
		return Classification{
			Stage:      match.StageLive,
			Confidence: ConfidenceHigh,
			Reason:     "scorecard: an innings still in progress contradicts completed flag (" + c.Reason + ")",
		}
	}

	return c
}

var noContestMarkers = []string{"abandon", "no result", "cancel"}

// noContest reports whether any top-level field marks the match as ending
// without a contested finish.
func noContest(m *cricketdata.Match) bool {
	return containsAny(strings.ToLower(m.State), noContestMarkers) ||
		containsAny(strings.ToLower(m.Status), noContestMarkers) ||
		containsAny(strings.ToLower(m.Note), noContestMarkers)
}

// distinctInnings returns the first and second innings entries when exactly
// two are present and they belong to different teams.
func distinctInnings(m *cricketdata.Match) (first, second cricketdata.ScoreEntry, ok bool) {
	if len(m.Score) != 2 {
		return first, second, false
	}
	refA := cricketdata.TeamRefForEntry(m.Score[0], m.TeamInfo)
	refB := cricketdata.TeamRefForEntry(m.Score[1], m.TeamInfo)
	if refA == "" || refB == "" || refA == refB {
		return first, second, false
	}
	return m.Score[0], m.Score[1], true
}

// inningsOver reports whether an innings has independently reached an ending
// condition: all out, the format's legal over maximum, or (for the chasing
// side) the target surpassed. A missing field never counts as an ending
// condition; absence is not evidence.
func inningsOver(e cricketdata.ScoreEntry, format match.Format, targetRuns *int) bool {
	if e.Wickets != nil && *e.Wickets >= match.MaxWickets {
		return true
	}
	if maxOvers := format.MaxOvers(); maxOvers > 0 && e.Overs != nil && *e.Overs >= maxOvers {
		return true
	}
	if targetRuns != nil && e.Runs != nil && *e.Runs > *targetRuns {
		return true
	}
	return false
}
