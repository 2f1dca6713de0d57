package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

func twoTeamInfo() []cricketdata.TeamInfo {
	return []cricketdata.TeamInfo{
		{ID: "ind", Name: "India"},
		{ID: "aus", Name: "Australia"},
	}
}

func TestScorecardEscalatesBothInningsOver(t *testing.T) {
	// Both sides all out but the provider still says live.
	m := &cricketdata.Match{
		ID:        "sc-1",
		State:     "In Progress",
		MatchType: "t20",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(160), Wickets: intPtr(10), Overs: floatPtr(19.4), TeamRef: "ind", Inning: "India Inning 1"},
			{Runs: intPtr(142), Wickets: intPtr(10), Overs: floatPtr(18.1), TeamRef: "aus", Inning: "Australia Inning 1"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageCompleted, c.Stage)
	assert.Equal(t, ConfidenceHigh, c.Confidence)
	assert.Contains(t, c.Reason, "scorecard")
}

func TestScorecardEscalatesCompletedChase(t *testing.T) {
	// Chasing side passed the target with wickets in hand and overs left.
	// Surpassing the target ends the innings, so this is a finished match.
	m := &cricketdata.Match{
		ID:        "sc-2",
		State:     "In Progress",
		MatchType: "t20",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(150), Wickets: intPtr(8), Overs: floatPtr(20), TeamRef: "ind", Inning: "India Inning 1"},
			{Runs: intPtr(151), Wickets: intPtr(4), Overs: floatPtr(17.3), TeamRef: "aus", Inning: "Australia Inning 1"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageCompleted, c.Stage)
}

func TestScorecardDemotesStaleCompletedFlag(t *testing.T) {
	// First innings mid-flight but a stale terminal state arrived.
	m := &cricketdata.Match{
		ID:        "sc-3",
		State:     "Complete",
		MatchType: "odi",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(95), Wickets: intPtr(2), Overs: floatPtr(21.0), TeamRef: "ind", Inning: "India Inning 1"},
			{TeamRef: "aus", Inning: "Australia Inning 1"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageLive, c.Stage)
	assert.Equal(t, ConfidenceHigh, c.Confidence)
	assert.Contains(t, c.Reason, "scorecard")
}

func TestScorecardDemotesStaleCompletedMidChase(t *testing.T) {
	// First innings closed at the over cap, but the chase is mid-flight: not
	// all out, overs left, target not reached. The terminal state is stale.
	m := &cricketdata.Match{
		ID:        "sc-7",
		State:     "Complete",
		MatchType: "t20",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(172), Wickets: intPtr(6), Overs: floatPtr(20), TeamRef: "ind", Inning: "India Inning 1"},
			{Runs: intPtr(88), Wickets: intPtr(2), Overs: floatPtr(10.0), TeamRef: "aus", Inning: "Australia Inning 1"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageLive, c.Stage)
	assert.Equal(t, ConfidenceHigh, c.Confidence)
	assert.Contains(t, c.Reason, "scorecard")
}

func TestScorecardKeepsAbandonedDespiteOpenInnings(t *testing.T) {
	// An abandoned match legitimately ends with an innings mid-flight; the
	// demotion must not resurrect it.
	m := &cricketdata.Match{
		ID:        "sc-8",
		State:     "Abandoned",
		MatchType: "odi",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(95), Wickets: intPtr(2), Overs: floatPtr(21.0), TeamRef: "ind", Inning: "India Inning 1"},
			{TeamRef: "aus", Inning: "Australia Inning 1"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageCompleted, c.Stage)
	assert.Equal(t, ConfidenceHigh, c.Confidence)
}

func TestScorecardIgnoredOnAmbiguousTeams(t *testing.T) {
	// Both entries resolve to the same team ref; the scorecard is unusable
	// and the top-level verdict must stand.
	m := &cricketdata.Match{
		ID:        "sc-4",
		State:     "Complete",
		MatchType: "t20",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(50), Wickets: intPtr(1), Overs: floatPtr(6.0), TeamRef: "ind"},
			{Runs: intPtr(20), Wickets: intPtr(0), Overs: floatPtr(2.0), TeamRef: "ind"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageCompleted, c.Stage)
}

func TestScorecardAbsenceIsNotEvidence(t *testing.T) {
	// Missing wickets/overs fields must not read as an ending condition.
	m := &cricketdata.Match{
		ID:        "sc-5",
		State:     "In Progress",
		MatchType: "t20",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(160), TeamRef: "ind", Inning: "India Inning 1"},
			{Runs: intPtr(90), TeamRef: "aus", Inning: "Australia Inning 1"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageLive, c.Stage)
}

func TestScorecardTestMatchHasNoOverCap(t *testing.T) {
	// 90 overs bowled in a test innings is not an ending condition.
	m := &cricketdata.Match{
		ID:        "sc-6",
		State:     "In Progress",
		MatchType: "test",
		TeamInfo:  twoTeamInfo(),
		Score: []cricketdata.ScoreEntry{
			{Runs: intPtr(310), Wickets: intPtr(10), Overs: floatPtr(95.2), TeamRef: "ind"},
			{Runs: intPtr(280), Wickets: intPtr(6), Overs: floatPtr(90.0), TeamRef: "aus"},
		},
	}
	c := classifyAt(m, testNow)
	assert.Equal(t, match.StageLive, c.Stage)
}
