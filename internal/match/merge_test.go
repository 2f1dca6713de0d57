package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func fullLiveRecord() *LiveMatchRecord {
	return &LiveMatchRecord{
		MatchID:   "m-100",
		Name:      "India vs Australia",
		Format:    FormatT20,
		Venue:     "Eden Gardens",
		StartTime: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		HomeTeam:  Team{ID: "ind", Name: "India", ShortName: "IND"},
		AwayTeam:  Team{ID: "aus", Name: "Australia", ShortName: "AUS"},
		Status:    "Live",
		Score:     &Score{Runs: intPtr(120), Wickets: intPtr(3), Overs: floatPtr(14.2)},
		Innings: []InningsScore{
			{TeamID: "ind", Title: "India Inning 1", Runs: intPtr(120), Wickets: intPtr(3), Overs: floatPtr(14.2)},
		},
	}
}

func TestMergeLivePartialUpdateKeepsStoredFields(t *testing.T) {
	existing := fullLiveRecord()
	incoming := &LiveMatchRecord{
		MatchID: "m-100",
		Score:   &Score{Runs: intPtr(131), Wickets: intPtr(4)},
		Status:  "Live",
	}

	merged := MergeLive(existing, incoming)

	// Updated fields
	require.NotNil(t, merged.Score)
	assert.Equal(t, 131, *merged.Score.Runs)
	assert.Equal(t, 4, *merged.Score.Wickets)

	// Absent fields keep their stored values
	assert.Equal(t, "India vs Australia", merged.Name)
	assert.Equal(t, "Eden Gardens", merged.Venue)
	assert.Equal(t, "India", merged.HomeTeam.Name)
	require.NotNil(t, merged.Score.Overs)
	assert.Equal(t, 14.2, *merged.Score.Overs)
	assert.Len(t, merged.Innings, 1)
}

func TestMergeLiveSameValuesIsIdempotent(t *testing.T) {
	existing := fullLiveRecord()
	incoming := fullLiveRecord()

	merged := MergeLive(existing, incoming)

	assert.Equal(t, existing.Name, merged.Name)
	assert.Equal(t, existing.Venue, merged.Venue)
	assert.Equal(t, *existing.Score.Runs, *merged.Score.Runs)
	assert.Equal(t, existing.HomeTeam, merged.HomeTeam)
	assert.Equal(t, existing.Innings, merged.Innings)
}

func TestMergeLiveDoesNotMutateExisting(t *testing.T) {
	existing := fullLiveRecord()
	incoming := &LiveMatchRecord{MatchID: "m-100", Venue: "MCG"}

	merged := MergeLive(existing, incoming)

	assert.Equal(t, "MCG", merged.Venue)
	assert.Equal(t, "Eden Gardens", existing.Venue)
}

func TestMergeLiveTeamPartials(t *testing.T) {
	existing := fullLiveRecord()
	incoming := &LiveMatchRecord{
		MatchID:  "m-100",
		HomeTeam: Team{ID: "ind", ImageURL: "https://img.example/ind.png"},
	}

	merged := MergeLive(existing, incoming)

	assert.Equal(t, "India", merged.HomeTeam.Name)
	assert.Equal(t, "IND", merged.HomeTeam.ShortName)
	assert.Equal(t, "https://img.example/ind.png", merged.HomeTeam.ImageURL)
	// Away side untouched by an empty incoming team
	assert.Equal(t, "Australia", merged.AwayTeam.Name)
}

func TestMergeLiveNilSides(t *testing.T) {
	existing := fullLiveRecord()
	assert.Same(t, existing, MergeLive(existing, nil))

	incoming := fullLiveRecord()
	assert.Same(t, incoming, MergeLive(nil, incoming))
}

func TestMergeLiveZeroScoreIsNotAbsent(t *testing.T) {
	existing := fullLiveRecord()
	incoming := &LiveMatchRecord{
		MatchID: "m-100",
		Score:   &Score{Runs: intPtr(0), Wickets: intPtr(0), Overs: floatPtr(0)},
	}

	merged := MergeLive(existing, incoming)

	// An explicit zero overwrites; only nil means "not supplied"
	assert.Equal(t, 0, *merged.Score.Runs)
	assert.Equal(t, 0, *merged.Score.Wickets)
	assert.Equal(t, 0.0, *merged.Score.Overs)
}
