package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/wicket/internal/match"
)

type fakeEnricher struct {
	names map[string]string
	calls int
}

func (f *fakeEnricher) ResolveName(_ context.Context, playerID string) (string, error) {
	f.calls++
	name, ok := f.names[playerID]
	if !ok {
		return "", errors.New("player not found")
	}
	return name, nil
}

func TestPatchNamesFillsMissingNames(t *testing.T) {
	enricher := &fakeEnricher{names: map[string]string{
		"p1": "Virat Kohli",
		"p3": "Pat Cummins",
	}}
	rec := &match.CompletedMatchRecord{
		MatchID: "m-1",
		Batting: []match.BattingEntry{
			{PlayerID: "p1"},
			{PlayerID: "p2", PlayerName: "Rohit Sharma"},
		},
		Bowling: []match.BowlingEntry{
			{PlayerID: "p3"},
		},
	}

	patched := patchNames(context.Background(), enricher, rec)

	assert.True(t, patched)
	assert.Equal(t, "Virat Kohli", rec.Batting[0].PlayerName)
	assert.Equal(t, "Pat Cummins", rec.Bowling[0].PlayerName)
	// Already-resolved entries are not looked up again
	assert.Equal(t, "Rohit Sharma", rec.Batting[1].PlayerName)
	assert.Equal(t, 2, enricher.calls)
}

func TestPatchNamesFailedLookupLeavesEntry(t *testing.T) {
	enricher := &fakeEnricher{names: map[string]string{}}
	rec := &match.CompletedMatchRecord{
		MatchID: "m-2",
		Batting: []match.BattingEntry{{PlayerID: "p9"}},
	}

	patched := patchNames(context.Background(), enricher, rec)

	assert.False(t, patched)
	assert.Empty(t, rec.Batting[0].PlayerName)
}

func TestPatchNamesNothingToDo(t *testing.T) {
	enricher := &fakeEnricher{names: map[string]string{"p1": "Virat Kohli"}}
	rec := &match.CompletedMatchRecord{
		MatchID: "m-3",
		Batting: []match.BattingEntry{{PlayerID: "p1", PlayerName: "V Kohli"}},
		Bowling: []match.BowlingEntry{{PlayerName: "J Bumrah"}},
	}

	patched := patchNames(context.Background(), enricher, rec)

	assert.False(t, patched)
	assert.Equal(t, 0, enricher.calls)
}
