package livestore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/wicket/internal/match"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client), mr
}

func liveRecord(id string) *match.LiveMatchRecord {
	return &match.LiveMatchRecord{
		MatchID:  id,
		Name:     "India vs Australia",
		Format:   match.FormatT20,
		Venue:    "Eden Gardens",
		HomeTeam: match.Team{ID: "ind", Name: "India"},
		AwayTeam: match.Team{ID: "aus", Name: "Australia"},
		Status:   "Live",
		Score:    &match.Score{Runs: intPtr(100), Wickets: intPtr(2), Overs: floatPtr(12.0)},
	}
}

func TestUpsertInsertThenUpdate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Upsert(ctx, liveRecord("m-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.UpdateCount)
	assert.False(t, first.CreatedAt.IsZero())
	assert.False(t, first.ExpiresAt.IsZero())

	update := liveRecord("m-1")
	update.Score = &match.Score{Runs: intPtr(115), Wickets: intPtr(3)}
	second, err := store.Upsert(ctx, update)
	require.NoError(t, err)

	assert.Equal(t, int64(2), second.UpdateCount)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
	assert.Equal(t, 115, *second.Score.Runs)
}

func TestUpsertMergePreservesStoredFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, liveRecord("m-2"))
	require.NoError(t, err)

	// Partial update: no venue, no overs
	partial := &match.LiveMatchRecord{
		MatchID:  "m-2",
		HomeTeam: match.Team{ID: "ind"},
		AwayTeam: match.Team{ID: "aus"},
		Score:    &match.Score{Runs: intPtr(140)},
	}
	_, err = store.Upsert(ctx, partial)
	require.NoError(t, err)

	got, err := store.Get(ctx, "m-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Eden Gardens", got.Venue)
	assert.Equal(t, "India", got.HomeTeam.Name)
	assert.Equal(t, 140, *got.Score.Runs)
	require.NotNil(t, got.Score.Overs)
	assert.Equal(t, 12.0, *got.Score.Overs)
}

func TestUpsertRejectsInvalidRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, &match.LiveMatchRecord{MatchID: "bad id!"})
	assert.ErrorIs(t, err, match.ErrInvalidID)

	_, err = store.Upsert(ctx, &match.LiveMatchRecord{MatchID: "m-3"})
	assert.ErrorIs(t, err, match.ErrIncompleteRecord)
}

func TestGetMissingReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKeyCarriesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, liveRecord("m-4"))
	require.NoError(t, err)

	ttl := mr.TTL("match:live:m-4")
	assert.Greater(t, ttl, 23*time.Hour)

	// An update must not reset the clock
	mr.FastForward(time.Hour)
	_, err = store.Upsert(ctx, liveRecord("m-4"))
	require.NoError(t, err)
	assert.LessOrEqual(t, mr.TTL("match:live:m-4"), 23*time.Hour)
}

func TestListAll(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"m-5", "m-6", "m-7"} {
		_, err := store.Upsert(ctx, liveRecord(id))
		require.NoError(t, err)
	}

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	ids := make(map[string]bool)
	for _, r := range records {
		ids[r.MatchID] = true
	}
	assert.True(t, ids["m-5"] && ids["m-6"] && ids["m-7"])
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, liveRecord("m-8"))
	require.NoError(t, err)

	gone, err := store.Delete(ctx, "m-8")
	require.NoError(t, err)
	assert.True(t, gone)

	got, err := store.Get(ctx, "m-8")
	require.NoError(t, err)
	assert.Nil(t, got)

	gone, err = store.Delete(ctx, "m-8")
	require.NoError(t, err)
	assert.False(t, gone)
}

func TestCleanupExpired(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	fresh, err := store.Upsert(ctx, liveRecord("m-9"))
	require.NoError(t, err)
	_, err = store.Upsert(ctx, liveRecord("m-10"))
	require.NoError(t, err)

	removed, err := store.CleanupExpired(ctx, fresh.ExpiresAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = store.CleanupExpired(ctx, fresh.ExpiresAt.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
