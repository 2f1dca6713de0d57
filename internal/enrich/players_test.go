package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

type fakePlayerAPI struct {
	players map[string]string
	err     error
	calls   int
}

func (f *fakePlayerAPI) PlayerInfo(_ context.Context, id string) (*cricketdata.Player, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.players[id]
	if !ok {
		return nil, cricketdata.ErrNotFound
	}
	return &cricketdata.Player{ID: id, Name: name}, nil
}

func TestResolveNameCaches(t *testing.T) {
	api := &fakePlayerAPI{players: map[string]string{"p-1": "Virat Kohli"}}
	r := NewPlayerResolver(api)
	ctx := context.Background()

	name, err := r.ResolveName(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Virat Kohli", name)

	// Second lookup is served from cache
	name, err = r.ResolveName(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Virat Kohli", name)
	assert.Equal(t, 1, api.calls)
}

func TestResolveNameExpiry(t *testing.T) {
	api := &fakePlayerAPI{players: map[string]string{"p-2": "Steve Smith"}}
	r := NewPlayerResolver(api)
	r.ttl = -time.Second // every entry expires immediately
	ctx := context.Background()

	_, err := r.ResolveName(ctx, "p-2")
	require.NoError(t, err)
	_, err = r.ResolveName(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)
}

func TestResolveNameFailurePassedThrough(t *testing.T) {
	api := &fakePlayerAPI{err: errors.New("provider down")}
	r := NewPlayerResolver(api)

	_, err := r.ResolveName(context.Background(), "p-3")
	assert.Error(t, err)

	// Failures are not cached; the next call tries again
	_, _ = r.ResolveName(context.Background(), "p-3")
	assert.Equal(t, 2, api.calls)
}
