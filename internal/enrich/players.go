// Package enrich resolves player ids to display names. The provider's
// scorecard payloads frequently arrive before its player profiles do, so name
// resolution lags match data; everything here is best effort.
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// PlayerAPI is the slice of the provider client the resolver needs.
type PlayerAPI interface {
	PlayerInfo(ctx context.Context, id string) (*cricketdata.Player, error)
}

// PlayerResolver caches provider name lookups with a TTL so repeated reads of
// the same scorecard don't hammer the player endpoint.
type PlayerResolver struct {
	api PlayerAPI
	ttl time.Duration

	mu    sync.Mutex
	cache map[string]cachedName
}

type cachedName struct {
	name    string
	expires time.Time
}

// NewPlayerResolver creates a resolver over the provider client.
func NewPlayerResolver(api PlayerAPI) *PlayerResolver {
	return &PlayerResolver{
		api:   api,
		ttl:   time.Hour,
		cache: make(map[string]cachedName),
	}
}

// ResolveName looks up a player's display name. A provider failure is
// returned to the caller, who treats enrichment as optional.
func (r *PlayerResolver) ResolveName(ctx context.Context, playerID string) (string, error) {
	r.mu.Lock()
	if hit, ok := r.cache[playerID]; ok && time.Now().Before(hit.expires) {
		r.mu.Unlock()
		return hit.name, nil
	}
	r.mu.Unlock()

	player, err := r.api.PlayerInfo(ctx, playerID)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[playerID] = cachedName{name: player.Name, expires: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return player.Name, nil
}
