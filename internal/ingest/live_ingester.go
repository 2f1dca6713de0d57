// Package ingest drives the poll cycles: the live refresh that keeps the
// live store current, and the completed-catalog sync that backfills finished
// matches the live pipeline never saw.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/wicket/internal/classify"
	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/normalize"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// Provider is the slice of the upstream client the ingester needs.
type Provider interface {
	CurrentMatches(ctx context.Context) ([]cricketdata.Match, error)
	RecentMatches(ctx context.Context) ([]cricketdata.Match, error)
}

// LiveStore is the live-store surface used by the poll cycles.
type LiveStore interface {
	Upsert(ctx context.Context, rec *match.LiveMatchRecord) (*match.LiveMatchRecord, error)
	Get(ctx context.Context, id string) (*match.LiveMatchRecord, error)
	ListAll(ctx context.Context) ([]*match.LiveMatchRecord, error)
}

// CompletedStore is the completed-store surface used by the catalog sync.
type CompletedStore interface {
	Upsert(ctx context.Context, rec *match.CompletedMatchRecord) (*match.CompletedMatchRecord, error)
	GetByID(ctx context.Context, id string) (*match.CompletedMatchRecord, error)
}

// Publisher receives live updates as they land.
type Publisher interface {
	PublishMatchUpdated(ctx context.Context, rec *match.LiveMatchRecord) error
	PublishLiveSetChanged(ctx context.Context, records []*match.LiveMatchRecord) error
}

// LiveIngester runs the poll cycles.
type LiveIngester struct {
	provider  Provider
	live      LiveStore
	completed CompletedStore
	publisher Publisher
}

// NewLiveIngester creates an ingester. The publisher may be nil.
func NewLiveIngester(provider Provider, live LiveStore, completed CompletedStore, publisher Publisher) *LiveIngester {
	return &LiveIngester{
		provider:  provider,
		live:      live,
		completed: completed,
		publisher: publisher,
	}
}

// RefreshStats summarizes one live refresh cycle.
type RefreshStats struct {
	Fetched  int
	Stored   int
	Upcoming int
	Dropped  int
}

// RefreshLive fetches the provider's current listing and upserts every match
// classified as live. Upcoming matches are left out of the store entirely;
// completed ones are the transition engine's and catalog sync's business.
func (li *LiveIngester) RefreshLive(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	matches, err := li.provider.CurrentMatches(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching current matches: %w", err)
	}
	stats.Fetched = len(matches)

	for i := range matches {
		raw := &matches[i]
		c := classify.Classify(raw)
		switch c.Stage {
		case match.StageLive:
			rec := normalize.NormalizeLive(raw)
			if rec == nil {
				stats.Dropped++
				log.Printf("  ⚠️  dropped live payload %q: no usable identity", raw.ID)
				continue
			}
			stored, err := li.live.Upsert(ctx, rec)
			if err != nil {
				stats.Dropped++
				log.Printf("  ⚠️  upsert failed for %s: %v", rec.MatchID, err)
				continue
			}
			stats.Stored++
			if li.publisher != nil {
				if err := li.publisher.PublishMatchUpdated(ctx, stored); err != nil {
					log.Printf("  ⚠️  publish failed for %s: %v", stored.MatchID, err)
				}
			}
		case match.StageUpcoming:
			stats.Upcoming++
		case match.StageCompleted:
			// Left for the transition sweep / catalog sync.
		}
	}

	if li.publisher != nil {
		records, err := li.live.ListAll(ctx)
		if err != nil {
			log.Printf("  ⚠️  listing live set for snapshot: %v", err)
		} else if err := li.publisher.PublishLiveSetChanged(ctx, records); err != nil {
			log.Printf("  ⚠️  publishing live-set snapshot: %v", err)
		}
	}

	if stats.Stored > 0 {
		log.Printf("✓ Live refresh: %d fetched, %d stored, %d upcoming, %d dropped",
			stats.Fetched, stats.Stored, stats.Upcoming, stats.Dropped)
	}
	return stats, nil
}

// SyncStats summarizes one completed-catalog sync cycle.
type SyncStats struct {
	Fetched  int
	Stored   int
	NotReady int
	Skipped  int
}

// SyncCompletedCatalog fetches the recently-finished listing and persists
// matches with a provider-asserted result. Matches still present in the live
// store are skipped: migrating those is the transition engine's job, and a
// match id must never live in both stores.
func (li *LiveIngester) SyncCompletedCatalog(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	matches, err := li.provider.RecentMatches(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching recent matches: %w", err)
	}
	stats.Fetched = len(matches)

	for i := range matches {
		raw := &matches[i]
		c := classify.Classify(raw)
		if !c.IsCompleted() {
			stats.Skipped++
			continue
		}

		if liveRec, err := li.live.Get(ctx, raw.ID); err == nil && liveRec != nil {
			stats.Skipped++
			continue
		}

		// The listing carries no end timestamp; NormalizeCompleted falls back
		// to ingestion time as the provenance timestamp.
		rec, err := normalize.NormalizeCompleted(raw, time.Time{})
		if err != nil {
			if errors.Is(err, normalize.ErrNoResult) {
				stats.NotReady++
				continue
			}
			stats.Skipped++
			log.Printf("  ⚠️  dropped completed payload %q: %v", raw.ID, err)
			continue
		}

		if _, err := li.completed.Upsert(ctx, rec); err != nil {
			stats.Skipped++
			log.Printf("  ⚠️  completed upsert failed for %s: %v", rec.MatchID, err)
			continue
		}
		stats.Stored++
	}

	if stats.Stored > 0 {
		log.Printf("✓ Catalog sync: %d fetched, %d stored, %d awaiting result, %d skipped",
			stats.Fetched, stats.Stored, stats.NotReady, stats.Skipped)
	}
	return stats, nil
}
