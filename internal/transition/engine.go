// Package transition migrates matches from the live store to the completed
// store. Per match the lifecycle is:
//
//	LIVE → VERIFYING → MIGRATING → COMPLETED
//	         └────────── back to LIVE on an inconclusive re-check
//
// Migration happens exactly once per match and never fabricates a result: a
// match without a provider-asserted result stays live and is retried on the
// next sweep.
package transition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fortuna/wicket/internal/classify"
	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/normalize"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
)

// Provider is the slice of the upstream client the engine needs.
type Provider interface {
	MatchInfo(ctx context.Context, id string) (*cricketdata.Match, error)
}

// LiveStore is the live-match store surface used during migration.
type LiveStore interface {
	ListAll(ctx context.Context) ([]*match.LiveMatchRecord, error)
	Upsert(ctx context.Context, rec *match.LiveMatchRecord) (*match.LiveMatchRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}

// CompletedTx is one migration transaction on the completed store.
type CompletedTx interface {
	Upsert(ctx context.Context, rec *match.CompletedMatchRecord) error
	Commit() error
	Rollback() error
}

// CompletedStore opens migration transactions.
type CompletedStore interface {
	Begin(ctx context.Context) (CompletedTx, error)
}

// Publisher receives finalized records after a successful migration.
type Publisher interface {
	PublishMatchCompleted(ctx context.Context, rec *match.CompletedMatchRecord) error
}

// Engine drives detection, verification and migration.
type Engine struct {
	provider  Provider
	live      LiveStore
	completed CompletedStore
	publisher Publisher

	verifyRetries uint64
	newBackOff    func() backoff.BackOff
}

// New creates a transition engine. The publisher may be nil.
func New(provider Provider, live LiveStore, completed CompletedStore, publisher Publisher) *Engine {
	return &Engine{
		provider:      provider,
		live:          live,
		completed:     completed,
		publisher:     publisher,
		verifyRetries: 2,
		newBackOff:    defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	return bo
}

// SweepStats summarizes one detection sweep.
type SweepStats struct {
	Scanned   int
	Migrated  int
	StillLive int
	Expired   int
	Failures  int
}

// Sweep re-checks every live record and migrates the ones the provider now
// asserts are finished. Matches migrate independently; one failure never
// stalls the rest.
func (e *Engine) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats

	// Defensive cleanup first: a record whose TTL elapsed is eligible for
	// deletion whether or not migration ever happened.
	expired, err := e.live.CleanupExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("⚠️  live-store expiry cleanup failed: %v", err)
	}
	stats.Expired = expired

	records, err := e.live.ListAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing live records: %w", err)
	}
	stats.Scanned = len(records)

	for _, rec := range records {
		migrated, err := e.processMatch(ctx, rec)
		switch {
		case err != nil:
			stats.Failures++
			log.Printf("⚠️  transition check failed for %s: %v", rec.MatchID, err)
		case migrated:
			stats.Migrated++
		default:
			stats.StillLive++
		}
	}

	if stats.Migrated > 0 || stats.Expired > 0 {
		log.Printf("✓ Transition sweep: %d scanned, %d migrated, %d expired, %d failures",
			stats.Scanned, stats.Migrated, stats.Expired, stats.Failures)
	}
	return stats, nil
}

// processMatch runs one record through VERIFYING and, when confirmed,
// MIGRATING. Returns whether the match was migrated.
func (e *Engine) processMatch(ctx context.Context, rec *match.LiveMatchRecord) (bool, error) {
	raw, err := e.verify(ctx, rec.MatchID)
	if err != nil {
		// VERIFYING → LIVE; the next sweep retries.
		return false, err
	}

	c := classify.Classify(raw)
	if !c.IsCompleted() {
		return false, nil
	}

	completed, err := normalize.NormalizeCompleted(raw, time.Now().UTC())
	if err != nil {
		if errors.Is(err, normalize.ErrNoResult) {
			// Confirmed over but no provider-asserted result yet. Not ready;
			// never migrate with a fabricated one.
			log.Printf("  %s classified completed (%s) but has no result yet, keeping live", rec.MatchID, c.Reason)
			return false, nil
		}
		return false, err
	}

	if err := e.migrate(ctx, rec, completed); err != nil {
		return false, err
	}

	log.Printf("✓ Migrated %s: %s", completed.MatchID, completed.Result.Text())
	return true, nil
}

// verify re-fetches fresh match detail, retrying transient provider failures
// with exponential backoff (1s, 2s). Availability failures (403/404) are not
// retried within a cycle.
func (e *Engine) verify(ctx context.Context, id string) (*cricketdata.Match, error) {
	var raw *cricketdata.Match
	op := func() error {
		m, err := e.provider.MatchInfo(ctx, id)
		if err != nil {
			if cricketdata.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		raw = m
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), e.verifyRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("verifying %s: %w", id, err)
	}
	return raw, nil
}

// migrate performs the atomic cross-store move: the completed write and the
// live delete commit together or not at all. The transaction is scoped
// strictly to the write+delete pair; no lock is held across the verification
// fetch, so provider latency on one match never stalls the others.
func (e *Engine) migrate(ctx context.Context, liveRec *match.LiveMatchRecord, completed *match.CompletedMatchRecord) error {
	tx, err := e.completed.Begin(ctx)
	if err != nil {
		return fmt.Errorf("opening migration transaction for %s: %w", completed.MatchID, err)
	}

	if err := tx.Upsert(ctx, completed); err != nil {
		tx.Rollback()
		return fmt.Errorf("writing completed record for %s: %w", completed.MatchID, err)
	}

	if _, err := e.live.Delete(ctx, liveRec.MatchID); err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting live record for %s: %w", liveRec.MatchID, err)
	}

	if err := tx.Commit(); err != nil {
		// The live record is already gone; put it back so the match is never
		// absent from both stores. The next sweep retries the migration.
		if _, rerr := e.live.Upsert(ctx, liveRec); rerr != nil {
			log.Printf("❌ %s: migration commit failed AND live restore failed, record orphaned until next refresh: %v", liveRec.MatchID, rerr)
		}
		return fmt.Errorf("committing migration for %s: %w", completed.MatchID, err)
	}

	if e.publisher != nil {
		if err := e.publisher.PublishMatchCompleted(ctx, completed); err != nil {
			log.Printf("⚠️  publishing completed match %s: %v", completed.MatchID, err)
		}
	}
	return nil
}
