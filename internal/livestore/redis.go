// Package livestore holds in-progress matches in Redis. Documents are JSON
// blobs keyed by match id with a TTL, so abandoned records clean themselves
// up even if the transition engine never migrates them.
package livestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/wicket/internal/match"
)

const (
	keyPrefix = "match:live:"

	// DefaultTTL is how long a live record may sit without migration before
	// Redis expires it.
	DefaultTTL = 24 * time.Hour

	// upsertAttempts bounds the optimistic-lock loop when two pollers race on
	// the same match id: one retry after the initial attempt, then the
	// contention is surfaced.
	upsertAttempts = 2
)

// Store is the live-match store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, ttl: DefaultTTL}, nil
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client, shared with the publisher.
func (s *Store) Client() *redis.Client {
	return s.client
}

// HealthCheck pings Redis.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func key(id string) string {
	return keyPrefix + id
}

// Upsert merges the incoming record over the stored one and increments the
// update counter, atomically. Concurrent upserts on the same id are resolved
// by retrying the whole merge a bounded number of times, not by failing the
// caller. Fields absent from the incoming record keep their stored values.
func (s *Store) Upsert(ctx context.Context, incoming *match.LiveMatchRecord) (*match.LiveMatchRecord, error) {
	if err := match.ValidateLive(incoming); err != nil {
		return nil, err
	}
	k := key(incoming.MatchID)

	var stored *match.LiveMatchRecord
	txf := func(tx *redis.Tx) error {
		existing, err := getRecord(ctx, tx, k)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		merged := match.MergeLive(existing, incoming)
		merged.MatchID = incoming.MatchID
		merged.UpdatedAt = now
		if existing == nil {
			merged.UpdateCount = 1
			merged.CreatedAt = now
			merged.ExpiresAt = now.Add(s.ttl)
		} else {
			merged.UpdateCount = existing.UpdateCount + 1
			merged.CreatedAt = existing.CreatedAt
			merged.ExpiresAt = existing.ExpiresAt
		}

		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshaling live record %s: %w", merged.MatchID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if existing == nil {
				pipe.Set(ctx, k, data, s.ttl)
			} else {
				pipe.Set(ctx, k, data, redis.KeepTTL)
			}
			return nil
		})
		if err != nil {
			return err
		}
		stored = merged
		return nil
	}

	var err error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		err = s.client.Watch(ctx, txf, k)
		if err == nil {
			return stored, nil
		}
		if err != redis.TxFailedErr {
			return nil, fmt.Errorf("upserting live record %s: %w", incoming.MatchID, err)
		}
		// Lost the race; merge against the fresh value and try again.
	}
	return nil, fmt.Errorf("upserting live record %s: contention after %d attempts: %w", incoming.MatchID, upsertAttempts, err)
}

// Get returns the live record for id, or nil when none exists.
func (s *Store) Get(ctx context.Context, id string) (*match.LiveMatchRecord, error) {
	return getRecord(ctx, s.client, key(id))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRecord(ctx context.Context, c getter, k string) (*match.LiveMatchRecord, error) {
	data, err := c.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", k, err)
	}
	var rec match.LiveMatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", k, err)
	}
	return &rec, nil
}

// ListAll returns every live record.
func (s *Store) ListAll(ctx context.Context) ([]*match.LiveMatchRecord, error) {
	var records []*match.LiveMatchRecord
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rec, err := getRecord(ctx, s.client, iter.Val())
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning live records: %w", err)
	}
	return records, nil
}

// Delete removes the live record for id. Returns whether a record existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("deleting live record %s: %w", id, err)
	}
	return n > 0, nil
}

// CleanupExpired removes records whose expiry timestamp has elapsed. Redis
// key TTLs normally handle this; the sweep covers keys restored from a dump
// with their TTLs lost, or records with a corrupted deadline.
func (s *Store) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	records, err := s.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range records {
		if !rec.ExpiresAt.IsZero() && now.After(rec.ExpiresAt) {
			gone, err := s.Delete(ctx, rec.MatchID)
			if err != nil {
				return removed, err
			}
			if gone {
				removed++
			}
		}
	}
	return removed, nil
}
