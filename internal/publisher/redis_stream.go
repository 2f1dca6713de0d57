// Package publisher pushes canonical match updates onto Redis streams for the
// real-time fan-out component. This service stops at the stream boundary; the
// delivery transport is someone else's problem.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/wicket/internal/match"
)

const (
	// LiveStream carries per-match live updates.
	LiveStream = "matches.live.cricket"
	// CompletedStream carries finalized match records.
	CompletedStream = "matches.completed.cricket"
	// LiveSetStream carries snapshots of the whole live set.
	LiveSetStream = "matches.liveset.cricket"

	// maxStreamLen caps stream growth; consumers that fall further behind
	// than this have bigger problems than missed entries.
	maxStreamLen = 1000
)

// RedisStreamPublisher publishes events to Redis streams.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a stream publisher from an existing client.
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PublishMatchUpdated publishes one live match's canonical record.
func (p *RedisStreamPublisher) PublishMatchUpdated(ctx context.Context, rec *match.LiveMatchRecord) error {
	return p.add(ctx, LiveStream, map[string]interface{}{
		"match_id": rec.MatchID,
	}, rec)
}

// PublishMatchCompleted publishes a finalized record after migration.
func (p *RedisStreamPublisher) PublishMatchCompleted(ctx context.Context, rec *match.CompletedMatchRecord) error {
	return p.add(ctx, CompletedStream, map[string]interface{}{
		"match_id": rec.MatchID,
	}, rec)
}

// PublishLiveSetChanged publishes a snapshot of the current live set.
func (p *RedisStreamPublisher) PublishLiveSetChanged(ctx context.Context, records []*match.LiveMatchRecord) error {
	return p.add(ctx, LiveSetStream, map[string]interface{}{
		"count": len(records),
	}, records)
}

func (p *RedisStreamPublisher) add(ctx context.Context, stream string, fields map[string]interface{}, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	fields["data"] = string(data)
	fields["timestamp"] = time.Now().Unix()

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: fields,
	}).Err()
}
