package events

import (
	"context"
	"encoding/json"
	"fmt"

	model "auction-escrow/internal/models"

	"github.com/redis/go-redis/v9"
)

// DefaultRecentLimit caps the recent-events list kept per auction
const DefaultRecentLimit = 100

// RedisNotifier publishes events on a pub/sub channel and keeps the most
// recent ones per auction in a capped list
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
	limit   int64
}

// NewRedisNotifier creates a notifier publishing on channel
func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel, limit: DefaultRecentLimit}
}

// RecentKey is the list holding an auction's latest events, newest first
func RecentKey(auctionID string) string {
	return "auction:" + auctionID + ":events"
}

// Notify publishes the event and records it in the recent list
func (n *RedisNotifier) Notify(ctx context.Context, event model.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.EventID, err)
	}

	key := RecentKey(event.AuctionID)
	_, err = n.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, n.channel, payload)
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, n.limit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventID, err)
	}
	return nil
}

// Recent returns up to limit of an auction's latest events, newest first
func (n *RedisNotifier) Recent(ctx context.Context, auctionID string, limit int64) ([]model.Event, error) {
	if limit <= 0 || limit > n.limit {
		limit = n.limit
	}
	raw, err := n.rdb.LRange(ctx, RecentKey(auctionID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("recent events for %s: %w", auctionID, err)
	}

	out := make([]model.Event, 0, len(raw))
	for _, r := range raw {
		var e model.Event
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode event for %s: %w", auctionID, err)
		}
		out = append(out, e)
	}
	return out, nil
}
