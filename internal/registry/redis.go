package registry

import (
	"context"
	"errors"
	"fmt"

	"auction-escrow/internal/auctionerrors"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	auctionsKey = "auctionhouse:auctions"
	balanceKey  = "auctionhouse:balance"

	maxBalanceRetries = 10
)

// Redis is an AuctionHouse kept in Redis: ids in a list, the balance as a
// decimal string updated with optimistic transactions
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed registry. prefix namespaces the keys.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Register appends an auction id
func (r *Redis) Register(ctx context.Context, auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("register: %w - empty auction ID", auctionerrors.ErrInvalidAuction)
	}
	if err := r.rdb.RPush(ctx, r.key(auctionsKey), auctionID).Err(); err != nil {
		return fmt.Errorf("register auction %s: %w", auctionID, err)
	}
	return nil
}

// RecordProceeds adds a settled amount to the house balance
func (r *Redis) RecordProceeds(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("record proceeds %s: %w", amount, auctionerrors.ErrInvalidAmount)
	}

	key := r.key(balanceKey)
	txf := func(tx *redis.Tx) error {
		current, err := readDecimal(ctx, tx, key)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, current.Add(amount).String(), 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxBalanceRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("record proceeds %s: %w", amount, err)
	}
	return fmt.Errorf("record proceeds %s: balance contended after %d attempts", amount, maxBalanceRetries)
}

// AuctionIDs returns registered ids in registration order
func (r *Redis) AuctionIDs(ctx context.Context) ([]string, error) {
	ids, err := r.rdb.LRange(ctx, r.key(auctionsKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	return ids, nil
}

// Balance returns the aggregate settled proceeds
func (r *Redis) Balance(ctx context.Context) (decimal.Decimal, error) {
	return readDecimal(ctx, r.rdb, r.key(balanceKey))
}

func readDecimal(ctx context.Context, c redis.Cmdable, key string) (decimal.Decimal, error) {
	raw, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read %s: %w", key, err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}
