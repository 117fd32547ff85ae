package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/veluxora/auction-engine/internal/core/domain"
)

const detailTTL = 30 * time.Second

// DetailCache is a read-through cache for auction detail lookups, backed by
// Redis. Key format: auction:<id>
//
// The cache is strictly an accelerator: every failure is treated as a miss
// and logged at debug level, never surfaced to the caller. Mutating
// operations invalidate the key, and the short TTL bounds staleness for any
// invalidation that is lost.
type DetailCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewDetailCache creates a DetailCache wrapping the given Redis client.
func NewDetailCache(client *redis.Client, log zerolog.Logger) *DetailCache {
	return &DetailCache{client: client, log: log}
}

// GetAuction returns the cached record and whether it was present.
func (c *DetailCache) GetAuction(ctx context.Context, id string) (*domain.Auction, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug().Err(err).Str("auction_id", id).Msg("cache get failed")
		}
		return nil, false
	}

	var a domain.Auction
	if err := json.Unmarshal(raw, &a); err != nil {
		c.log.Debug().Err(err).Str("auction_id", id).Msg("cache entry corrupt, dropping")
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &a, true
}

// SetAuction stores the record with a short TTL.
func (c *DetailCache) SetAuction(ctx context.Context, a *domain.Auction) {
	raw, err := json.Marshal(a)
	if err != nil {
		c.log.Debug().Err(err).Str("auction_id", a.ID).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, c.key(a.ID), raw, detailTTL).Err(); err != nil {
		c.log.Debug().Err(err).Str("auction_id", a.ID).Msg("cache set failed")
	}
}

// Invalidate drops the cached record after a mutation.
func (c *DetailCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.log.Debug().Err(err).Str("auction_id", id).Msg("cache invalidate failed")
	}
}

func (c *DetailCache) key(id string) string {
	return fmt.Sprintf("auction:%s", id)
}
