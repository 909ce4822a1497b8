package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumengrid/lumen_api/pkg/promo"
)

// CachedCalculation wraps a promotion calculation with the identifiers of
// the inputs that produced it, so stale entries can be detected and purged.
type CachedCalculation struct {
	SelectionID int                `json:"selectionId"`
	PromotionID int                `json:"promotionId"`
	Calculation *promo.Calculation `json:"calculation"`
	CachedAt    time.Time          `json:"cachedAt"`
}

// CalculationCache stores priced selections in Redis. The calculator is
// cheap; the cache only shields hot read paths (the status strip polls).
// Entries are invalidated on every selection mutation.
type CalculationCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCalculationCache creates a CalculationCache with the given TTL.
func NewCalculationCache(redis *RedisClient, ttl time.Duration) *CalculationCache {
	return &CalculationCache{redis: redis, ttl: ttl}
}

func (c *CalculationCache) key(selectionID int) string {
	return fmt.Sprintf("pricing:selection:%d", selectionID)
}

// Set stores a calculation for a selection.
func (c *CalculationCache) Set(ctx context.Context, selectionID, promotionID int, calc *promo.Calculation) error {
	entry := CachedCalculation{
		SelectionID: selectionID,
		PromotionID: promotionID,
		Calculation: calc,
		CachedAt:    time.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation: %w", err)
	}
	return c.redis.Set(ctx, c.key(selectionID), string(data), c.ttl)
}

// Get retrieves the cached calculation for a selection. A miss returns
// (nil, nil).
func (c *CalculationCache) Get(ctx context.Context, selectionID int) (*CachedCalculation, error) {
	data, err := c.redis.Get(ctx, c.key(selectionID))
	if err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}

	var entry CachedCalculation
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calculation: %w", err)
	}
	return &entry, nil
}

// Invalidate removes the cached calculation for a selection.
func (c *CalculationCache) Invalidate(ctx context.Context, selectionID int) error {
	return c.redis.Delete(ctx, c.key(selectionID))
}
