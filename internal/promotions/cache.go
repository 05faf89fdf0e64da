package promotions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chokistore/backend/pkg/db/models"
)

// cacheStore is the slice of the redis client the active cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	ActivePromotionsKey(generation string) string
	PromotionsGenerationKey() string
}

type cacheResult string

const (
	cacheHit   cacheResult = "hit"
	cacheMiss  cacheResult = "miss"
	cacheError cacheResult = "error"
)

// activeCache stores the raw active rows so a cached read decodes exactly
// like a database read. Entries are keyed by the write generation read
// before the database, so a read that overlaps a write can only fill a slot
// no later reader looks at.
type activeCache struct {
	store cacheStore
	ttl   time.Duration
}

// slot resolves the key for the current generation. A missing counter is
// generation zero.
func (c *activeCache) slot(ctx context.Context) (string, error) {
	gen, err := c.store.Get(ctx, c.store.PromotionsGenerationKey())
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		return "", err
	}
	return c.store.ActivePromotionsKey(gen), nil
}

// load returns the slot it looked in so a miss can be filled there. The slot
// is empty when the generation itself could not be read.
func (c *activeCache) load(ctx context.Context) ([]models.Promotion, string, cacheResult, error) {
	key, err := c.slot(ctx)
	if err != nil {
		return nil, "", cacheError, err
	}
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, key, cacheMiss, nil
	}
	if err != nil {
		return nil, key, cacheError, err
	}
	var rows []models.Promotion
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, key, cacheError, err
	}
	return rows, key, cacheHit, nil
}

func (c *activeCache) save(ctx context.Context, key string, rows []models.Promotion) error {
	if rows == nil {
		rows = []models.Promotion{}
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, string(payload), c.ttl)
}

// invalidate moves readers to a fresh generation. Old slots age out on TTL.
func (c *activeCache) invalidate(ctx context.Context) error {
	_, err := c.store.Incr(ctx, c.store.PromotionsGenerationKey())
	return err
}
