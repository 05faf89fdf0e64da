package promotions

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chokistore/backend/pkg/db/dbtest"
	"github.com/chokistore/backend/pkg/db/models"
	dbtypes "github.com/chokistore/backend/pkg/db/types"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/metrics"
)

type fakeCache struct {
	values map[string]string
	getErr error
	sets   int
	bumps  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	f.bumps++
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeCache) ActivePromotionsKey(generation string) string {
	return "choki:promotions:active:" + generation
}

func (f *fakeCache) PromotionsGenerationKey() string { return "choki:promotions:generation" }

func newTestService(t *testing.T, cache cacheStore) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Cache:    cache,
		CacheTTL: time.Minute,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Metrics:  metrics.NewShopMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return svc, repo
}

func truffleDeal() CreateInput {
	return CreateInput{
		Name:      "3 truffles for 3.90",
		Active:    true,
		Condition: ProductThreshold{ProductID: truffleID, MinQuantity: 3},
		Reward:    FixedSetPrice{PriceCents: 390},
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	_, err = NewService(ServiceParams{
		Repo:   NewRepository(nil),
		Cache:  newFakeCache(),
		Logger: logger.New(logger.Options{Output: io.Discard}),
	})
	require.Error(t, err, "cache without ttl should be rejected")
}

func TestCreateAndGetPromotion(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, truffleDeal())
	require.NoError(t, err)
	assert.Equal(t, enums.ConditionProductThreshold, created.ConditionType)
	assert.Equal(t, enums.RewardFixedSetPrice, created.RewardType)
	assert.JSONEq(t, `{"type":"fixed_set_price","priceCents":390}`, string(created.Reward))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.JSONEq(t, string(created.Condition), string(got.Condition))

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateRejectsInvalidRules(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	cases := []CreateInput{
		{Name: " ", Condition: MinSubtotal{AmountCents: 100}, Reward: FixedDiscount{AmountCents: 10}},
		{Name: "no condition", Reward: FixedDiscount{AmountCents: 10}},
		{Name: "bad condition", Condition: MinSubtotal{}, Reward: FixedDiscount{AmountCents: 10}},
		{Name: "bad reward", Condition: MinSubtotal{AmountCents: 100}, Reward: PercentageDiscount{Percent: decimal.NewFromInt(120)}},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %q: %v", input.Name, err)
	}
}

func TestActiveReadsThroughCacheAndInvalidatesOnWrite(t *testing.T) {
	cache := newFakeCache()
	svc, _ := newTestService(t, cache)
	ctx := context.Background()

	created, err := svc.Create(ctx, truffleDeal())
	require.NoError(t, err)
	inactive := truffleDeal()
	inactive.Name = "off season"
	inactive.Active = false
	_, err = svc.Create(ctx, inactive)
	require.NoError(t, err)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)
	assert.Equal(t, FixedSetPrice{PriceCents: 390}, active[0].Reward)
	assert.Equal(t, 1, cache.sets)

	cachedAgain, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, active[0].ID, cachedAgain[0].ID)
	assert.Equal(t, 1, cache.sets, "second read should be served from cache")

	deactivate := false
	_, err = svc.Update(ctx, created.ID, UpdateInput{Active: &deactivate})
	require.NoError(t, err)
	_, cached := cache.values[cache.ActivePromotionsKey(cache.values[cache.PromotionsGenerationKey()])]
	assert.False(t, cached, "update should move readers past the cached set")

	active, err = svc.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestReadOverlappingWriteCannotRepopulateStaleSet(t *testing.T) {
	cache := newFakeCache()
	c := &activeCache{store: cache, ttl: time.Minute}
	ctx := context.Background()

	_, slot, result, err := c.load(ctx)
	require.NoError(t, err)
	require.Equal(t, cacheMiss, result)

	// A write lands between the reader's database read and its cache fill.
	require.NoError(t, c.invalidate(ctx))
	require.NoError(t, c.save(ctx, slot, []models.Promotion{{ID: uuid.New(), Name: "pre-edit", IsActive: true}}))

	_, _, result, err = c.load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cacheMiss, result, "stale fill must land in a retired slot")
}

func TestActiveFallsBackWhenCacheFails(t *testing.T) {
	cache := newFakeCache()
	svc, _ := newTestService(t, cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, truffleDeal())
	require.NoError(t, err)

	cache.getErr = errors.New("connection refused")
	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestActiveSkipsUndecodableRows(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, truffleDeal())
	require.NoError(t, err)

	broken := &models.Promotion{
		ID:            uuid.New(),
		Name:          "legacy",
		IsActive:      true,
		ConditionType: enums.ConditionMinSubtotal,
		Condition:     dbtypes.JSON(`{"type":"lucky_day"}`),
		RewardType:    enums.RewardFixedDiscount,
		Reward:        dbtypes.JSON(`{"type":"fixed_discount","amountCents":100}`),
	}
	require.NoError(t, repo.Create(ctx, broken))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "3 truffles for 3.90", active[0].Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "admin listing keeps malformed rows visible")

	_, err = svc.Update(ctx, broken.ID, UpdateInput{Name: strPtr("renamed")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	fixed, err := svc.Update(ctx, broken.ID, UpdateInput{
		Condition: MinSubtotal{AmountCents: 1000},
		Reward:    FixedDiscount{AmountCents: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, "legacy", fixed.Name)
}

func TestUpdateReplacesRule(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, truffleDeal())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateInput{
		Name:   strPtr("Spend 10, save 50%"),
		Reward: PercentageDiscount{Percent: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Spend 10, save 50%", updated.Name)
	assert.Equal(t, enums.RewardPercentageDiscount, updated.RewardType)
	assert.Equal(t, enums.ConditionProductThreshold, updated.ConditionType)

	_, err = svc.Update(ctx, created.ID, UpdateInput{Condition: MinTotalQuantity{Count: 0}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeletePromotion(t *testing.T) {
	cache := newFakeCache()
	svc, _ := newTestService(t, cache)
	ctx := context.Background()

	created, err := svc.Create(ctx, truffleDeal())
	require.NoError(t, err)
	bumpsAfterCreate := cache.bumps

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, bumpsAfterCreate+1, cache.bumps)

	err = svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func strPtr(v string) *string { return &v }

func TestFeaturedFlagPersistsAndToggles(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	input := truffleDeal()
	input.Featured = true
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.True(t, created.IsFeatured)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].Featured)

	off := false
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Featured: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsFeatured)
	assert.True(t, updated.IsActive, "other fields stay as they were")
}
