package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/metrics"
)

// Service manages promotion rules and serves the active set to pricing.
type Service interface {
	Active(ctx context.Context) ([]Promotion, error)
	List(ctx context.Context) ([]PromotionDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error)
	Create(ctx context.Context, input CreateInput) (*PromotionDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PromotionDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, promo *models.Promotion) error
	Save(ctx context.Context, promo *models.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	List(ctx context.Context) ([]models.Promotion, error)
	ListActive(ctx context.Context) ([]models.Promotion, error)
}

// ServiceParams wires the promotion service. Cache is optional.
type ServiceParams struct {
	Repo     repository
	Cache    cacheStore
	CacheTTL time.Duration
	Logger   *logger.Logger
	Metrics  *metrics.ShopMetrics
}

type service struct {
	repo    repository
	cache   *activeCache
	logg    *logger.Logger
	metrics *metrics.ShopMetrics
	now     func() time.Time
}

// NewService constructs the promotion service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("promotion repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}
	if params.Cache != nil {
		if params.CacheTTL <= 0 {
			return nil, fmt.Errorf("cache ttl must be positive")
		}
		svc.cache = &activeCache{store: params.Cache, ttl: params.CacheTTL}
	}
	return svc, nil
}

// Active returns the decodable active promotions. Cache failures fall back to
// the database.
func (s *service) Active(ctx context.Context) ([]Promotion, error) {
	var slot string
	if s.cache != nil {
		rows, key, result, err := s.cache.load(ctx)
		s.metrics.ObservePromotionCache(string(result))
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "promotions.cache_read_failed")
		}
		if result == cacheHit {
			return s.decodeActive(ctx, rows), nil
		}
		slot = key
	}

	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active promotions")
	}
	if slot != "" {
		if err := s.cache.save(ctx, slot, rows); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "promotions.cache_write_failed")
		}
	}
	return s.decodeActive(ctx, rows), nil
}

func (s *service) decodeActive(ctx context.Context, rows []models.Promotion) []Promotion {
	out := make([]Promotion, 0, len(rows))
	for _, row := range rows {
		if !row.IsActive {
			continue
		}
		promo, err := toDomain(row)
		if err != nil {
			warnCtx := s.logg.WithFields(ctx, map[string]any{
				"promotion_id": row.ID.String(),
				"error":        err.Error(),
			})
			s.logg.Warn(warnCtx, "promotions.skipped_undecodable")
			continue
		}
		out = append(out, promo)
	}
	return out
}

func (s *service) List(ctx context.Context) ([]PromotionDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}
	out := make([]PromotionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewPromotionDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PromotionDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewPromotionDTO(row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*PromotionDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateRule(input.Condition, input.Reward); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	row, err := toModel(Promotion{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Active:      input.Active,
		Featured:    input.Featured,
		Condition:   input.Condition,
		Reward:      input.Reward,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode promotion")
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert promotion")
	}
	s.invalidate(ctx)

	dto := NewPromotionDTO(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*PromotionDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := toDomain(*row)
	if err != nil && (input.Condition == nil || input.Reward == nil) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "stored promotion is malformed; replace condition and reward together")
	}
	if err != nil {
		current = Promotion{ID: row.ID, Name: row.Name, Description: row.Description, Active: row.IsActive, Featured: row.IsFeatured, CreatedAt: row.CreatedAt}
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		current.Name = name
	}
	if input.Description != nil {
		current.Description = strings.TrimSpace(*input.Description)
	}
	if input.Active != nil {
		current.Active = *input.Active
	}
	if input.Featured != nil {
		current.Featured = *input.Featured
	}
	if input.Condition != nil {
		current.Condition = input.Condition
	}
	if input.Reward != nil {
		current.Reward = input.Reward
	}
	if err := validateRule(current.Condition, current.Reward); err != nil {
		return nil, err
	}
	current.CreatedAt = row.CreatedAt
	current.UpdatedAt = s.now().UTC()

	updated, err := toModel(current)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode promotion")
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion")
	}
	s.invalidate(ctx)

	dto := NewPromotionDTO(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete promotion")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}
	return row, nil
}

// invalidate retires the cached active set; a failure only delays visibility
// until the TTL expires.
func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.invalidate(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "promotions.cache_invalidate_failed")
	}
}

func validateRule(condition Condition, reward Reward) error {
	if condition == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition is required")
	}
	if reward == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward is required")
	}
	if err := condition.Validate(); err != nil {
		return err
	}
	return reward.Validate()
}
