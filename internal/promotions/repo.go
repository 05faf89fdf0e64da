package promotions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	dbtypes "github.com/chokistore/backend/pkg/db/types"
)

// Repository persists promotion rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, promo *models.Promotion) error {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *Repository) Save(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Save(promo).Error
}

// Delete removes a promotion and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Promotion{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promo models.Promotion
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// List returns every promotion, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Promotion, error) {
	var rows []models.Promotion
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActive returns active promotions ordered by id so evaluation input is stable.
func (r *Repository) ListActive(ctx context.Context) ([]models.Promotion, error) {
	var rows []models.Promotion
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// toDomain decodes a stored row. The discriminator columns must agree with
// the documents they describe.
func toDomain(m models.Promotion) (Promotion, error) {
	condition, err := DecodeCondition(m.Condition)
	if err != nil {
		return Promotion{}, err
	}
	if condition.Type() != m.ConditionType {
		return Promotion{}, fmt.Errorf("condition_type %q does not match document type %q", m.ConditionType, condition.Type())
	}
	reward, err := DecodeReward(m.Reward)
	if err != nil {
		return Promotion{}, err
	}
	if reward.Type() != m.RewardType {
		return Promotion{}, fmt.Errorf("reward_type %q does not match document type %q", m.RewardType, reward.Type())
	}
	return Promotion{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Active:      m.IsActive,
		Featured:    m.IsFeatured,
		Condition:   condition,
		Reward:      reward,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func toModel(p Promotion) (*models.Promotion, error) {
	condition, err := EncodeCondition(p.Condition)
	if err != nil {
		return nil, err
	}
	reward, err := EncodeReward(p.Reward)
	if err != nil {
		return nil, err
	}
	return &models.Promotion{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		IsActive:      p.Active,
		IsFeatured:    p.Featured,
		ConditionType: p.Condition.Type(),
		Condition:     dbtypes.JSON(condition),
		RewardType:    p.Reward.Type(),
		Reward:        dbtypes.JSON(reward),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}
