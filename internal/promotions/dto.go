package promotions

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
)

// PromotionDTO is the promotion payload returned to clients.
type PromotionDTO struct {
	ID            uuid.UUID                    `json:"id"`
	Name          string                       `json:"name"`
	Description   string                       `json:"description"`
	IsActive      bool                         `json:"is_active"`
	IsFeatured    bool                         `json:"is_featured"`
	ConditionType enums.PromotionConditionType `json:"condition_type"`
	Condition     json.RawMessage              `json:"condition"`
	RewardType    enums.PromotionRewardType    `json:"reward_type"`
	Reward        json.RawMessage              `json:"reward"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// CreateInput is a validated admin request to add a promotion.
type CreateInput struct {
	Name        string
	Description string
	Active      bool
	Featured    bool
	Condition   Condition
	Reward      Reward
}

// UpdateInput replaces the provided fields. Nil leaves a field unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Active      *bool
	Featured    *bool
	Condition   Condition
	Reward      Reward
}

// NewPromotionDTO renders a persisted row with its stored documents as-is.
func NewPromotionDTO(m *models.Promotion) PromotionDTO {
	return PromotionDTO{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		IsActive:      m.IsActive,
		IsFeatured:    m.IsFeatured,
		ConditionType: m.ConditionType,
		Condition:     json.RawMessage(m.Condition),
		RewardType:    m.RewardType,
		Reward:        json.RawMessage(m.Reward),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// DTOFromPromotion renders a decoded promotion.
func DTOFromPromotion(p Promotion) (PromotionDTO, error) {
	m, err := toModel(p)
	if err != nil {
		return PromotionDTO{}, err
	}
	return NewPromotionDTO(m), nil
}
