package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/chokistore/backend/pkg/db/types"
	"github.com/chokistore/backend/pkg/enums"
)

// Promotion stores one admin-configured rule. Condition and Reward hold
// tagged documents whose type mirrors the discriminator columns.
type Promotion struct {
	ID            uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string                       `gorm:"column:name;not null"`
	Description   string                       `gorm:"column:description;not null;default:''"`
	IsActive      bool                         `gorm:"column:is_active;not null"`
	IsFeatured    bool                         `gorm:"column:is_featured;not null;default:false"`
	ConditionType enums.PromotionConditionType `gorm:"column:condition_type;type:text;not null"`
	Condition     dbtypes.JSON                 `gorm:"column:condition;type:jsonb;not null"`
	RewardType    enums.PromotionRewardType    `gorm:"column:reward_type;type:text;not null"`
	Reward        dbtypes.JSON                 `gorm:"column:reward;type:jsonb;not null"`
	CreatedAt     time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
