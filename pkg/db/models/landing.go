package models

import (
	"time"

	"github.com/google/uuid"
)

// Landing is an admin-authored invitation page reached at ?landing=<slug>.
type Landing struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug           string    `gorm:"column:slug;not null"`
	Name           string    `gorm:"column:name;not null"`
	WelcomeMessage string    `gorm:"column:welcome_message;not null;default:''"`
	ButtonText     string    `gorm:"column:button_text;not null;default:''"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
