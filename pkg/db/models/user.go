package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/enums"
)

// User is the shopper profile. Points is the denormalized ledger balance and
// only moves through atomic updates in the ledger repository.
type User struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	DisplayName      string         `gorm:"column:display_name;not null"`
	Email            *string        `gorm:"column:email"`
	Role             enums.UserRole `gorm:"column:role;type:text;not null;default:'client'"`
	Points           int64          `gorm:"column:points;not null;default:0"`
	LastNameChangeAt *time.Time     `gorm:"column:last_name_change_at"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
