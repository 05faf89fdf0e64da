package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog entry. Stock is informational and never reserved.
type Product struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string         `gorm:"column:name;not null"`
	Description   string         `gorm:"column:description;not null;default:''"`
	Category      *string        `gorm:"column:category"`
	Ingredients   pq.StringArray `gorm:"column:ingredients;type:text[]"`
	PriceCents    int64          `gorm:"column:price_cents;not null"`
	LoyaltyPoints int            `gorm:"column:loyalty_points;not null;default:0"`
	Stock         int            `gorm:"column:stock;not null;default:0"`
	ImageURL      *string        `gorm:"column:image_url"`
	IsActive      bool           `gorm:"column:is_active;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
