package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/pkg/enums"
)

// Notification is a short-lived in-app message for a shopper.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Message   string                 `gorm:"column:message;type:text;not null"`
	ExpiresAt time.Time              `gorm:"column:expires_at;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
