package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/chokistore/backend/pkg/db/types"
	"github.com/chokistore/backend/pkg/enums"
)

// Order is the persisted result of a checkout or a redemption. Items and the
// priced amounts never change after insert.
type Order struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	UserName            string             `gorm:"column:user_name;not null;default:''"`
	Kind                enums.OrderKind    `gorm:"column:kind;type:text;not null"`
	Items               dbtypes.OrderItems `gorm:"column:items;type:jsonb;not null"`
	SubtotalCents       int64              `gorm:"column:subtotal_cents;not null"`
	DiscountCents       int64              `gorm:"column:discount_cents;not null;default:0"`
	TotalCents          int64              `gorm:"column:total_cents;not null"`
	PromotionID         *uuid.UUID         `gorm:"column:promotion_id;type:uuid"`
	PromotionName       *string            `gorm:"column:promotion_name"`
	PromotionMultiplier *int               `gorm:"column:promotion_multiplier"`
	BonusPoints         int64              `gorm:"column:bonus_points;not null;default:0"`
	PointsEarned        int64              `gorm:"column:points_earned;not null;default:0"`
	PointsCost          int64              `gorm:"column:points_cost;not null;default:0"`
	Status              enums.OrderStatus  `gorm:"column:status;type:text;not null"`
	CancelledBy         *enums.CancelledBy `gorm:"column:cancelled_by;type:text"`
	PreparedAt          *time.Time         `gorm:"column:prepared_at"`
	CompletedAt         *time.Time         `gorm:"column:completed_at"`
	CancelledAt         *time.Time         `gorm:"column:cancelled_at"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRedemption reports whether the order was paid with points.
func (o Order) IsRedemption() bool {
	return o.Kind == enums.OrderKindRedemption
}

// OrderHistoryEntry links a user to an order shown in their history.
// Deleting the entry hides the order without touching it.
type OrderHistoryEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderHistoryEntry) TableName() string {
	return "order_history"
}
