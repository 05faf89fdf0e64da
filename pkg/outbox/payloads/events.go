package payloads

import (
	"time"

	"github.com/chokistore/backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderPlacedEvent is emitted when a checkout or redemption order is stored.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID       `json:"orderId"`
	UserID        uuid.UUID       `json:"userId"`
	Kind          enums.OrderKind `json:"kind"`
	SubtotalCents int64           `json:"subtotalCents"`
	TotalCents    int64           `json:"totalCents"`
	PointsEarned  int64           `json:"pointsEarned"`
	PointsCost    int64           `json:"pointsCost,omitempty"`
	PromotionName *string         `json:"promotionName,omitempty"`
	ItemCount     int             `json:"itemCount"`
}

// OrderStatusChangedEvent is emitted on every accepted lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID          `json:"orderId"`
	UserID      uuid.UUID          `json:"userId"`
	From        enums.OrderStatus  `json:"from"`
	To          enums.OrderStatus  `json:"to"`
	CancelledBy *enums.CancelledBy `json:"cancelledBy,omitempty"`
	ChangedAt   time.Time          `json:"changedAt"`
}

// PointsAdjustedEvent mirrors a ledger entry and the resulting balance.
type PointsAdjustedEvent struct {
	EntryID uuid.UUID             `json:"entryId"`
	UserID  uuid.UUID             `json:"userId"`
	OrderID *uuid.UUID            `json:"orderId,omitempty"`
	Kind    enums.LedgerEntryKind `json:"kind"`
	Amount  int64                 `json:"amount"`
	Balance int64                 `json:"balance"`
}

// NotificationCreatedEvent hands an in-app notification to push delivery.
type NotificationCreatedEvent struct {
	NotificationID uuid.UUID              `json:"notificationId"`
	UserID         uuid.UUID              `json:"userId"`
	OrderID        *uuid.UUID             `json:"orderId,omitempty"`
	Type           enums.NotificationType `json:"type"`
	Message        string                 `json:"message"`
	ExpiresAt      time.Time              `json:"expiresAt"`
}
