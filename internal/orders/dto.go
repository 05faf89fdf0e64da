package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/internal/ledger"
	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
)

// OrderItemDTO is one immutable line on an order.
type OrderItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LoyaltyPoints  int       `json:"loyalty_points"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// OrderDTO is the API view of an order.
type OrderDTO struct {
	ID                  uuid.UUID          `json:"id"`
	UserID              uuid.UUID          `json:"user_id"`
	UserName            string             `json:"user_name"`
	Kind                enums.OrderKind    `json:"kind"`
	IsRedemption        bool               `json:"is_redemption"`
	Items               []OrderItemDTO     `json:"items"`
	SubtotalCents       int64              `json:"subtotal_cents"`
	DiscountCents       int64              `json:"discount_cents"`
	TotalCents          int64              `json:"total_cents"`
	HasPromo            bool               `json:"has_promo"`
	PromotionID         *uuid.UUID         `json:"promotion_id,omitempty"`
	PromotionName       *string            `json:"promotion_name,omitempty"`
	PromotionMultiplier *int               `json:"promotion_multiplier,omitempty"`
	BonusPoints         int64              `json:"bonus_points"`
	PointsEarned        int64              `json:"points_earned"`
	PointsCost          int64              `json:"points_cost,omitempty"`
	Status              enums.OrderStatus  `json:"status"`
	CanCancel           bool               `json:"can_cancel"`
	CancelledBy         *enums.CancelledBy `json:"cancelled_by,omitempty"`
	PreparedAt          *time.Time         `json:"prepared_at,omitempty"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
	CancelledAt         *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// AdminOrderDTO is the back-office order view with the point movements the
// order caused.
type AdminOrderDTO struct {
	OrderDTO
	LedgerEntries []ledger.EntryDTO `json:"ledger_entries"`
}

// OrderListResult wraps an admin page of orders.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewOrderDTO maps the stored order to its API shape.
func NewOrderDTO(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			LoyaltyPoints:  item.LoyaltyPoints,
			Quantity:       item.Quantity,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
		})
	}
	return OrderDTO{
		ID:                  o.ID,
		UserID:              o.UserID,
		UserName:            o.UserName,
		Kind:                o.Kind,
		IsRedemption:        o.IsRedemption(),
		Items:               items,
		SubtotalCents:       o.SubtotalCents,
		DiscountCents:       o.DiscountCents,
		TotalCents:          o.TotalCents,
		HasPromo:            o.PromotionID != nil,
		PromotionID:         o.PromotionID,
		PromotionName:       o.PromotionName,
		PromotionMultiplier: o.PromotionMultiplier,
		BonusPoints:         o.BonusPoints,
		PointsEarned:        o.PointsEarned,
		PointsCost:          o.PointsCost,
		Status:              o.Status,
		CanCancel:           CanTransition(o.Status, enums.OrderStatusCancelled, SideClient),
		CancelledBy:         o.CancelledBy,
		PreparedAt:          o.PreparedAt,
		CompletedAt:         o.CompletedAt,
		CancelledAt:         o.CancelledAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}
