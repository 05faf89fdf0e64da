package checkout

import (
	"github.com/google/uuid"

	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/pricing"
)

// QuoteLineDTO is one priced line of a quote.
type QuoteLineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// AppliedPromotionDTO describes the promotion that won the evaluation.
type AppliedPromotionDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Multiplier   int       `json:"multiplier"`
	SavingsCents int64     `json:"savings_cents"`
	BonusPoints  int64     `json:"bonus_points"`
}

// QuoteDTO is what the cart and checkout previews return.
type QuoteDTO struct {
	Items         []QuoteLineDTO       `json:"items"`
	ItemCount     int                  `json:"item_count"`
	SubtotalCents int64                `json:"subtotal_cents"`
	DiscountCents int64                `json:"discount_cents"`
	TotalCents    int64                `json:"total_cents"`
	BasePoints    int64                `json:"base_points"`
	BonusPoints   int64                `json:"bonus_points"`
	PointsEarned  int64                `json:"points_earned"`
	Promotion     *AppliedPromotionDTO `json:"promotion,omitempty"`
}

func newQuoteDTO(c *cart.Cart, quote pricing.Quote) *QuoteDTO {
	lines := c.Lines()
	out := &QuoteDTO{
		Items:         make([]QuoteLineDTO, 0, len(lines)),
		ItemCount:     c.TotalQuantity(),
		SubtotalCents: quote.SubtotalCents,
		DiscountCents: quote.DiscountCents,
		TotalCents:    quote.TotalCents,
		BasePoints:    quote.BasePoints,
		BonusPoints:   quote.BonusPoints,
		PointsEarned:  quote.PointsEarned,
	}
	for _, line := range lines {
		out.Items = append(out.Items, QuoteLineDTO{
			ProductID:      line.Product.ID,
			Name:           line.Product.Name,
			UnitPriceCents: line.Product.UnitPriceCents,
			Quantity:       line.Quantity,
			LineTotalCents: line.SubtotalCents(),
		})
	}
	if applied := quote.Applied; applied != nil {
		out.Promotion = &AppliedPromotionDTO{
			ID:           applied.PromotionID,
			Name:         applied.PromotionName,
			Multiplier:   applied.Multiplier,
			SavingsCents: applied.SavingsCents,
			BonusPoints:  applied.BonusPoints,
		}
	}
	return out
}
