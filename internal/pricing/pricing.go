// Package pricing turns a cart and the active promotions into the figures an
// order is stored with. Cart previews, checkout previews and order placement
// all price through Price.
package pricing

import (
	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/promotions"
)

// DefaultPointsPerCurrencyUnit is the base loyalty rate.
const DefaultPointsPerCurrencyUnit = 10

// Policy holds the loyalty rate used for base points.
type Policy struct {
	PointsPerCurrencyUnit int64
}

// DefaultPolicy returns the standard rate.
func DefaultPolicy() Policy {
	return Policy{PointsPerCurrencyUnit: DefaultPointsPerCurrencyUnit}
}

// Quote is the priced cart.
type Quote struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
	BasePoints    int64
	BonusPoints   int64
	PointsEarned  int64
	Applied       *promotions.Applied
}

// Price evaluates the promotions once and derives every figure from that
// result. Total never goes below zero; points are earned on the discounted
// total plus any bonus.
func Price(c *cart.Cart, promos []promotions.Promotion, policy Policy) Quote {
	q := Quote{}
	if c == nil {
		return q
	}
	q.SubtotalCents = c.SubtotalCents()
	q.TotalCents = q.SubtotalCents

	if applied := promotions.Evaluate(c.EngineLines(), promos); applied != nil {
		q.Applied = applied
		q.TotalCents = q.SubtotalCents - applied.SavingsCents
		if q.TotalCents < 0 {
			q.TotalCents = 0
		}
		q.DiscountCents = q.SubtotalCents - q.TotalCents
		q.BonusPoints = applied.BonusPoints
	}

	q.BasePoints = BasePoints(q.TotalCents, policy)
	q.PointsEarned = q.BasePoints + q.BonusPoints
	return q
}

// BasePoints is floor(total × rate) with total in currency units.
func BasePoints(totalCents int64, policy Policy) int64 {
	rate := policy.PointsPerCurrencyUnit
	if rate <= 0 || totalCents <= 0 {
		return 0
	}
	return totalCents * rate / 100
}
