package promotions

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is the engine's view of one cart line.
type Line struct {
	ProductID      uuid.UUID
	UnitPriceCents int64
	Quantity       int
}

// Applied is the effect of the single winning promotion.
type Applied struct {
	PromotionID   uuid.UUID
	PromotionName string
	Multiplier    int
	EligibleCents int64
	SavingsCents  int64
	BonusPoints   int64
}

// cartSummary aggregates the lines once per evaluation.
type cartSummary struct {
	lines         []Line
	quantities    map[uuid.UUID]int64
	subtotalCents int64
	totalQuantity int64
}

func summarize(lines []Line) cartSummary {
	s := cartSummary{
		lines:      make([]Line, 0, len(lines)),
		quantities: make(map[uuid.UUID]int64, len(lines)),
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		price := line.UnitPriceCents
		if price < 0 {
			price = 0
		}
		qty := int64(line.Quantity)
		s.lines = append(s.lines, Line{ProductID: line.ProductID, UnitPriceCents: price, Quantity: line.Quantity})
		s.quantities[line.ProductID] += qty
		s.subtotalCents += price * qty
		s.totalQuantity += qty
	}
	return s
}

// Evaluate picks the one promotion that gives the cart the most value. It
// returns nil when the cart is empty or nothing qualifies.
//
// Candidates rank by savings, then bonus points, then the lexically lowest
// promotion id. A candidate worth nothing is never selected. Evaluate reads
// its inputs only and is safe to call concurrently.
func Evaluate(lines []Line, promos []Promotion) *Applied {
	cart := summarize(lines)
	if len(cart.lines) == 0 {
		return nil
	}

	var best *Applied
	for i := range promos {
		candidate := evaluateOne(cart, &promos[i])
		if candidate == nil {
			continue
		}
		if best == nil || outranks(candidate, best) {
			best = candidate
		}
	}
	return best
}

func evaluateOne(cart cartSummary, promo *Promotion) *Applied {
	if !promo.Active || promo.Condition == nil || promo.Reward == nil {
		return nil
	}
	multiplier := conditionMultiplier(promo.Condition, cart)
	if multiplier <= 0 {
		return nil
	}
	eligible := eligibleCents(promo.Condition, multiplier, cart)
	savings, bonus := rewardEffect(promo.Reward, multiplier, eligible)
	if savings <= 0 && bonus <= 0 {
		return nil
	}
	return &Applied{
		PromotionID:   promo.ID,
		PromotionName: promo.Name,
		Multiplier:    int(multiplier),
		EligibleCents: eligible,
		SavingsCents:  savings,
		BonusPoints:   bonus,
	}
}

func outranks(a, b *Applied) bool {
	if a.SavingsCents != b.SavingsCents {
		return a.SavingsCents > b.SavingsCents
	}
	if a.BonusPoints != b.BonusPoints {
		return a.BonusPoints > b.BonusPoints
	}
	return a.PromotionID.String() < b.PromotionID.String()
}

func conditionMultiplier(c Condition, cart cartSummary) int64 {
	switch v := c.(type) {
	case ProductThreshold:
		if v.MinQuantity <= 0 {
			return 0
		}
		return cart.quantities[v.ProductID] / int64(v.MinQuantity)
	case ProductSetThreshold:
		if v.MinQuantity <= 0 {
			return 0
		}
		var total int64
		for _, id := range uniqueIDs(v.ProductIDs) {
			total += cart.quantities[id]
		}
		return total / int64(v.MinQuantity)
	case MinSubtotal:
		if v.AmountCents <= 0 {
			return 0
		}
		return cart.subtotalCents / v.AmountCents
	case MinTotalQuantity:
		if v.Count <= 0 {
			return 0
		}
		return cart.totalQuantity / int64(v.Count)
	default:
		return 0
	}
}

// eligibleCents is the value a percentage or set-price reward acts on. For
// product conditions only the units that satisfy the condition count, taken
// from the lines in cart order.
func eligibleCents(c Condition, multiplier int64, cart cartSummary) int64 {
	switch v := c.(type) {
	case ProductThreshold:
		return consumeUnits(cart.lines, map[uuid.UUID]struct{}{v.ProductID: {}}, int64(v.MinQuantity)*multiplier)
	case ProductSetThreshold:
		targets := make(map[uuid.UUID]struct{}, len(v.ProductIDs))
		for _, id := range v.ProductIDs {
			targets[id] = struct{}{}
		}
		return consumeUnits(cart.lines, targets, int64(v.MinQuantity)*multiplier)
	default:
		return cart.subtotalCents
	}
}

func consumeUnits(lines []Line, targets map[uuid.UUID]struct{}, needed int64) int64 {
	var value int64
	for _, line := range lines {
		if needed <= 0 {
			break
		}
		if _, ok := targets[line.ProductID]; !ok {
			continue
		}
		take := int64(line.Quantity)
		if take > needed {
			take = needed
		}
		value += take * line.UnitPriceCents
		needed -= take
	}
	return value
}

func rewardEffect(r Reward, multiplier, eligible int64) (savings, bonus int64) {
	switch v := r.(type) {
	case PercentageDiscount:
		return percentOf(eligible, v.Percent), 0
	case FixedDiscount:
		return nonNegative(v.AmountCents) * multiplier, 0
	case BonusPoints:
		return 0, nonNegative(v.Points) * multiplier
	case FixedSetPrice:
		return setPriceSavings(v.PriceCents, multiplier, eligible), 0
	case CompositeReward:
		if v.FixedSetPriceCents != nil {
			savings = setPriceSavings(*v.FixedSetPriceCents, multiplier, eligible)
		} else if v.DiscountCents != nil {
			savings = nonNegative(*v.DiscountCents) * multiplier
		}
		if v.ExtraPoints != nil {
			bonus = nonNegative(*v.ExtraPoints) * multiplier
		}
		return savings, bonus
	default:
		return 0, 0
	}
}

// percentOf rounds half away from zero to whole cents. Percentages outside
// [0, 100] are clamped.
func percentOf(eligible int64, percent decimal.Decimal) int64 {
	if !percent.IsPositive() || eligible <= 0 {
		return 0
	}
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	return decimal.NewFromInt(eligible).Mul(percent).Div(hundred).Round(0).IntPart()
}

// setPriceSavings is zero when the set price would not lower the cost.
func setPriceSavings(priceCents, multiplier, eligible int64) int64 {
	if priceCents < 0 {
		return 0
	}
	setTotal := priceCents * multiplier
	if setTotal >= eligible {
		return 0
	}
	return eligible - setTotal
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
