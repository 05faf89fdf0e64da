package promotions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

// Promotion is a decoded promotion rule ready for evaluation.
type Promotion struct {
	ID          uuid.UUID
	Name        string
	Description string
	Active      bool
	Featured    bool
	Condition   Condition
	Reward      Reward
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Condition is satisfied some whole number of times by a cart.
type Condition interface {
	Type() enums.PromotionConditionType
	Validate() error
	isCondition()
}

// Reward turns a satisfied condition into savings and bonus points.
type Reward interface {
	Type() enums.PromotionRewardType
	Validate() error
	isReward()
}

// ProductThreshold is met once per MinQuantity units of a single product.
type ProductThreshold struct {
	ProductID   uuid.UUID
	MinQuantity int
}

// ProductSetThreshold is met once per MinQuantity units summed across a set of products.
type ProductSetThreshold struct {
	ProductIDs  []uuid.UUID
	MinQuantity int
}

// MinSubtotal is met once per AmountCents of cart subtotal.
type MinSubtotal struct {
	AmountCents int64
}

// MinTotalQuantity is met once per Count units in the cart.
type MinTotalQuantity struct {
	Count int
}

func (ProductThreshold) Type() enums.PromotionConditionType {
	return enums.ConditionProductThreshold
}

func (ProductSetThreshold) Type() enums.PromotionConditionType {
	return enums.ConditionProductSetThreshold
}

func (MinSubtotal) Type() enums.PromotionConditionType { return enums.ConditionMinSubtotal }

func (MinTotalQuantity) Type() enums.PromotionConditionType {
	return enums.ConditionMinTotalQuantity
}

func (c ProductThreshold) Validate() error {
	if c.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition productId is required")
	}
	if c.MinQuantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition minQuantity must be at least 1")
	}
	return nil
}

func (c ProductSetThreshold) Validate() error {
	if len(c.ProductIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition productIds must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(c.ProductIDs))
	for _, id := range c.ProductIDs {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "condition productIds contains an empty id")
		}
		if _, ok := seen[id]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "condition productIds must be unique")
		}
		seen[id] = struct{}{}
	}
	if c.MinQuantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition minQuantity must be at least 1")
	}
	return nil
}

func (c MinSubtotal) Validate() error {
	if c.AmountCents < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition amountCents must be positive")
	}
	return nil
}

func (c MinTotalQuantity) Validate() error {
	if c.Count < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition count must be at least 1")
	}
	return nil
}

func (ProductThreshold) isCondition()    {}
func (ProductSetThreshold) isCondition() {}
func (MinSubtotal) isCondition()         {}
func (MinTotalQuantity) isCondition()    {}

// PercentageDiscount takes Percent of the eligible value off the order.
type PercentageDiscount struct {
	Percent decimal.Decimal
}

// FixedDiscount takes AmountCents off once per multiplier unit.
type FixedDiscount struct {
	AmountCents int64
}

// BonusPoints grants Points once per multiplier unit without touching the price.
type BonusPoints struct {
	Points int64
}

// FixedSetPrice charges PriceCents per multiplier unit for the eligible units.
type FixedSetPrice struct {
	PriceCents int64
}

// CompositeReward combines a discount with extra points. FixedSetPriceCents,
// when present, replaces DiscountCents.
type CompositeReward struct {
	DiscountCents      *int64
	ExtraPoints        *int64
	FixedSetPriceCents *int64
}

func (PercentageDiscount) Type() enums.PromotionRewardType { return enums.RewardPercentageDiscount }
func (FixedDiscount) Type() enums.PromotionRewardType      { return enums.RewardFixedDiscount }
func (BonusPoints) Type() enums.PromotionRewardType        { return enums.RewardBonusPoints }
func (FixedSetPrice) Type() enums.PromotionRewardType      { return enums.RewardFixedSetPrice }
func (CompositeReward) Type() enums.PromotionRewardType    { return enums.RewardComposite }

var hundred = decimal.NewFromInt(100)

func (r PercentageDiscount) Validate() error {
	if !r.Percent.IsPositive() || r.Percent.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward percent must be greater than 0 and at most 100")
	}
	return nil
}

func (r FixedDiscount) Validate() error {
	if r.AmountCents < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward amountCents must be positive")
	}
	return nil
}

func (r BonusPoints) Validate() error {
	if r.Points < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward points must be positive")
	}
	return nil
}

func (r FixedSetPrice) Validate() error {
	if r.PriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward priceCents must be non-negative")
	}
	return nil
}

func (r CompositeReward) Validate() error {
	if r.DiscountCents == nil && r.ExtraPoints == nil && r.FixedSetPriceCents == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "composite reward needs at least one component")
	}
	if r.DiscountCents != nil && *r.DiscountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward discountCents must be non-negative")
	}
	if r.ExtraPoints != nil && *r.ExtraPoints < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward extraPoints must be non-negative")
	}
	if r.FixedSetPriceCents != nil && *r.FixedSetPriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reward fixedSetPriceCents must be non-negative")
	}
	return nil
}

func (PercentageDiscount) isReward() {}
func (FixedDiscount) isReward()      {}
func (BonusPoints) isReward()        {}
func (FixedSetPrice) isReward()      {}
func (CompositeReward) isReward()    {}
