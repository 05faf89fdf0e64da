package enums

import "fmt"

// PromotionConditionType is the discriminator of a stored promotion condition.
type PromotionConditionType string

const (
	ConditionProductThreshold    PromotionConditionType = "product_threshold"
	ConditionProductSetThreshold PromotionConditionType = "product_set_threshold"
	ConditionMinSubtotal         PromotionConditionType = "min_subtotal"
	ConditionMinTotalQuantity    PromotionConditionType = "min_total_quantity"
)

var validConditionTypes = []PromotionConditionType{
	ConditionProductThreshold,
	ConditionProductSetThreshold,
	ConditionMinSubtotal,
	ConditionMinTotalQuantity,
}

// IsValid reports whether the value is a known condition type.
func (c PromotionConditionType) IsValid() bool {
	for _, candidate := range validConditionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParsePromotionConditionType converts raw input into a PromotionConditionType.
func ParsePromotionConditionType(value string) (PromotionConditionType, error) {
	for _, candidate := range validConditionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion condition type %q", value)
}

// PromotionRewardType is the discriminator of a stored promotion reward.
type PromotionRewardType string

const (
	RewardPercentageDiscount PromotionRewardType = "percentage_discount"
	RewardFixedDiscount      PromotionRewardType = "fixed_discount"
	RewardBonusPoints        PromotionRewardType = "bonus_points"
	RewardFixedSetPrice      PromotionRewardType = "fixed_set_price"
	RewardComposite          PromotionRewardType = "composite"
)

var validRewardTypes = []PromotionRewardType{
	RewardPercentageDiscount,
	RewardFixedDiscount,
	RewardBonusPoints,
	RewardFixedSetPrice,
	RewardComposite,
}

// IsValid reports whether the value is a known reward type.
func (r PromotionRewardType) IsValid() bool {
	for _, candidate := range validRewardTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePromotionRewardType converts raw input into a PromotionRewardType.
func ParsePromotionRewardType(value string) (PromotionRewardType, error) {
	for _, candidate := range validRewardTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion reward type %q", value)
}
