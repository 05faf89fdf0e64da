package promotions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chokistore/backend/pkg/enums"
)

// Stored and wire documents are tagged objects: {"type": "...", ...fields}.

type docHeader struct {
	Type string `json:"type"`
}

type productThresholdDoc struct {
	Type        enums.PromotionConditionType `json:"type"`
	ProductID   uuid.UUID                    `json:"productId"`
	MinQuantity int                          `json:"minQuantity"`
}

type productSetThresholdDoc struct {
	Type        enums.PromotionConditionType `json:"type"`
	ProductIDs  []uuid.UUID                  `json:"productIds"`
	MinQuantity int                          `json:"minQuantity"`
}

type minSubtotalDoc struct {
	Type        enums.PromotionConditionType `json:"type"`
	AmountCents int64                        `json:"amountCents"`
}

type minTotalQuantityDoc struct {
	Type  enums.PromotionConditionType `json:"type"`
	Count int                          `json:"count"`
}

type percentageDiscountDoc struct {
	Type    enums.PromotionRewardType `json:"type"`
	Percent decimal.Decimal           `json:"percent"`
}

type fixedDiscountDoc struct {
	Type        enums.PromotionRewardType `json:"type"`
	AmountCents int64                     `json:"amountCents"`
}

type bonusPointsDoc struct {
	Type   enums.PromotionRewardType `json:"type"`
	Points int64                     `json:"points"`
}

type fixedSetPriceDoc struct {
	Type       enums.PromotionRewardType `json:"type"`
	PriceCents int64                     `json:"priceCents"`
}

type compositeDoc struct {
	Type               enums.PromotionRewardType `json:"type"`
	DiscountCents      *int64                    `json:"discountCents,omitempty"`
	ExtraPoints        *int64                    `json:"extraPoints,omitempty"`
	FixedSetPriceCents *int64                    `json:"fixedSetPriceCents,omitempty"`
}

// EncodeCondition renders a condition as its tagged document.
func EncodeCondition(c Condition) ([]byte, error) {
	switch v := c.(type) {
	case ProductThreshold:
		return json.Marshal(productThresholdDoc{Type: v.Type(), ProductID: v.ProductID, MinQuantity: v.MinQuantity})
	case ProductSetThreshold:
		ids := v.ProductIDs
		if ids == nil {
			ids = []uuid.UUID{}
		}
		return json.Marshal(productSetThresholdDoc{Type: v.Type(), ProductIDs: ids, MinQuantity: v.MinQuantity})
	case MinSubtotal:
		return json.Marshal(minSubtotalDoc{Type: v.Type(), AmountCents: v.AmountCents})
	case MinTotalQuantity:
		return json.Marshal(minTotalQuantityDoc{Type: v.Type(), Count: v.Count})
	case nil:
		return nil, errors.New("condition is required")
	default:
		return nil, fmt.Errorf("unsupported condition %T", c)
	}
}

// DecodeCondition parses a tagged condition document. Unknown types and
// unknown fields are rejected.
func DecodeCondition(raw []byte) (Condition, error) {
	kind, err := readType(raw)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}
	switch enums.PromotionConditionType(kind) {
	case enums.ConditionProductThreshold:
		var doc productThresholdDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("condition %s: %w", kind, err)
		}
		return ProductThreshold{ProductID: doc.ProductID, MinQuantity: doc.MinQuantity}, nil
	case enums.ConditionProductSetThreshold:
		var doc productSetThresholdDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("condition %s: %w", kind, err)
		}
		return ProductSetThreshold{ProductIDs: doc.ProductIDs, MinQuantity: doc.MinQuantity}, nil
	case enums.ConditionMinSubtotal:
		var doc minSubtotalDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("condition %s: %w", kind, err)
		}
		return MinSubtotal{AmountCents: doc.AmountCents}, nil
	case enums.ConditionMinTotalQuantity:
		var doc minTotalQuantityDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("condition %s: %w", kind, err)
		}
		return MinTotalQuantity{Count: doc.Count}, nil
	default:
		return nil, fmt.Errorf("unknown condition type %q", kind)
	}
}

// EncodeReward renders a reward as its tagged document.
func EncodeReward(r Reward) ([]byte, error) {
	switch v := r.(type) {
	case PercentageDiscount:
		return json.Marshal(percentageDiscountDoc{Type: v.Type(), Percent: v.Percent})
	case FixedDiscount:
		return json.Marshal(fixedDiscountDoc{Type: v.Type(), AmountCents: v.AmountCents})
	case BonusPoints:
		return json.Marshal(bonusPointsDoc{Type: v.Type(), Points: v.Points})
	case FixedSetPrice:
		return json.Marshal(fixedSetPriceDoc{Type: v.Type(), PriceCents: v.PriceCents})
	case CompositeReward:
		return json.Marshal(compositeDoc{
			Type:               v.Type(),
			DiscountCents:      v.DiscountCents,
			ExtraPoints:        v.ExtraPoints,
			FixedSetPriceCents: v.FixedSetPriceCents,
		})
	case nil:
		return nil, errors.New("reward is required")
	default:
		return nil, fmt.Errorf("unsupported reward %T", r)
	}
}

// DecodeReward parses a tagged reward document.
func DecodeReward(raw []byte) (Reward, error) {
	kind, err := readType(raw)
	if err != nil {
		return nil, fmt.Errorf("reward: %w", err)
	}
	switch enums.PromotionRewardType(kind) {
	case enums.RewardPercentageDiscount:
		var doc percentageDiscountDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("reward %s: %w", kind, err)
		}
		return PercentageDiscount{Percent: doc.Percent}, nil
	case enums.RewardFixedDiscount:
		var doc fixedDiscountDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("reward %s: %w", kind, err)
		}
		return FixedDiscount{AmountCents: doc.AmountCents}, nil
	case enums.RewardBonusPoints:
		var doc bonusPointsDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("reward %s: %w", kind, err)
		}
		return BonusPoints{Points: doc.Points}, nil
	case enums.RewardFixedSetPrice:
		var doc fixedSetPriceDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("reward %s: %w", kind, err)
		}
		return FixedSetPrice{PriceCents: doc.PriceCents}, nil
	case enums.RewardComposite:
		var doc compositeDoc
		if err := strictUnmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("reward %s: %w", kind, err)
		}
		return CompositeReward{
			DiscountCents:      doc.DiscountCents,
			ExtraPoints:        doc.ExtraPoints,
			FixedSetPriceCents: doc.FixedSetPriceCents,
		}, nil
	default:
		return nil, fmt.Errorf("unknown reward type %q", kind)
	}
}

func readType(raw []byte) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", errors.New("document is empty")
	}
	var header docHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", err
	}
	if header.Type == "" {
		return "", errors.New("type is required")
	}
	return header.Type, nil
}

func strictUnmarshal(raw []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
