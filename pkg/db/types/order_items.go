package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OrderItem is the immutable product snapshot stored on an order.
type OrderItem struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	LoyaltyPoints  int       `json:"loyaltyPoints"`
	Quantity       int       `json:"quantity"`
}

// OrderItems is stored as a jsonb array on orders.items.
type OrderItems []OrderItem

func (o *OrderItems) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = OrderItems{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("OrderItems: unsupported Scan type %T", src)
	}

	items := OrderItems{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("OrderItems: decode: %w", err)
	}
	*o = items
	return nil
}

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]OrderItem(o))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
