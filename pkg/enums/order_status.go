package enums

import "fmt"

// OrderStatus tracks the lifecycle of a shop order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPrepared  OrderStatus = "prepared"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPrepared,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave this status
// through the shopper flow.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// CancelledBy records which side cancelled an order.
type CancelledBy string

const (
	CancelledByClient CancelledBy = "client"
	CancelledByAdmin  CancelledBy = "admin"
)

// IsValid reports whether the value is a known CancelledBy.
func (c CancelledBy) IsValid() bool {
	return c == CancelledByClient || c == CancelledByAdmin
}

// OrderKind separates currency purchases from loyalty redemptions.
type OrderKind string

const (
	OrderKindPurchase   OrderKind = "purchase"
	OrderKindRedemption OrderKind = "redemption"
)

func (k OrderKind) String() string {
	return string(k)
}
