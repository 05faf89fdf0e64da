package enums

import "fmt"

// OutboxAggregateType is the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateOrder        OutboxAggregateType = "order"
	AggregateUser         OutboxAggregateType = "user"
	AggregateNotification OutboxAggregateType = "notification"
)

func (a OutboxAggregateType) IsValid() bool {
	switch a {
	case AggregateOrder, AggregateUser, AggregateNotification:
		return true
	}
	return false
}

// OutboxEventType names a domain event. Each type belongs to exactly one
// aggregate.
type OutboxEventType string

const (
	EventOrderPlaced           OutboxEventType = "order.placed"
	EventOrderStatusChanged    OutboxEventType = "order.status_changed"
	EventLoyaltyPointsAdjusted OutboxEventType = "loyalty.points_adjusted"
	EventNotificationCreated   OutboxEventType = "notification.created"
)

var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventOrderPlaced:           AggregateOrder,
	EventOrderStatusChanged:    AggregateOrder,
	EventLoyaltyPointsAdjusted: AggregateUser,
	EventNotificationCreated:   AggregateNotification,
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// Aggregate returns the aggregate type that owns e, or "" when e is unknown.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	e := OutboxEventType(value)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid event type %q", value)
	}
	return e, nil
}

// OutboxDLQErrorReason records why an event was dead-lettered.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonUnknownEvent OutboxDLQErrorReason = "unknown_event"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonMaxAttempts, OutboxDLQReasonNonRetryable, OutboxDLQReasonUnknownEvent:
		return true
	}
	return false
}
