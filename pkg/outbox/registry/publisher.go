package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chokistore/backend/pkg/config"
	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
	order   []enums.OutboxEventType
}

// ErrUnsupportedEvent marks rows whose event type has no descriptor.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry binds every event type to its configured topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	for name, topic := range map[string]string{
		"orders":       cfg.OrdersTopic,
		"loyalty":      cfg.LoyaltyTopic,
		"notification": cfg.NotificationTopic,
	} {
		if topic == "" {
			return nil, fmt.Errorf("%s topic is required", name)
		}
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor, 4)}
	reg.register(enums.EventOrderPlaced, cfg.OrdersTopic, func() interface{} { return &payloads.OrderPlacedEvent{} })
	reg.register(enums.EventOrderStatusChanged, cfg.OrdersTopic, func() interface{} { return &payloads.OrderStatusChangedEvent{} })
	reg.register(enums.EventLoyaltyPointsAdjusted, cfg.LoyaltyTopic, func() interface{} { return &payloads.PointsAdjustedEvent{} })
	reg.register(enums.EventNotificationCreated, cfg.NotificationTopic, func() interface{} { return &payloads.NotificationCreatedEvent{} })
	return reg, nil
}

// Topics lists the distinct topics in registration order.
func (r *EventRegistry) Topics() []string {
	topics := make([]string, 0, len(r.order))
	seen := make(map[string]bool, len(r.order))
	for _, eventType := range r.order {
		topic := r.entries[eventType].Topic
		if !seen[topic] {
			seen[topic] = true
			topics = append(topics, topic)
		}
	}
	return topics
}

func (r *EventRegistry) register(eventType enums.OutboxEventType, topic string, factory func() interface{}) {
	if _, dup := r.entries[eventType]; !dup {
		r.order = append(r.order, eventType)
	}
	r.entries[eventType] = EventDescriptor{
		EventType:      eventType,
		AggregateType:  eventType.Aggregate(),
		Topic:          topic,
		PayloadFactory: factory,
	}
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("%w %s", ErrUnsupportedEvent, event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s: %w", event.EventType, err))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
