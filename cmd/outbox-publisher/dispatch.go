package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/outbox/registry"
)

type outcomeKind int

const (
	outcomePublished outcomeKind = iota
	outcomeRetry
	outcomeDeadLetter
)

// outcome is what happens to a row after one delivery attempt.
type outcome struct {
	kind   outcomeKind
	reason enums.OutboxDLQErrorReason
	err    error
}

// classify decides the fate of event given the error from resolving or
// publishing it. resolveErr and publishErr are mutually exclusive.
func classify(event models.OutboxEvent, resolveErr, publishErr error, maxAttempts int) outcome {
	switch {
	case resolveErr != nil && errors.Is(resolveErr, registry.ErrUnsupportedEvent):
		return outcome{kind: outcomeDeadLetter, reason: enums.OutboxDLQReasonUnknownEvent, err: resolveErr}
	case resolveErr != nil:
		return outcome{kind: outcomeDeadLetter, reason: enums.OutboxDLQReasonNonRetryable, err: resolveErr}
	case publishErr == nil:
		return outcome{kind: outcomePublished}
	}

	var nonRetry registry.NonRetryableError
	if errors.As(publishErr, &nonRetry) {
		return outcome{kind: outcomeDeadLetter, reason: enums.OutboxDLQReasonNonRetryable, err: publishErr}
	}
	if event.AttemptCount+1 >= maxAttempts {
		return outcome{
			kind:   outcomeDeadLetter,
			reason: enums.OutboxDLQReasonMaxAttempts,
			err:    fmt.Errorf("max publish attempts reached: %w", publishErr),
		}
	}
	return outcome{kind: outcomeRetry, err: publishErr}
}

// handleEvent only returns bookkeeping errors. Delivery failures are
// recorded on the row and the batch moves on.
func (s *Service) handleEvent(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	var (
		envelope   outbox.PayloadEnvelope
		topic      string
		publishErr error
	)
	resolved, resolveErr := s.registry.Resolve(event)
	if resolveErr == nil {
		envelope = resolved.Envelope
		topic = resolved.Descriptor.Topic
		publishErr = s.publishResolved(ctx, event, resolved)
	}

	fields := s.eventFields(event, envelope, topic)
	result := classify(event, resolveErr, publishErr, s.maxAttempts)
	switch result.kind {
	case outcomeDeadLetter:
		return s.deadLetter(ctx, tx, event, result, fields)
	case outcomeRetry:
		fields["attempt_count"] = event.AttemptCount + 1
		logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", result.err.Error())
		s.logg.Warn(logCtx, "outbox publish failed")
		s.metrics.IncFailed(string(event.EventType))
		if err := s.repo.MarkFailedTx(tx, event.ID, result.err); err != nil {
			return fmt.Errorf("mark failure %s: %w", event.ID, err)
		}
		return nil
	}

	if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
		return fmt.Errorf("mark published %s: %w", event.ID, err)
	}
	s.metrics.IncPublished(string(event.EventType))
	s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
	return nil
}

// deadLetter copies the row to outbox_dlq and retires it from the queue in
// the same transaction.
func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, result outcome, fields map[string]any) error {
	fields["error_reason"] = result.reason
	logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", result.err.Error())
	s.logg.Warn(logCtx, "outbox event dead-lettered")

	msg := result.err.Error()
	entry := models.OutboxDLQ{
		ID:            uuid.New(),
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   result.reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount,
		FailedAt:      s.now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, result.err, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	s.metrics.IncDeadLettered(string(event.EventType), string(result.reason))
	return nil
}

func (s *Service) publishResolved(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, &gcppubsub.Message{
		Data:        event.Payload,
		Attributes:  messageAttributes(event, resolved.Envelope),
		OrderingKey: event.AggregateID.String(),
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher for topic %s returned no result", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

// messageAttributes lets subscribers route and dedupe without decoding the
// body. event_id is stable across redeliveries.
func messageAttributes(event models.OutboxEvent, envelope outbox.PayloadEnvelope) map[string]string {
	return map[string]string{
		"event_id":       envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *Service) eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}
