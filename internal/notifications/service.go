package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/outbox/payloads"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 10 * time.Minute

const maxActiveListed = 50

// Service defines notification write and read operations.
type Service interface {
	Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) (*models.Notification, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]NotificationDTO, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotifyInput describes a message for one shopper.
type NotifyInput struct {
	UserID  uuid.UUID
	OrderID *uuid.UUID
	Type    enums.NotificationType
	Message string
	Actor   *outbox.ActorRef
}

// NotificationDTO is the API view of a notification.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	OrderID   *uuid.UUID             `json:"order_id,omitempty"`
	Type      enums.NotificationType `json:"type"`
	Message   string                 `json:"message"`
	ExpiresAt time.Time              `json:"expires_at"`
	CreatedAt time.Time              `json:"created_at"`
}

type service struct {
	repo   Repository
	outbox outbox.Emitter
	ttl    time.Duration
	now    func() time.Time
}

// NewService wires notifications dependencies. A non-positive ttl uses DefaultTTL.
func NewService(repo Repository, emitter outbox.Emitter, ttl time.Duration) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{repo: repo, outbox: emitter, ttl: ttl, now: time.Now}, nil
}

// Notify stores the notification and queues notification.created in the
// caller's transaction so both commit or neither does.
func (s *service) Notify(ctx context.Context, tx *gorm.DB, input NotifyInput) (*models.Notification, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notify requires a transaction")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid notification type %q", input.Type)
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	now := s.now().UTC()
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    input.UserID,
		OrderID:   input.OrderID,
		Type:      input.Type,
		Message:   message,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.WithTx(tx).Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventNotificationCreated,
		AggregateType: enums.AggregateNotification,
		AggregateID:   notification.ID,
		Actor:         input.Actor,
		Data: payloads.NotificationCreatedEvent{
			NotificationID: notification.ID,
			UserID:         notification.UserID,
			OrderID:        notification.OrderID,
			Type:           notification.Type,
			Message:        notification.Message,
			ExpiresAt:      notification.ExpiresAt,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit notification event")
	}
	return notification, nil
}

func (s *service) ListActive(ctx context.Context, userID uuid.UUID) ([]NotificationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListActive(ctx, userID, s.now().UTC(), maxActiveListed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	out := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NotificationDTO{
			ID:        row.ID,
			OrderID:   row.OrderID,
			Type:      row.Type,
			Message:   row.Message,
			ExpiresAt: row.ExpiresAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteExpiredBefore(ctx, cutoff.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired notifications")
	}
	return count, nil
}
