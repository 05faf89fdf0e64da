package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/logger"
)

const (
	NotificationCleanupJobName = "notification-cleanup"
	OutboxRetentionJobName     = "outbox-retention"

	defaultNotificationRetention = 24 * time.Hour
	defaultOutboxRetentionDays   = 30
)

type expiredNotifications interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type publishedEvents interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type deadLetters interface {
	DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NotificationCleanupJob removes notifications that expired more than the
// retention ago. Expired rows are already hidden from readers.
type NotificationCleanupJob struct {
	logg      *logger.Logger
	store     expiredNotifications
	retention time.Duration
	now       func() time.Time
}

func NewNotificationCleanupJob(logg *logger.Logger, store expiredNotifications, retention time.Duration) (*NotificationCleanupJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("notification store required")
	}
	if retention <= 0 {
		retention = defaultNotificationRetention
	}
	return &NotificationCleanupJob{logg: logg, store: store, retention: retention, now: time.Now}, nil
}

func (j *NotificationCleanupJob) Name() string { return NotificationCleanupJobName }

func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.store.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete expired notifications: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "notifications pruned")
	return nil
}

// OutboxRetentionJob prunes published outbox rows and old dead letters. The
// two deletes are independent; one failing does not skip the other.
type OutboxRetentionJob struct {
	logg      *logger.Logger
	events    publishedEvents
	dlq       deadLetters
	retention time.Duration
	now       func() time.Time
}

func NewOutboxRetentionJob(logg *logger.Logger, events publishedEvents, dlq deadLetters, retentionDays int) (*OutboxRetentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if retentionDays <= 0 {
		retentionDays = defaultOutboxRetentionDays
	}
	return &OutboxRetentionJob{
		logg:      logg,
		events:    events,
		dlq:       dlq,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}, nil
}

func (j *OutboxRetentionJob) Name() string { return OutboxRetentionJobName }

func (j *OutboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var errs error

	published, err := j.events.DeletePublishedBefore(ctx, nil, cutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete published events: %w", err))
	}

	var parked int64
	if j.dlq != nil {
		parked, err = j.dlq.DeleteBefore(ctx, nil, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete dead letters: %w", err))
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"events_deleted": published,
		"dlq_deleted":    parked,
	}), "outbox pruned")
	return errs
}
