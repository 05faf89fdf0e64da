package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/dbtest"
	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
)

func TestEmitWritesEnvelope(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewRepository(db), nil)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	orderID := uuid.New()
	actor := &ActorRef{UserID: uuid.New(), Role: enums.UserRoleClient}
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          map[string]any{"orderId": orderID.String()},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventOrderPlaced, rows[0].EventType)
	assert.Equal(t, orderID, rows[0].AggregateID)
	assert.Nil(t, rows[0].PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.True(t, envelope.OccurredAt.Equal(fixed))
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actor.UserID, envelope.Actor.UserID)
	assert.JSONEq(t, `{"orderId":"`+orderID.String()+`"}`, string(envelope.Data))
}

func TestEmitRejectsInvalidEvents(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	ctx := context.Background()

	require.Error(t, svc.Emit(ctx, nil, DomainEvent{}))

	db := dbtest.Open(t)
	cases := []DomainEvent{
		{EventType: "order.unknown", AggregateType: enums.AggregateOrder, AggregateID: uuid.New()},
		{EventType: enums.EventOrderPlaced, AggregateType: "vendor", AggregateID: uuid.New()},
		{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateOrder},
		{EventType: enums.EventOrderPlaced, AggregateType: enums.AggregateUser, AggregateID: uuid.New()},
	}
	for _, event := range cases {
		assert.Error(t, svc.Emit(ctx, db, event))
	}
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	pending := insertEvent(t, db, now.Add(-2*time.Minute), 0)
	exhausted := insertEvent(t, db, now.Add(-time.Minute), 5)
	_ = exhausted

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending, rows[0].ID)

	require.NoError(t, repo.MarkFailedTx(db, pending, errors.New("timeout")))
	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", pending).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "timeout", *row.LastError)

	require.NoError(t, repo.MarkPublishedTx(db, pending))
	rows, err = repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryMarkTerminalParksRow(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	id := insertEvent(t, db, time.Now().UTC(), 1)

	require.NoError(t, repo.MarkTerminalTx(db, id, errors.New("bad payload"), 10))

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	old := insertEvent(t, db, now.Add(-48*time.Hour), 0)
	fresh := insertEvent(t, db, now, 0)
	unpublished := insertEvent(t, db, now.Add(-72*time.Hour), 0)
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("id = ?", old).Update("published_at", now.Add(-47*time.Hour)).Error)
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("id = ?", fresh).Update("published_at", now).Error)

	deleted, err := repo.DeletePublishedBefore(context.Background(), nil, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, db.Order("created_at ASC").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, unpublished, remaining[0].ID)
	assert.Equal(t, fresh, remaining[1].ID)
}

func TestDLQInsertTruncatesMessage(t *testing.T) {
	db := dbtest.Open(t)
	dlq := NewDLQRepository(db)

	long := make([]byte, maxDLQErrorLen+50)
	for i := range long {
		long[i] = 'x'
	}
	msg := string(long)
	require.NoError(t, dlq.InsertTx(db, models.OutboxDLQ{
		EventID:       uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &msg,
	}))

	var stored models.OutboxDLQ
	require.NoError(t, db.First(&stored).Error)
	require.NotNil(t, stored.ErrorMessage)
	assert.Len(t, *stored.ErrorMessage, maxDLQErrorLen)
	assert.Error(t, dlq.InsertTx(nil, models.OutboxDLQ{}))
}

func insertEvent(t *testing.T, db *gorm.DB, createdAt time.Time, attempts int) uuid.UUID {
	t.Helper()
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1}`),
		CreatedAt:     createdAt,
		AttemptCount:  attempts,
	}
	require.NoError(t, db.Create(&row).Error)
	return row.ID
}
