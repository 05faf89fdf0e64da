package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/dbtest"
	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/outbox/payloads"
	"github.com/chokistore/backend/pkg/pagination"
)

func newTestLedger(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	svc, err := NewService(NewRepository(db), outbox.NewService(outbox.NewRepository(db), nil), nil)
	require.NoError(t, err)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, points int64) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), DisplayName: "Ana", Role: enums.UserRoleClient, Points: points}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), nil, nil)
	require.Error(t, err)
}

func TestRecordCreditsBalanceAndEmitsEvent(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 10)
	orderID := uuid.New()

	var entry *models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = svc.Record(ctx, tx, RecordInput{
			UserID:      userID,
			OrderID:     &orderID,
			Amount:      120,
			Kind:        enums.LedgerEntryKindEarned,
			Description: " order completed ",
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "order completed", entry.Description)

	balance, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(130), balance)

	var events []models.OutboxEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventLoyaltyPointsAdjusted, events[0].EventType)
	assert.Equal(t, userID, events[0].AggregateID)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var payload payloads.PointsAdjustedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, int64(120), payload.Amount)
	assert.Equal(t, int64(130), payload.Balance)
	assert.Equal(t, entry.ID, payload.EntryID)
}

func TestRecordPenaltyClampsAtZeroButKeepsNominalAmount(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Record(ctx, tx, RecordInput{UserID: userID, Amount: -5, Kind: enums.LedgerEntryKindPenalty})
		return err
	})
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	var entries []models.LedgerEntry
	require.NoError(t, db.Where("user_id = ?", userID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-5), entries[0].Amount)
	assert.Equal(t, enums.LedgerEntryKindPenalty, entries[0].Kind)
}

func TestRecordValidation(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 0)

	_, err := svc.Record(ctx, nil, RecordInput{UserID: userID, Amount: 1, Kind: enums.LedgerEntryKindEarned})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	cases := []struct {
		name  string
		input RecordInput
		code  pkgerrors.Code
	}{
		{"missing user", RecordInput{Amount: 1, Kind: enums.LedgerEntryKindEarned}, pkgerrors.CodeValidation},
		{"bad kind", RecordInput{UserID: userID, Amount: 1, Kind: "bonus"}, pkgerrors.CodeValidation},
		{"zero amount", RecordInput{UserID: userID, Kind: enums.LedgerEntryKindEarned}, pkgerrors.CodeValidation},
		{"unknown user", RecordInput{UserID: uuid.New(), Amount: 1, Kind: enums.LedgerEntryKindEarned}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := db.Transaction(func(tx *gorm.DB) error {
				_, err := svc.Record(ctx, tx, tc.input)
				return err
			})
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDebitSpendsPoints(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 500)

	var entry *models.LedgerEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = svc.Debit(ctx, tx, DebitInput{UserID: userID, Cost: 450, Description: "redeemed Truffle"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-450), entry.Amount)
	assert.Equal(t, enums.LedgerEntryKindSpent, entry.Kind)

	balance, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestDebitInsufficientBalanceWritesNothing(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Debit(ctx, tx, DebitInput{UserID: userID, Cost: 450})
		return err
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficient), "got %v", err)
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(100), details["balance"])

	balance, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	var entries, events int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&entries).Error)
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&events).Error)
	assert.Zero(t, entries)
	assert.Zero(t, events)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Debit(ctx, tx, DebitInput{UserID: uuid.New(), Cost: 1})
		return err
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 0)
	other := seedUser(t, db, 0)

	for i := 1; i <= 3; i++ {
		amount := int64(i * 10)
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.Record(ctx, tx, RecordInput{UserID: userID, Amount: amount, Kind: enums.LedgerEntryKindEarned})
			return err
		}))
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Record(ctx, tx, RecordInput{UserID: other, Amount: 7, Kind: enums.LedgerEntryKindEarned})
		return err
	}))

	first, err := svc.List(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, userID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, e := range append(first.Entries, second.Entries...) {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}

	_, err = svc.List(ctx, userID, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListByOrder(t *testing.T) {
	svc, db := newTestLedger(t)
	ctx := context.Background()
	userID := seedUser(t, db, 0)
	orderID := uuid.New()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.Record(ctx, tx, RecordInput{UserID: userID, OrderID: &orderID, Amount: 40, Kind: enums.LedgerEntryKindEarned}); err != nil {
			return err
		}
		_, err := svc.Record(ctx, tx, RecordInput{UserID: userID, OrderID: &orderID, Amount: -40, Kind: enums.LedgerEntryKindPenalty})
		return err
	}))

	entries, err := svc.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, enums.LedgerEntryKindEarned, entries[0].Kind)
	assert.Equal(t, int64(-40), entries[1].Amount)

	none, err := svc.ListByOrder(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)

	balance, err := svc.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}
