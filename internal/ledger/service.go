package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/metrics"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/outbox/payloads"
	"github.com/chokistore/backend/pkg/pagination"
)

// Service records point movements and serves balances.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.LedgerEntry, error)
	Debit(ctx context.Context, tx *gorm.DB, input DebitInput) (*models.LedgerEntry, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*EntryListResult, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]EntryDTO, error)
}

// RecordInput is a signed balance adjustment.
type RecordInput struct {
	UserID      uuid.UUID
	OrderID     *uuid.UUID
	Amount      int64
	Kind        enums.LedgerEntryKind
	Description string
	Actor       *outbox.ActorRef
}

// DebitInput spends points on a redemption.
type DebitInput struct {
	UserID      uuid.UUID
	OrderID     *uuid.UUID
	Cost        int64
	Description string
	Actor       *outbox.ActorRef
}

type service struct {
	repo    *Repository
	outbox  outbox.Emitter
	metrics *metrics.ShopMetrics
}

// NewService wires a ledger service with the provided repository.
func NewService(repo *Repository, emitter outbox.Emitter, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, outbox: emitter, metrics: shopMetrics}, nil
}

// Record appends the entry with its nominal amount and moves the balance,
// clamping at zero. It must run inside the caller's transaction.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.LedgerEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger record requires a transaction")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid ledger entry kind %q", input.Kind)
	}
	if input.Amount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero")
	}

	repo := s.repo.WithTx(tx)
	found, err := repo.ApplyDelta(ctx, input.UserID, input.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.append(ctx, tx, repo, models.LedgerEntry{
		UserID:      input.UserID,
		OrderID:     input.OrderID,
		Amount:      input.Amount,
		Kind:        input.Kind,
		Description: strings.TrimSpace(input.Description),
	}, input.Actor)
}

// Debit spends points only when the balance covers the cost.
func (s *service) Debit(ctx context.Context, tx *gorm.DB, input DebitInput) (*models.LedgerEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger debit requires a transaction")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Cost <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be positive")
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.Debit(ctx, input.UserID, input.Cost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit balance")
	}
	if !ok {
		balance, err := repo.Balance(ctx, input.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInsufficient, "not enough points for this redemption").
			WithDetails(map[string]any{"balance": balance, "required": input.Cost})
	}
	return s.append(ctx, tx, repo, models.LedgerEntry{
		UserID:      input.UserID,
		OrderID:     input.OrderID,
		Amount:      -input.Cost,
		Kind:        enums.LedgerEntryKindSpent,
		Description: strings.TrimSpace(input.Description),
	}, input.Actor)
}

func (s *service) append(ctx context.Context, tx *gorm.DB, repo *Repository, entry models.LedgerEntry, actor *outbox.ActorRef) (*models.LedgerEntry, error) {
	if err := repo.Insert(ctx, &entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ledger entry")
	}
	balance, err := repo.Balance(ctx, entry.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventLoyaltyPointsAdjusted,
		AggregateType: enums.AggregateUser,
		AggregateID:   entry.UserID,
		Actor:         actor,
		Data: payloads.PointsAdjustedEvent{
			EntryID: entry.ID,
			UserID:  entry.UserID,
			OrderID: entry.OrderID,
			Kind:    entry.Kind,
			Amount:  entry.Amount,
			Balance: balance,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit points adjusted event")
	}

	s.metrics.AddPoints(string(entry.Kind), entry.Amount)
	return &entry, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load balance")
	}
	return balance, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*EntryListResult, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	result := &EntryListResult{
		Entries:    make([]EntryDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		result.Entries = append(result.Entries, NewEntryDTO(&page.Items[i]))
	}
	return result, nil
}

// ListByOrder returns every point movement an order caused, oldest first.
func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]EntryDTO, error) {
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order ledger entries")
	}
	out := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewEntryDTO(&rows[i]))
	}
	return out, nil
}
