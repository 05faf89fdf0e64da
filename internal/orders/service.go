package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/ledger"
	"github.com/chokistore/backend/internal/notifications"
	"github.com/chokistore/backend/internal/pricing"
	product "github.com/chokistore/backend/internal/products"
	"github.com/chokistore/backend/internal/promotions"
	"github.com/chokistore/backend/pkg/db/models"
	dbtypes "github.com/chokistore/backend/pkg/db/types"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/metrics"
	"github.com/chokistore/backend/pkg/outbox"
	"github.com/chokistore/backend/pkg/outbox/payloads"
	"github.com/chokistore/backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type profileReader interface {
	FindDisplayName(ctx context.Context, id uuid.UUID) (string, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service places orders and drives them through their lifecycle.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	Redeem(ctx context.Context, userID, productID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	Transition(ctx context.Context, input TransitionInput) (*OrderDTO, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*AdminOrderDTO, error)
	ListHistory(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	Hide(ctx context.Context, userID, orderID uuid.UUID) error
	List(ctx context.Context, input ListInput) (*OrderListResult, error)
}

// Policy holds the lifecycle constants.
type Policy struct {
	Pricing           pricing.Policy
	HistoryLimit      int
	LateCancelWindow  time.Duration
	LateCancelPenalty int64
}

// DefaultPolicy returns the standard shop rules.
func DefaultPolicy() Policy {
	return Policy{
		Pricing:           pricing.DefaultPolicy(),
		HistoryLimit:      50,
		LateCancelWindow:  time.Hour,
		LateCancelPenalty: 5,
	}
}

// PlaceOrderInput is a resolved cart checked out by one shopper.
type PlaceOrderInput struct {
	UserID     uuid.UUID
	Cart       *cart.Cart
	Promotions []promotions.Promotion
}

// TransitionInput is an admin status change.
type TransitionInput struct {
	OrderID     uuid.UUID
	To          enums.OrderStatus
	ActorUserID uuid.UUID
}

// ListInput filters the admin order listing.
type ListInput struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// ServiceParams groups the order service dependencies.
type ServiceParams struct {
	Repo          *Repository
	Tx            txRunner
	Outbox        outbox.Emitter
	Ledger        ledger.Service
	Notifications notifications.Service
	Profiles      profileReader
	Products      productFinder
	Policy        Policy
	Metrics       *metrics.ShopMetrics
	Logger        *logger.Logger
}

type service struct {
	repo          *Repository
	tx            txRunner
	outbox        outbox.Emitter
	ledger        ledger.Service
	notifications notifications.Service
	profiles      profileReader
	products      productFinder
	policy        Policy
	metrics       *metrics.ShopMetrics
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Ledger == nil:
		return nil, fmt.Errorf("ledger service required")
	case params.Notifications == nil:
		return nil, fmt.Errorf("notifications service required")
	case params.Profiles == nil:
		return nil, fmt.Errorf("profile reader required")
	case params.Products == nil:
		return nil, fmt.Errorf("product finder required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	policy := params.Policy
	if policy.HistoryLimit <= 0 {
		policy.HistoryLimit = DefaultPolicy().HistoryLimit
	}
	if policy.Pricing.PointsPerCurrencyUnit <= 0 {
		policy.Pricing = pricing.DefaultPolicy()
	}
	return &service{
		repo:          params.Repo,
		tx:            params.Tx,
		outbox:        params.Outbox,
		ledger:        params.Ledger,
		notifications: params.Notifications,
		profiles:      params.Profiles,
		products:      params.Products,
		policy:        policy,
		metrics:       params.Metrics,
		logg:          params.Logger,
		now:           time.Now,
	}, nil
}

// PlaceOrder prices the cart and stores the order with its history entry,
// notification and event in one transaction. The caller clears the cart only
// after this returns without error.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Cart == nil || input.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	name, err := s.userName(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	quote := pricing.Price(input.Cart, input.Promotions, s.policy.Pricing)
	now := s.now().UTC()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        input.UserID,
		UserName:      name,
		Kind:          enums.OrderKindPurchase,
		Items:         input.Cart.OrderItems(),
		SubtotalCents: quote.SubtotalCents,
		DiscountCents: quote.DiscountCents,
		TotalCents:    quote.TotalCents,
		BonusPoints:   quote.BonusPoints,
		PointsEarned:  quote.PointsEarned,
		Status:        enums.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if applied := quote.Applied; applied != nil {
		promotionID := applied.PromotionID
		promotionName := applied.PromotionName
		multiplier := applied.Multiplier
		order.PromotionID = &promotionID
		order.PromotionName = &promotionName
		order.PromotionMultiplier = &multiplier
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.persistPlaced(ctx, tx, order, nil)
	})
	if err != nil {
		return nil, err
	}
	s.recordPlaced(ctx, order)
	dto := NewOrderDTO(order)
	return &dto, nil
}

// Redeem creates a zero-total order paid with points. The balance is debited
// in the same transaction; a short balance writes nothing.
func (s *service) Redeem(ctx context.Context, userID, productID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	item, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !item.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	cost := product.RedemptionCost(item.PriceCents)
	if cost <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product cannot be redeemed")
	}
	name, err := s.userName(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:       uuid.New(),
		UserID:   userID,
		UserName: name,
		Kind:     enums.OrderKindRedemption,
		Items: dbtypes.OrderItems{{
			ProductID:      item.ID,
			Name:           item.Name,
			UnitPriceCents: item.PriceCents,
			LoyaltyPoints:  item.LoyaltyPoints,
			Quantity:       1,
		}},
		SubtotalCents: item.PriceCents,
		DiscountCents: item.PriceCents,
		TotalCents:    0,
		PointsCost:    cost,
		Status:        enums.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.persistPlaced(ctx, tx, order, func(tx *gorm.DB) error {
			_, err := s.ledger.Debit(ctx, tx, ledger.DebitInput{
				UserID:      userID,
				OrderID:     &order.ID,
				Cost:        cost,
				Description: fmt.Sprintf("Redeemed %s", item.Name),
				Actor:       clientActor(userID),
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.recordPlaced(ctx, order)
	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) persistPlaced(ctx context.Context, tx *gorm.DB, order *models.Order, afterInsert func(tx *gorm.DB) error) error {
	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	if afterInsert != nil {
		if err := afterInsert(tx); err != nil {
			return err
		}
	}
	if err := repo.AddHistory(ctx, order.UserID, order.ID, order.CreatedAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
	}
	if _, err := repo.PruneHistory(ctx, order.UserID, s.policy.HistoryLimit); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune order history")
	}

	actor := clientActor(order.UserID)
	if _, err := s.notifications.Notify(ctx, tx, notifications.NotifyInput{
		UserID:  order.UserID,
		OrderID: &order.ID,
		Type:    enums.NotificationTypeOrderReceived,
		Message: receivedMessage(order),
		Actor:   actor,
	}); err != nil {
		return err
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		Data: payloads.OrderPlacedEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Kind:          order.Kind,
			SubtotalCents: order.SubtotalCents,
			TotalCents:    order.TotalCents,
			PointsEarned:  order.PointsEarned,
			PointsCost:    order.PointsCost,
			PromotionName: order.PromotionName,
			ItemCount:     countUnits(order.Items),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit order placed event")
	}
	return nil
}

func (s *service) recordPlaced(ctx context.Context, order *models.Order) {
	s.metrics.IncOrderPlaced(order.Kind.String())
	if order.PromotionName != nil {
		s.metrics.IncPromotionApplied(*order.PromotionName)
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.ID.String(),
		"kind":        order.Kind,
		"total_cents": order.TotalCents,
	})
	s.logg.Info(logCtx, "order.placed")
}

// Cancel is the shopper cancellation: owner only, pending only.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.transition(ctx, transitionRequest{
		orderID: orderID,
		to:      enums.OrderStatusCancelled,
		side:    SideClient,
		actor:   clientActor(userID),
		owner:   &userID,
	})
}

// Transition is the back-office status change.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*OrderDTO, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.transition(ctx, transitionRequest{
		orderID: input.OrderID,
		to:      input.To,
		side:    SideAdmin,
		actor:   &outbox.ActorRef{UserID: input.ActorUserID, Role: enums.UserRoleAdmin},
	})
}

type transitionRequest struct {
	orderID uuid.UUID
	to      enums.OrderStatus
	side    Side
	actor   *outbox.ActorRef
	owner   *uuid.UUID
}

func (s *service) transition(ctx context.Context, req transitionRequest) (*OrderDTO, error) {
	if req.orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !req.to.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", req.to)
	}

	var (
		order *models.Order
		from  enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, req.orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if req.owner != nil && current.UserID != *req.owner {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		fx, err := planTransition(current.Status, req.to, req.side)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		from = current.Status
		updates := map[string]any{"status": req.to, "updated_at": now}
		switch req.to {
		case enums.OrderStatusPrepared:
			updates["prepared_at"] = now
			current.PreparedAt = &now
		case enums.OrderStatusCompleted:
			updates["completed_at"] = now
			current.CompletedAt = &now
		case enums.OrderStatusCancelled:
			by := enums.CancelledBy(req.side)
			updates["cancelled_at"] = now
			updates["cancelled_by"] = by
			current.CancelledAt = &now
			current.CancelledBy = &by
		}
		moved, err := repo.UpdateStatus(ctx, current.ID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently").
				WithDetails(map[string]any{"from": from, "to": req.to})
		}
		current.Status = req.to
		current.UpdatedAt = now

		if err := s.applyEffects(ctx, tx, current, fx, req.actor, now); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Actor:         req.actor,
			OccurredAt:    now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     current.ID,
				UserID:      current.UserID,
				From:        from,
				To:          req.to,
				CancelledBy: current.CancelledBy,
				ChangedAt:   now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit status changed event")
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(from.String(), req.to.String())
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"from":     from,
		"to":       req.to,
		"side":     req.side,
	})
	s.logg.Info(logCtx, "order.status_changed")

	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) applyEffects(ctx context.Context, tx *gorm.DB, order *models.Order, fx effects, actor *outbox.ActorRef, now time.Time) error {
	record := func(amount int64, kind enums.LedgerEntryKind, description string) error {
		_, err := s.ledger.Record(ctx, tx, ledger.RecordInput{
			UserID:      order.UserID,
			OrderID:     &order.ID,
			Amount:      amount,
			Kind:        kind,
			Description: description,
			Actor:       actor,
		})
		return err
	}

	if fx.latePenalty && s.policy.LateCancelPenalty > 0 && now.Sub(order.CreatedAt) > s.policy.LateCancelWindow {
		if err := record(-s.policy.LateCancelPenalty, enums.LedgerEntryKindPenalty, "Late cancellation"); err != nil {
			return err
		}
	}
	if fx.refundRedemption && order.IsRedemption() && order.PointsCost > 0 {
		if err := record(order.PointsCost, enums.LedgerEntryKindEarned, "Refund for cancelled redemption"); err != nil {
			return err
		}
	}
	if fx.awardPoints && !order.IsRedemption() && order.PointsEarned > 0 {
		if err := record(order.PointsEarned, enums.LedgerEntryKindEarned, "Points for delivered order"); err != nil {
			return err
		}
	}
	if fx.reversePoints && !order.IsRedemption() && order.PointsEarned > 0 {
		if err := record(-order.PointsEarned, enums.LedgerEntryKindPenalty, "Reversal of points for cancelled order"); err != nil {
			return err
		}
	}

	if fx.notify != "" {
		if _, err := s.notifications.Notify(ctx, tx, notifications.NotifyInput{
			UserID:  order.UserID,
			OrderID: &order.ID,
			Type:    fx.notify,
			Message: transitionMessage(fx.notify, order),
			Actor:   actor,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*AdminOrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &AdminOrderDTO{OrderDTO: NewOrderDTO(order), LedgerEntries: entries}, nil
}

func (s *service) ListHistory(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListHistory(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewOrderDTO(&rows[i]))
	}
	return out, nil
}

// Hide drops a finished order from the shopper's history. The order row stays.
func (s *service) Hide(ctx context.Context, userID, orderID uuid.UUID) error {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed or cancelled orders can be hidden").
			WithDetails(map[string]any{"status": order.Status})
	}
	removed, err := s.repo.RemoveHistory(ctx, userID, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hide order")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not in history")
	}
	return nil
}

func (s *service) List(ctx context.Context, input ListInput) (*OrderListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", *input.Status)
	}
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, adminListQuery{Status: input.Status, Pagination: input.Pagination})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	result := &OrderListResult{
		Orders:     make([]OrderDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		result.Orders = append(result.Orders, NewOrderDTO(&page.Items[i]))
	}
	return result, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) userName(ctx context.Context, userID uuid.UUID) (string, error) {
	name, err := s.profiles.FindDisplayName(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return name, nil
}

func clientActor(userID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: enums.UserRoleClient}
}

func countUnits(items dbtypes.OrderItems) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
