package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chokistore/backend/api/middleware"
	"github.com/chokistore/backend/internal/cart"
	"github.com/chokistore/backend/internal/checkout"
	"github.com/chokistore/backend/internal/ledger"
	"github.com/chokistore/backend/internal/orders"
	"github.com/chokistore/backend/internal/promotions"
	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
	"github.com/chokistore/backend/pkg/logger"
	"github.com/chokistore/backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return httptest.NewRequest(method, target, reader)
}

func asUser(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, role))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx, ok := req.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		routeCtx = chi.NewRouteContext()
	}
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return env
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode data: %v (%s)", err, resp.Body.String())
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCheckout struct {
	quoteFn   func(ctx context.Context, items []cart.ItemInput) (*checkout.QuoteDTO, error)
	previewFn func(ctx context.Context, items []cart.ItemInput) (*checkout.QuoteDTO, error)
	placeFn   func(ctx context.Context, userID uuid.UUID, items []cart.ItemInput) (*orders.OrderDTO, error)
}

func (s *stubCheckout) Quote(ctx context.Context, items []cart.ItemInput) (*checkout.QuoteDTO, error) {
	if s.quoteFn != nil {
		return s.quoteFn(ctx, items)
	}
	return &checkout.QuoteDTO{}, nil
}

func (s *stubCheckout) Preview(ctx context.Context, items []cart.ItemInput) (*checkout.QuoteDTO, error) {
	if s.previewFn != nil {
		return s.previewFn(ctx, items)
	}
	return &checkout.QuoteDTO{}, nil
}

func (s *stubCheckout) Place(ctx context.Context, userID uuid.UUID, items []cart.ItemInput) (*orders.OrderDTO, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, userID, items)
	}
	return &orders.OrderDTO{}, nil
}

// stubOrders embeds the interface so tests only fill in what they call.
type stubOrders struct {
	orders.Service
	redeemFn     func(ctx context.Context, userID, productID uuid.UUID) (*orders.OrderDTO, error)
	cancelFn     func(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error)
	transitionFn func(ctx context.Context, input orders.TransitionInput) (*orders.OrderDTO, error)
	historyFn    func(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error)
	hideFn       func(ctx context.Context, userID, orderID uuid.UUID) error
	listFn       func(ctx context.Context, input orders.ListInput) (*orders.OrderListResult, error)
}

func (s *stubOrders) Redeem(ctx context.Context, userID, productID uuid.UUID) (*orders.OrderDTO, error) {
	return s.redeemFn(ctx, userID, productID)
}

func (s *stubOrders) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return s.cancelFn(ctx, userID, orderID)
}

func (s *stubOrders) Transition(ctx context.Context, input orders.TransitionInput) (*orders.OrderDTO, error) {
	return s.transitionFn(ctx, input)
}

func (s *stubOrders) ListHistory(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return s.historyFn(ctx, userID)
}

func (s *stubOrders) Hide(ctx context.Context, userID, orderID uuid.UUID) error {
	return s.hideFn(ctx, userID, orderID)
}

func (s *stubOrders) List(ctx context.Context, input orders.ListInput) (*orders.OrderListResult, error) {
	return s.listFn(ctx, input)
}

type stubLedger struct {
	balance int64
	params  pagination.Params
}

func (s *stubLedger) Record(context.Context, *gorm.DB, ledger.RecordInput) (*models.LedgerEntry, error) {
	return nil, nil
}

func (s *stubLedger) Debit(context.Context, *gorm.DB, ledger.DebitInput) (*models.LedgerEntry, error) {
	return nil, nil
}

func (s *stubLedger) Balance(context.Context, uuid.UUID) (int64, error) {
	return s.balance, nil
}

func (s *stubLedger) List(_ context.Context, _ uuid.UUID, params pagination.Params) (*ledger.EntryListResult, error) {
	s.params = params
	return &ledger.EntryListResult{Entries: []ledger.EntryDTO{}}, nil
}

func (s *stubLedger) ListByOrder(context.Context, uuid.UUID) ([]ledger.EntryDTO, error) {
	return []ledger.EntryDTO{}, nil
}

type stubPromotions struct {
	promotions.Service
	created promotions.CreateInput
	active  []promotions.Promotion
}

func (s *stubPromotions) Active(context.Context) ([]promotions.Promotion, error) {
	return s.active, nil
}

func (s *stubPromotions) Create(_ context.Context, input promotions.CreateInput) (*promotions.PromotionDTO, error) {
	s.created = input
	return &promotions.PromotionDTO{ID: uuid.New(), Name: input.Name}, nil
}
