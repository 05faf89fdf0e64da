package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key], _ = value.(string)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func TestRouteTTLSelection(t *testing.T) {
	orderID := uuid.NewString()
	tests := []struct {
		name   string
		method string
		path   string
		want   time.Duration
		ok     bool
	}{
		{"checkout", http.MethodPost, "/api/v1/checkout", criticalIdempotencyTTL, true},
		{"order cancel", http.MethodPost, "/api/v1/orders/" + orderID + "/cancel", criticalIdempotencyTTL, true},
		{"redemption", http.MethodPost, "/api/v1/loyalty/redemptions", criticalIdempotencyTTL, true},
		{"admin status", http.MethodPost, "/api/v1/admin/orders/" + orderID + "/status", defaultIdempotencyTTL, true},
		{"checkout preview", http.MethodPost, "/api/v1/checkout/preview", 0, false},
		{"cancel without id", http.MethodPost, "/api/v1/orders//cancel", 0, false},
		{"wrong method", http.MethodGet, "/api/v1/checkout", 0, false},
	}
	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.path)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func checkoutRequest(userID uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(WithIdentity(req.Context(), userID, enums.UserRoleClient))
}

func TestIdempotencyRequiresKey(t *testing.T) {
	handler := Idempotency(newFakeStore(), nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(uuid.New(), "", `{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"data":{"call":%d,"echo":%q}}`, calls, body)
	}))
	userID := uuid.New()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(userID, "key-1", `{"items":[]}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(userID, "key-1", `{"items":[]}`))

	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("replay mismatch: %d %q vs %q", second.Code, second.Body.String(), first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("replay header missing")
	}

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, checkoutRequest(uuid.New(), "key-1", `{"items":[]}`))
	if calls != 2 {
		t.Fatal("keys must be scoped per user")
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	handler := Idempotency(newFakeStore(), nil)(okHandler())
	userID := uuid.New()

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(userID, "key-2", `{"items":[1]}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(userID, "key-2", `{"items":[2]}`))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var env responses.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("code = %s", env.Error.Code)
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	userID := uuid.New()

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(userID, "key-3", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(userID, "key-3", `{}`))
	if calls != 2 || len(store.data) != 0 {
		t.Fatalf("calls=%d stored=%d", calls, len(store.data))
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	handler := Idempotency(newFakeStore(), nil)(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
