package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chokistore/backend/api/responses"
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

type fakeWindowCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeWindowCounter() *fakeWindowCounter {
	return &fakeWindowCounter{counts: map[string]int64{}}
}

func (f *fakeWindowCounter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func placeRequest(userID uuid.UUID, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.RemoteAddr = ip + ":5555"
	return req.WithContext(WithIdentity(req.Context(), userID, enums.UserRoleClient))
}

func TestRateLimitBlocksPerUser(t *testing.T) {
	store := newFakeWindowCounter()
	policy := RateLimitPolicy{Name: "checkout", Window: time.Minute, UserLimit: 2, IPLimit: 100}
	handler := RateLimit(policy, store, nil)(okHandler())
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, placeRequest(userID, "10.0.0.1"))
		if i < 2 && resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i, resp.Code)
		}
		if i == 2 {
			if resp.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429 got %d", resp.Code)
			}
			if resp.Header().Get("Retry-After") != "60" {
				t.Fatalf("Retry-After = %q", resp.Header().Get("Retry-After"))
			}
			var env responses.ErrorEnvelope
			if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("code = %s", env.Error.Code)
			}
		}
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, placeRequest(uuid.New(), "10.0.0.1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("other user should pass, got %d", resp.Code)
	}
}

func TestRateLimitBlocksPerIP(t *testing.T) {
	store := newFakeWindowCounter()
	policy := RateLimitPolicy{Name: "redeem", Window: time.Minute, UserLimit: 100, IPLimit: 1}
	handler := RateLimit(policy, store, nil)(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, placeRequest(uuid.New(), "10.0.0.9"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, placeRequest(uuid.New(), "10.0.0.9"))
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("codes = %d, %d", first.Code, second.Code)
	}
}

func TestRateLimitStoreFailureIsDependencyError(t *testing.T) {
	store := newFakeWindowCounter()
	store.err = errors.New("redis down")
	handler := RateLimit(RateLimitPolicy{Window: time.Minute, UserLimit: 1}, store, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, placeRequest(uuid.New(), "10.0.0.1"))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := RateLimit(RateLimitPolicy{}, newFakeWindowCounter(), nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, placeRequest(uuid.New(), "10.0.0.1"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
