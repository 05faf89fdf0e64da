package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInsufficient, status: http.StatusUnprocessableEntity, publicMsg: "not enough points", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.ExposeMessage != (tt.status < http.StatusInternalServerError) {
			t.Fatalf("code %s exposes message = %v", tt.code, meta.ExposeMessage)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(CodeStateConflict, "order not pending")
	outer := fmt.Errorf("cancel order: %w", inner)
	if !IsCode(outer, CodeStateConflict) {
		t.Fatalf("expected IsCode to see through fmt wrapping")
	}
	if IsCode(outer, CodeNotFound) {
		t.Fatalf("unexpected code match")
	}
	if IsCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestLogFieldsIncludesChainAndPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_order_history_user_order", TableName: "order_history", Message: "duplicate key value"}
	err := Wrap(CodeConflict, fmt.Errorf("insert history: %w", pgErr), "append history")

	fields := LogFields(err)
	if fields["error_code"] != string(CodeConflict) {
		t.Fatalf("expected conflict code, got %v", fields["error_code"])
	}
	if fields["pg_code"] != "23505" || fields["pg_constraint"] != "ux_order_history_user_order" || fields["pg_table"] != "order_history" {
		t.Fatalf("unexpected pg fields %+v", fields)
	}
	if _, ok := fields["pg_column"]; ok {
		t.Fatalf("empty pg fields should be omitted")
	}
	if chain := fields["error_chain"].([]string); len(chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(chain), chain)
	}
	if !strings.Contains(fields["error"].(string), "append history") {
		t.Fatalf("unexpected top message %q", fields["error"])
	}
	if empty := LogFields(nil); len(empty) != 0 {
		t.Fatalf("expected no fields for nil")
	}
}

func TestClientMessage(t *testing.T) {
	if got := New(CodeNotFound, "order not found").ClientMessage(); got != "order not found" {
		t.Fatalf("client codes should expose their message, got %q", got)
	}
	if got := New(CodeNotFound, "").ClientMessage(); got != "resource not found" {
		t.Fatalf("blank message should fall back, got %q", got)
	}
	internal := Wrap(CodeInternal, stdErrors.New("pq: connection reset"), "load order")
	if got := internal.ClientMessage(); got != "internal server error" {
		t.Fatalf("internal message leaked: %q", got)
	}
	if got := Classify(stdErrors.New("boom")); got.Code() != CodeInternal || got.Unwrap() == nil {
		t.Fatalf("unexpected classification %v", got)
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}
