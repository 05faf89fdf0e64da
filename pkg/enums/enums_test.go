package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{in: "pending", want: OrderStatusPending},
		{in: "prepared", want: OrderStatusPrepared},
		{in: "completed", want: OrderStatusCompleted},
		{in: "cancelled", want: OrderStatusCancelled},
		{in: "canceled", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseOrderStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseOrderStatus(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseOrderStatus(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if OrderStatusPending.IsTerminal() || OrderStatusPrepared.IsTerminal() {
		t.Fatal("pending and prepared are not terminal")
	}
	if !OrderStatusCompleted.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("completed and cancelled are terminal")
	}
}

func TestParseUserRoleCaseInsensitive(t *testing.T) {
	role, err := ParseUserRole(" Admin ")
	if err != nil || role != UserRoleAdmin {
		t.Fatalf("expected admin, got %q %v", role, err)
	}
	if _, err := ParseUserRole("store_owner"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}

func TestPromotionDiscriminators(t *testing.T) {
	if _, err := ParsePromotionConditionType("min_subtotal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePromotionRewardType("buy_one_get_one"); err == nil {
		t.Fatal("expected unknown reward type to fail")
	}
}

func TestOutboxEventTypes(t *testing.T) {
	for _, value := range []string{"order.placed", "order.status_changed", "loyalty.points_adjusted", "notification.created"} {
		if _, err := ParseOutboxEventType(value); err != nil {
			t.Fatalf("expected %q to parse: %v", value, err)
		}
	}
	if EventLoyaltyPointsAdjusted.Aggregate() != AggregateUser || EventOrderStatusChanged.Aggregate() != AggregateOrder {
		t.Fatal("unexpected aggregate ownership")
	}
	if OutboxEventType("order.shipped").Aggregate() != "" {
		t.Fatal("unknown events have no aggregate")
	}
	if !OutboxDLQReasonUnknownEvent.IsValid() || OutboxDLQErrorReason("timeout").IsValid() {
		t.Fatal("unexpected dlq reason validity")
	}
}
