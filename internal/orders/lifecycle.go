package orders

import (
	"github.com/chokistore/backend/pkg/enums"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

// Side identifies who asked for a transition.
type Side string

const (
	SideClient Side = "client"
	SideAdmin  Side = "admin"
)

// effects lists what an accepted transition does besides moving the status.
type effects struct {
	notify           enums.NotificationType
	awardPoints      bool
	reversePoints    bool
	refundRedemption bool
	latePenalty      bool
}

type edge struct {
	from enums.OrderStatus
	to   enums.OrderStatus
	side Side
}

var transitions = map[edge]effects{
	{enums.OrderStatusPending, enums.OrderStatusCancelled, SideClient}: {
		latePenalty:      true,
		refundRedemption: true,
	},
	{enums.OrderStatusPending, enums.OrderStatusPrepared, SideAdmin}: {
		notify: enums.NotificationTypeOrderReady,
	},
	{enums.OrderStatusPending, enums.OrderStatusCancelled, SideAdmin}: {
		notify:           enums.NotificationTypeOrderCancelled,
		refundRedemption: true,
	},
	{enums.OrderStatusPrepared, enums.OrderStatusCompleted, SideAdmin}: {
		notify:      enums.NotificationTypeOrderDelivered,
		awardPoints: true,
	},
	{enums.OrderStatusCompleted, enums.OrderStatusCancelled, SideAdmin}: {
		notify:           enums.NotificationTypeOrderCancelled,
		reversePoints:    true,
		refundRedemption: true,
	},
}

// planTransition rejects every edge not in the table before anything is written.
func planTransition(from, to enums.OrderStatus, side Side) (effects, error) {
	fx, ok := transitions[edge{from: from, to: to, side: side}]
	if !ok {
		return effects{}, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", from, to).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	return fx, nil
}

// CanTransition reports whether side may move an order from one status to another.
func CanTransition(from, to enums.OrderStatus, side Side) bool {
	_, ok := transitions[edge{from: from, to: to, side: side}]
	return ok
}
