package orders

import (
	"fmt"

	"github.com/chokistore/backend/pkg/db/models"
	"github.com/chokistore/backend/pkg/enums"
)

func receivedMessage(order *models.Order) string {
	if order.IsRedemption() {
		return fmt.Sprintf("Redemption received for %d points.", order.PointsCost)
	}
	return fmt.Sprintf("Order received. Total %s.", formatCents(order.TotalCents))
}

func transitionMessage(kind enums.NotificationType, order *models.Order) string {
	switch kind {
	case enums.NotificationTypeOrderReady:
		return "Your order is ready for pickup."
	case enums.NotificationTypeOrderDelivered:
		if order.IsRedemption() || order.PointsEarned == 0 {
			return "Your order was delivered."
		}
		return fmt.Sprintf("Your order was delivered. You earned %d points.", order.PointsEarned)
	case enums.NotificationTypeOrderCancelled:
		return "Your order was cancelled."
	default:
		return "Your order was updated."
	}
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
