package enums

import "fmt"

// NotificationType maps to the notifications.type column.
type NotificationType string

const (
	NotificationTypeOrderReceived  NotificationType = "order_received"
	NotificationTypeOrderReady     NotificationType = "order_ready"
	NotificationTypeOrderDelivered NotificationType = "order_delivered"
	NotificationTypeOrderCancelled NotificationType = "order_cancelled"
	NotificationTypePointsAdjusted NotificationType = "points_adjusted"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderReceived,
	NotificationTypeOrderReady,
	NotificationTypeOrderDelivered,
	NotificationTypeOrderCancelled,
	NotificationTypePointsAdjusted,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
