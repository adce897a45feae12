package enums

import "fmt"

// NotificationEvent names the order transition a notification describes.
type NotificationEvent string

const (
	NotificationOrderReceived NotificationEvent = "order_received"
	NotificationOrderDamaged  NotificationEvent = "order_damaged"
)

var validNotificationEvents = []NotificationEvent{
	NotificationOrderReceived,
	NotificationOrderDamaged,
}

// String implements fmt.Stringer.
func (n NotificationEvent) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationEvent.
func (n NotificationEvent) IsValid() bool {
	for _, candidate := range validNotificationEvents {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationEvent converts raw input into a NotificationEvent.
func ParseNotificationEvent(value string) (NotificationEvent, error) {
	for _, candidate := range validNotificationEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification event %q", value)
}
