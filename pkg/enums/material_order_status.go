package enums

import "fmt"

// MaterialOrderStatus tracks a material purchase order. Received is terminal.
type MaterialOrderStatus string

const (
	MaterialOrderStatusOrdered           MaterialOrderStatus = "ordered"
	MaterialOrderStatusReceived          MaterialOrderStatus = "received"
	MaterialOrderStatusDamageReplacement MaterialOrderStatus = "damage_replacement"
)

var validMaterialOrderStatuses = []MaterialOrderStatus{
	MaterialOrderStatusOrdered,
	MaterialOrderStatusReceived,
	MaterialOrderStatusDamageReplacement,
}

// String implements fmt.Stringer.
func (s MaterialOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known MaterialOrderStatus.
func (s MaterialOrderStatus) IsValid() bool {
	for _, candidate := range validMaterialOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// AwaitingDelivery reports whether the order can still be received or reported damaged.
func (s MaterialOrderStatus) AwaitingDelivery() bool {
	return s == MaterialOrderStatusOrdered || s == MaterialOrderStatusDamageReplacement
}

// ParseMaterialOrderStatus converts raw input into a MaterialOrderStatus.
func ParseMaterialOrderStatus(value string) (MaterialOrderStatus, error) {
	for _, candidate := range validMaterialOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material order status %q", value)
}
