package enums

import (
	"fmt"
	"strings"
)

// PurchaserType selects which global pricing tier applies to an order.
type PurchaserType string

const (
	PurchaserCustomer  PurchaserType = "customer"
	PurchaserInstaller PurchaserType = "installer"
)

var validPurchaserTypes = []PurchaserType{
	PurchaserCustomer,
	PurchaserInstaller,
}

// String implements fmt.Stringer.
func (p PurchaserType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PurchaserType.
func (p PurchaserType) IsValid() bool {
	for _, candidate := range validPurchaserTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePurchaserType converts raw input into a PurchaserType. Matching is case-insensitive.
func ParsePurchaserType(value string) (PurchaserType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPurchaserTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchaser type %q", value)
}
