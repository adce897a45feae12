package enums

import (
	"fmt"
	"strings"
)

// PricingMethod describes how a percentage turns a cost into a sell price.
type PricingMethod string

const (
	// PricingMarkup adds the percentage of cost on top of cost.
	PricingMarkup PricingMethod = "markup"
	// PricingMargin makes the percentage the share of the sell price kept as profit.
	PricingMargin PricingMethod = "margin"
)

var validPricingMethods = []PricingMethod{
	PricingMarkup,
	PricingMargin,
}

// String implements fmt.Stringer.
func (p PricingMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricingMethod.
func (p PricingMethod) IsValid() bool {
	for _, candidate := range validPricingMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingMethod converts raw input into a PricingMethod.
func ParsePricingMethod(value string) (PricingMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPricingMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing method %q", value)
}
