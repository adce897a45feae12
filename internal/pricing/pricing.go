package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Settings is a snapshot of the global pricing tiers taken at call time.
type Settings struct {
	RetailMarkup      decimal.Decimal
	ContractorMarkup  decimal.Decimal
	CalculationMethod enums.PricingMethod
}

// VendorOverride carries a vendor's optional pricing policy.
type VendorOverride struct {
	DefaultMarkup *decimal.Decimal
	PricingMethod *enums.PricingMethod
}

// Policy is the percentage and method applied to a cost.
type Policy struct {
	Percentage decimal.Decimal     `json:"percentage"`
	Method     enums.PricingMethod `json:"method"`
}

// ResolvePolicy picks the vendor override when it names a markup, otherwise the
// global tier for the purchaser. A vendor method without a markup is ignored.
func ResolvePolicy(vendor *VendorOverride, purchaser enums.PurchaserType, settings Settings) Policy {
	if vendor != nil && vendor.DefaultMarkup != nil {
		method := settings.CalculationMethod
		if vendor.PricingMethod != nil && vendor.PricingMethod.IsValid() {
			method = *vendor.PricingMethod
		}
		return Policy{Percentage: *vendor.DefaultMarkup, Method: method}
	}

	if purchaser == enums.PurchaserInstaller {
		return Policy{Percentage: settings.ContractorMarkup, Method: settings.CalculationMethod}
	}
	return Policy{Percentage: settings.RetailMarkup, Method: settings.CalculationMethod}
}

// CalculatePrice turns a cost into an unrounded sell price. Negative inputs and
// margins of 100% or more yield zero, which callers treat as "cannot price".
func CalculatePrice(cost, percentage decimal.Decimal, method enums.PricingMethod) decimal.Decimal {
	if cost.IsNegative() || percentage.IsNegative() {
		return decimal.Zero
	}

	ratio := percentage.Div(hundred)
	switch method {
	case enums.PricingMargin:
		if percentage.GreaterThanOrEqual(hundred) {
			return decimal.Zero
		}
		return cost.Div(decimal.NewFromInt(1).Sub(ratio))
	default:
		return cost.Mul(decimal.NewFromInt(1).Add(ratio))
	}
}

// Price applies a resolved policy to cost.
func Price(cost decimal.Decimal, policy Policy) decimal.Decimal {
	return CalculatePrice(cost, policy.Percentage, policy.Method)
}

// Priceable reports whether policy can produce a real price.
func Priceable(policy Policy) bool {
	if policy.Percentage.IsNegative() {
		return false
	}
	if policy.Method == enums.PricingMargin && policy.Percentage.GreaterThanOrEqual(hundred) {
		return false
	}
	return true
}

// Round rounds to cents, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// SettingsFromModel adapts the persisted settings row.
func SettingsFromModel(row *models.GlobalPricingSettings) Settings {
	if row == nil {
		return Settings{CalculationMethod: enums.PricingMarkup}
	}
	method := row.CalculationMethod
	if !method.IsValid() {
		method = enums.PricingMarkup
	}
	return Settings{
		RetailMarkup:      row.RetailMarkup,
		ContractorMarkup:  row.ContractorMarkup,
		CalculationMethod: method,
	}
}

// OverrideFromVendor returns nil when vendor is nil.
func OverrideFromVendor(vendor *models.Vendor) *VendorOverride {
	if vendor == nil {
		return nil
	}
	return &VendorOverride{
		DefaultMarkup: vendor.DefaultMarkup,
		PricingMethod: vendor.PricingMethod,
	}
}
