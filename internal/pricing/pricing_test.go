package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCalculatePriceScenarios(t *testing.T) {
	tests := []struct {
		name   string
		cost   string
		pct    string
		method enums.PricingMethod
		want   string
	}{
		{name: "markup 40", cost: "10", pct: "40", method: enums.PricingMarkup, want: "14.00"},
		{name: "margin 40", cost: "10", pct: "40", method: enums.PricingMargin, want: "16.67"},
		{name: "markup zero keeps cost", cost: "12.34", pct: "0", method: enums.PricingMarkup, want: "12.34"},
		{name: "margin 100 is sentinel", cost: "100", pct: "100", method: enums.PricingMargin, want: "0.00"},
		{name: "margin above 100 is sentinel", cost: "100", pct: "150", method: enums.PricingMargin, want: "0.00"},
		{name: "negative cost", cost: "-5", pct: "40", method: enums.PricingMarkup, want: "0.00"},
		{name: "negative percentage", cost: "5", pct: "-1", method: enums.PricingMargin, want: "0.00"},
		{name: "unknown method falls back to markup", cost: "10", pct: "10", method: "", want: "11.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round(CalculatePrice(dec(tt.cost), dec(tt.pct), tt.method))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestCalculatePriceMarkupIsExact(t *testing.T) {
	for _, pct := range []string{"0", "12.5", "33", "250"} {
		cost := dec("7.35")
		want := cost.Mul(dec("1").Add(dec(pct).Div(dec("100"))))
		require.True(t, want.Equal(CalculatePrice(cost, dec(pct), enums.PricingMarkup)), "pct %s", pct)
	}
}

func TestCalculatePriceMarginNeverNegative(t *testing.T) {
	for pct := 95; pct <= 120; pct++ {
		got := CalculatePrice(dec("10"), decimal.NewFromInt(int64(pct)), enums.PricingMargin)
		require.False(t, got.IsNegative(), "pct %d", pct)
		if pct >= 100 {
			require.True(t, got.IsZero(), "pct %d", pct)
		}
	}
}

func TestResolvePolicyPrecedence(t *testing.T) {
	settings := Settings{
		RetailMarkup:      dec("35"),
		ContractorMarkup:  dec("20"),
		CalculationMethod: enums.PricingMarkup,
	}
	margin := enums.PricingMargin
	override := dec("42")

	t.Run("vendor override wins", func(t *testing.T) {
		for _, purchaser := range []enums.PurchaserType{enums.PurchaserCustomer, enums.PurchaserInstaller} {
			got := ResolvePolicy(&VendorOverride{DefaultMarkup: &override, PricingMethod: &margin}, purchaser, settings)
			require.True(t, got.Percentage.Equal(override))
			require.Equal(t, enums.PricingMargin, got.Method)
		}
	})

	t.Run("override without method uses global method", func(t *testing.T) {
		got := ResolvePolicy(&VendorOverride{DefaultMarkup: &override}, enums.PurchaserCustomer, settings)
		require.True(t, got.Percentage.Equal(override))
		require.Equal(t, enums.PricingMarkup, got.Method)
	})

	t.Run("method without markup is ignored", func(t *testing.T) {
		got := ResolvePolicy(&VendorOverride{PricingMethod: &margin}, enums.PurchaserCustomer, settings)
		require.True(t, got.Percentage.Equal(dec("35")))
		require.Equal(t, enums.PricingMarkup, got.Method)
	})

	t.Run("installer tier", func(t *testing.T) {
		got := ResolvePolicy(nil, enums.PurchaserInstaller, settings)
		require.True(t, got.Percentage.Equal(dec("20")))
	})

	t.Run("customer tier", func(t *testing.T) {
		got := ResolvePolicy(nil, enums.PurchaserCustomer, settings)
		require.True(t, got.Percentage.Equal(dec("35")))
	})
}

func TestPriceable(t *testing.T) {
	require.True(t, Priceable(Policy{Percentage: dec("99.99"), Method: enums.PricingMargin}))
	require.False(t, Priceable(Policy{Percentage: dec("100"), Method: enums.PricingMargin}))
	require.True(t, Priceable(Policy{Percentage: dec("100"), Method: enums.PricingMarkup}))
	require.False(t, Priceable(Policy{Percentage: dec("-1"), Method: enums.PricingMarkup}))
}

func TestAdapters(t *testing.T) {
	require.Equal(t, enums.PricingMarkup, SettingsFromModel(nil).CalculationMethod)

	row := &models.GlobalPricingSettings{
		RetailMarkup:      dec("30"),
		ContractorMarkup:  dec("15"),
		CalculationMethod: enums.PricingMargin,
	}
	settings := SettingsFromModel(row)
	require.Equal(t, enums.PricingMargin, settings.CalculationMethod)
	require.True(t, settings.ContractorMarkup.Equal(dec("15")))

	require.Nil(t, OverrideFromVendor(nil))
	markup := dec("18")
	override := OverrideFromVendor(&models.Vendor{DefaultMarkup: &markup})
	require.NotNil(t, override)
	require.True(t, override.DefaultMarkup.Equal(markup))
	require.Nil(t, override.PricingMethod)
}
