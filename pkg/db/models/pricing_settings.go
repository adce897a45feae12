package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/enums"
)

// GlobalPricingSettingsID is the primary key of the single settings row.
const GlobalPricingSettingsID = 1

// GlobalPricingSettings holds the admin-edited default pricing tiers.
type GlobalPricingSettings struct {
	ID                int                 `gorm:"column:id;primaryKey"`
	RetailMarkup      decimal.Decimal     `gorm:"column:retail_markup;type:numeric(7,3);not null"`
	ContractorMarkup  decimal.Decimal     `gorm:"column:contractor_markup;type:numeric(7,3);not null"`
	CalculationMethod enums.PricingMethod `gorm:"column:calculation_method;type:pricing_method;not null"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (GlobalPricingSettings) TableName() string { return "global_pricing_settings" }
