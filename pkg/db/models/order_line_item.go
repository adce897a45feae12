package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/enums"
)

// OrderLineItem is one material line of a MaterialOrder. The snapshot columns
// freeze the price agreed at order time and are never recomputed from the catalog.
type OrderLineItem struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID               uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	Position              int                  `gorm:"column:position;not null;default:0"`
	VariantID             *uuid.UUID           `gorm:"column:variant_id;type:uuid"`
	SizeVariantID         *uuid.UUID           `gorm:"column:size_variant_id;type:uuid"`
	SKU                   *string              `gorm:"column:sku"`
	Description           string               `gorm:"column:description;not null"`
	Quantity              decimal.Decimal      `gorm:"column:quantity;type:numeric(12,4);not null"`
	Unit                  enums.UnitOfMeasure  `gorm:"column:unit;type:unit_of_measure;not null"`
	UnitCostSnapshot      *decimal.Decimal     `gorm:"column:unit_cost_snapshot;type:numeric(12,4)"`
	MarkupSnapshot        *decimal.Decimal     `gorm:"column:markup_snapshot;type:numeric(7,3)"`
	PricingMethodSnapshot *enums.PricingMethod `gorm:"column:pricing_method_snapshot;type:pricing_method"`
	UnitPriceSold         *decimal.Decimal     `gorm:"column:unit_price_sold;type:numeric(12,2)"`
	TotalCost             *decimal.Decimal     `gorm:"column:total_cost;type:numeric(12,2)"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
