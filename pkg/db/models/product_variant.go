package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/enums"
)

// ProductVariant is a sellable catalog entry (color, finish) of a flooring product.
type ProductVariant struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID     *uuid.UUID           `gorm:"column:vendor_id;type:uuid"`
	ProductName  string               `gorm:"column:product_name;not null"`
	Name         string               `gorm:"column:name;not null"`
	SKU          *string              `gorm:"column:sku"`
	UnitCost     *decimal.Decimal     `gorm:"column:unit_cost;type:numeric(12,4)"`
	RetailPrice  *decimal.Decimal     `gorm:"column:retail_price;type:numeric(12,2)"`
	UOM          enums.UnitOfMeasure  `gorm:"column:uom;type:unit_of_measure;not null"`
	PricingUnit  *enums.UnitOfMeasure `gorm:"column:pricing_unit;type:unit_of_measure"`
	CartonSize   *decimal.Decimal     `gorm:"column:carton_size;type:numeric(12,4)"`
	SizeVariants []SizeVariant        `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// SizeVariant overrides cost, unit or carton size of its parent variant for one size.
// A nil field inherits the parent value.
type SizeVariant struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID  uuid.UUID            `gorm:"column:variant_id;type:uuid;not null"`
	Label      string               `gorm:"column:label;not null"`
	SKU        *string              `gorm:"column:sku"`
	UnitCost   *decimal.Decimal     `gorm:"column:unit_cost;type:numeric(12,4)"`
	UOM        *enums.UnitOfMeasure `gorm:"column:uom;type:unit_of_measure"`
	CartonSize *decimal.Decimal     `gorm:"column:carton_size;type:numeric(12,4)"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
