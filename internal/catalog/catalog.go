package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/db/models"
	"github.com/floorline/backoffice/pkg/enums"
)

// Effective is a variant with its selected size variant's overrides applied.
type Effective struct {
	VariantID     uuid.UUID
	SizeVariantID *uuid.UUID
	VendorID      *uuid.UUID
	SKU           *string
	Description   string
	UnitCost      *decimal.Decimal
	RetailPrice   *decimal.Decimal
	UOM           enums.UnitOfMeasure
	PricingUnit   *enums.UnitOfMeasure
	CartonSize    *decimal.Decimal
	// OwnCost is set when the selected size variant carries its own cost.
	OwnCost bool
}

// Unit is the unit a line is seeded with: the pricing unit when set, else the stocking unit.
func (e Effective) Unit() enums.UnitOfMeasure {
	if e.PricingUnit != nil && e.PricingUnit.IsValid() {
		return *e.PricingUnit
	}
	return e.UOM
}

// HasCartons reports whether the item is sold in cartons of a known size.
func (e Effective) HasCartons() bool {
	return e.CartonSize != nil && e.CartonSize.IsPositive()
}

// Resolve applies sizeVariantID's overrides to variant. A nil sizeVariantID
// returns the parent values.
func Resolve(variant *models.ProductVariant, sizeVariantID *uuid.UUID) (Effective, error) {
	if variant == nil {
		return Effective{}, fmt.Errorf("variant required")
	}

	eff := Effective{
		VariantID:   variant.ID,
		VendorID:    variant.VendorID,
		SKU:         variant.SKU,
		Description: describe(variant.ProductName, variant.Name, ""),
		UnitCost:    variant.UnitCost,
		RetailPrice: variant.RetailPrice,
		UOM:         variant.UOM,
		PricingUnit: variant.PricingUnit,
		CartonSize:  variant.CartonSize,
	}
	if sizeVariantID == nil {
		return eff, nil
	}

	size := findSize(variant.SizeVariants, *sizeVariantID)
	if size == nil {
		return Effective{}, fmt.Errorf("size variant %s does not belong to variant %s", *sizeVariantID, variant.ID)
	}

	id := size.ID
	eff.SizeVariantID = &id
	eff.Description = describe(variant.ProductName, variant.Name, size.Label)
	if size.SKU != nil {
		eff.SKU = size.SKU
	}
	if size.UnitCost != nil {
		eff.UnitCost = size.UnitCost
		eff.OwnCost = true
	}
	if size.UOM != nil {
		eff.UOM = *size.UOM
		eff.PricingUnit = nil
	}
	if size.CartonSize != nil {
		eff.CartonSize = size.CartonSize
	}
	return eff, nil
}

func findSize(sizes []models.SizeVariant, id uuid.UUID) *models.SizeVariant {
	for i := range sizes {
		if sizes[i].ID == id {
			return &sizes[i]
		}
	}
	return nil
}

func describe(product, variant, size string) string {
	out := product
	if variant != "" {
		if out != "" {
			out += " - "
		}
		out += variant
	}
	if size != "" {
		out += " (" + size + ")"
	}
	return out
}
