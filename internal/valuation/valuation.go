package valuation

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/internal/catalog"
	"github.com/floorline/backoffice/internal/pricing"
	"github.com/floorline/backoffice/internal/units"
	"github.com/floorline/backoffice/pkg/enums"
)

// Line is the editable pricing state of one order line. Nil numeric fields are blank.
type Line struct {
	VariantID     *uuid.UUID          `json:"variant_id,omitempty"`
	SizeVariantID *uuid.UUID          `json:"size_variant_id,omitempty"`
	UnitCost      *decimal.Decimal    `json:"unit_cost,omitempty"`
	CartonSize    *decimal.Decimal    `json:"carton_size,omitempty"`
	Quantity      *decimal.Decimal    `json:"quantity,omitempty"`
	Unit          enums.UnitOfMeasure `json:"unit"`
	UnitPrice     *decimal.Decimal    `json:"unit_price,omitempty"`
	TotalCost     *decimal.Decimal    `json:"total_cost,omitempty"`
	// PriceUnavailable marks a known cost the active policy cannot price.
	PriceUnavailable bool `json:"price_unavailable"`
	// ManualTotal is set while TotalCost holds a value typed in directly.
	ManualTotal bool `json:"manual_total"`
	// Cartonized is set once the line was converted from a loose unit.
	Cartonized bool `json:"cartonized"`
	// CoveredQuantity is the loose quantity a cartonized line actually covers.
	CoveredQuantity *decimal.Decimal `json:"covered_quantity,omitempty"`
}

// quantityScale matches the numeric(12,4) quantity column.
const quantityScale = 4

// Valuator prices lines for one order context.
type Valuator struct {
	Settings  pricing.Settings
	Vendor    *pricing.VendorOverride
	Purchaser enums.PurchaserType
}

// Policy is the pricing policy currently in effect.
func (v Valuator) Policy() pricing.Policy {
	return pricing.ResolvePolicy(v.Vendor, v.Purchaser, v.Settings)
}

// Seed builds a line for a newly added catalog item.
func (v Valuator) Seed(item catalog.Effective) Line {
	variantID := item.VariantID
	line := Line{
		VariantID:     &variantID,
		SizeVariantID: item.SizeVariantID,
		UnitCost:      item.UnitCost,
		CartonSize:    item.CartonSize,
		Unit:          item.Unit(),
	}

	switch {
	case item.UnitCost != nil:
		line.UnitPrice, line.PriceUnavailable = v.priceFromCost(*item.UnitCost)
	case item.RetailPrice != nil:
		price := pricing.Round(*item.RetailPrice)
		line.UnitPrice = &price
	}
	return line
}

// SetQuantity applies a quantity edit and refreshes the total.
func (v Valuator) SetQuantity(line *Line, raw string) {
	line.Quantity = roundTo(parse(raw), quantityScale)
	line.ManualTotal = false
	if line.Cartonized && line.Quantity != nil && line.CartonSize != nil {
		covered := units.LooseCoverage(*line.Quantity, *line.CartonSize)
		line.CoveredQuantity = &covered
	}
	recomputeTotal(line)
}

// SetUnitPrice applies a sell price edit, rounded to cents, and refreshes the total.
func (v Valuator) SetUnitPrice(line *Line, raw string) {
	line.UnitPrice = roundTo(parse(raw), 2)
	line.PriceUnavailable = false
	line.ManualTotal = false
	recomputeTotal(line)
}

// SetTotal stores a typed total rounded to cents. It survives until quantity or price change.
func (v Valuator) SetTotal(line *Line, raw string) {
	line.TotalCost = roundTo(parse(raw), 2)
	line.ManualTotal = line.TotalCost != nil
}

// SetCartonQuantity applies a quantity already counted in whole cartons to a
// line seeded in its loose unit. The loose price is scaled to one carton. It
// reports false, leaving the line unchanged, when the carton size is unknown.
func (v Valuator) SetCartonQuantity(line *Line, raw string) bool {
	if line.Unit == enums.UnitCarton {
		v.SetQuantity(line, raw)
		return true
	}
	if line.Cartonized || line.CartonSize == nil || !line.CartonSize.IsPositive() {
		return false
	}

	if line.UnitPrice != nil {
		cartonPrice := pricing.Round(line.UnitPrice.Mul(*line.CartonSize))
		line.UnitPrice = &cartonPrice
	}
	line.Unit = enums.UnitCarton
	line.Cartonized = true
	v.SetQuantity(line, raw)
	return true
}

// SelectSizeVariant reprices the line from the selected size when that size has
// its own cost. Otherwise only the selection changes.
func (v Valuator) SelectSizeVariant(line *Line, item catalog.Effective) {
	line.SizeVariantID = item.SizeVariantID
	if !item.OwnCost || item.UnitCost == nil {
		return
	}

	line.UnitCost = item.UnitCost
	line.CartonSize = item.CartonSize
	line.Unit = item.Unit()
	line.Cartonized = false
	line.CoveredQuantity = nil
	line.ManualTotal = false
	line.UnitPrice, line.PriceUnavailable = v.priceFromCost(*item.UnitCost)

	if v.ToCartons(line) {
		return
	}
	recomputeTotal(line)
}

// ToCartons re-expresses a loose line in whole cartons. It reports false and
// leaves the line unchanged when quantity, price or carton size is missing.
func (v Valuator) ToCartons(line *Line) bool {
	if line.Cartonized || line.Unit == enums.UnitCarton {
		return false
	}
	if line.Quantity == nil || line.UnitPrice == nil || line.CartonSize == nil || !line.CartonSize.IsPositive() {
		return false
	}
	conv, ok := units.ConvertToCartons(*line.Quantity, *line.UnitPrice, *line.CartonSize)
	if !ok {
		return false
	}

	cartonPrice := pricing.Round(conv.UnitPriceCarton)
	total := pricing.Round(conv.Cartons.Mul(cartonPrice))
	covered := units.LooseCoverage(conv.Cartons, *line.CartonSize)
	line.Quantity = &conv.Cartons
	line.CoveredQuantity = &covered
	line.Unit = conv.Unit
	line.UnitPrice = &cartonPrice
	line.TotalCost = &total
	line.ManualTotal = false
	line.Cartonized = true
	return true
}

// SetPurchaser switches the purchaser tier and reprices every line with a known
// cost. A line whose price comes out unchanged keeps its typed total.
func (v *Valuator) SetPurchaser(lines []Line, purchaser enums.PurchaserType) {
	v.Purchaser = purchaser
	for i := range lines {
		line := &lines[i]
		if line.UnitCost == nil {
			continue
		}
		price, unavailable := v.priceFromCost(*line.UnitCost)
		if price != nil && line.Cartonized && line.CartonSize != nil {
			carton := pricing.Round(price.Mul(*line.CartonSize))
			price = &carton
		}
		if samePrice(price, line.UnitPrice) && unavailable == line.PriceUnavailable {
			continue
		}
		line.UnitPrice = price
		line.PriceUnavailable = unavailable
		line.ManualTotal = false
		recomputeTotal(line)
	}
}

func (v Valuator) priceFromCost(cost decimal.Decimal) (*decimal.Decimal, bool) {
	policy := v.Policy()
	price := pricing.Price(cost, policy)
	if price.IsZero() && (cost.IsPositive() || !pricing.Priceable(policy)) {
		return nil, true
	}
	rounded := pricing.Round(price)
	return &rounded, false
}

func recomputeTotal(line *Line) {
	if line.Quantity == nil || line.UnitPrice == nil {
		line.TotalCost = nil
		return
	}
	total := pricing.Round(line.Quantity.Mul(*line.UnitPrice))
	line.TotalCost = &total
}

func samePrice(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func roundTo(value *decimal.Decimal, places int32) *decimal.Decimal {
	if value == nil {
		return nil
	}
	rounded := value.Round(places)
	return &rounded
}

func parse(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &value
}
