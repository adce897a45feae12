package units

import (
	"github.com/shopspring/decimal"

	"github.com/floorline/backoffice/pkg/enums"
)

// Conversion is a line re-expressed in whole cartons.
type Conversion struct {
	Cartons         decimal.Decimal     `json:"cartons"`
	UnitPriceCarton decimal.Decimal     `json:"unit_price_carton"`
	TotalPrice      decimal.Decimal     `json:"total_price"`
	Unit            enums.UnitOfMeasure `json:"unit"`
}

// ConvertToCartons rounds a loose quantity up to whole cartons and prices each
// carton at unitPriceLoose * cartonSize. It reports false, and converts nothing,
// unless both quantityLoose and cartonSize are positive.
func ConvertToCartons(quantityLoose, unitPriceLoose, cartonSize decimal.Decimal) (Conversion, bool) {
	if !quantityLoose.IsPositive() || !cartonSize.IsPositive() {
		return Conversion{}, false
	}

	cartons := quantityLoose.Div(cartonSize).Ceil()
	// Div is rounded to DivisionPrecision; make sure rounding never under-fills.
	if cartons.Mul(cartonSize).LessThan(quantityLoose) {
		cartons = cartons.Add(decimal.NewFromInt(1))
	}

	unitPriceCarton := unitPriceLoose.Mul(cartonSize)
	return Conversion{
		Cartons:         cartons,
		UnitPriceCarton: unitPriceCarton,
		TotalPrice:      cartons.Mul(unitPriceCarton),
		Unit:            enums.UnitCarton,
	}, true
}

// LooseCoverage is the loose quantity covered by a number of cartons.
func LooseCoverage(cartons, cartonSize decimal.Decimal) decimal.Decimal {
	if !cartons.IsPositive() || !cartonSize.IsPositive() {
		return decimal.Zero
	}
	return cartons.Mul(cartonSize)
}
