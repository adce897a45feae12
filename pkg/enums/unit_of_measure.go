package enums

import (
	"fmt"
	"strings"
)

// UnitOfMeasure is the fixed set of units a variant or order line can be expressed in.
type UnitOfMeasure string

const (
	UnitSquareFoot UnitOfMeasure = "sq_ft"
	UnitSquareYard UnitOfMeasure = "sq_yd"
	UnitLinearFoot UnitOfMeasure = "lin_ft"
	UnitEach       UnitOfMeasure = "each"
	UnitCarton     UnitOfMeasure = "carton"
	UnitBox        UnitOfMeasure = "box"
	UnitRoll       UnitOfMeasure = "roll"
	UnitBag        UnitOfMeasure = "bag"
	UnitGallon     UnitOfMeasure = "gallon"
	UnitPiece      UnitOfMeasure = "piece"
	UnitPallet     UnitOfMeasure = "pallet"
)

var validUnitsOfMeasure = []UnitOfMeasure{
	UnitSquareFoot,
	UnitSquareYard,
	UnitLinearFoot,
	UnitEach,
	UnitCarton,
	UnitBox,
	UnitRoll,
	UnitBag,
	UnitGallon,
	UnitPiece,
	UnitPallet,
}

// String implements fmt.Stringer.
func (u UnitOfMeasure) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UnitOfMeasure.
func (u UnitOfMeasure) IsValid() bool {
	for _, candidate := range validUnitsOfMeasure {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsPackaged reports whether the unit is already a packaging unit rather than a loose one.
func (u UnitOfMeasure) IsPackaged() bool {
	switch u {
	case UnitCarton, UnitBox, UnitPallet:
		return true
	default:
		return false
	}
}

// ParseUnitOfMeasure converts raw input into a UnitOfMeasure.
func ParseUnitOfMeasure(value string) (UnitOfMeasure, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUnitsOfMeasure {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit of measure %q", value)
}
