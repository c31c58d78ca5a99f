package pricing

import "github.com/shopspring/decimal"

var (
	thirty = decimal.NewFromInt(30)
	one    = decimal.NewFromInt(1)
)

// floorUnit truncates v to whole currency units.
func floorUnit(v decimal.Decimal) decimal.Decimal { return v.Floor() }

// roundHalfUp rounds a non-negative v to the nearest multiple of unit, ties up.
func roundHalfUp(v, unit decimal.Decimal) decimal.Decimal {
	if unit.IsZero() || unit.Equal(one) {
		return v.Round(0)
	}
	return v.Div(unit).Round(0).Mul(unit)
}

// floorToUnit rounds a non-negative v down to a multiple of unit.
func floorToUnit(v, unit decimal.Decimal) decimal.Decimal {
	if unit.IsZero() || unit.Equal(one) {
		return v.Floor()
	}
	return v.Div(unit).Floor().Mul(unit)
}

func maxDec(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
