package webhook

import "github.com/shopspring/decimal"

// MinorUnitsPerMajor is the single fixed currency ratio.
const MinorUnitsPerMajor = 100

var minorPerMajor = decimal.NewFromInt(MinorUnitsPerMajor)

// ToMajor converts a stored minor-unit amount into major units.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorPerMajor)
}

// RoundedMajor is ToMajor rounded half away from zero to a whole major unit.
func RoundedMajor(minor int64) int64 {
	return ToMajor(minor).Round(0).IntPart()
}

// MajorToMinor converts a provider major-unit amount into (possibly fractional) minor units.
func MajorToMinor(major decimal.Decimal) decimal.Decimal {
	return major.Mul(minorPerMajor)
}

// MajorWithinTolerance reports whether major, once converted, is within tolerance minor units of stored.
func MajorWithinTolerance(major decimal.Decimal, stored int64, tolerance int64) bool {
	diff := MajorToMinor(major).Sub(decimal.NewFromInt(stored)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromInt(tolerance))
}
