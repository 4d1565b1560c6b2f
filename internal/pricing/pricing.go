// Package pricing folds sale lines into cost, revenue and profit totals for the
// two supported pricing modes.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the quantity unit of a weight-priced line.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitTon      Unit = "ton"
)

var kgPerTon = decimal.NewFromInt(1000)

// maxScale bounds the decimal exponent of a parsed value. Literals outside
// float64 range are rejected before a decimal is built from them.
const maxScale = 400

// numericPrefix mirrors what a browser number parser accepts: the longest
// leading decimal literal, optionally signed, with an optional exponent.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseUnit maps raw unit text onto a Unit. Anything that is not a ton is
// treated as kilograms.
func ParseUnit(raw string) Unit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ton", "tonne", "t":
		return UnitTon
	default:
		return UnitKilogram
	}
}

// ParseNonNegativeOrZero coerces operator input into a non-negative decimal.
// Thousands separators are ignored; malformed, negative, or out-of-range input
// yields zero. It never fails.
func ParseNonNegativeOrZero(raw string) decimal.Decimal {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	literal := numericPrefix.FindString(s)
	if literal == "" {
		return decimal.Zero
	}

	if strings.HasPrefix(literal, "-") {
		return decimal.Zero
	}
	literal = strings.TrimPrefix(literal, "+")

	mantissa, exponent, hasExp := strings.Cut(strings.ToLower(literal), "e")
	mantissa = strings.TrimSuffix(mantissa, ".")
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	if hasExp {
		literal = mantissa + "e" + exponent
	} else {
		literal = mantissa
	}

	// strconv saturates huge exponents; decimal arithmetic does not.
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || f == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(literal)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp < -maxScale || exp > maxScale {
		return decimal.NewFromFloat(f)
	}
	return d
}

// ToKilograms converts a quantity expressed in unit into kilograms.
func ToKilograms(quantity decimal.Decimal, unit Unit) decimal.Decimal {
	if unit == UnitTon {
		return quantity.Mul(kgPerTon)
	}
	return quantity
}

// RoundMoney rounds to two decimal places for presentation.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseDecimal parses a finite, non-negative decimal, ignoring thousands
// separators. Unlike ParseNonNegativeOrZero it rejects trailing garbage and
// reports whether raw held a usable value.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" || numericPrefix.FindString(s) != s {
		return decimal.Zero, false
	}
	d := ParseNonNegativeOrZero(s)
	if d.IsZero() && strings.HasPrefix(s, "-") {
		return decimal.Zero, false
	}
	return d, true
}
