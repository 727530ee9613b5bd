/*
Package pricing provides the core rate calculation engine.

PURPOSE:
  This package turns a small set of pricing primitives (room base rate, season
  multiplier, meal plan, sales channel and a stack of conditional modifiers) into
  a fully itemized guest rate. It performs no I/O: every call receives an
  already-loaded catalog snapshot and returns a fresh value.

KEY CONCEPTS IN THIS FILE (money.go):
  - Round2: the single rounding policy (half away from zero, 2 places)
  - Percent / Fraction: percentage helpers that never round
  - Hundred / One: shared constants

ROUNDING CONTRACT:
  Rounding happens only at composition boundaries. Helpers here never round
  implicitly; callers decide where Round2 goes. Moving a Round2 call changes
  totals by rounding artifacts and is a behavior change, not a refactor.

SEE ALSO:
  - composer.go: stacking composition (rounds at four boundaries)
  - legacy/step.go: step composition (rounds after every step)
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Hundred = decimal.NewFromInt(100)
)

// MoneyPlaces is the fixed scale for money and percentages at every boundary.
const MoneyPlaces int32 = 2

// =============================================================================
// ROUNDING
// =============================================================================

// Round2 rounds half away from zero at two decimal places.
// For non-negative amounts this is the same as ROUND_HALF_UP.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Percent returns v × p / 100, unrounded.
func Percent(v, p decimal.Decimal) decimal.Decimal {
	return v.Mul(p).Div(Hundred)
}

// Fraction converts a percentage (10.00) into a fraction (0.10).
func Fraction(p decimal.Decimal) decimal.Decimal {
	return p.Div(Hundred)
}

// MustDecimal parses s or panics. Intended for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Money formats d with the fixed money scale.
func Money(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// MaxDecimal returns the larger of a and b.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
