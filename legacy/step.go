/*
Package legacy implements the step-wise rate model that predates modifier
stacking, together with the channel-scoped discount records it consumes.

PURPOSE:
  Other consumers depend on this model's exact numbers, so it is kept as its
  own algorithm rather than expressed through pricing.Composer. Every step
  rounds to two places before the next one reads it:

    1. seasonal   = round2(base × season_index)
    2. bar        = round2(seasonal + meal × occupancy)
    3. (optional) date override applied to bar
    4. channel    = round2(bar × (1 - channel_discount/100))
    5. final      = round2(channel × (1 - modifier_discount/100))
    6. (optional) final rounded up to a ceiling increment
    7. commission = round2(final × commission/100); net = round2(final - commission)

EXAMPLE:
  base 65.00, index 1.30, meal 6.00 × 2, channel 0%, modifier 10%, commission 18%
    seasonal 84.50, bar 96.50, channel 96.50, final 86.85,
    commission 15.63, net 71.22

SEE ALSO:
  - pricing/composer.go: the stacking model
  - override.go: per-season modifier discounts
*/
package legacy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/pricing"
)

// ErrInvalidIncrement is returned for a ceiling increment that is not positive.
var ErrInvalidIncrement = errors.New("ceiling increment must be positive")

// Input holds the raw figures for one legacy calculation. Percentages are
// expressed as 10.00 for 10%.
type Input struct {
	RoomBaseRate        decimal.Decimal
	SeasonIndex         decimal.Decimal
	MealSupplement      decimal.Decimal
	ChannelBaseDiscount decimal.Decimal
	ModifierDiscount    decimal.Decimal
	CommissionPercent   decimal.Decimal
	Occupancy           int
}

// Options switches on the optional steps.
type Options struct {
	// DateOverride, when set, adjusts the BAR before channel discounts.
	DateOverride *DateRateOverride
	// CeilingIncrement rounds the final rate up to a multiple of itself.
	// Zero disables the step.
	CeilingIncrement decimal.Decimal
}

// Breakdown is the per-step trace of a legacy calculation.
type Breakdown struct {
	SeasonalRate decimal.Decimal
	MealCost     decimal.Decimal // meal × occupancy, unrounded
	BaseBar      decimal.Decimal // before any date override
	BarRate      decimal.Decimal

	DateOverride *DateRateOverride

	ChannelBaseRate        decimal.Decimal
	ChannelDiscountAmount  decimal.Decimal
	ModifierDiscountAmount decimal.Decimal

	PreCeilingRate decimal.Decimal
	CeilingApplied bool

	FinalRate        decimal.Decimal
	CommissionAmount decimal.Decimal
	NetRevenue       decimal.Decimal
}

// Compose runs the legacy model with no optional steps.
func Compose(in Input) (decimal.Decimal, Breakdown) {
	b := compose(in, Options{})
	return b.FinalRate, b
}

// ComposeWith runs the legacy model with optional date override and ceiling.
func ComposeWith(in Input, opts Options) (decimal.Decimal, Breakdown, error) {
	if !opts.CeilingIncrement.IsZero() && !opts.CeilingIncrement.IsPositive() {
		return decimal.Zero, Breakdown{}, fmt.Errorf("%w: %s", ErrInvalidIncrement, opts.CeilingIncrement)
	}
	b := compose(in, opts)
	return b.FinalRate, b, nil
}

func compose(in Input, opts Options) Breakdown {
	var b Breakdown

	b.SeasonalRate = pricing.Round2(in.RoomBaseRate.Mul(in.SeasonIndex))

	b.MealCost = in.MealSupplement.Mul(decimal.NewFromInt(int64(in.Occupancy)))
	b.BaseBar = pricing.Round2(b.SeasonalRate.Add(b.MealCost))
	b.BarRate = b.BaseBar

	if o := opts.DateOverride; o != nil {
		b.BarRate = o.Apply(b.BaseBar)
		b.DateOverride = o
	}

	b.ChannelBaseRate = pricing.Round2(b.BarRate.Mul(remaining(in.ChannelBaseDiscount)))
	b.ChannelDiscountAmount = b.BarRate.Sub(b.ChannelBaseRate)

	b.FinalRate = pricing.Round2(b.ChannelBaseRate.Mul(remaining(in.ModifierDiscount)))
	b.ModifierDiscountAmount = b.ChannelBaseRate.Sub(b.FinalRate)
	b.PreCeilingRate = b.FinalRate

	if opts.CeilingIncrement.IsPositive() {
		b.FinalRate = Ceiling(b.FinalRate, opts.CeilingIncrement)
		b.CeilingApplied = !b.FinalRate.Equal(b.PreCeilingRate)
	}

	b.CommissionAmount = pricing.Round2(pricing.Percent(b.FinalRate, in.CommissionPercent))
	b.NetRevenue = pricing.Round2(b.FinalRate.Sub(b.CommissionAmount))
	return b
}

// remaining turns a discount percent into the multiplier left after it.
func remaining(discount decimal.Decimal) decimal.Decimal {
	return pricing.One.Sub(pricing.Fraction(discount))
}

// Ceiling rounds rate up to the next multiple of increment. Exact multiples
// are unchanged.
func Ceiling(rate, increment decimal.Decimal) decimal.Decimal {
	if !increment.IsPositive() {
		return rate
	}
	return pricing.Round2(rate.Div(increment).Ceil().Mul(increment))
}
