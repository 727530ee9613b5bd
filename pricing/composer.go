/*
composer.go - Additive stacking composition

PURPOSE:
  Turns a BAR figure and an ordered modifier list into a fully itemized
  breakdown. Modifier fractions are summed, never compounded:

    total      = Σ fraction(m)
    multiplier = max(0, 1 + total)
    room       = round2(bar × multiplier)
    meal       = round2(meal_per_person × pax)
    subtotal   = room + meal
    service    = round2(subtotal × service% / 100)
    tax        = round2((after_service | subtotal) × tax% / 100)
    final      = subtotal + service + tax

  The rounding happens exactly at those boundaries and final is a sum of
  rounded parts. Changing the order changes totals.

EXAMPLE:
  BAR 100.00, discounts 15% and 5%, meal 6.00 × 2, service 10%, tax 16% on
  service:
    total -0.20, room 80.00, meal 12.00, subtotal 92.00, service 9.20,
    tax 16.19, final 117.39

SEE ALSO:
  - legacy/step.go: the older sequential model, rounded per step
  - warnings.go: anomalies reported alongside the result
*/
package pricing

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BREAKDOWN
// =============================================================================

// AppliedModifier is one line of the modifier trace.
type AppliedModifier struct {
	ID         ModifierID
	Code       string
	Name       string
	Type       ModifierType
	AppliesTo  Target
	Value      decimal.Decimal
	StackOrder int

	Adjustment           decimal.Decimal // signed fraction
	AdjustmentPercent    decimal.Decimal
	CumulativeAdjustment decimal.Decimal
	CumulativePercent    decimal.Decimal

	ValueDisplay      string
	AdjustmentDisplay string
}

// RateBreakdown is the full trace of one stacking calculation. It is built
// fresh per call and owned by the caller.
type RateBreakdown struct {
	BarRate decimal.Decimal
	Pax     int

	Modifiers              []AppliedModifier
	TotalAdjustment        decimal.Decimal
	TotalAdjustmentPercent decimal.Decimal
	TotalDiscountPercent   decimal.Decimal
	Multiplier             decimal.Decimal

	AdjustedRoomRate decimal.Decimal

	MealPlanPerPerson decimal.Decimal
	MealPlanTotal     decimal.Decimal
	Subtotal          decimal.Decimal

	ServiceChargePercent decimal.Decimal
	ServiceCharge        decimal.Decimal
	AfterService         decimal.Decimal

	TaxPercent         decimal.Decimal
	TaxOnServiceCharge bool
	TaxBase            decimal.Decimal
	TaxAmount          decimal.Decimal

	FinalRate decimal.Decimal

	CommissionPercent decimal.Decimal
	CommissionAmount  decimal.Decimal
	NetRevenue        decimal.Decimal

	Warnings []Warning
}

// HasWarnings reports whether any warning was raised.
func (b RateBreakdown) HasWarnings() bool {
	return len(b.Warnings) > 0
}

// HasWarning reports whether a warning of type t was raised.
func (b RateBreakdown) HasWarning(t WarningType) bool {
	for _, w := range b.Warnings {
		if w.Type == t {
			return true
		}
	}
	return false
}

// =============================================================================
// COMPOSER
// =============================================================================

// ComposeInput carries the per-call figures. Modifiers must already be in
// stack order, as returned by Select.
type ComposeInput struct {
	BarRate        decimal.Decimal
	Modifiers      []Modifier
	MealPlanAmount decimal.Decimal // per person
	Pax            int
	// CommissionPercent is the channel's cut of the final rate; zero for none.
	CommissionPercent decimal.Decimal
}

// Composer applies a property's charges and thresholds. The zero value
// charges nothing and warns on nothing but zero rates.
type Composer struct {
	Charges        Charges
	Thresholds     Thresholds
	CurrencySymbol string
}

// NewComposer builds a composer from a property's settings.
func NewComposer(p Property) Composer {
	return Composer{Charges: p.Charges, Thresholds: p.Thresholds, CurrencySymbol: p.CurrencySymbol}
}

// Compose runs the stacking algorithm. It never fails: anomalies are
// reported as warnings on the result. Modifiers without an adjustment are
// skipped.
func (c Composer) Compose(in ComposeInput) RateBreakdown {
	b := RateBreakdown{
		BarRate:              in.BarRate,
		Pax:                  in.Pax,
		Modifiers:            make([]AppliedModifier, 0, len(in.Modifiers)),
		MealPlanPerPerson:    in.MealPlanAmount,
		ServiceChargePercent: c.Charges.ServiceChargePercent,
		TaxPercent:           c.Charges.TaxPercent,
		TaxOnServiceCharge:   c.Charges.TaxOnServiceCharge,
		CommissionPercent:    in.CommissionPercent,
	}

	// Step 1: additive adjustment.
	total := decimal.Zero
	for _, m := range in.Modifiers {
		if m.Adjustment == nil {
			continue
		}
		adj := m.Adjustment.Fraction()
		total = total.Add(adj)
		b.Modifiers = append(b.Modifiers, AppliedModifier{
			ID:                   m.ID,
			Code:                 m.Code,
			Name:                 m.Name,
			Type:                 m.Adjustment.Type(),
			AppliesTo:            m.AppliesTo,
			Value:                m.Adjustment.Value(),
			StackOrder:           m.StackOrder,
			Adjustment:           adj,
			AdjustmentPercent:    adj.Mul(Hundred),
			CumulativeAdjustment: total,
			CumulativePercent:    total.Mul(Hundred),
			ValueDisplay:         ValueDisplay(m.Adjustment),
			AdjustmentDisplay:    AdjustmentDisplay(m.Adjustment),
		})
	}
	c.finish(&b, total)
	return b
}

// finish runs steps 2 onward from a precomputed total adjustment.
func (c Composer) finish(b *RateBreakdown, total decimal.Decimal) {
	b.TotalAdjustment = total
	b.TotalAdjustmentPercent = total.Mul(Hundred)
	if total.IsNegative() {
		b.TotalDiscountPercent = total.Abs().Mul(Hundred)
	}

	// Step 2: clamp and apply.
	b.Multiplier = MaxDecimal(Zero, One.Add(total))
	b.AdjustedRoomRate = Round2(b.BarRate.Mul(b.Multiplier))

	// Step 3: meal plan.
	b.MealPlanTotal = Round2(b.MealPlanPerPerson.Mul(decimal.NewFromInt(int64(b.Pax))))
	b.Subtotal = b.AdjustedRoomRate.Add(b.MealPlanTotal)

	// Step 4: service charge.
	b.ServiceCharge = Round2(Percent(b.Subtotal, b.ServiceChargePercent))
	b.AfterService = b.Subtotal.Add(b.ServiceCharge)

	// Step 5: tax.
	b.TaxBase = b.Subtotal
	if b.TaxOnServiceCharge {
		b.TaxBase = b.AfterService
	}
	b.TaxAmount = Round2(Percent(b.TaxBase, b.TaxPercent))

	b.FinalRate = b.AfterService.Add(b.TaxAmount)

	b.CommissionAmount = Round2(Percent(b.FinalRate, b.CommissionPercent))
	b.NetRevenue = b.FinalRate.Sub(b.CommissionAmount)

	b.Warnings = evaluateWarnings(b, c.Thresholds, c.CurrencySymbol)
}

// =============================================================================
// SIMPLE COMPOSITION - No modifier records
// =============================================================================

// SimpleInput describes a calculation from bare numbers.
type SimpleInput struct {
	BarRate             decimal.Decimal
	SeasonIndex         decimal.Decimal // zero means 1.00
	ChannelDiscount     decimal.Decimal // percent
	AdditionalDiscounts []decimal.Decimal
	MealPlanAmount      decimal.Decimal
	Pax                 int
}

// ComposeSimple stacks a season index, a channel discount and any extra
// discounts as if each were a modifier, then composes as usual.
func (c Composer) ComposeSimple(in SimpleInput) RateBreakdown {
	seasonIndex := in.SeasonIndex
	if seasonIndex.IsZero() {
		seasonIndex = One
	}

	mods := []Modifier{
		{ID: "season", Name: "Season", Adjustment: Index{Factor: seasonIndex}, AppliesTo: TargetSeason, Active: true},
		{ID: "channel", Name: "Channel", Adjustment: Discount{Percent: in.ChannelDiscount}, AppliesTo: TargetChannel, Active: true, StackOrder: 1},
	}
	for i, d := range in.AdditionalDiscounts {
		mods = append(mods, Modifier{
			ID:         ModifierID("discount-" + strconv.Itoa(i+1)),
			Name:       "Discount",
			Adjustment: Discount{Percent: d},
			Active:     true,
			StackOrder: i + 2,
		})
	}

	return c.Compose(ComposeInput{
		BarRate:        in.BarRate,
		Modifiers:      mods,
		MealPlanAmount: in.MealPlanAmount,
		Pax:            in.Pax,
	})
}
