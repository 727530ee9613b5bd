package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/pricing"
)

func defaultComposer() pricing.Composer {
	return pricing.Composer{
		Charges:        pricing.DefaultCharges(),
		Thresholds:     pricing.DefaultThresholds(),
		CurrencySymbol: "$",
	}
}

// =============================================================================
// STACKING SCENARIOS
// =============================================================================

func TestCompose_EndToEndScenario(t *testing.T) {
	// GIVEN: BAR 100, discounts 15% then 5%, breakfast 6.00 for 2, 10% service, 16% tax on service
	// WHEN: Composed
	// THEN: Each boundary is rounded once and final is the sum of rounded parts

	b := defaultComposer().Compose(pricing.ComposeInput{
		BarRate:        d("100.00"),
		Modifiers:      []pricing.Modifier{discount("a", "15", 1), discount("b", "5", 2)},
		MealPlanAmount: d("6.00"),
		Pax:            2,
	})

	assertDecimal(t, "-0.20", b.TotalAdjustment)
	assertDecimal(t, "0.80", b.Multiplier)
	assertDecimal(t, "80.00", b.AdjustedRoomRate)
	assertDecimal(t, "12.00", b.MealPlanTotal)
	assertDecimal(t, "92.00", b.Subtotal)
	assertDecimal(t, "9.20", b.ServiceCharge)
	assertDecimal(t, "101.20", b.AfterService)
	assertDecimal(t, "101.20", b.TaxBase)
	assertDecimal(t, "16.19", b.TaxAmount)
	assertDecimal(t, "117.39", b.FinalRate)
	assertDecimal(t, "20", b.TotalDiscountPercent)
	assert.False(t, b.HasWarnings())

	require.Len(t, b.Modifiers, 2)
	assertDecimal(t, "-0.15", b.Modifiers[0].CumulativeAdjustment)
	assertDecimal(t, "-0.20", b.Modifiers[1].CumulativeAdjustment)
	assertDecimal(t, "-5", b.Modifiers[1].AdjustmentPercent)
	assert.Equal(t, "-15.00%", b.Modifiers[0].AdjustmentDisplay)
}

func TestCompose_TaxExcludingServiceCharge(t *testing.T) {
	c := defaultComposer()
	c.Charges.TaxOnServiceCharge = false

	b := c.Compose(pricing.ComposeInput{
		BarRate:        d("100.00"),
		Modifiers:      []pricing.Modifier{discount("a", "15", 1), discount("b", "5", 2)},
		MealPlanAmount: d("6.00"),
		Pax:            2,
	})

	assertDecimal(t, "92.00", b.TaxBase)
	assertDecimal(t, "14.72", b.TaxAmount)
	assertDecimal(t, "115.92", b.FinalRate)
}

func TestCompose_AdditiveNotCompounded(t *testing.T) {
	// A: discount 10% (order 1), B: surcharge 5% (order 2) -> -0.05 total
	b := pricing.Composer{}.Compose(pricing.ComposeInput{
		BarRate:   d("123.45"),
		Modifiers: []pricing.Modifier{discount("a", "10", 1), surcharge("b", "5", 2)},
	})

	assertDecimal(t, "-0.05", b.TotalAdjustment)
	assertDecimal(t, "117.28", b.AdjustedRoomRate) // round2(123.45 × 0.95)
}

func TestCompose_IndexModifier(t *testing.T) {
	b := pricing.Composer{}.Compose(pricing.ComposeInput{
		BarRate:   d("100.00"),
		Modifiers: []pricing.Modifier{{ID: "peak", Adjustment: pricing.Index{Factor: d("1.30")}, Active: true}, discount("ota", "10", 1)},
	})

	assertDecimal(t, "0.20", b.TotalAdjustment)
	assertDecimal(t, "120.00", b.AdjustedRoomRate)
	assert.Equal(t, "+30%", b.Modifiers[0].AdjustmentDisplay)
	assert.Equal(t, "×1.30", b.Modifiers[0].ValueDisplay)
}

func TestCompose_SkipsModifierWithoutAdjustment(t *testing.T) {
	// GIVEN: a hand-built modifier with no adjustment between two discounts
	// WHEN: composed
	// THEN: it is left out of the breakdown and the total
	b := pricing.Composer{}.Compose(pricing.ComposeInput{
		BarRate:   d("100.00"),
		Modifiers: []pricing.Modifier{discount("a", "10", 1), {ID: "empty", Active: true}, discount("b", "5", 2)},
	})

	require.Len(t, b.Modifiers, 2)
	assert.Equal(t, pricing.ModifierID("b"), b.Modifiers[1].ID)
	assertDecimal(t, "-0.15", b.TotalAdjustment)
	assertDecimal(t, "85.00", b.AdjustedRoomRate)
}

func TestCompose_RoundingBoundary(t *testing.T) {
	b := pricing.Composer{}.Compose(pricing.ComposeInput{
		BarRate:   d("100.00"),
		Modifiers: []pricing.Modifier{discount("a", "12.5", 1)},
	})

	assertDecimal(t, "0.875", b.Multiplier)
	assert.Equal(t, "87.50", pricing.Money(b.AdjustedRoomRate))
	assertDecimal(t, "87.50", b.AdjustedRoomRate)
}

// =============================================================================
// WARNINGS
// =============================================================================

func TestCompose_ClampsToZero_WithZeroRateWarning(t *testing.T) {
	// GIVEN: Three 40% discounts (-120% total)
	// WHEN: Composed
	// THEN: Multiplier clamps to 0, rate is 0 (never negative), zero_rate is raised

	b := defaultComposer().Compose(pricing.ComposeInput{
		BarRate:   d("100.00"),
		Modifiers: []pricing.Modifier{discount("a", "40", 1), discount("b", "40", 2), discount("c", "40", 3)},
		Pax:       2,
	})

	assertDecimal(t, "-1.20", b.TotalAdjustment)
	assert.True(t, b.Multiplier.IsZero())
	assert.True(t, b.AdjustedRoomRate.IsZero())
	assert.False(t, b.FinalRate.IsNegative())
	assert.True(t, b.HasWarning(pricing.WarningZeroRate))
	assert.True(t, b.HasWarning(pricing.WarningMaxDiscount))

	for _, w := range b.Warnings {
		if w.Type == pricing.WarningZeroRate {
			assert.Equal(t, pricing.SeverityError, w.Severity)
		}
	}
}

func TestCompose_MinRateWarning(t *testing.T) {
	c := defaultComposer()
	c.Thresholds.MinRate = nd("90.00")

	b := c.Compose(pricing.ComposeInput{
		BarRate:   d("100.00"),
		Modifiers: []pricing.Modifier{discount("a", "20", 1)},
	})

	require.True(t, b.HasWarning(pricing.WarningMinRate))
	assert.Equal(t, "Room rate $80.00 is below minimum $90.00", b.Warnings[0].Message)
	assert.False(t, b.HasWarning(pricing.WarningMaxDiscount))
}

func TestCompose_MaxDiscountWarning(t *testing.T) {
	b := defaultComposer().Compose(pricing.ComposeInput{
		BarRate:   d("100.00"),
		Modifiers: []pricing.Modifier{discount("a", "30", 1), discount("b", "15", 2)},
	})

	require.True(t, b.HasWarning(pricing.WarningMaxDiscount))
	assert.Equal(t, "Total discount 45.0% exceeds maximum 40%", b.Warnings[0].Message)
	assert.False(t, b.HasWarning(pricing.WarningZeroRate))
}

func TestCompose_Commission(t *testing.T) {
	b := defaultComposer().Compose(pricing.ComposeInput{
		BarRate:           d("100.00"),
		Modifiers:         []pricing.Modifier{discount("a", "15", 1), discount("b", "5", 2)},
		MealPlanAmount:    d("6.00"),
		Pax:               2,
		CommissionPercent: d("18.00"),
	})

	assertDecimal(t, "21.13", b.CommissionAmount)
	assertDecimal(t, "96.26", b.NetRevenue)
}

func TestComposeSimple(t *testing.T) {
	b := pricing.Composer{}.ComposeSimple(pricing.SimpleInput{
		BarRate:             d("100.00"),
		SeasonIndex:         d("1.20"),
		ChannelDiscount:     d("15"),
		AdditionalDiscounts: []decimal.Decimal{d("5")},
	})

	assert.True(t, b.TotalAdjustment.IsZero())
	assertDecimal(t, "100.00", b.AdjustedRoomRate)
	assert.Len(t, b.Modifiers, 3)
}

func TestRateBreakdown_Format(t *testing.T) {
	c := defaultComposer()
	b := c.Compose(pricing.ComposeInput{
		BarRate:        d("100.00"),
		Modifiers:      []pricing.Modifier{discount("Early Bird", "15", 1)},
		MealPlanAmount: d("6.00"),
		Pax:            2,
	})

	out := b.Format("$")

	assert.Contains(t, out, "BAR (Room Rate):")
	assert.Contains(t, out, "Early Bird")
	assert.Contains(t, out, "-15.0%")
	assert.Contains(t, out, "FINAL RATE:")
	assert.Contains(t, out, pricing.Money(b.FinalRate))
	assert.NotContains(t, out, "WARNINGS")
}
