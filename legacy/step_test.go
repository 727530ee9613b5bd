package legacy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
)

func d(s string) decimal.Decimal { return pricing.MustDecimal(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func scenario() legacy.Input {
	return legacy.Input{
		RoomBaseRate:        d("65.00"),
		SeasonIndex:         d("1.30"),
		MealSupplement:      d("6.00"),
		ChannelBaseDiscount: d("0.00"),
		ModifierDiscount:    d("10.00"),
		CommissionPercent:   d("18.00"),
		Occupancy:           2,
	}
}

// =============================================================================
// STEP MODEL
// =============================================================================

func TestCompose_EndToEndScenario(t *testing.T) {
	final, b := legacy.Compose(scenario())

	assertDecimal(t, "84.50", b.SeasonalRate)
	assertDecimal(t, "96.50", b.BarRate)
	assertDecimal(t, "96.50", b.ChannelBaseRate)
	assertDecimal(t, "86.85", b.FinalRate)
	assertDecimal(t, "86.85", final)
	assertDecimal(t, "15.63", b.CommissionAmount)
	assertDecimal(t, "71.22", b.NetRevenue)
	assertDecimal(t, "9.65", b.ModifierDiscountAmount)
	assert.Nil(t, b.DateOverride)
	assert.False(t, b.CeilingApplied)
}

func TestCompose_RoundsEveryStep(t *testing.T) {
	// GIVEN: Figures whose intermediate products have a third decimal
	// WHEN: Composed
	// THEN: Each step consumes the previous step's rounded value

	in := legacy.Input{
		RoomBaseRate:        d("99.99"),
		SeasonIndex:         d("1.15"),  // 114.9885 -> 114.99
		ChannelBaseDiscount: d("12.50"), // 114.99 × 0.875 = 100.61625 -> 100.62
		ModifierDiscount:    d("7.00"),  // 100.62 × 0.93 = 93.5766 -> 93.58
		CommissionPercent:   d("15.00"), // 14.037 -> 14.04
		Occupancy:           2,
	}

	_, b := legacy.Compose(in)

	assertDecimal(t, "114.99", b.SeasonalRate)
	assertDecimal(t, "100.62", b.ChannelBaseRate)
	assertDecimal(t, "93.58", b.FinalRate)
	assertDecimal(t, "14.04", b.CommissionAmount)
	assertDecimal(t, "79.54", b.NetRevenue)
}

func TestCompose_MonotonicInSeasonIndexAndMeal(t *testing.T) {
	base := scenario()
	prev := decimal.Zero
	for _, idx := range []string{"0", "0.5", "0.99", "1", "1.005", "1.3", "2", "3.75"} {
		in := base
		in.SeasonIndex = d(idx)
		final, _ := legacy.Compose(in)
		assert.True(t, final.GreaterThanOrEqual(prev), "index %s: %s < %s", idx, final, prev)
		prev = final
	}

	prev = decimal.Zero
	for _, meal := range []string{"0", "0.01", "2.50", "6", "6.005", "40"} {
		in := base
		in.MealSupplement = d(meal)
		final, _ := legacy.Compose(in)
		assert.True(t, final.GreaterThanOrEqual(prev), "meal %s: %s < %s", meal, final, prev)
		prev = final
	}
}

// =============================================================================
// OPTIONAL STEPS
// =============================================================================

func TestComposeWith_Ceiling(t *testing.T) {
	final, b, err := legacy.ComposeWith(scenario(), legacy.Options{CeilingIncrement: d("5")})
	require.NoError(t, err)

	assertDecimal(t, "90", final)
	assertDecimal(t, "86.85", b.PreCeilingRate)
	assert.True(t, b.CeilingApplied)
	assertDecimal(t, "16.20", b.CommissionAmount)
	assertDecimal(t, "73.80", b.NetRevenue)
}

func TestComposeWith_NoOptionsMatchesCompose(t *testing.T) {
	want, wantB := legacy.Compose(scenario())

	final, b, err := legacy.ComposeWith(scenario(), legacy.Options{})
	require.NoError(t, err)
	assertDecimal(t, want.String(), final)
	assert.Equal(t, wantB, b)
}

func TestComposeWith_InvalidIncrement(t *testing.T) {
	_, _, err := legacy.ComposeWith(scenario(), legacy.Options{CeilingIncrement: d("-5")})
	assert.ErrorIs(t, err, legacy.ErrInvalidIncrement)
}

func TestCeiling(t *testing.T) {
	assertDecimal(t, "90", legacy.Ceiling(d("86.85"), d("5")))
	assertDecimal(t, "85", legacy.Ceiling(d("85.00"), d("5")))
	assertDecimal(t, "85.01", legacy.Ceiling(d("85.001"), d("0.01")))
	assertDecimal(t, "86.85", legacy.Ceiling(d("86.85"), decimal.Zero))
}

func TestComposeWith_DateOverrideAppliedToBar(t *testing.T) {
	// GIVEN: A +10% date override on a 96.50 BAR
	// WHEN: Composed
	// THEN: The channel and modifier discounts run on the adjusted BAR

	o := &legacy.DateRateOverride{Name: "Festival", Kind: legacy.OverridePercentage, Adjustment: d("10"), Priority: 80, Active: true}

	final, b, err := legacy.ComposeWith(scenario(), legacy.Options{DateOverride: o})
	require.NoError(t, err)

	assertDecimal(t, "96.50", b.BaseBar)
	assertDecimal(t, "106.15", b.BarRate)
	assertDecimal(t, "95.54", final) // 106.15 × 0.90 = 95.535
	assert.Equal(t, "Festival", b.DateOverride.Name)
}

// =============================================================================
// DATE RATE OVERRIDES
// =============================================================================

func day(m time.Month, dd int) time.Time { return time.Date(2025, m, dd, 0, 0, 0, 0, time.UTC) }

func TestDateRateOverride_Apply(t *testing.T) {
	amount := legacy.DateRateOverride{Kind: legacy.OverrideAmount, Adjustment: d("50")}
	assertDecimal(t, "150.00", amount.Apply(d("100")))
	assert.Equal(t, "+$50.00", amount.Display("$"))

	drop := legacy.DateRateOverride{Kind: legacy.OverrideAmount, Adjustment: d("-150")}
	assertDecimal(t, "0", drop.Apply(d("100")))
	assert.Equal(t, "-$150.00", drop.Display("$"))

	pct := legacy.DateRateOverride{Kind: legacy.OverridePercentage, Adjustment: d("-15")}
	assertDecimal(t, "85.00", pct.Apply(d("100")))
	assert.Equal(t, "-15.00%", pct.Display("$"))
}

func TestForDate_HighestPriorityWins(t *testing.T) {
	overrides := []legacy.DateRateOverride{
		{Name: "Weekend Boost", Kind: legacy.OverrideAmount, Adjustment: d("20"), Priority: 50, Active: true,
			Periods: []legacy.Period{{Start: day(time.December, 1), End: day(time.December, 31)}}},
		{Name: "New Year Premium", Kind: legacy.OverrideAmount, Adjustment: d("50"), Priority: 90, Active: true,
			Periods: []legacy.Period{{Start: day(time.December, 30), End: day(time.December, 31)}}},
		{Name: "Disabled", Kind: legacy.OverrideAmount, Adjustment: d("99"), Priority: 100, Active: false,
			Periods: []legacy.Period{{Start: day(time.December, 1), End: day(time.December, 31)}}},
	}

	o, ok := legacy.ForDate(overrides, day(time.December, 31))
	require.True(t, ok)
	assert.Equal(t, "New Year Premium", o.Name)

	o, ok = legacy.ForDate(overrides, day(time.December, 15))
	require.True(t, ok)
	assert.Equal(t, "Weekend Boost", o.Name)

	_, ok = legacy.ForDate(overrides, day(time.November, 30))
	assert.False(t, ok)

	assert.Len(t, legacy.AllForDate(overrides, day(time.December, 30)), 2)
}

func TestDateRateOverride_Validate(t *testing.T) {
	ok := legacy.DateRateOverride{Name: "x", Kind: legacy.OverrideAmount, Priority: legacy.DefaultPriority}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Priority = 101
	assert.ErrorIs(t, bad.Validate(), legacy.ErrInvalidOverride)

	bad = ok
	bad.Periods = []legacy.Period{{Start: day(time.May, 2), End: day(time.May, 1)}}
	assert.ErrorIs(t, bad.Validate(), legacy.ErrInvalidOverride)

	assert.Equal(t, 3, legacy.Period{Start: day(time.May, 1), End: day(time.May, 3)}.Days())
}
