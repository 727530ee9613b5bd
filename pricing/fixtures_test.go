package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/rate-engine/pricing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal { return pricing.MustDecimal(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func intp(v int) *int { return &v }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func discount(id string, pct string, order int) pricing.Modifier {
	return pricing.Modifier{
		ID:         pricing.ModifierID(id),
		Name:       id,
		Adjustment: pricing.Discount{Percent: d(pct)},
		StackOrder: order,
		Active:     true,
	}
}

func surcharge(id string, pct string, order int) pricing.Modifier {
	return pricing.Modifier{
		ID:         pricing.ModifierID(id),
		Name:       id,
		Adjustment: pricing.Surcharge{Percent: d(pct)},
		StackOrder: order,
		Active:     true,
	}
}

func ids(mods []pricing.Modifier) []pricing.ModifierID {
	out := make([]pricing.ModifierID, len(mods))
	for i, m := range mods {
		out[i] = m.ID
	}
	return out
}

// hotelCatalog is a small two-room, two-season, two-channel property.
func hotelCatalog() *pricing.Catalog {
	return &pricing.Catalog{
		Property: pricing.Property{
			ID:                "hotel-1",
			Name:              "Seaside",
			CurrencySymbol:    "$",
			ReferenceBaseRate: nd("100.00"),
			Charges:           pricing.DefaultCharges(),
			Thresholds:        pricing.DefaultThresholds(),
		},
		RoomTypes: []pricing.RoomType{
			{ID: "deluxe", Name: "Deluxe", PricingMethod: pricing.PricingIndex, RoomIndex: d("1.20"), SortOrder: 2},
			{ID: "standard", Name: "Standard", PricingMethod: pricing.PricingDirect, BaseRate: d("100.00"), SortOrder: 1},
		},
		Seasons: []pricing.Season{
			{ID: "high", Name: "High", StartDate: day(2025, time.July, 1), EndDate: day(2025, time.August, 31), Index: d("1.30")},
			{ID: "low", Name: "Low", StartDate: day(2025, time.January, 1), EndDate: day(2025, time.March, 31), Index: d("1.00")},
		},
		Channels: []pricing.Channel{
			{ID: "direct", Name: "Direct", SortOrder: 1},
			{ID: "ota", Name: "OTA", CommissionPercent: d("18.00"), SortOrder: 2},
		},
		RatePlans: []pricing.RatePlan{
			{ID: "ro", Name: "Room Only", MealSupplement: d("0.00")},
			{ID: "bb", Name: "Bed & Breakfast", MealSupplement: d("6.00")},
		},
		Modifiers: []pricing.Modifier{
			{
				ID: "high-season", Name: "High Season", AppliesTo: pricing.TargetSeason,
				Adjustment: pricing.Index{Factor: d("1.30")}, StackOrder: 0, Active: true,
				Scope: pricing.Scope{SeasonID: "high"},
			},
			{
				ID: "ota-discount", Name: "OTA Discount", AppliesTo: pricing.TargetChannel,
				Adjustment: pricing.Discount{Percent: d("10.00")}, StackOrder: 1, Active: true,
				Scope: pricing.Scope{ChannelID: "ota"},
			},
		},
	}
}
