package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PropertyID string
type RoomTypeID string
type SeasonID string
type ChannelID string
type RatePlanID string
type ModifierID string

// =============================================================================
// PROPERTY - Property-wide settings consumed by the composer
// =============================================================================

// Property holds the settings shared by every calculation for one hotel.
type Property struct {
	ID             PropertyID
	Name           string
	CurrencySymbol string

	// ReferenceBaseRate anchors index and adjustment priced rooms.
	ReferenceBaseRate decimal.NullDecimal

	Charges    Charges
	Thresholds Thresholds
}

// Charges are the flat percentages layered on top of the room and meal cost.
type Charges struct {
	ServiceChargePercent decimal.Decimal
	TaxPercent           decimal.Decimal
	TaxOnServiceCharge   bool
}

// Thresholds drive the advisory warnings. A null value disables the check.
type Thresholds struct {
	MinRate            decimal.NullDecimal
	MaxDiscountPercent decimal.NullDecimal
}

// DefaultCharges mirrors the defaults a new property starts with.
func DefaultCharges() Charges {
	return Charges{
		ServiceChargePercent: decimal.NewFromInt(10),
		TaxPercent:           decimal.NewFromInt(16),
		TaxOnServiceCharge:   true,
	}
}

// DefaultThresholds warns above a 40% cumulative discount and has no floor.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDiscountPercent: decimal.NewNullDecimal(decimal.NewFromInt(40)),
	}
}

// =============================================================================
// ROOM TYPE
// =============================================================================

// PricingMethod selects how a room's base rate is derived.
type PricingMethod string

const (
	// PricingDirect uses the room's own base rate.
	PricingDirect PricingMethod = "direct"
	// PricingIndex multiplies the reference rate by RoomIndex.
	PricingIndex PricingMethod = "index"
	// PricingAdjustment adds RoomAdjustment to the reference rate.
	PricingAdjustment PricingMethod = "adjustment"
)

type RoomType struct {
	ID             RoomTypeID
	Name           string
	PricingMethod  PricingMethod
	BaseRate       decimal.Decimal
	RoomIndex      decimal.Decimal
	RoomAdjustment decimal.Decimal
	SeasonModifier decimal.NullDecimal // scales the season index; unset follows it
	NumberOfRooms  int
	SortOrder      int
}

// =============================================================================
// SEASON
// =============================================================================

type Season struct {
	ID                SeasonID
	Name              string
	StartDate         time.Time
	EndDate           time.Time
	Index             decimal.Decimal
	ExpectedOccupancy decimal.Decimal // percent, 0-100
}

// Contains reports whether day falls inside the season (inclusive, by date).
func (s Season) Contains(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(truncateDay(s.StartDate)) && !d.After(truncateDay(s.EndDate))
}

// Validate checks the date range and occupancy bounds.
func (s Season) Validate() error {
	if s.EndDate.Before(s.StartDate) {
		return configErr("season", string(s.ID), fmt.Errorf("%w: end_date before start_date", ErrInvalidCatalog))
	}
	if s.ExpectedOccupancy.IsNegative() || s.ExpectedOccupancy.GreaterThan(Hundred) {
		return configErr("season", string(s.ID), fmt.Errorf("%w: expected_occupancy outside 0-100", ErrInvalidCatalog))
	}
	return nil
}

// EffectiveSeasonIndex scales a season index by a room-type sensitivity
// modifier (1.00 = follows the season). Rounded to two places.
func EffectiveSeasonIndex(seasonIndex decimal.Decimal, roomModifier decimal.NullDecimal) decimal.Decimal {
	if !roomModifier.Valid {
		return Round2(seasonIndex)
	}
	return Round2(seasonIndex.Mul(roomModifier.Decimal))
}

// SeasonFor returns the first season covering day. Callers own overlap policy.
func SeasonFor(seasons []Season, day time.Time) (Season, bool) {
	for _, s := range seasons {
		if s.Contains(day) {
			return s, true
		}
	}
	return Season{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// RATE PLAN & CHANNEL
// =============================================================================

// RatePlan is a board type; MealSupplement is per person per night.
type RatePlan struct {
	ID             RatePlanID
	Name           string
	MealSupplement decimal.Decimal
}

type Channel struct {
	ID                  ChannelID
	Name                string
	BaseDiscountPercent decimal.Decimal
	CommissionPercent   decimal.Decimal
	SortOrder           int
}
