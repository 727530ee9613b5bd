/*
modifier.go - Modifier catalog entries and their adjustment variants

PURPOSE:
  A Modifier is a named, conditional price adjustment. Its numeric effect is
  one of three closed variants, each contributing a signed fraction to the
  additive stack:

    Index{1.20}      -> +0.20
    Discount{10.00}  -> -0.10
    Surcharge{5.00}  -> +0.05

SCOPE:
  Before any rule is evaluated a modifier must match the booking context:
  - membership fields (season, room type, channel) that are set must equal
    the context's; unset means "any"
  - the AppliesTo target adds one extra predicate (length of stay, booking
    window, guest type or promo code)
  - an optional validity window is checked against the arrival date

SEE ALSO:
  - rule.go: rules evaluated after the scope check
  - selector.go: ordered evaluation
*/
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ADJUSTMENT - Closed variant over modifier types
// =============================================================================

type ModifierType string

const (
	TypeIndex     ModifierType = "index"
	TypeDiscount  ModifierType = "discount"
	TypeSurcharge ModifierType = "surcharge"
)

// Adjustment is implemented only by Index, Discount and Surcharge.
type Adjustment interface {
	Type() ModifierType
	// Value is the configured number: a factor for Index, a percent otherwise.
	Value() decimal.Decimal
	// Fraction is the signed contribution to the additive stack.
	Fraction() decimal.Decimal
	sealed()
}

// Index multiplies the rate; 1.20 means +20%.
type Index struct{ Factor decimal.Decimal }

// Discount lowers the rate by Percent.
type Discount struct{ Percent decimal.Decimal }

// Surcharge raises the rate by Percent.
type Surcharge struct{ Percent decimal.Decimal }

func (a Index) Type() ModifierType         { return TypeIndex }
func (a Index) Value() decimal.Decimal     { return a.Factor }
func (a Index) Fraction() decimal.Decimal  { return a.Factor.Sub(One) }
func (Index) sealed()                      {}

func (a Discount) Type() ModifierType        { return TypeDiscount }
func (a Discount) Value() decimal.Decimal    { return a.Percent }
func (a Discount) Fraction() decimal.Decimal { return Fraction(a.Percent).Neg() }
func (Discount) sealed()                     {}

func (a Surcharge) Type() ModifierType        { return TypeSurcharge }
func (a Surcharge) Value() decimal.Decimal    { return a.Percent }
func (a Surcharge) Fraction() decimal.Decimal { return Fraction(a.Percent) }
func (Surcharge) sealed()                     {}

// NewAdjustment maps a stored type string onto its variant.
func NewAdjustment(t ModifierType, value decimal.Decimal) (Adjustment, error) {
	switch t {
	case TypeIndex:
		return Index{Factor: value}, nil
	case TypeDiscount:
		return Discount{Percent: value}, nil
	case TypeSurcharge:
		return Surcharge{Percent: value}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModifierType, t)
	}
}

// AdjustmentDisplay renders the signed effect, e.g. "+20%" or "-10.00%".
func AdjustmentDisplay(a Adjustment) string {
	switch v := a.(type) {
	case Index:
		pct := v.Factor.Sub(One).Mul(Hundred).Round(0)
		if pct.IsNegative() {
			return pct.String() + "%"
		}
		return "+" + pct.String() + "%"
	case Discount:
		return "-" + Money(v.Percent) + "%"
	case Surcharge:
		return "+" + Money(v.Percent) + "%"
	}
	return ""
}

// ValueDisplay renders the raw configured value, e.g. "×1.20" or "10.00%".
func ValueDisplay(a Adjustment) string {
	if idx, ok := a.(Index); ok {
		return "×" + Money(idx.Factor)
	}
	return Money(a.Value()) + "%"
}

// =============================================================================
// TARGET & SCOPE
// =============================================================================

// Target names what a modifier is attached to.
type Target string

const (
	TargetAny           Target = ""
	TargetSeason        Target = "season"
	TargetRoomType      Target = "room_type"
	TargetChannel       Target = "channel"
	TargetPromo         Target = "promo"
	TargetLengthOfStay  Target = "los"
	TargetBookingWindow Target = "booking_window"
	TargetGuestType     Target = "guest_type"
)

// Valid reports whether t is a known target.
func (t Target) Valid() bool {
	switch t {
	case TargetAny, TargetSeason, TargetRoomType, TargetChannel,
		TargetPromo, TargetLengthOfStay, TargetBookingWindow, TargetGuestType:
		return true
	}
	return false
}

// NeedsCode reports whether the target matches on the modifier's code.
func (t Target) NeedsCode() bool {
	return t == TargetPromo || t == TargetGuestType
}

// Scope narrows where a modifier can apply. Nil or empty fields match anything.
type Scope struct {
	SeasonID   SeasonID
	RoomTypeID RoomTypeID
	ChannelID  ChannelID

	MinNights      *int
	MaxNights      *int
	MinAdvanceDays *int
	MaxAdvanceDays *int

	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// =============================================================================
// MODIFIER
// =============================================================================

// DefaultStackOrder places modifiers without an explicit order last.
const DefaultStackOrder = 100

type Modifier struct {
	ID         ModifierID
	Code       string
	Name       string
	Adjustment Adjustment
	AppliesTo  Target
	StackOrder int // ascending = applied first
	Active     bool
	Scope      Scope
	Rules      []Rule
}

// Matches reports whether the modifier's scope admits ctx. Rules are not
// evaluated here.
func (m Modifier) Matches(ctx BookingContext) bool {
	if !m.Active || m.Adjustment == nil {
		return false
	}
	if !m.withinValidity(ctx) {
		return false
	}
	if m.Scope.SeasonID != "" && m.Scope.SeasonID != ctx.SeasonID {
		return false
	}
	if m.Scope.RoomTypeID != "" && m.Scope.RoomTypeID != ctx.RoomTypeID {
		return false
	}
	if m.Scope.ChannelID != "" && m.Scope.ChannelID != ctx.ChannelID {
		return false
	}

	switch m.AppliesTo {
	case TargetAny, TargetSeason, TargetRoomType, TargetChannel:
		return true
	case TargetLengthOfStay:
		return inRange(ctx.StayNights(), m.Scope.MinNights, m.Scope.MaxNights)
	case TargetBookingWindow:
		days, ok := ctx.AdvanceDays()
		if !ok {
			return false
		}
		return inRange(days, m.Scope.MinAdvanceDays, m.Scope.MaxAdvanceDays)
	case TargetGuestType:
		return ctx.GuestType != "" && m.Code == ctx.GuestType
	case TargetPromo:
		return ctx.HasPromo(m.Code)
	default:
		return false
	}
}

func (m Modifier) withinValidity(ctx BookingContext) bool {
	if ctx.ArrivalDate.IsZero() {
		return true
	}
	arrival := truncateDay(ctx.ArrivalDate)
	if m.Scope.ValidFrom != nil && arrival.Before(truncateDay(*m.Scope.ValidFrom)) {
		return false
	}
	if m.Scope.ValidUntil != nil && arrival.After(truncateDay(*m.Scope.ValidUntil)) {
		return false
	}
	return true
}

func inRange(v int, min, max *int) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}
