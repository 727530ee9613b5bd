package pricing

import (
	"time"
)

// =============================================================================
// BOOKING CONTEXT - One concrete pricing request
// =============================================================================

// BookingContext describes a single pricing request. It is a value: pass it by
// value and derive variants with the With* helpers, which never mutate the
// receiver.
type BookingContext struct {
	SeasonID   SeasonID
	RoomTypeID RoomTypeID
	ChannelID  ChannelID
	RatePlanID RatePlanID

	Pax    int
	Nights int

	// Zero dates mean "unknown".
	BookingDate time.Time
	ArrivalDate time.Time

	GuestType string
	Promos    []string
}

// DefaultPax is the occupancy used when a context does not state one.
const DefaultPax = 2

// Occupancy returns Pax, defaulting to DefaultPax when unset.
func (c BookingContext) Occupancy() int {
	if c.Pax <= 0 {
		return DefaultPax
	}
	return c.Pax
}

// StayNights returns Nights, defaulting to one night when unset.
func (c BookingContext) StayNights() int {
	if c.Nights <= 0 {
		return 1
	}
	return c.Nights
}

// AdvanceDays returns arrival minus booking in whole days. ok is false when
// either date is unknown.
func (c BookingContext) AdvanceDays() (days int, ok bool) {
	if c.BookingDate.IsZero() || c.ArrivalDate.IsZero() {
		return 0, false
	}
	d := truncateDay(c.ArrivalDate).Sub(truncateDay(c.BookingDate))
	return int(d.Hours() / 24), true
}

// HasPromo reports whether code is among the requested promo codes.
func (c BookingContext) HasPromo(code string) bool {
	for _, p := range c.Promos {
		if p == code {
			return true
		}
	}
	return false
}

// WithPromos returns a copy of c carrying its own copy of promos.
func (c BookingContext) WithPromos(promos ...string) BookingContext {
	c.Promos = append([]string(nil), promos...)
	return c
}
