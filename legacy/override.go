/*
override.go - Season-specific discounts for channel rate modifiers

PURPOSE:
  A RateModifier carries one base discount. Each (modifier, season) pair has
  an OverrideRecord holding the discount actually used in that season:

    - created on first read with the modifier's base, not customized
    - customized when set to anything other than the base; frozen from then
    - non-customized rows follow the base when it changes
    - reset copies the base back and clears the customized flag

  Decision logic lives on OverrideRecord. Stores only guarantee that each
  read-modify-write on one pair is atomic (UpdateOverride), so concurrent
  edits never lose updates.

USAGE:
  r := legacy.NewResolver(store)
  pct, err := r.DiscountFor(ctx, "genius", "high")
  n, err := r.ChangeBase(ctx, "genius", decimal.NewFromInt(12))

SEE ALSO:
  - legacy/store/memory.go, store/sqlite: Store implementations
*/
package legacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/pricing"
)

var (
	// ErrRateModifierNotFound is returned for an unknown rate modifier.
	ErrRateModifierNotFound = fmt.Errorf("rate modifier: %w", pricing.ErrNotFound)

	// ErrNegativeDiscount rejects discounts below zero.
	ErrNegativeDiscount = errors.New("discount percent cannot be negative")

	// ErrRateModifierConflict is returned when a rate modifier ID is already
	// owned by another property.
	ErrRateModifierConflict = errors.New("rate modifier belongs to another property")

	// ErrChannelMismatch is returned when a quote names a rate modifier of a
	// different channel.
	ErrChannelMismatch = errors.New("rate modifier is not offered on this channel")
)

// =============================================================================
// RATE MODIFIER - Channel-scoped discount
// =============================================================================

// RateModifier is an additional discount offered on one channel of one
// property, e.g. a loyalty or mobile-app rate. IDs are unique across
// properties.
type RateModifier struct {
	ID              pricing.ModifierID
	PropertyID      pricing.PropertyID
	ChannelID       pricing.ChannelID
	Name            string
	Kind            string // standard, member, mobile, promo, ...
	DiscountPercent decimal.Decimal
	Stackable       bool
	Active          bool
	SortOrder       int
}

// CheckOwner fails when existing, the stored row with m's ID, belongs to
// another property. Rows without a property are claimed by the first save.
func (m RateModifier) CheckOwner(existing RateModifier) error {
	if existing.PropertyID == "" || existing.PropertyID == m.PropertyID {
		return nil
	}
	return fmt.Errorf("%w: %q is owned by %q, not %q",
		ErrRateModifierConflict, m.ID, existing.PropertyID, m.PropertyID)
}

// =============================================================================
// OVERRIDE RECORD
// =============================================================================

type OverrideRecord struct {
	ID              string
	ModifierID      pricing.ModifierID
	SeasonID        pricing.SeasonID
	DiscountPercent decimal.Decimal
	IsCustomized    bool
	Notes           string
	UpdatedAt       time.Time
}

// NewOverride builds the row a pair gets on first read.
func NewOverride(id string, m RateModifier, season pricing.SeasonID) OverrideRecord {
	return OverrideRecord{
		ID:              id,
		ModifierID:      m.ID,
		SeasonID:        season,
		DiscountPercent: m.DiscountPercent,
	}
}

// Customized sets value; the row is customized iff value differs from base.
func (r OverrideRecord) Customized(value, base decimal.Decimal) OverrideRecord {
	r.DiscountPercent = value
	r.IsCustomized = !value.Equal(base)
	return r
}

// Synced follows base unless the row is customized.
func (r OverrideRecord) Synced(base decimal.Decimal) (OverrideRecord, bool) {
	if r.IsCustomized || r.DiscountPercent.Equal(base) {
		return r, false
	}
	r.DiscountPercent = base
	return r, true
}

// ResetTo copies base and clears the customized flag.
func (r OverrideRecord) ResetTo(base decimal.Decimal) OverrideRecord {
	r.DiscountPercent = base
	r.IsCustomized = false
	return r
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

// UpdateFunc computes the new row for a pair. exists is false when the pair
// has no row yet; current is then zero. Returning an error aborts the update.
type UpdateFunc func(mod RateModifier, current OverrideRecord, exists bool) (OverrideRecord, error)

// Store persists rate modifiers and their season overrides.
type Store interface {
	SaveRateModifier(ctx context.Context, m RateModifier) error
	GetRateModifier(ctx context.Context, id pricing.ModifierID) (RateModifier, error)
	ListRateModifiers(ctx context.Context) ([]RateModifier, error)

	// UpdateOverride runs fn and stores its result as one atomic
	// read-modify-write on the (modifier, season) pair.
	UpdateOverride(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID, fn UpdateFunc) (OverrideRecord, error)

	// ResyncNonCustomized stores newBase on the modifier and copies it into
	// every non-customized row, atomically. Returns the rows changed.
	ResyncNonCustomized(ctx context.Context, modifier pricing.ModifierID, newBase decimal.Decimal) (int, error)

	// ListOverrides returns the modifier's rows ordered by season.
	ListOverrides(ctx context.Context, modifier pricing.ModifierID) ([]OverrideRecord, error)
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver answers "what discount does this modifier give in this season".
type Resolver struct {
	store Store
}

// NewResolver wraps store. Stores assign IDs to rows created with an empty ID.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// GetOrCreate returns the pair's row, materializing it from the base when
// absent.
func (r *Resolver) GetOrCreate(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID) (OverrideRecord, error) {
	return r.store.UpdateOverride(ctx, modifier, season, func(m RateModifier, cur OverrideRecord, exists bool) (OverrideRecord, error) {
		if exists {
			return cur, nil
		}
		return NewOverride("", m, season), nil
	})
}

// DiscountFor always yields a concrete discount for the pair.
func (r *Resolver) DiscountFor(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID) (decimal.Decimal, error) {
	rec, err := r.GetOrCreate(ctx, modifier, season)
	if err != nil {
		return decimal.Zero, err
	}
	return rec.DiscountPercent, nil
}

// Customize sets a season-specific discount.
func (r *Resolver) Customize(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID, value decimal.Decimal, notes string) (OverrideRecord, error) {
	if value.IsNegative() {
		return OverrideRecord{}, ErrNegativeDiscount
	}
	return r.store.UpdateOverride(ctx, modifier, season, func(m RateModifier, cur OverrideRecord, exists bool) (OverrideRecord, error) {
		if !exists {
			cur = NewOverride("", m, season)
		}
		cur = cur.Customized(value, m.DiscountPercent)
		if notes != "" {
			cur.Notes = notes
		}
		return cur, nil
	})
}

// Reset returns the pair to the modifier's base and unfreezes it.
func (r *Resolver) Reset(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID) (OverrideRecord, error) {
	return r.store.UpdateOverride(ctx, modifier, season, func(m RateModifier, cur OverrideRecord, exists bool) (OverrideRecord, error) {
		if !exists {
			cur = NewOverride("", m, season)
		}
		return cur.ResetTo(m.DiscountPercent), nil
	})
}

// ChangeBase updates a modifier's base discount and resynchronizes every
// non-customized season row. Customized rows are untouched.
func (r *Resolver) ChangeBase(ctx context.Context, modifier pricing.ModifierID, newBase decimal.Decimal) (int, error) {
	if newBase.IsNegative() {
		return 0, ErrNegativeDiscount
	}
	return r.store.ResyncNonCustomized(ctx, modifier, newBase)
}

// EnsureForModifier materializes a row for every season. Returns the number
// of rows created.
func (r *Resolver) EnsureForModifier(ctx context.Context, modifier pricing.ModifierID, seasons []pricing.SeasonID) (int, error) {
	created := 0
	for _, s := range seasons {
		ok, err := r.ensure(ctx, modifier, s)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// EnsureForSeason materializes a row for every active rate modifier.
func (r *Resolver) EnsureForSeason(ctx context.Context, season pricing.SeasonID) (int, error) {
	mods, err := r.store.ListRateModifiers(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, m := range mods {
		if !m.Active {
			continue
		}
		ok, err := r.ensure(ctx, m.ID, season)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (r *Resolver) ensure(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID) (bool, error) {
	created := false
	_, err := r.store.UpdateOverride(ctx, modifier, season, func(m RateModifier, cur OverrideRecord, exists bool) (OverrideRecord, error) {
		if exists {
			return cur, nil
		}
		created = true
		return NewOverride("", m, season), nil
	})
	return created, err
}

// =============================================================================
// LEGACY QUOTE - Step model fed by resolved discounts
// =============================================================================

// QuoteRequest prices one room/season/channel with an optional rate modifier
// whose discount is resolved for the season.
type QuoteRequest struct {
	PropertyID     pricing.PropertyID // checked against the rate modifier when set
	RoomBaseRate   decimal.Decimal
	Season         pricing.Season
	RoomModifier   decimal.NullDecimal // room-type season sensitivity
	MealSupplement decimal.Decimal
	Channel        pricing.Channel
	RateModifierID pricing.ModifierID // optional
	Occupancy      int
	Options        Options
}

// Quote resolves the season discount and runs ComposeWith. The rate modifier
// must belong to the request's property and channel.
func (r *Resolver) Quote(ctx context.Context, req QuoteRequest) (Breakdown, error) {
	discount := decimal.Zero
	if req.RateModifierID != "" {
		mod, err := r.store.GetRateModifier(ctx, req.RateModifierID)
		if err != nil {
			return Breakdown{}, err
		}
		if req.PropertyID != "" && mod.PropertyID != req.PropertyID {
			return Breakdown{}, fmt.Errorf("%w: %q for property %q", ErrRateModifierNotFound, mod.ID, req.PropertyID)
		}
		if req.Channel.ID != "" && mod.ChannelID != req.Channel.ID {
			return Breakdown{}, fmt.Errorf("%w: %q is a %q modifier, quoted on %q",
				ErrChannelMismatch, mod.ID, mod.ChannelID, req.Channel.ID)
		}
		d, err := r.DiscountFor(ctx, req.RateModifierID, req.Season.ID)
		if err != nil {
			return Breakdown{}, err
		}
		discount = d
	}

	_, b, err := ComposeWith(Input{
		RoomBaseRate:        req.RoomBaseRate,
		SeasonIndex:         pricing.EffectiveSeasonIndex(req.Season.Index, req.RoomModifier),
		MealSupplement:      req.MealSupplement,
		ChannelBaseDiscount: req.Channel.BaseDiscountPercent,
		ModifierDiscount:    discount,
		CommissionPercent:   req.Channel.CommissionPercent,
		Occupancy:           req.Occupancy,
	}, req.Options)
	return b, err
}
