package pricing

import (
	"context"
	"fmt"
)

// =============================================================================
// CATALOG - Immutable configuration snapshot
// =============================================================================

// Catalog is everything the engine needs for one property, already loaded.
// Treat it as read-only once handed to the engine; concurrent readers share
// it without locking.
type Catalog struct {
	Property  Property
	RoomTypes []RoomType
	Seasons   []Season
	Channels  []Channel
	RatePlans []RatePlan
	Modifiers []Modifier
}

// CatalogProvider supplies validated catalog snapshots.
type CatalogProvider interface {
	Catalog(ctx context.Context, id PropertyID) (*Catalog, error)
}

// Validate fails on the first configuration error: duplicate IDs, invalid
// seasons, unknown pricing methods or targets, missing reference rates, and
// modifiers or rules that reference entities not in the catalog.
func (c *Catalog) Validate() error {
	rooms := make(map[RoomTypeID]bool, len(c.RoomTypes))
	for _, r := range c.RoomTypes {
		if rooms[r.ID] {
			return configErr("room_type", string(r.ID), fmt.Errorf("%w: duplicate id", ErrInvalidCatalog))
		}
		rooms[r.ID] = true
		if _, err := c.Property.BaseRateFor(r); err != nil {
			return err
		}
		if r.SeasonModifier.Valid && !r.SeasonModifier.Decimal.IsPositive() {
			return configErr("room_type", string(r.ID), fmt.Errorf("%w: season modifier must be positive", ErrInvalidCatalog))
		}
	}

	seasons := make(map[SeasonID]bool, len(c.Seasons))
	for _, s := range c.Seasons {
		if seasons[s.ID] {
			return configErr("season", string(s.ID), fmt.Errorf("%w: duplicate id", ErrInvalidCatalog))
		}
		seasons[s.ID] = true
		if err := s.Validate(); err != nil {
			return err
		}
	}

	channels := make(map[ChannelID]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if channels[ch.ID] {
			return configErr("channel", string(ch.ID), fmt.Errorf("%w: duplicate id", ErrInvalidCatalog))
		}
		channels[ch.ID] = true
	}

	plans := make(map[RatePlanID]bool, len(c.RatePlans))
	for _, p := range c.RatePlans {
		if plans[p.ID] {
			return configErr("rate_plan", string(p.ID), fmt.Errorf("%w: duplicate id", ErrInvalidCatalog))
		}
		plans[p.ID] = true
	}

	mods := make(map[ModifierID]bool, len(c.Modifiers))
	for _, m := range c.Modifiers {
		if mods[m.ID] {
			return configErr("modifier", string(m.ID), fmt.Errorf("%w: duplicate id", ErrInvalidCatalog))
		}
		mods[m.ID] = true
	}

	for _, m := range c.Modifiers {
		id := string(m.ID)
		if m.Adjustment == nil {
			return configErr("modifier", id, fmt.Errorf("%w: no adjustment", ErrInvalidCatalog))
		}
		if !m.AppliesTo.Valid() {
			return configErr("modifier", id, fmt.Errorf("%w: unknown applies_to %q", ErrInvalidCatalog, m.AppliesTo))
		}
		if m.AppliesTo.NeedsCode() && m.Code == "" {
			return configErr("modifier", id, fmt.Errorf("%w: %s modifier needs a code", ErrInvalidCatalog, m.AppliesTo))
		}
		if m.Scope.SeasonID != "" && !seasons[m.Scope.SeasonID] {
			return configErr("modifier", id, unknown("season", string(m.Scope.SeasonID)))
		}
		if m.Scope.RoomTypeID != "" && !rooms[m.Scope.RoomTypeID] {
			return configErr("modifier", id, unknown("room_type", string(m.Scope.RoomTypeID)))
		}
		if m.Scope.ChannelID != "" && !channels[m.Scope.ChannelID] {
			return configErr("modifier", id, unknown("channel", string(m.Scope.ChannelID)))
		}
		for _, r := range m.Rules {
			if err := validateRule(r, rooms, seasons, channels, mods); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRule(r Rule, rooms map[RoomTypeID]bool, seasons map[SeasonID]bool, channels map[ChannelID]bool, mods map[ModifierID]bool) error {
	switch r.Kind {
	case RuleChannelOnly, RuleExcludeChannel, RuleRoomTypeOnly, RuleExcludeRoomType,
		RuleSeasonOnly, RuleExcludeSeason, RuleNotWith, RuleRequires:
	default:
		return configErr("rule", r.ID, fmt.Errorf("%w: unknown kind %q", ErrInvalidCatalog, r.Kind))
	}
	for _, id := range r.Channels {
		if !channels[id] {
			return configErr("rule", r.ID, unknown("channel", string(id)))
		}
	}
	for _, id := range r.RoomTypes {
		if !rooms[id] {
			return configErr("rule", r.ID, unknown("room_type", string(id)))
		}
	}
	for _, id := range r.Seasons {
		if !seasons[id] {
			return configErr("rule", r.ID, unknown("season", string(id)))
		}
	}
	for _, id := range r.Modifiers {
		if !mods[id] {
			return configErr("rule", r.ID, unknown("modifier", string(id)))
		}
	}
	return nil
}

func unknown(entity, id string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownEntity, entity, id)
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (c *Catalog) RoomType(id RoomTypeID) (RoomType, error) {
	for _, r := range c.RoomTypes {
		if r.ID == id {
			return r, nil
		}
	}
	return RoomType{}, fmt.Errorf("room type %q: %w", id, ErrNotFound)
}

func (c *Catalog) Season(id SeasonID) (Season, error) {
	for _, s := range c.Seasons {
		if s.ID == id {
			return s, nil
		}
	}
	return Season{}, fmt.Errorf("season %q: %w", id, ErrNotFound)
}

func (c *Catalog) Channel(id ChannelID) (Channel, error) {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return ch, nil
		}
	}
	return Channel{}, fmt.Errorf("channel %q: %w", id, ErrNotFound)
}

func (c *Catalog) RatePlan(id RatePlanID) (RatePlan, error) {
	for _, p := range c.RatePlans {
		if p.ID == id {
			return p, nil
		}
	}
	return RatePlan{}, fmt.Errorf("rate plan %q: %w", id, ErrNotFound)
}

func (c *Catalog) Modifier(id ModifierID) (Modifier, error) {
	for _, m := range c.Modifiers {
		if m.ID == id {
			return m, nil
		}
	}
	return Modifier{}, fmt.Errorf("modifier %q: %w", id, ErrNotFound)
}
