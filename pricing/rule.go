/*
rule.go - Declarative gates on modifier applicability

PURPOSE:
  A Rule is a pass/fail condition attached to a modifier. Check is a pure
  function of the booking context and the modifiers already accepted earlier
  in the same selection walk. Nothing is mutated.

RULE KINDS:
  channel_only / room_type_only / season_only
      pass when the context's value is in the set; an empty set means no
      restriction; an unset context value cannot be evaluated and fails
  exclude_channel / exclude_room_type / exclude_season
      fail when the context's value is in the set
  not_with
      fail when any listed modifier was already accepted
  requires
      fail unless every listed modifier was already accepted

  Unknown kinds fail closed. Inactive rules always pass.
*/
package pricing

import (
	"fmt"
	"strings"
)

type RuleKind string

const (
	RuleChannelOnly     RuleKind = "channel_only"
	RuleExcludeChannel  RuleKind = "exclude_channel"
	RuleRoomTypeOnly    RuleKind = "room_type_only"
	RuleExcludeRoomType RuleKind = "exclude_room_type"
	RuleSeasonOnly      RuleKind = "season_only"
	RuleExcludeSeason   RuleKind = "exclude_season"
	RuleNotWith         RuleKind = "not_with"
	RuleRequires        RuleKind = "requires"
)

// Rule gates the modifier it is attached to.
type Rule struct {
	ID        string
	Kind      RuleKind
	Channels  []ChannelID
	RoomTypes []RoomTypeID
	Seasons   []SeasonID
	Modifiers []ModifierID
	Active    bool
	// Message replaces the generated rejection reason when set.
	Message string
}

// RuleResult is the outcome of one rule evaluation.
type RuleResult struct {
	Passed bool
	Reason string
}

var passed = RuleResult{Passed: true}

// Check evaluates the rule. accepted holds the modifiers accepted so far, in
// walk order.
func (r Rule) Check(ctx BookingContext, accepted []Modifier) RuleResult {
	if !r.Active {
		return passed
	}

	switch r.Kind {
	case RuleChannelOnly:
		return r.only(len(r.Channels) == 0, ctx.ChannelID != "", contains(r.Channels, ctx.ChannelID), joinIDs(r.Channels))
	case RuleRoomTypeOnly:
		return r.only(len(r.RoomTypes) == 0, ctx.RoomTypeID != "", contains(r.RoomTypes, ctx.RoomTypeID), joinIDs(r.RoomTypes))
	case RuleSeasonOnly:
		return r.only(len(r.Seasons) == 0, ctx.SeasonID != "", contains(r.Seasons, ctx.SeasonID), joinIDs(r.Seasons))

	case RuleExcludeChannel:
		if ctx.ChannelID != "" && contains(r.Channels, ctx.ChannelID) {
			return r.fail("Not available for " + string(ctx.ChannelID))
		}
		return passed
	case RuleExcludeRoomType:
		if ctx.RoomTypeID != "" && contains(r.RoomTypes, ctx.RoomTypeID) {
			return r.fail("Not available for " + string(ctx.RoomTypeID))
		}
		return passed
	case RuleExcludeSeason:
		if ctx.SeasonID != "" && contains(r.Seasons, ctx.SeasonID) {
			return r.fail("Not available in " + string(ctx.SeasonID))
		}
		return passed

	case RuleNotWith:
		var blocked []string
		for _, m := range accepted {
			if contains(r.Modifiers, m.ID) {
				blocked = append(blocked, displayName(m))
			}
		}
		if len(blocked) > 0 {
			return r.fail("Cannot combine with: " + strings.Join(blocked, ", "))
		}
		return passed

	case RuleRequires:
		var missing []string
		for _, id := range r.Modifiers {
			if !acceptedHas(accepted, id) {
				missing = append(missing, string(id))
			}
		}
		if len(missing) > 0 {
			return r.fail("Requires: " + strings.Join(missing, ", "))
		}
		return passed

	default:
		return r.fail(fmt.Sprintf("unknown rule kind %q", r.Kind))
	}
}

func (r Rule) only(unrestricted, known, member bool, allowed string) RuleResult {
	if unrestricted || (known && member) {
		return passed
	}
	// An unset context value cannot satisfy a whitelist.
	return r.fail("Only available for: " + allowed)
}

func (r Rule) fail(reason string) RuleResult {
	if r.Message != "" {
		reason = r.Message
	}
	return RuleResult{Reason: reason}
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func joinIDs[T ~string](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

func acceptedHas(accepted []Modifier, id ModifierID) bool {
	for _, m := range accepted {
		if m.ID == id {
			return true
		}
	}
	return false
}

func displayName(m Modifier) string {
	if m.Name != "" {
		return m.Name
	}
	return string(m.ID)
}
