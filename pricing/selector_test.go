package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/pricing"
)

// =============================================================================
// SCOPE MATCHING
// =============================================================================

func TestModifier_Matches_MembershipScope(t *testing.T) {
	m := discount("ota-only", "10", 1)
	m.AppliesTo = pricing.TargetChannel
	m.Scope.ChannelID = "ota"

	assert.True(t, m.Matches(pricing.BookingContext{ChannelID: "ota"}))
	assert.False(t, m.Matches(pricing.BookingContext{ChannelID: "direct"}))
	assert.False(t, m.Matches(pricing.BookingContext{}))

	// Unset scope matches any context.
	everyone := discount("everyone", "5", 1)
	assert.True(t, everyone.Matches(pricing.BookingContext{ChannelID: "direct", SeasonID: "low"}))

	inactive := everyone
	inactive.Active = false
	assert.False(t, inactive.Matches(pricing.BookingContext{}))
}

func TestModifier_Matches_Targets(t *testing.T) {
	los := discount("long-stay", "8", 1)
	los.AppliesTo = pricing.TargetLengthOfStay
	los.Scope.MinNights = intp(7)

	assert.False(t, los.Matches(pricing.BookingContext{Nights: 3}))
	assert.True(t, los.Matches(pricing.BookingContext{Nights: 7}))

	early := discount("early-bird", "12", 1)
	early.AppliesTo = pricing.TargetBookingWindow
	early.Scope.MinAdvanceDays = intp(60)

	booked := day(2025, time.January, 1)
	assert.True(t, early.Matches(pricing.BookingContext{BookingDate: booked, ArrivalDate: booked.AddDate(0, 0, 90)}))
	assert.False(t, early.Matches(pricing.BookingContext{BookingDate: booked, ArrivalDate: booked.AddDate(0, 0, 30)}))
	assert.False(t, early.Matches(pricing.BookingContext{ArrivalDate: booked}), "booking window needs both dates")

	member := discount("member", "5", 1)
	member.Code = "MEMBER"
	member.AppliesTo = pricing.TargetGuestType
	assert.True(t, member.Matches(pricing.BookingContext{GuestType: "MEMBER"}))
	assert.False(t, member.Matches(pricing.BookingContext{}))

	promo := discount("summer-promo", "15", 1)
	promo.Code = "SUMMER25"
	promo.AppliesTo = pricing.TargetPromo
	assert.True(t, promo.Matches(pricing.BookingContext{}.WithPromos("X", "SUMMER25")))
	assert.False(t, promo.Matches(pricing.BookingContext{}))
}

func TestModifier_Matches_ValidityWindow(t *testing.T) {
	from, until := day(2025, time.June, 1), day(2025, time.June, 30)
	m := discount("june", "10", 1)
	m.Scope.ValidFrom = &from
	m.Scope.ValidUntil = &until

	assert.True(t, m.Matches(pricing.BookingContext{ArrivalDate: day(2025, time.June, 30)}))
	assert.False(t, m.Matches(pricing.BookingContext{ArrivalDate: day(2025, time.July, 1)}))
	assert.True(t, m.Matches(pricing.BookingContext{}), "no arrival date skips the window")
}

// =============================================================================
// RULES
// =============================================================================

func TestRule_Check(t *testing.T) {
	earlier := []pricing.Modifier{discount("member", "5", 1)}

	tests := []struct {
		name   string
		rule   pricing.Rule
		ctx    pricing.BookingContext
		passes bool
	}{
		{"channel_only member", pricing.Rule{Kind: pricing.RuleChannelOnly, Channels: []pricing.ChannelID{"direct"}, Active: true}, pricing.BookingContext{ChannelID: "direct"}, true},
		{"channel_only outsider", pricing.Rule{Kind: pricing.RuleChannelOnly, Channels: []pricing.ChannelID{"direct"}, Active: true}, pricing.BookingContext{ChannelID: "ota"}, false},
		{"channel_only unset context fails closed", pricing.Rule{Kind: pricing.RuleChannelOnly, Channels: []pricing.ChannelID{"direct"}, Active: true}, pricing.BookingContext{}, false},
		{"channel_only empty set", pricing.Rule{Kind: pricing.RuleChannelOnly, Active: true}, pricing.BookingContext{ChannelID: "ota"}, true},
		{"exclude_channel hit", pricing.Rule{Kind: pricing.RuleExcludeChannel, Channels: []pricing.ChannelID{"ota"}, Active: true}, pricing.BookingContext{ChannelID: "ota"}, false},
		{"exclude_channel unset context", pricing.Rule{Kind: pricing.RuleExcludeChannel, Channels: []pricing.ChannelID{"ota"}, Active: true}, pricing.BookingContext{}, true},
		{"room_type_only", pricing.Rule{Kind: pricing.RuleRoomTypeOnly, RoomTypes: []pricing.RoomTypeID{"suite"}, Active: true}, pricing.BookingContext{RoomTypeID: "standard"}, false},
		{"exclude_room_type", pricing.Rule{Kind: pricing.RuleExcludeRoomType, RoomTypes: []pricing.RoomTypeID{"suite"}, Active: true}, pricing.BookingContext{RoomTypeID: "standard"}, true},
		{"season_only", pricing.Rule{Kind: pricing.RuleSeasonOnly, Seasons: []pricing.SeasonID{"low"}, Active: true}, pricing.BookingContext{SeasonID: "low"}, true},
		{"exclude_season", pricing.Rule{Kind: pricing.RuleExcludeSeason, Seasons: []pricing.SeasonID{"high"}, Active: true}, pricing.BookingContext{SeasonID: "high"}, false},
		{"not_with accepted", pricing.Rule{Kind: pricing.RuleNotWith, Modifiers: []pricing.ModifierID{"member"}, Active: true}, pricing.BookingContext{}, false},
		{"not_with other", pricing.Rule{Kind: pricing.RuleNotWith, Modifiers: []pricing.ModifierID{"promo"}, Active: true}, pricing.BookingContext{}, true},
		{"requires present", pricing.Rule{Kind: pricing.RuleRequires, Modifiers: []pricing.ModifierID{"member"}, Active: true}, pricing.BookingContext{}, true},
		{"requires missing", pricing.Rule{Kind: pricing.RuleRequires, Modifiers: []pricing.ModifierID{"member", "promo"}, Active: true}, pricing.BookingContext{}, false},
		{"unknown kind fails closed", pricing.Rule{Kind: "weekday_only", Active: true}, pricing.BookingContext{}, false},
		{"inactive always passes", pricing.Rule{Kind: pricing.RuleChannelOnly, Channels: []pricing.ChannelID{"direct"}}, pricing.BookingContext{ChannelID: "ota"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.rule.Check(tt.ctx, earlier)
			assert.Equal(t, tt.passes, res.Passed, res.Reason)
			if !tt.passes {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestRule_Check_Reasons(t *testing.T) {
	accepted := []pricing.Modifier{{ID: "member", Name: "Member Rate"}}

	res := pricing.Rule{Kind: pricing.RuleNotWith, Modifiers: []pricing.ModifierID{"member"}, Active: true}.Check(pricing.BookingContext{}, accepted)
	assert.Equal(t, "Cannot combine with: Member Rate", res.Reason)

	res = pricing.Rule{Kind: pricing.RuleRequires, Modifiers: []pricing.ModifierID{"promo"}, Active: true}.Check(pricing.BookingContext{}, accepted)
	assert.Equal(t, "Requires: promo", res.Reason)

	res = pricing.Rule{Kind: pricing.RuleChannelOnly, Channels: []pricing.ChannelID{"direct", "web"}, Active: true}.Check(pricing.BookingContext{ChannelID: "ota"}, nil)
	assert.Equal(t, "Only available for: direct, web", res.Reason)

	res = pricing.Rule{Kind: pricing.RuleExcludeSeason, Seasons: []pricing.SeasonID{"high"}, Active: true, Message: "Blackout"}.Check(pricing.BookingContext{SeasonID: "high"}, nil)
	assert.Equal(t, "Blackout", res.Reason)
}

// =============================================================================
// SELECTION
// =============================================================================

func TestSelect_OrdersByStackOrder_StableOnTies(t *testing.T) {
	catalog := []pricing.Modifier{
		surcharge("c", "5", 2),
		discount("a", "10", 1),
		discount("b", "3", 2),
		discount("z", "1", 0),
	}

	got := pricing.Select(catalog, pricing.BookingContext{})

	assert.Equal(t, []pricing.ModifierID{"z", "a", "c", "b"}, ids(got))
}

func TestSelect_Idempotent(t *testing.T) {
	cat := hotelCatalog()
	ctx := pricing.BookingContext{RoomTypeID: "deluxe", SeasonID: "high", ChannelID: "ota"}

	first := pricing.Select(cat.Modifiers, ctx)
	second := pricing.Select(cat.Modifiers, ctx)

	assert.Equal(t, first, second)
	assert.Equal(t, []pricing.ModifierID{"high-season", "ota-discount"}, ids(first))
}

func TestSelect_RulesSeeOnlyEarlierAcceptances(t *testing.T) {
	// GIVEN: "promo" cannot combine with "member"
	// WHEN: stack order puts member first, then the reverse
	// THEN: whichever comes first wins; the later one is rejected

	member := discount("member", "5", 1)
	promo := discount("promo", "15", 2)
	promo.Rules = []pricing.Rule{{ID: "r1", Kind: pricing.RuleNotWith, Modifiers: []pricing.ModifierID{"member"}, Active: true}}

	sel := pricing.SelectWithTrace([]pricing.Modifier{promo, member}, pricing.BookingContext{})
	assert.Equal(t, []pricing.ModifierID{"member"}, ids(sel.Accepted))
	require.Len(t, sel.Rejected, 1)
	assert.Equal(t, pricing.ModifierID("promo"), sel.Rejected[0].Modifier.ID)
	assert.Equal(t, "r1", sel.Rejected[0].RuleID)

	// Reorder: promo is now evaluated before member exists in the accepted list.
	promo.StackOrder = 0
	sel = pricing.SelectWithTrace([]pricing.Modifier{promo, member}, pricing.BookingContext{})
	assert.Equal(t, []pricing.ModifierID{"promo", "member"}, ids(sel.Accepted))
	assert.Empty(t, sel.Rejected)
}

func TestSelect_RequiresEarlierModifier(t *testing.T) {
	base := discount("member", "5", 1)
	addon := discount("member-plus", "3", 2)
	addon.Rules = []pricing.Rule{{Kind: pricing.RuleRequires, Modifiers: []pricing.ModifierID{"member"}, Active: true}}

	assert.Equal(t, []pricing.ModifierID{"member", "member-plus"}, ids(pricing.Select([]pricing.Modifier{addon, base}, pricing.BookingContext{})))

	base.Active = false
	assert.Empty(t, pricing.Select([]pricing.Modifier{addon, base}, pricing.BookingContext{}))
}

func TestSelectWithTrace_RecordsScopeMismatch(t *testing.T) {
	cat := hotelCatalog()

	sel := pricing.SelectWithTrace(cat.Modifiers, pricing.BookingContext{SeasonID: "low", ChannelID: "direct"})

	assert.Empty(t, sel.Accepted)
	require.Len(t, sel.Rejected, 2)
	for _, r := range sel.Rejected {
		assert.Equal(t, pricing.ReasonOutOfScope, r.Reason)
	}
}

func TestSelect_FailingRuleSkipsWithoutAborting(t *testing.T) {
	blocked := discount("blocked", "10", 1)
	blocked.Rules = []pricing.Rule{{Kind: pricing.RuleSeasonOnly, Seasons: []pricing.SeasonID{"high"}, Active: true}}
	after := surcharge("after", "5", 2)

	got := pricing.Select([]pricing.Modifier{blocked, after}, pricing.BookingContext{SeasonID: "low"})

	assert.Equal(t, []pricing.ModifierID{"after"}, ids(got))
}
