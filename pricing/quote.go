package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// QUOTE - Resolve, select and compose for one context
// =============================================================================

// Quote is the priced result for one booking context.
type Quote struct {
	Context   BookingContext
	RoomType  RoomType
	Channel   Channel
	Selection Selection
	Breakdown RateBreakdown
}

// Quote prices ctx against the catalog.
//
// The BAR is the room's effective base rate; season pricing enters through
// season-scoped modifiers. The rate plan's meal supplement is charged per
// person when ctx names one, and the channel's commission is applied to the
// final rate when ctx names a channel.
//
// Only configuration errors are returned: unknown IDs and missing reference
// rates.
func (c *Catalog) Quote(ctx BookingContext) (Quote, error) {
	room, err := c.RoomType(ctx.RoomTypeID)
	if err != nil {
		return Quote{}, err
	}
	bar, err := c.Property.BaseRateFor(room)
	if err != nil {
		return Quote{}, err
	}

	meal := decimal.Zero
	if ctx.RatePlanID != "" {
		plan, err := c.RatePlan(ctx.RatePlanID)
		if err != nil {
			return Quote{}, err
		}
		meal = plan.MealSupplement
	}

	var channel Channel
	if ctx.ChannelID != "" {
		if channel, err = c.Channel(ctx.ChannelID); err != nil {
			return Quote{}, err
		}
	}
	if ctx.SeasonID != "" {
		if _, err := c.Season(ctx.SeasonID); err != nil {
			return Quote{}, err
		}
	}

	sel := SelectWithTrace(c.Modifiers, ctx)
	b := NewComposer(c.Property).Compose(ComposeInput{
		BarRate:           bar,
		Modifiers:         sel.Accepted,
		MealPlanAmount:    meal,
		Pax:               ctx.Occupancy(),
		CommissionPercent: channel.CommissionPercent,
	})

	return Quote{
		Context:   ctx,
		RoomType:  room,
		Channel:   channel,
		Selection: sel,
		Breakdown: b,
	}, nil
}
