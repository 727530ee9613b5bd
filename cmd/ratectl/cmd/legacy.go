// Package cmd - legacy command
package cmd

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
)

type legacyOptions struct {
	room, season, channel, plan string
	rateModifier                string
	discount                    string
	pax                         int
	stay                        string
	ceiling                     string
}

func newLegacyCmd(opts *rootOptions) *cobra.Command {
	l := &legacyOptions{}
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Price one cell with the step-wise legacy model",
		Long: `Run the legacy model: seasonal rate, BAR with meals, optional date
override, channel discount, modifier discount, optional ceiling, commission.

The modifier discount is --discount when given, otherwise the base discount of
--rate-modifier from the catalog. A rate modifier prices on its own channel
when --channel is omitted. Season-specific overrides live in the server's
database and are not consulted here. Without --season the season covering
--stay is used; the room type's season modifier scales its index.

Examples:
  ratectl legacy -c seaside.json --room std --season high --plan bb --channel ota --rate-modifier genius
  ratectl legacy -c seaside.json --room std --season high --stay 2025-12-31 --ceiling 5
  ratectl legacy -c seaside.json --room dlx --stay 2025-07-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacy(cmd.OutOrStdout(), opts, l)
		},
	}

	cmd.Flags().StringVar(&l.room, "room", "", "room type ID (required)")
	cmd.Flags().StringVar(&l.season, "season", "", "season ID (default: the season covering --stay)")
	cmd.Flags().StringVar(&l.channel, "channel", "", "channel ID")
	cmd.Flags().StringVar(&l.plan, "plan", "", "rate plan ID")
	cmd.Flags().StringVar(&l.rateModifier, "rate-modifier", "", "channel rate modifier ID")
	cmd.Flags().StringVar(&l.discount, "discount", "", "modifier discount percent")
	cmd.Flags().IntVar(&l.pax, "pax", pricing.DefaultPax, "occupancy")
	cmd.Flags().StringVar(&l.stay, "stay", "", "stay date for date overrides (YYYY-MM-DD)")
	cmd.Flags().StringVar(&l.ceiling, "ceiling", "", "round the final rate up to this increment")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func runLegacy(out io.Writer, opts *rootOptions, l *legacyOptions) error {
	asJSON, err := opts.jsonOutput()
	if err != nil {
		return err
	}
	b, err := opts.loadBundle()
	if err != nil {
		return err
	}
	cat := b.Catalog

	room, err := cat.RoomType(pricing.RoomTypeID(l.room))
	if err != nil {
		return err
	}
	base, err := cat.Property.BaseRateFor(room)
	if err != nil {
		return err
	}
	stay, err := parseDate("stay", l.stay)
	if err != nil {
		return err
	}
	var season pricing.Season
	switch {
	case l.season != "":
		if season, err = cat.Season(pricing.SeasonID(l.season)); err != nil {
			return err
		}
	case !stay.IsZero():
		var ok bool
		if season, ok = pricing.SeasonFor(cat.Seasons, stay); !ok {
			return fmt.Errorf("no season covers %s", l.stay)
		}
	default:
		return fmt.Errorf("--season or --stay is required")
	}

	in := legacy.Input{
		RoomBaseRate: base,
		SeasonIndex:  pricing.EffectiveSeasonIndex(season.Index, room.SeasonModifier),
		Occupancy:    l.pax,
	}

	channel := pricing.ChannelID(l.channel)
	var rm *legacy.RateModifier
	if l.discount == "" && l.rateModifier != "" {
		m, ok := findRateModifier(b.RateModifiers, pricing.ModifierID(l.rateModifier))
		if !ok {
			return fmt.Errorf("%w: %q", legacy.ErrRateModifierNotFound, l.rateModifier)
		}
		if channel == "" {
			channel = m.ChannelID
		}
		if m.ChannelID != channel {
			return fmt.Errorf("%w: %q is a %q modifier", legacy.ErrChannelMismatch, m.ID, m.ChannelID)
		}
		rm = &m
	}
	if l.plan != "" {
		plan, err := cat.RatePlan(pricing.RatePlanID(l.plan))
		if err != nil {
			return err
		}
		in.MealSupplement = plan.MealSupplement
	}
	if channel != "" {
		ch, err := cat.Channel(channel)
		if err != nil {
			return err
		}
		in.ChannelBaseDiscount = ch.BaseDiscountPercent
		in.CommissionPercent = ch.CommissionPercent
	}

	switch {
	case l.discount != "":
		if in.ModifierDiscount, err = decimal.NewFromString(l.discount); err != nil {
			return fmt.Errorf("--discount %q: %w", l.discount, err)
		}
	case rm != nil:
		in.ModifierDiscount = rm.DiscountPercent
	}

	var o legacy.Options
	if !stay.IsZero() {
		if ov, ok := legacy.ForDate(b.DateOverrides, stay); ok {
			o.DateOverride = &ov
		}
	}
	if l.ceiling != "" {
		if o.CeilingIncrement, err = decimal.NewFromString(l.ceiling); err != nil {
			return fmt.Errorf("--ceiling %q: %w", l.ceiling, err)
		}
	}

	_, bd, err := legacy.ComposeWith(in, o)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, bd)
	}

	cur := cat.Property.CurrencySymbol
	money := func(d decimal.Decimal) string { return cur + pricing.Money(d) }
	fmt.Fprintf(out, "Seasonal rate:      %s\n", money(bd.SeasonalRate))
	fmt.Fprintf(out, "BAR:                %s\n", money(bd.BaseBar))
	if bd.DateOverride != nil {
		fmt.Fprintf(out, "  %s (%s): %s\n", bd.DateOverride.Name, bd.DateOverride.Display(cur), money(bd.BarRate))
	}
	fmt.Fprintf(out, "Channel rate:       %s\n", money(bd.ChannelBaseRate))
	fmt.Fprintf(out, "After modifier:     %s\n", money(bd.PreCeilingRate))
	if bd.CeilingApplied {
		fmt.Fprintf(out, "Ceiling:            %s\n", money(bd.FinalRate))
	}
	fmt.Fprintf(out, "FINAL RATE:         %s\n", money(bd.FinalRate))
	if in.CommissionPercent.IsPositive() {
		fmt.Fprintf(out, "Commission (%s%%): -%s\n", in.CommissionPercent.String(), money(bd.CommissionAmount))
		fmt.Fprintf(out, "NET REVENUE:        %s\n", money(bd.NetRevenue))
	}
	return nil
}

func findRateModifier(mods []legacy.RateModifier, id pricing.ModifierID) (legacy.RateModifier, bool) {
	for _, m := range mods {
		if m.ID == id {
			return m, true
		}
	}
	return legacy.RateModifier{}, false
}
