// Package cmd - quote and validate commands
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/rate-engine/pricing"
)

const dateLayout = "2006-01-02"

// =============================================================================
// VALIDATE
// =============================================================================

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog document for configuration errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.loadBundle()
			if err != nil {
				return err
			}
			cat := b.Catalog
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s): OK\n", cat.Property.Name, cat.Property.ID)
			fmt.Fprintf(out, "  room types:     %d\n", len(cat.RoomTypes))
			fmt.Fprintf(out, "  seasons:        %d\n", len(cat.Seasons))
			fmt.Fprintf(out, "  channels:       %d\n", len(cat.Channels))
			fmt.Fprintf(out, "  rate plans:     %d\n", len(cat.RatePlans))
			fmt.Fprintf(out, "  modifiers:      %d\n", len(cat.Modifiers))
			fmt.Fprintf(out, "  rate modifiers: %d\n", len(b.RateModifiers))
			fmt.Fprintf(out, "  date overrides: %d\n", len(b.DateOverrides))
			return nil
		},
	}
}

// =============================================================================
// QUOTE
// =============================================================================

type quoteOptions struct {
	room, season, channel, plan string
	pax, nights                 int
	booking, arrival            string
	guest                       string
	promos                      []string
}

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	q := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price one booking context with modifier stacking",
		Long: `Resolve the room's BAR, select the modifiers that apply to the context,
stack them and add meals, service charge, tax and commission.

Examples:
  ratectl quote -c seaside.yaml --room dlx --season high --channel ota --plan bb
  ratectl quote -c seaside.yaml --room std --arrival 2025-07-10 --booking 2025-04-01 --promo SUMMER`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd.OutOrStdout(), opts, q)
		},
	}

	cmd.Flags().StringVar(&q.room, "room", "", "room type ID (required)")
	cmd.Flags().StringVar(&q.season, "season", "", "season ID")
	cmd.Flags().StringVar(&q.channel, "channel", "", "channel ID")
	cmd.Flags().StringVar(&q.plan, "plan", "", "rate plan ID")
	cmd.Flags().IntVar(&q.pax, "pax", pricing.DefaultPax, "occupancy")
	cmd.Flags().IntVar(&q.nights, "nights", 1, "length of stay")
	cmd.Flags().StringVar(&q.booking, "booking", "", "booking date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.arrival, "arrival", "", "arrival date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.guest, "guest", "", "guest type code")
	cmd.Flags().StringSliceVar(&q.promos, "promo", nil, "promo codes (repeatable)")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func runQuote(out io.Writer, opts *rootOptions, q *quoteOptions) error {
	asJSON, err := opts.jsonOutput()
	if err != nil {
		return err
	}
	b, err := opts.loadBundle()
	if err != nil {
		return err
	}

	booking, err := parseDate("booking", q.booking)
	if err != nil {
		return err
	}
	arrival, err := parseDate("arrival", q.arrival)
	if err != nil {
		return err
	}

	ctx := pricing.BookingContext{
		RoomTypeID:  pricing.RoomTypeID(q.room),
		SeasonID:    pricing.SeasonID(q.season),
		ChannelID:   pricing.ChannelID(q.channel),
		RatePlanID:  pricing.RatePlanID(q.plan),
		Pax:         q.pax,
		Nights:      q.nights,
		BookingDate: booking,
		ArrivalDate: arrival,
		GuestType:   q.guest,
	}.WithPromos(q.promos...)

	quote, err := b.Catalog.Quote(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, quote.Breakdown)
	}

	fmt.Fprint(out, quote.Breakdown.Format(b.Catalog.Property.CurrencySymbol))
	if len(quote.Selection.Rejected) > 0 {
		fmt.Fprintln(out, "\nNot applied:")
		for _, r := range quote.Selection.Rejected {
			fmt.Fprintf(out, "  %-20s %s\n", r.Modifier.Name, r.Reason)
		}
	}
	return nil
}

func parseDate(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s %q is not YYYY-MM-DD", flag, s)
	}
	return t, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
