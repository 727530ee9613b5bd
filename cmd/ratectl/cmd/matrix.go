// Package cmd - matrix command
package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/rate-engine/pricing"
)

type matrixOptions struct {
	room, plan string
	pax        int
	workers    int
}

func newMatrixCmd(opts *rootOptions) *cobra.Command {
	m := &matrixOptions{}
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Price every room × season × channel combination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd.Context(), cmd.OutOrStdout(), opts, m)
		},
	}

	cmd.Flags().StringVar(&m.room, "room", "", "limit to one room type")
	cmd.Flags().StringVar(&m.plan, "plan", "", "rate plan ID")
	cmd.Flags().IntVar(&m.pax, "pax", pricing.DefaultPax, "occupancy")
	cmd.Flags().IntVar(&m.workers, "workers", 0, "parallel cells (0 = GOMAXPROCS)")
	return cmd
}

func runMatrix(ctx context.Context, out io.Writer, opts *rootOptions, m *matrixOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	asJSON, err := opts.jsonOutput()
	if err != nil {
		return err
	}
	b, err := opts.loadBundle()
	if err != nil {
		return err
	}

	start := time.Now()
	mx, err := pricing.MatrixBuilder{Workers: m.workers}.Build(ctx, b.Catalog, pricing.MatrixRequest{
		RoomTypeID: pricing.RoomTypeID(m.room),
		RatePlanID: pricing.RatePlanID(m.plan),
		Pax:        m.pax,
	})
	if err != nil {
		return err
	}
	opts.log.Debug("matrix built", zap.Int("cells", len(mx.Cells)), zap.Duration("elapsed", time.Since(start)))

	if asJSON {
		type cell struct {
			RoomType   pricing.RoomTypeID `json:"room_type"`
			Season     pricing.SeasonID   `json:"season"`
			Channel    pricing.ChannelID  `json:"channel"`
			BarRate    string             `json:"bar_rate"`
			FinalRate  string             `json:"final_rate"`
			NetRevenue string             `json:"net_revenue"`
			Warnings   int                `json:"warnings"`
		}
		cells := make([]cell, 0, len(mx.Cells))
		for _, c := range mx.Cells {
			bd := c.Quote.Breakdown
			cells = append(cells, cell{
				RoomType: c.RoomTypeID, Season: c.SeasonID, Channel: c.ChannelID,
				BarRate: pricing.Money(bd.BarRate), FinalRate: pricing.Money(bd.FinalRate),
				NetRevenue: pricing.Money(bd.NetRevenue), Warnings: len(bd.Warnings),
			})
		}
		return writeJSON(out, cells)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tSEASON\tCHANNEL\tBAR\tFINAL\tNET\t")
	for _, c := range mx.Cells {
		bd := c.Quote.Breakdown
		flag := ""
		if bd.HasWarnings() {
			flag = "⚠"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.RoomTypeID, c.SeasonID, c.ChannelID,
			pricing.Money(bd.BarRate), pricing.Money(bd.FinalRate), pricing.Money(bd.NetRevenue), flag)
	}
	return tw.Flush()
}
