/*
matrix.go - Room × season × channel rate matrix

PURPOSE:
  Prices every combination of room type, season and channel for one rate
  plan. Each cell is an independent Quote, so cells are computed in parallel
  over a bounded errgroup. Output order is fixed regardless of scheduling:

    rooms by SortOrder, then seasons by StartDate, then channels by SortOrder

  A configuration error in any cell aborts the whole matrix; no partial
  matrix is returned.
*/
package pricing

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// MatrixRequest narrows the matrix. Empty fields mean "all" / "none".
type MatrixRequest struct {
	RoomTypeID RoomTypeID
	RatePlanID RatePlanID
	Pax        int
}

// MatrixCell is one priced combination.
type MatrixCell struct {
	RoomTypeID RoomTypeID
	SeasonID   SeasonID
	ChannelID  ChannelID
	Quote      Quote
}

// Matrix holds the axes in output order and the cells in row-major order.
type Matrix struct {
	PropertyID PropertyID
	RatePlan   *RatePlan
	RoomTypes  []RoomType
	Seasons    []Season
	Channels   []Channel
	Cells      []MatrixCell
}

// Cell returns the cell for one combination.
func (m *Matrix) Cell(room RoomTypeID, season SeasonID, channel ChannelID) (MatrixCell, bool) {
	for _, c := range m.Cells {
		if c.RoomTypeID == room && c.SeasonID == season && c.ChannelID == channel {
			return c, true
		}
	}
	return MatrixCell{}, false
}

// MatrixBuilder computes matrices. Workers <= 0 uses GOMAXPROCS.
type MatrixBuilder struct {
	Workers int
}

// Build prices every cell for req against cat.
func (b MatrixBuilder) Build(ctx context.Context, cat *Catalog, req MatrixRequest) (*Matrix, error) {
	m := &Matrix{PropertyID: cat.Property.ID}

	if req.RatePlanID != "" {
		plan, err := cat.RatePlan(req.RatePlanID)
		if err != nil {
			return nil, err
		}
		m.RatePlan = &plan
	}

	if req.RoomTypeID != "" {
		room, err := cat.RoomType(req.RoomTypeID)
		if err != nil {
			return nil, err
		}
		m.RoomTypes = []RoomType{room}
	} else {
		m.RoomTypes = append([]RoomType(nil), cat.RoomTypes...)
		sort.SliceStable(m.RoomTypes, func(i, j int) bool { return m.RoomTypes[i].SortOrder < m.RoomTypes[j].SortOrder })
	}

	m.Seasons = append([]Season(nil), cat.Seasons...)
	sort.SliceStable(m.Seasons, func(i, j int) bool { return m.Seasons[i].StartDate.Before(m.Seasons[j].StartDate) })

	m.Channels = append([]Channel(nil), cat.Channels...)
	sort.SliceStable(m.Channels, func(i, j int) bool { return m.Channels[i].SortOrder < m.Channels[j].SortOrder })

	m.Cells = make([]MatrixCell, len(m.RoomTypes)*len(m.Seasons)*len(m.Channels))

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	i := 0
	for _, room := range m.RoomTypes {
		for _, season := range m.Seasons {
			for _, channel := range m.Channels {
				idx := i
				bctx := BookingContext{
					RoomTypeID: room.ID,
					SeasonID:   season.ID,
					ChannelID:  channel.ID,
					RatePlanID: req.RatePlanID,
					Pax:        req.Pax,
				}
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					q, err := cat.Quote(bctx)
					if err != nil {
						return err
					}
					// Each goroutine owns exactly one slot.
					m.Cells[idx] = MatrixCell{RoomTypeID: room.ID, SeasonID: season.ID, ChannelID: channel.ID, Quote: q}
					return nil
				})
				i++
			}
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}
