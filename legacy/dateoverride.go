package legacy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/pricing"
)

// =============================================================================
// DATE RATE OVERRIDES - Named BAR adjustments for specific dates
// =============================================================================

var ErrInvalidOverride = errors.New("invalid date rate override")

type OverrideKind string

const (
	OverrideAmount     OverrideKind = "amount"
	OverridePercentage OverrideKind = "percentage"
)

const (
	MinPriority     = 1
	MaxPriority     = 100
	DefaultPriority = 50
)

// Period is an inclusive date range. Start == End is a single day.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(day time.Time) bool {
	d := dateOnly(day)
	return !d.Before(dateOnly(p.Start)) && !d.After(dateOnly(p.End))
}

// Days is the number of dates in the period.
func (p Period) Days() int {
	return int(dateOnly(p.End).Sub(dateOnly(p.Start)).Hours()/24) + 1
}

// DateRateOverride adjusts the BAR on the dates its periods cover. When
// several apply, the highest Priority wins.
type DateRateOverride struct {
	ID         string
	Name       string
	Kind       OverrideKind
	Adjustment decimal.Decimal // signed: amount in currency or percent
	Priority   int
	Active     bool
	Periods    []Period
}

func (o DateRateOverride) Validate() error {
	if o.Kind != OverrideAmount && o.Kind != OverridePercentage {
		return fmt.Errorf("%w %q: unknown kind %q", ErrInvalidOverride, o.Name, o.Kind)
	}
	if o.Priority < MinPriority || o.Priority > MaxPriority {
		return fmt.Errorf("%w %q: priority %d outside %d-%d", ErrInvalidOverride, o.Name, o.Priority, MinPriority, MaxPriority)
	}
	for _, p := range o.Periods {
		if p.End.Before(p.Start) {
			return fmt.Errorf("%w %q: end date cannot be before start date", ErrInvalidOverride, o.Name)
		}
	}
	return nil
}

// AppliesTo reports whether the override is active on day.
func (o DateRateOverride) AppliesTo(day time.Time) bool {
	if !o.Active {
		return false
	}
	for _, p := range o.Periods {
		if p.Contains(day) {
			return true
		}
	}
	return false
}

// Apply adjusts bar, clamping at zero and rounding to two places.
func (o DateRateOverride) Apply(bar decimal.Decimal) decimal.Decimal {
	var adjusted decimal.Decimal
	if o.Kind == OverrideAmount {
		adjusted = bar.Add(o.Adjustment)
	} else {
		adjusted = bar.Mul(pricing.One.Add(pricing.Fraction(o.Adjustment)))
	}
	return pricing.Round2(pricing.MaxDecimal(pricing.Zero, adjusted))
}

// Display renders the adjustment, e.g. "+$50.00" or "-10.00%".
func (o DateRateOverride) Display(currency string) string {
	sign := ""
	if !o.Adjustment.IsNegative() {
		sign = "+"
	}
	if o.Kind == OverrideAmount {
		if o.Adjustment.IsNegative() {
			return "-" + currency + pricing.Money(o.Adjustment.Abs())
		}
		return sign + currency + pricing.Money(o.Adjustment)
	}
	return sign + pricing.Money(o.Adjustment) + "%"
}

// AllForDate returns the overrides active on day, highest priority first.
// Equal priorities are ordered by name.
func AllForDate(overrides []DateRateOverride, day time.Time) []DateRateOverride {
	var out []DateRateOverride
	for _, o := range overrides {
		if o.AppliesTo(day) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ForDate returns the winning override for day.
func ForDate(overrides []DateRateOverride, day time.Time) (DateRateOverride, bool) {
	all := AllForDate(overrides, day)
	if len(all) == 0 {
		return DateRateOverride{}, false
	}
	return all[0], true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
