package pricing

import (
	"fmt"
)

// =============================================================================
// WARNINGS - Non-fatal anomalies attached to a breakdown
// =============================================================================

type WarningType string

const (
	WarningMinRate     WarningType = "min_rate"
	WarningMaxDiscount WarningType = "max_discount"
	WarningZeroRate    WarningType = "zero_rate"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning flags a result that is computable but probably misconfigured.
type Warning struct {
	Type     WarningType
	Severity Severity
	Message  string
}

// evaluateWarnings inspects a finished breakdown against the thresholds.
func evaluateWarnings(b *RateBreakdown, t Thresholds, currency string) []Warning {
	var out []Warning

	if t.MinRate.Valid && b.AdjustedRoomRate.LessThan(t.MinRate.Decimal) {
		out = append(out, Warning{
			Type:     WarningMinRate,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Room rate %s%s is below minimum %s%s",
				currency, Money(b.AdjustedRoomRate), currency, Money(t.MinRate.Decimal)),
		})
	}

	if t.MaxDiscountPercent.Valid && b.TotalDiscountPercent.GreaterThan(t.MaxDiscountPercent.Decimal) {
		out = append(out, Warning{
			Type:     WarningMaxDiscount,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Total discount %s%% exceeds maximum %s%%",
				b.TotalDiscountPercent.StringFixed(1), t.MaxDiscountPercent.Decimal.StringFixed(0)),
		})
	}

	if !b.AdjustedRoomRate.IsPositive() {
		out = append(out, Warning{
			Type:     WarningZeroRate,
			Severity: SeverityError,
			Message:  "Room rate is zero or negative due to excessive discounts",
		})
	}
	return out
}
