package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders the breakdown as a fixed-width plain-text report.
func (b RateBreakdown) Format(currency string) string {
	var sb strings.Builder
	money := func(label string, d decimal.Decimal) {
		fmt.Fprintf(&sb, "%-27s%s%10s\n", label, currency, Money(d))
	}
	rule := func(ch string) { sb.WriteString(strings.Repeat(ch, 45) + "\n") }

	money("BAR (Room Rate):", b.BarRate)
	sb.WriteString("\nModifiers Applied:\n")
	for _, m := range b.Modifiers {
		fmt.Fprintf(&sb, "  %-20s %8s %10s\n", m.Name, signed(m.AdjustmentPercent)+"%", "("+signed(m.CumulativePercent)+"%)")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%-27s%s%%\n", "Total Adjustment:", signed(b.TotalAdjustmentPercent))
	fmt.Fprintf(&sb, "%-27s×%s\n", "Multiplier:", b.Multiplier.StringFixed(2))
	rule("─")
	money("Adjusted Room Rate:", b.AdjustedRoomRate)
	money("+ Meal Plan:", b.MealPlanTotal)
	rule("─")
	money("Subtotal:", b.Subtotal)
	money(fmt.Sprintf("+ Service Charge (%s%%):", b.ServiceChargePercent.String()), b.ServiceCharge)
	money(fmt.Sprintf("+ Tax (%s%%):", b.TaxPercent.String()), b.TaxAmount)
	rule("═")
	money("FINAL RATE:", b.FinalRate)
	if b.CommissionPercent.IsPositive() {
		money(fmt.Sprintf("- Commission (%s%%):", b.CommissionPercent.String()), b.CommissionAmount)
		money("NET REVENUE:", b.NetRevenue)
	}

	if len(b.Warnings) > 0 {
		sb.WriteString("\n⚠ WARNINGS:\n")
		for _, w := range b.Warnings {
			fmt.Fprintf(&sb, "  • %s\n", w.Message)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func signed(d decimal.Decimal) string {
	s := d.StringFixed(1)
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}
