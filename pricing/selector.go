package pricing

import (
	"sort"
)

// =============================================================================
// MODIFIER SELECTOR
// =============================================================================

// ReasonOutOfScope is recorded for active modifiers whose scope does not match.
const ReasonOutOfScope = "out of scope"

// Rejection records why a candidate was skipped.
type Rejection struct {
	Modifier Modifier
	RuleID   string // empty for scope mismatches
	Reason   string
}

// Selection is the outcome of one selection walk.
type Selection struct {
	Accepted []Modifier
	Rejected []Rejection
}

// Select returns the modifiers that apply to ctx, in stack order.
//
// Candidates are filtered by scope, stably sorted by StackOrder (ties keep
// catalog order), then walked once. Each candidate's rules see only the
// modifiers accepted before it, so acceptance order is part of the result.
func Select(modifiers []Modifier, ctx BookingContext) []Modifier {
	return SelectWithTrace(modifiers, ctx).Accepted
}

// SelectWithTrace is Select plus the list of rejected candidates.
func SelectWithTrace(modifiers []Modifier, ctx BookingContext) Selection {
	candidates := make([]Modifier, 0, len(modifiers))
	var sel Selection

	for _, m := range modifiers {
		if !m.Active {
			continue
		}
		if !m.Matches(ctx) {
			sel.Rejected = append(sel.Rejected, Rejection{Modifier: m, Reason: ReasonOutOfScope})
			continue
		}
		candidates = append(candidates, m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StackOrder < candidates[j].StackOrder
	})

	sel.Accepted = make([]Modifier, 0, len(candidates))
	for _, m := range candidates {
		// Cap the slice so a rule can never append into our backing array.
		seen := sel.Accepted[:len(sel.Accepted):len(sel.Accepted)]
		if rej, ok := firstFailure(m, ctx, seen); !ok {
			sel.Rejected = append(sel.Rejected, rej)
			continue
		}
		sel.Accepted = append(sel.Accepted, m)
	}
	return sel
}

func firstFailure(m Modifier, ctx BookingContext, accepted []Modifier) (Rejection, bool) {
	for _, r := range m.Rules {
		if res := r.Check(ctx, accepted); !res.Passed {
			return Rejection{Modifier: m, RuleID: r.ID, Reason: res.Reason}, false
		}
	}
	return Rejection{}, true
}
