package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE RESOLVER
// =============================================================================

// EffectiveBaseRate resolves a room's base rate from its pricing method.
//
//	direct:     room.BaseRate (reference ignored)
//	index:      reference × room.RoomIndex
//	adjustment: reference + room.RoomAdjustment
//
// Index and adjustment rooms require a valid reference; without one the call
// fails with ErrMissingReference rather than guessing from BaseRate. No
// rounding is applied.
func EffectiveBaseRate(room RoomType, reference decimal.NullDecimal) (decimal.Decimal, error) {
	switch room.PricingMethod {
	case PricingDirect:
		return room.BaseRate, nil
	case PricingIndex:
		if !reference.Valid {
			return decimal.Zero, configErr("room_type", string(room.ID), ErrMissingReference)
		}
		return reference.Decimal.Mul(room.RoomIndex), nil
	case PricingAdjustment:
		if !reference.Valid {
			return decimal.Zero, configErr("room_type", string(room.ID), ErrMissingReference)
		}
		return reference.Decimal.Add(room.RoomAdjustment), nil
	default:
		return decimal.Zero, configErr("room_type", string(room.ID), ErrUnknownPricingMethod)
	}
}

// BaseRateFor resolves a room against the property's reference rate.
func (p Property) BaseRateFor(room RoomType) (decimal.Decimal, error) {
	return EffectiveBaseRate(room, p.ReferenceBaseRate)
}
