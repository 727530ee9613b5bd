/*
errors.go - Centralized error types for the rate engine

PURPOSE:
  Configuration errors are the only errors the engine returns. Everything that
  merely looks wrong (clamped multipliers, floor breaches, oversized discounts)
  is a Warning on a successful RateBreakdown instead.

ERROR CATEGORIES:
  1. Configuration errors - missing reference rate, unknown pricing method,
     rules referencing entities that do not exist. Fail fast, never substitute.
  2. Lookup errors - an identifier the caller asked for is not in the catalog.

USAGE:
  rate, err := pricing.EffectiveBaseRate(room, ref)
  if errors.Is(err, pricing.ErrMissingReference) {
      // property has no reference rate configured
  }

SEE ALSO:
  - warnings.go: non-fatal anomalies
  - resolver.go: raises ErrMissingReference
*/
package pricing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingReference is returned when an index or adjustment room is priced
	// without a reference rate. The engine never falls back to base_rate.
	ErrMissingReference = errors.New("missing reference rate")

	// ErrUnknownPricingMethod is returned for a pricing method outside
	// direct/index/adjustment.
	ErrUnknownPricingMethod = errors.New("unknown pricing method")

	// ErrUnknownModifierType is returned when a modifier type string cannot be
	// mapped to an adjustment variant.
	ErrUnknownModifierType = errors.New("unknown modifier type")

	// ErrUnknownEntity is returned when a record references an identifier that
	// is not present in the catalog.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidCatalog is returned for structurally invalid catalog records.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError identifies the offending entity of a configuration failure.
type ConfigError struct {
	Entity string // "room_type", "modifier", "rule", ...
	ID     string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s %q: %v", e.Entity, e.ID, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(entity, id string, err error) error {
	return &ConfigError{Entity: entity, ID: id, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true if err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
