/*
Package factory provides JSON/YAML to Go catalog conversion.

PURPOSE:
  Converts catalog documents into a validated pricing.Catalog plus the legacy
  records (channel rate modifiers, date rate overrides) that ride along with
  it. Revenue managers edit one document per property; the factory produces
  the in-memory snapshot the engine consumes.

DOCUMENT SCHEMA (JSON shown; YAML uses the same keys):
  {
    "property": {
      "id": "seaside", "name": "Seaside", "currency_symbol": "$",
      "reference_base_rate": "100.00",
      "service_charge_percent": "10", "tax_percent": "16",
      "tax_on_service_charge": true, "max_discount_warning": "40"
    },
    "room_types": [
      {"id": "std", "pricing_method": "direct", "base_rate": "85.00"},
      {"id": "dlx", "pricing_method": "index", "room_index": "1.20"}
    ],
    "seasons": [
      {"id": "high", "start_date": "2025-07-01", "end_date": "2025-08-31", "season_index": "1.30"}
    ],
    "channels": [{"id": "ota", "commission_percent": "18"}],
    "rate_plans": [{"id": "bb", "meal_supplement": "6.00"}],
    "modifiers": [
      {
        "id": "early", "code": "EARLY", "type": "discount", "value": "12",
        "applies_to": "booking_window", "min_advance_days": 60, "stack_order": 3,
        "rules": [{"type": "not_with", "modifiers": ["last-minute"]}]
      }
    ],
    "rate_modifiers": [{"id": "genius", "channel": "ota", "discount_percent": "10"}],
    "date_overrides": [
      {"name": "New Year", "override_type": "amount", "adjustment": "50",
       "priority": 90, "periods": [{"start_date": "2025-12-31", "end_date": "2026-01-01"}]}
    ]
  }

DEFAULTS:
  - service 10%, tax 16% on service, max discount warning 40%
  - modifiers and rules are active unless "active": false
  - date override priority 50

USAGE:
  f := factory.NewCatalogFactory()
  bundle, err := f.ParseCatalog(jsonStr)
  quote, err := bundle.Catalog.Quote(pricing.BookingContext{...})

SEE ALSO:
  - pricing/catalog.go: Catalog and validation
  - legacy/override.go: RateModifier
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// CatalogJSON is the serialized form of one property's configuration.
type CatalogJSON struct {
	Property      PropertyJSON       `json:"property" yaml:"property"`
	RoomTypes     []RoomTypeJSON     `json:"room_types" yaml:"room_types"`
	Seasons       []SeasonJSON       `json:"seasons" yaml:"seasons"`
	Channels      []ChannelJSON      `json:"channels" yaml:"channels"`
	RatePlans     []RatePlanJSON     `json:"rate_plans" yaml:"rate_plans"`
	Modifiers     []ModifierJSON     `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	RateModifiers []RateModifierJSON `json:"rate_modifiers,omitempty" yaml:"rate_modifiers,omitempty"`
	DateOverrides []DateOverrideJSON `json:"date_overrides,omitempty" yaml:"date_overrides,omitempty"`
}

type PropertyJSON struct {
	ID                   string           `json:"id" yaml:"id"`
	Name                 string           `json:"name" yaml:"name"`
	CurrencySymbol       string           `json:"currency_symbol,omitempty" yaml:"currency_symbol,omitempty"`
	ReferenceBaseRate    *decimal.Decimal `json:"reference_base_rate,omitempty" yaml:"reference_base_rate,omitempty"`
	ServiceChargePercent *decimal.Decimal `json:"service_charge_percent,omitempty" yaml:"service_charge_percent,omitempty"`
	TaxPercent           *decimal.Decimal `json:"tax_percent,omitempty" yaml:"tax_percent,omitempty"`
	TaxOnServiceCharge   *bool            `json:"tax_on_service_charge,omitempty" yaml:"tax_on_service_charge,omitempty"`
	MinRateWarning       *decimal.Decimal `json:"min_rate_warning,omitempty" yaml:"min_rate_warning,omitempty"`
	MaxDiscountWarning   *decimal.Decimal `json:"max_discount_warning,omitempty" yaml:"max_discount_warning,omitempty"`
}

type RoomTypeJSON struct {
	ID             string           `json:"id" yaml:"id"`
	Name           string           `json:"name" yaml:"name"`
	PricingMethod  string           `json:"pricing_method,omitempty" yaml:"pricing_method,omitempty"` // default direct
	BaseRate       decimal.Decimal  `json:"base_rate" yaml:"base_rate"`
	RoomIndex      decimal.Decimal  `json:"room_index" yaml:"room_index"` // default 1.00
	RoomAdjustment decimal.Decimal  `json:"room_adjustment" yaml:"room_adjustment"`
	SeasonModifier *decimal.Decimal `json:"season_modifier,omitempty" yaml:"season_modifier,omitempty"`
	NumberOfRooms  int              `json:"number_of_rooms,omitempty" yaml:"number_of_rooms,omitempty"`
	SortOrder      int              `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

type SeasonJSON struct {
	ID                string          `json:"id" yaml:"id"`
	Name              string          `json:"name" yaml:"name"`
	StartDate         string          `json:"start_date" yaml:"start_date"`
	EndDate           string          `json:"end_date" yaml:"end_date"`
	SeasonIndex       decimal.Decimal `json:"season_index" yaml:"season_index"`
	ExpectedOccupancy decimal.Decimal `json:"expected_occupancy" yaml:"expected_occupancy"`
}

type ChannelJSON struct {
	ID                  string          `json:"id" yaml:"id"`
	Name                string          `json:"name" yaml:"name"`
	BaseDiscountPercent decimal.Decimal `json:"base_discount_percent" yaml:"base_discount_percent"`
	CommissionPercent   decimal.Decimal `json:"commission_percent" yaml:"commission_percent"`
	SortOrder           int             `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

type RatePlanJSON struct {
	ID             string          `json:"id" yaml:"id"`
	Name           string          `json:"name" yaml:"name"`
	MealSupplement decimal.Decimal `json:"meal_supplement" yaml:"meal_supplement"`
}

type ModifierJSON struct {
	ID         string          `json:"id" yaml:"id"`
	Code       string          `json:"code,omitempty" yaml:"code,omitempty"`
	Name       string          `json:"name" yaml:"name"`
	Type       string          `json:"type" yaml:"type"` // index, discount, surcharge
	Value      decimal.Decimal `json:"value" yaml:"value"`
	AppliesTo  string          `json:"applies_to,omitempty" yaml:"applies_to,omitempty"`
	StackOrder *int            `json:"stack_order,omitempty" yaml:"stack_order,omitempty"` // default 100
	Active     *bool           `json:"active,omitempty" yaml:"active,omitempty"`

	Season   string `json:"season,omitempty" yaml:"season,omitempty"`
	RoomType string `json:"room_type,omitempty" yaml:"room_type,omitempty"`
	Channel  string `json:"channel,omitempty" yaml:"channel,omitempty"`

	MinNights      *int `json:"min_nights,omitempty" yaml:"min_nights,omitempty"`
	MaxNights      *int `json:"max_nights,omitempty" yaml:"max_nights,omitempty"`
	MinAdvanceDays *int `json:"min_advance_days,omitempty" yaml:"min_advance_days,omitempty"`
	MaxAdvanceDays *int `json:"max_advance_days,omitempty" yaml:"max_advance_days,omitempty"`

	ValidFrom  string `json:"valid_from,omitempty" yaml:"valid_from,omitempty"`
	ValidUntil string `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`

	Rules []RuleJSON `json:"rules,omitempty" yaml:"rules,omitempty"`
}

type RuleJSON struct {
	ID        string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type      string   `json:"type" yaml:"type"`
	Channels  []string `json:"channels,omitempty" yaml:"channels,omitempty"`
	RoomTypes []string `json:"room_types,omitempty" yaml:"room_types,omitempty"`
	Seasons   []string `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Active    *bool    `json:"active,omitempty" yaml:"active,omitempty"`
	Message   string   `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

type RateModifierJSON struct {
	ID              string          `json:"id" yaml:"id"`
	Channel         string          `json:"channel" yaml:"channel"`
	Name            string          `json:"name" yaml:"name"`
	Kind            string          `json:"modifier_type,omitempty" yaml:"modifier_type,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent" yaml:"discount_percent"`
	Stackable       bool            `json:"stackable,omitempty" yaml:"stackable,omitempty"`
	Active          *bool           `json:"active,omitempty" yaml:"active,omitempty"`
	SortOrder       int             `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

type DateOverrideJSON struct {
	ID           string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string          `json:"name" yaml:"name"`
	OverrideType string          `json:"override_type" yaml:"override_type"`
	Adjustment   decimal.Decimal `json:"adjustment" yaml:"adjustment"`
	Priority     int             `json:"priority,omitempty" yaml:"priority,omitempty"`
	Active       *bool           `json:"active,omitempty" yaml:"active,omitempty"`
	Periods      []PeriodJSON    `json:"periods" yaml:"periods"`
}

type PeriodJSON struct {
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
}

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// Bundle is everything one catalog document produces.
type Bundle struct {
	Catalog       *pricing.Catalog
	RateModifiers []legacy.RateModifier
	DateOverrides []legacy.DateRateOverride
}

// CatalogFactory converts catalog documents to Go structs.
type CatalogFactory struct{}

// NewCatalogFactory creates a new catalog factory.
func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{}
}

// ParseCatalog parses a JSON document.
func (f *CatalogFactory) ParseCatalog(jsonStr string) (*Bundle, error) {
	var cj CatalogJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// ParseCatalogYAML parses a YAML document.
func (f *CatalogFactory) ParseCatalogYAML(data []byte) (*Bundle, error) {
	var cj CatalogJSON
	if err := yaml.Unmarshal(data, &cj); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON converts a decoded document and validates the result.
func (f *CatalogFactory) FromJSON(cj CatalogJSON) (*Bundle, error) {
	cat := &pricing.Catalog{Property: parseProperty(cj.Property)}

	for _, rj := range cj.RoomTypes {
		method := pricing.PricingMethod(rj.PricingMethod)
		if method == "" {
			method = pricing.PricingDirect
		}
		index := rj.RoomIndex
		if index.IsZero() {
			index = pricing.One
		}
		room := pricing.RoomType{
			ID:             pricing.RoomTypeID(rj.ID),
			Name:           rj.Name,
			PricingMethod:  method,
			BaseRate:       rj.BaseRate,
			RoomIndex:      index,
			RoomAdjustment: rj.RoomAdjustment,
			NumberOfRooms:  rj.NumberOfRooms,
			SortOrder:      rj.SortOrder,
		}
		if rj.SeasonModifier != nil {
			room.SeasonModifier = decimal.NewNullDecimal(*rj.SeasonModifier)
		}
		cat.RoomTypes = append(cat.RoomTypes, room)
	}

	for _, sj := range cj.Seasons {
		start, err := parseDate("season", sj.ID, sj.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDate("season", sj.ID, sj.EndDate)
		if err != nil {
			return nil, err
		}
		index := sj.SeasonIndex
		if index.IsZero() {
			index = pricing.One
		}
		cat.Seasons = append(cat.Seasons, pricing.Season{
			ID:                pricing.SeasonID(sj.ID),
			Name:              sj.Name,
			StartDate:         start,
			EndDate:           end,
			Index:             index,
			ExpectedOccupancy: sj.ExpectedOccupancy,
		})
	}

	for _, ch := range cj.Channels {
		cat.Channels = append(cat.Channels, pricing.Channel{
			ID:                  pricing.ChannelID(ch.ID),
			Name:                ch.Name,
			BaseDiscountPercent: ch.BaseDiscountPercent,
			CommissionPercent:   ch.CommissionPercent,
			SortOrder:           ch.SortOrder,
		})
	}

	for _, pj := range cj.RatePlans {
		cat.RatePlans = append(cat.RatePlans, pricing.RatePlan{
			ID:             pricing.RatePlanID(pj.ID),
			Name:           pj.Name,
			MealSupplement: pj.MealSupplement,
		})
	}

	for _, mj := range cj.Modifiers {
		m, err := parseModifier(mj)
		if err != nil {
			return nil, err
		}
		cat.Modifiers = append(cat.Modifiers, m)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}

	bundle := &Bundle{Catalog: cat}

	for _, rm := range cj.RateModifiers {
		if _, err := cat.Channel(pricing.ChannelID(rm.Channel)); err != nil {
			return nil, &pricing.ConfigError{Entity: "rate_modifier", ID: rm.ID, Err: fmt.Errorf("%w: channel %q", pricing.ErrUnknownEntity, rm.Channel)}
		}
		bundle.RateModifiers = append(bundle.RateModifiers, legacy.RateModifier{
			ID:              pricing.ModifierID(rm.ID),
			PropertyID:      cat.Property.ID,
			ChannelID:       pricing.ChannelID(rm.Channel),
			Name:            rm.Name,
			Kind:            defaultString(rm.Kind, "standard"),
			DiscountPercent: rm.DiscountPercent,
			Stackable:       rm.Stackable,
			Active:          boolOr(rm.Active, true),
			SortOrder:       rm.SortOrder,
		})
	}

	for _, oj := range cj.DateOverrides {
		o, err := parseDateOverride(oj)
		if err != nil {
			return nil, err
		}
		bundle.DateOverrides = append(bundle.DateOverrides, o)
	}

	return bundle, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseProperty(pj PropertyJSON) pricing.Property {
	p := pricing.Property{
		ID:             pricing.PropertyID(pj.ID),
		Name:           pj.Name,
		CurrencySymbol: defaultString(pj.CurrencySymbol, "$"),
		Charges:        pricing.DefaultCharges(),
		Thresholds:     pricing.DefaultThresholds(),
	}
	if pj.ReferenceBaseRate != nil {
		p.ReferenceBaseRate = decimal.NewNullDecimal(*pj.ReferenceBaseRate)
	}
	if pj.ServiceChargePercent != nil {
		p.Charges.ServiceChargePercent = *pj.ServiceChargePercent
	}
	if pj.TaxPercent != nil {
		p.Charges.TaxPercent = *pj.TaxPercent
	}
	if pj.TaxOnServiceCharge != nil {
		p.Charges.TaxOnServiceCharge = *pj.TaxOnServiceCharge
	}
	if pj.MinRateWarning != nil {
		p.Thresholds.MinRate = decimal.NewNullDecimal(*pj.MinRateWarning)
	}
	if pj.MaxDiscountWarning != nil {
		p.Thresholds.MaxDiscountPercent = decimal.NewNullDecimal(*pj.MaxDiscountWarning)
	}
	return p
}

func parseModifier(mj ModifierJSON) (pricing.Modifier, error) {
	adj, err := pricing.NewAdjustment(pricing.ModifierType(mj.Type), mj.Value)
	if err != nil {
		return pricing.Modifier{}, &pricing.ConfigError{Entity: "modifier", ID: mj.ID, Err: err}
	}

	m := pricing.Modifier{
		ID:         pricing.ModifierID(mj.ID),
		Code:       mj.Code,
		Name:       mj.Name,
		Adjustment: adj,
		AppliesTo:  pricing.Target(mj.AppliesTo),
		StackOrder: intOr(mj.StackOrder, pricing.DefaultStackOrder),
		Active:     boolOr(mj.Active, true),
		Scope: pricing.Scope{
			SeasonID:       pricing.SeasonID(mj.Season),
			RoomTypeID:     pricing.RoomTypeID(mj.RoomType),
			ChannelID:      pricing.ChannelID(mj.Channel),
			MinNights:      mj.MinNights,
			MaxNights:      mj.MaxNights,
			MinAdvanceDays: mj.MinAdvanceDays,
			MaxAdvanceDays: mj.MaxAdvanceDays,
		},
	}

	if mj.ValidFrom != "" {
		t, err := parseDate("modifier", mj.ID, mj.ValidFrom)
		if err != nil {
			return pricing.Modifier{}, err
		}
		m.Scope.ValidFrom = &t
	}
	if mj.ValidUntil != "" {
		t, err := parseDate("modifier", mj.ID, mj.ValidUntil)
		if err != nil {
			return pricing.Modifier{}, err
		}
		m.Scope.ValidUntil = &t
	}

	for i, rj := range mj.Rules {
		id := rj.ID
		if id == "" {
			id = fmt.Sprintf("%s/rule-%d", mj.ID, i+1)
		}
		m.Rules = append(m.Rules, pricing.Rule{
			ID:        id,
			Kind:      pricing.RuleKind(rj.Type),
			Channels:  toIDs[pricing.ChannelID](rj.Channels),
			RoomTypes: toIDs[pricing.RoomTypeID](rj.RoomTypes),
			Seasons:   toIDs[pricing.SeasonID](rj.Seasons),
			Modifiers: toIDs[pricing.ModifierID](rj.Modifiers),
			Active:    boolOr(rj.Active, true),
			Message:   rj.Message,
		})
	}
	return m, nil
}

func parseDateOverride(oj DateOverrideJSON) (legacy.DateRateOverride, error) {
	o := legacy.DateRateOverride{
		ID:         oj.ID,
		Name:       oj.Name,
		Kind:       legacy.OverrideKind(defaultString(oj.OverrideType, string(legacy.OverrideAmount))),
		Adjustment: oj.Adjustment,
		Priority:   oj.Priority,
		Active:     boolOr(oj.Active, true),
	}
	if o.Priority == 0 {
		o.Priority = legacy.DefaultPriority
	}
	for _, pj := range oj.Periods {
		start, err := parseDate("date_override", oj.Name, pj.StartDate)
		if err != nil {
			return o, err
		}
		end, err := parseDate("date_override", oj.Name, pj.EndDate)
		if err != nil {
			return o, err
		}
		o.Periods = append(o.Periods, legacy.Period{Start: start, End: end})
	}
	if err := o.Validate(); err != nil {
		return o, &pricing.ConfigError{Entity: "date_override", ID: oj.Name, Err: err}
	}
	return o, nil
}

func parseDate(entity, id, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &pricing.ConfigError{Entity: entity, ID: id, Err: fmt.Errorf("%w: bad date %q", pricing.ErrInvalidCatalog, s)}
	}
	return t, nil
}

func toIDs[T ~string](in []string) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	for i, s := range in {
		out[i] = T(s)
	}
	return out
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func intOr(n *int, def int) int {
	if n == nil {
		return def
	}
	return *n
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
