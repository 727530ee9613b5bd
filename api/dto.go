/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract. Money is always a
  fixed two-place string ("199.06"); percentages likewise.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Catalog:   CatalogDTO (wraps factory.CatalogJSON), CatalogSummaryDTO
  Quote:     QuoteRequest, QuoteDTO, BreakdownDTO, AppliedModifierDTO
  Legacy:    LegacyQuoteRequest, LegacyQuoteDTO
  Matrix:    MatrixDTO, MatrixCellDTO
  Overrides: OverrideDTO, CustomizeOverrideRequest, ChangeBaseRequest
  Scenarios: ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/catalog.go: CatalogJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
)

// =============================================================================
// CATALOG
// =============================================================================

// CatalogDTO is a stored catalog document.
type CatalogDTO struct {
	PropertyID string              `json:"property_id"`
	Version    int                 `json:"version"`
	UpdatedAt  string              `json:"updated_at,omitempty"`
	Config     factory.CatalogJSON `json:"config"`
}

// CatalogSummaryDTO is returned after a catalog is saved.
type CatalogSummaryDTO struct {
	PropertyID       string `json:"property_id"`
	Name             string `json:"name"`
	RoomTypes        int    `json:"room_types"`
	Seasons          int    `json:"seasons"`
	Channels         int    `json:"channels"`
	RatePlans        int    `json:"rate_plans"`
	Modifiers        int    `json:"modifiers"`
	RateModifiers    int    `json:"rate_modifiers"`
	DateOverrides    int    `json:"date_overrides"`
	OverridesCreated int    `json:"overrides_created"`
}

// =============================================================================
// STACKING QUOTE
// =============================================================================

// QuoteRequest is the booking context for a stacking quote. Dates are
// YYYY-MM-DD.
type QuoteRequest struct {
	Season      string   `json:"season"`
	RoomType    string   `json:"room_type"`
	Channel     string   `json:"channel"`
	RatePlan    string   `json:"rate_plan"`
	Pax         int      `json:"pax"`
	Nights      int      `json:"nights"`
	BookingDate string   `json:"booking_date"`
	ArrivalDate string   `json:"arrival_date"`
	GuestType   string   `json:"guest_type"`
	Promos      []string `json:"promos"`
}

// QuoteDTO is a priced stacking quote.
type QuoteDTO struct {
	ID         string         `json:"id,omitempty"`
	PropertyID string         `json:"property_id"`
	RoomType   string         `json:"room_type"`
	Season     string         `json:"season,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	RatePlan   string         `json:"rate_plan,omitempty"`
	Rejected   []RejectionDTO `json:"rejected,omitempty"`
	Breakdown  BreakdownDTO   `json:"breakdown"`
	CreatedAt  string         `json:"created_at,omitempty"`
}

type RejectionDTO struct {
	Modifier string `json:"modifier"`
	Rule     string `json:"rule,omitempty"`
	Reason   string `json:"reason"`
}

type AppliedModifierDTO struct {
	ID                string `json:"id"`
	Code              string `json:"code,omitempty"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	AppliesTo         string `json:"applies_to,omitempty"`
	StackOrder        int    `json:"stack_order"`
	Value             string `json:"value"`
	ValueDisplay      string `json:"value_display"`
	AdjustmentPercent string `json:"adjustment_percent"`
	AdjustmentDisplay string `json:"adjustment_display"`
	CumulativePercent string `json:"cumulative_percent"`
}

type WarningDTO struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// BreakdownDTO mirrors pricing.RateBreakdown.
type BreakdownDTO struct {
	BarRate                string               `json:"bar_rate"`
	Pax                    int                  `json:"pax"`
	Modifiers              []AppliedModifierDTO `json:"modifiers"`
	TotalAdjustmentPercent string               `json:"total_adjustment_percent"`
	TotalDiscountPercent   string               `json:"total_discount_percent"`
	Multiplier             string               `json:"multiplier"`
	AdjustedRoomRate       string               `json:"adjusted_room_rate"`
	MealPlanPerPerson      string               `json:"meal_plan_per_person"`
	MealPlanTotal          string               `json:"meal_plan_total"`
	Subtotal               string               `json:"subtotal"`
	ServiceChargePercent   string               `json:"service_charge_percent"`
	ServiceCharge          string               `json:"service_charge"`
	TaxPercent             string               `json:"tax_percent"`
	TaxOnServiceCharge     bool                 `json:"tax_on_service_charge"`
	TaxAmount              string               `json:"tax_amount"`
	FinalRate              string               `json:"final_rate"`
	CommissionPercent      string               `json:"commission_percent"`
	CommissionAmount       string               `json:"commission_amount"`
	NetRevenue             string               `json:"net_revenue"`
	Warnings               []WarningDTO         `json:"warnings"`
}

// StoredQuoteDTO is a quote read back from history. Quote holds the response
// body returned when the quote was issued.
type StoredQuoteDTO struct {
	ID         string          `json:"id"`
	PropertyID string          `json:"property_id"`
	Kind       string          `json:"kind"`
	FinalRate  string          `json:"final_rate"`
	CreatedAt  string          `json:"created_at"`
	Request    json.RawMessage `json:"request"`
	Quote      json.RawMessage `json:"quote"`
}

// =============================================================================
// LEGACY QUOTE
// =============================================================================

// LegacyQuoteRequest prices one cell with the step model. RateModifier is an
// optional channel rate modifier whose season discount is resolved. Season may
// be omitted when StayDate is set.
type LegacyQuoteRequest struct {
	PropertyID       string           `json:"property_id"`
	RoomType         string           `json:"room_type"`
	Season           string           `json:"season"`
	RatePlan         string           `json:"rate_plan"`
	Channel          string           `json:"channel"`
	RateModifier     string           `json:"rate_modifier"`
	Pax              int              `json:"pax"`
	StayDate         string           `json:"stay_date"`
	CeilingIncrement *decimal.Decimal `json:"ceiling_increment"`
}

type LegacyQuoteDTO struct {
	ID                     string `json:"id,omitempty"`
	SeasonalRate           string `json:"seasonal_rate"`
	MealCost               string `json:"meal_cost"`
	BaseBar                string `json:"base_bar"`
	BarRate                string `json:"bar_rate"`
	DateOverride           string `json:"date_override,omitempty"`
	ChannelBaseRate        string `json:"channel_base_rate"`
	ChannelDiscountAmount  string `json:"channel_discount_amount"`
	ModifierDiscountAmount string `json:"modifier_discount_amount"`
	PreCeilingRate         string `json:"pre_ceiling_rate"`
	CeilingApplied         bool   `json:"ceiling_applied"`
	FinalRate              string `json:"final_rate"`
	CommissionAmount       string `json:"commission_amount"`
	NetRevenue             string `json:"net_revenue"`
}

// =============================================================================
// MATRIX
// =============================================================================

type MatrixCellDTO struct {
	RoomType       string `json:"room_type"`
	Season         string `json:"season"`
	Channel        string `json:"channel"`
	BarRate        string `json:"bar_rate"`
	FinalRate      string `json:"final_rate"`
	NetRevenue     string `json:"net_revenue"`
	TotalDiscount  string `json:"total_discount_percent"`
	ModifiersCount int    `json:"modifiers"`
	HasWarnings    bool   `json:"has_warnings"`
}

type MatrixDTO struct {
	PropertyID string          `json:"property_id"`
	RatePlan   string          `json:"rate_plan,omitempty"`
	RoomTypes  []string        `json:"room_types"`
	Seasons    []string        `json:"seasons"`
	Channels   []string        `json:"channels"`
	Cells      []MatrixCellDTO `json:"cells"`
}

// =============================================================================
// SEASON OVERRIDES
// =============================================================================

type OverrideDTO struct {
	ID              string `json:"id"`
	ModifierID      string `json:"modifier_id"`
	SeasonID        string `json:"season_id"`
	DiscountPercent string `json:"discount_percent"`
	IsCustomized    bool   `json:"is_customized"`
	Notes           string `json:"notes,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

type CustomizeOverrideRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Notes           string          `json:"notes"`
}

type ChangeBaseRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type ChangeBaseDTO struct {
	ModifierID      string `json:"modifier_id"`
	DiscountPercent string `json:"discount_percent"`
	Resynced        int    `json:"resynced"`
}

// ScenarioDTO represents a demo catalog.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PropertyID  string `json:"property_id"`
	Loaded      bool   `json:"loaded"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toBreakdownDTO(b pricing.RateBreakdown) BreakdownDTO {
	dto := BreakdownDTO{
		BarRate:                pricing.Money(b.BarRate),
		Pax:                    b.Pax,
		Modifiers:              make([]AppliedModifierDTO, 0, len(b.Modifiers)),
		TotalAdjustmentPercent: pricing.Money(b.TotalAdjustmentPercent),
		TotalDiscountPercent:   pricing.Money(b.TotalDiscountPercent),
		Multiplier:             b.Multiplier.StringFixed(4),
		AdjustedRoomRate:       pricing.Money(b.AdjustedRoomRate),
		MealPlanPerPerson:      pricing.Money(b.MealPlanPerPerson),
		MealPlanTotal:          pricing.Money(b.MealPlanTotal),
		Subtotal:               pricing.Money(b.Subtotal),
		ServiceChargePercent:   pricing.Money(b.ServiceChargePercent),
		ServiceCharge:          pricing.Money(b.ServiceCharge),
		TaxPercent:             pricing.Money(b.TaxPercent),
		TaxOnServiceCharge:     b.TaxOnServiceCharge,
		TaxAmount:              pricing.Money(b.TaxAmount),
		FinalRate:              pricing.Money(b.FinalRate),
		CommissionPercent:      pricing.Money(b.CommissionPercent),
		CommissionAmount:       pricing.Money(b.CommissionAmount),
		NetRevenue:             pricing.Money(b.NetRevenue),
		Warnings:               make([]WarningDTO, 0, len(b.Warnings)),
	}
	for _, m := range b.Modifiers {
		dto.Modifiers = append(dto.Modifiers, AppliedModifierDTO{
			ID:                string(m.ID),
			Code:              m.Code,
			Name:              m.Name,
			Type:              string(m.Type),
			AppliesTo:         string(m.AppliesTo),
			StackOrder:        m.StackOrder,
			Value:             m.Value.String(),
			ValueDisplay:      m.ValueDisplay,
			AdjustmentPercent: pricing.Money(m.AdjustmentPercent),
			AdjustmentDisplay: m.AdjustmentDisplay,
			CumulativePercent: pricing.Money(m.CumulativePercent),
		})
	}
	for _, w := range b.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{Type: string(w.Type), Severity: string(w.Severity), Message: w.Message})
	}
	return dto
}

func toQuoteDTO(propertyID pricing.PropertyID, q pricing.Quote) QuoteDTO {
	dto := QuoteDTO{
		PropertyID: string(propertyID),
		RoomType:   string(q.Context.RoomTypeID),
		Season:     string(q.Context.SeasonID),
		Channel:    string(q.Context.ChannelID),
		RatePlan:   string(q.Context.RatePlanID),
		Breakdown:  toBreakdownDTO(q.Breakdown),
	}
	for _, r := range q.Selection.Rejected {
		dto.Rejected = append(dto.Rejected, RejectionDTO{Modifier: string(r.Modifier.ID), Rule: r.RuleID, Reason: r.Reason})
	}
	return dto
}

func toLegacyQuoteDTO(b legacy.Breakdown, currency string) LegacyQuoteDTO {
	dto := LegacyQuoteDTO{
		SeasonalRate:           pricing.Money(b.SeasonalRate),
		MealCost:               pricing.Money(b.MealCost),
		BaseBar:                pricing.Money(b.BaseBar),
		BarRate:                pricing.Money(b.BarRate),
		ChannelBaseRate:        pricing.Money(b.ChannelBaseRate),
		ChannelDiscountAmount:  pricing.Money(b.ChannelDiscountAmount),
		ModifierDiscountAmount: pricing.Money(b.ModifierDiscountAmount),
		PreCeilingRate:         pricing.Money(b.PreCeilingRate),
		CeilingApplied:         b.CeilingApplied,
		FinalRate:              pricing.Money(b.FinalRate),
		CommissionAmount:       pricing.Money(b.CommissionAmount),
		NetRevenue:             pricing.Money(b.NetRevenue),
	}
	if b.DateOverride != nil {
		dto.DateOverride = b.DateOverride.Name + " (" + b.DateOverride.Display(currency) + ")"
	}
	return dto
}

func toMatrixDTO(m *pricing.Matrix) MatrixDTO {
	dto := MatrixDTO{
		PropertyID: string(m.PropertyID),
		Cells:      make([]MatrixCellDTO, 0, len(m.Cells)),
	}
	if m.RatePlan != nil {
		dto.RatePlan = string(m.RatePlan.ID)
	}
	for _, r := range m.RoomTypes {
		dto.RoomTypes = append(dto.RoomTypes, string(r.ID))
	}
	for _, s := range m.Seasons {
		dto.Seasons = append(dto.Seasons, string(s.ID))
	}
	for _, c := range m.Channels {
		dto.Channels = append(dto.Channels, string(c.ID))
	}
	for _, c := range m.Cells {
		b := c.Quote.Breakdown
		dto.Cells = append(dto.Cells, MatrixCellDTO{
			RoomType:       string(c.RoomTypeID),
			Season:         string(c.SeasonID),
			Channel:        string(c.ChannelID),
			BarRate:        pricing.Money(b.BarRate),
			FinalRate:      pricing.Money(b.FinalRate),
			NetRevenue:     pricing.Money(b.NetRevenue),
			TotalDiscount:  pricing.Money(b.TotalDiscountPercent),
			ModifiersCount: len(b.Modifiers),
			HasWarnings:    b.HasWarnings(),
		})
	}
	return dto
}

func toOverrideDTO(r legacy.OverrideRecord) OverrideDTO {
	dto := OverrideDTO{
		ID:              r.ID,
		ModifierID:      string(r.ModifierID),
		SeasonID:        string(r.SeasonID),
		DiscountPercent: pricing.Money(r.DiscountPercent),
		IsCustomized:    r.IsCustomized,
		Notes:           r.Notes,
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
