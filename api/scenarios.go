/*
scenarios.go - Demo catalog loaders for testing and demonstrations

PURPOSE:

	Provides pre-built property catalogs that populate the database with
	realistic data for demos. Each scenario is a complete catalog document
	that exercises a different part of the engine.

AVAILABLE SCENARIOS:

	seaside-resort: Index-priced rooms, seasonal index modifiers, an OTA with
	                commission, Genius rate modifier and New Year date override
	city-hotel:     Direct-priced rooms, promo codes, length-of-stay and
	                booking-window discounts, guest types, service charge and tax

HOW SCENARIOS WORK:
 1. Parse the embedded catalog via the factory
 2. Save it like PUT /api/properties/{id}/catalog (upsert, version bump)
 3. Create the season override rows for its rate modifiers

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "city-hotel"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and property
 2. Add the catalog document to 'scenarioCatalogs'

NOTE:

	Loading a scenario replaces the catalog of its property. Other
	properties, quote history and customized overrides are kept.

SEE ALSO:
  - handlers.go: PutCatalog
  - factory/catalog.go: Catalog JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/pricing"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "seaside-resort",
		Name:        "Seaside Resort",
		Description: "Index pricing with seasonal modifiers, OTA commission and legacy rate modifiers",
		PropertyID:  "seaside",
	},
	{
		ID:          "city-hotel",
		Name:        "City Hotel",
		Description: "Direct pricing with promo codes, stay-length and booking-window discounts, tax",
		PropertyID:  "city",
	},
}

var scenarioCatalogs = map[string]string{
	"seaside-resort": `{
  "property": {"id": "seaside", "name": "Seaside Resort", "currency_symbol": "$",
               "reference_base_rate": "100.00", "min_rate_warning": "50.00"},
  "room_types": [
    {"id": "std", "name": "Standard", "base_rate": "65.00", "number_of_rooms": 40, "sort_order": 1},
    {"id": "dlx", "name": "Deluxe", "pricing_method": "index", "room_index": "1.20", "number_of_rooms": 20, "sort_order": 2},
    {"id": "ste", "name": "Suite", "pricing_method": "adjustment", "room_adjustment": "80.00", "number_of_rooms": 5, "sort_order": 3}
  ],
  "seasons": [
    {"id": "low", "name": "Low", "start_date": "2025-01-01", "end_date": "2025-03-31", "season_index": "0.90"},
    {"id": "mid", "name": "Shoulder", "start_date": "2025-04-01", "end_date": "2025-06-30"},
    {"id": "high", "name": "High", "start_date": "2025-07-01", "end_date": "2025-08-31", "season_index": "1.30"}
  ],
  "channels": [
    {"id": "direct", "name": "Direct", "sort_order": 1},
    {"id": "booking", "name": "Booking.com", "base_discount_percent": "5", "commission_percent": "18", "sort_order": 2}
  ],
  "rate_plans": [
    {"id": "ro", "name": "Room Only"},
    {"id": "bb", "name": "Bed & Breakfast", "meal_supplement": "12.00"}
  ],
  "modifiers": [
    {"id": "high-season", "name": "High Season", "type": "index", "value": "1.30", "applies_to": "season", "season": "high", "stack_order": 0},
    {"id": "low-season", "name": "Low Season", "type": "index", "value": "0.90", "applies_to": "season", "season": "low", "stack_order": 0},
    {"id": "ota-discount", "name": "OTA Discount", "type": "discount", "value": "5", "applies_to": "channel", "channel": "booking", "stack_order": 1},
    {"id": "suite-upsell", "name": "Suite Supplement", "type": "surcharge", "value": "10", "applies_to": "room_type", "room_type": "ste", "stack_order": 2,
     "rules": [{"type": "exclude_season", "seasons": ["low"]}]}
  ],
  "rate_modifiers": [
    {"id": "booking-standard", "channel": "booking", "name": "Standard", "modifier_type": "standard", "discount_percent": "0", "sort_order": 1},
    {"id": "booking-genius", "channel": "booking", "name": "Genius", "modifier_type": "member", "discount_percent": "10", "sort_order": 2},
    {"id": "booking-mobile", "channel": "booking", "name": "Mobile", "modifier_type": "mobile", "discount_percent": "10", "stackable": true, "sort_order": 3}
  ],
  "date_overrides": [
    {"name": "New Year", "override_type": "amount", "adjustment": "50", "priority": 90,
     "periods": [{"start_date": "2025-12-31", "end_date": "2026-01-01"}]},
    {"name": "Regatta Week", "override_type": "percentage", "adjustment": "15", "priority": 50,
     "periods": [{"start_date": "2025-08-10", "end_date": "2025-08-16"}]}
  ]
}`,
	"city-hotel": `{
  "property": {"id": "city", "name": "City Hotel", "currency_symbol": "$",
               "service_charge_percent": "10", "tax_percent": "8", "tax_on_service_charge": true,
               "max_discount_warning": "40"},
  "room_types": [
    {"id": "sgl", "name": "Single", "base_rate": "90.00", "number_of_rooms": 30, "sort_order": 1},
    {"id": "dbl", "name": "Double", "base_rate": "120.00", "number_of_rooms": 50, "sort_order": 2}
  ],
  "seasons": [
    {"id": "conf", "name": "Conference Season", "start_date": "2025-09-01", "end_date": "2025-11-30", "season_index": "1.15"},
    {"id": "quiet", "name": "Quiet", "start_date": "2025-12-01", "end_date": "2026-02-28"}
  ],
  "channels": [
    {"id": "direct", "name": "Direct", "sort_order": 1},
    {"id": "expedia", "name": "Expedia", "commission_percent": "15", "sort_order": 2},
    {"id": "corporate", "name": "Corporate", "sort_order": 3}
  ],
  "rate_plans": [
    {"id": "ro", "name": "Room Only"},
    {"id": "hb", "name": "Half Board", "meal_supplement": "25.00"}
  ],
  "modifiers": [
    {"id": "conf-season", "name": "Conference Season", "type": "index", "value": "1.15", "applies_to": "season", "season": "conf", "stack_order": 0},
    {"id": "long-stay", "name": "Long Stay", "type": "discount", "value": "10", "applies_to": "los", "min_nights": 7, "stack_order": 1},
    {"id": "early-bird", "name": "Early Bird", "type": "discount", "value": "15", "applies_to": "booking_window", "min_advance_days": 30, "stack_order": 1,
     "rules": [{"type": "not_with", "modifiers": ["last-minute"]}]},
    {"id": "last-minute", "name": "Last Minute", "type": "discount", "value": "20", "applies_to": "booking_window", "max_advance_days": 2, "stack_order": 1,
     "rules": [{"type": "exclude_channel", "channels": ["corporate"]}]},
    {"id": "welcome", "code": "WELCOME10", "name": "Welcome Promo", "type": "discount", "value": "10", "applies_to": "promo", "stack_order": 2,
     "rules": [{"type": "channel_only", "channels": ["direct"]}]},
    {"id": "member", "code": "member", "name": "Member Rate", "type": "discount", "value": "5", "applies_to": "guest_type", "stack_order": 2}
  ],
  "rate_modifiers": [
    {"id": "expedia-standard", "channel": "expedia", "name": "Standard", "modifier_type": "standard", "discount_percent": "0", "sort_order": 1},
    {"id": "expedia-member", "channel": "expedia", "name": "Member Deal", "modifier_type": "member", "discount_percent": "8", "sort_order": 2}
  ]
}`,
}

// ListScenarios returns available scenarios, marking the ones whose property
// already has a stored catalog.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s
		_, err := h.Store.GetCatalogRecord(r.Context(), pricing.PropertyID(s.PropertyID))
		switch {
		case err == nil:
			out[i].Loaded = true
		case !errors.Is(err, pricing.ErrNotFound):
			h.fail(w, "Failed to list scenarios", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// LoadScenario loads a predefined catalog.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	summary, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		h.fail(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, id string) (CatalogSummaryDTO, error) {
	doc, ok := scenarioCatalogs[id]
	if !ok {
		return CatalogSummaryDTO{}, fmt.Errorf("%w: unknown scenario %q", errBadRequest, id)
	}

	var cj factory.CatalogJSON
	if err := json.Unmarshal([]byte(doc), &cj); err != nil {
		return CatalogSummaryDTO{}, fmt.Errorf("scenario %s: %w", id, err)
	}
	bundle, err := h.Store.SaveCatalog(ctx, cj)
	if err != nil {
		return CatalogSummaryDTO{}, fmt.Errorf("scenario %s: %w", id, err)
	}
	created, err := ensureOverrides(ctx, h.Resolver, bundle)
	if err != nil {
		return CatalogSummaryDTO{}, err
	}

	h.Log.Info("scenario loaded", zap.String("scenario", id), zap.Int("overrides_created", created))
	return catalogSummary(bundle, created), nil
}
