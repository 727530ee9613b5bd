/*
scenarios_test.go - Tests for demo catalogs

PURPOSE:
	Every scenario must load through the same validation path as
	PUT /api/properties/{id}/catalog, create its override rows and be
	priceable straight away.
*/
package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/factory"
)

func TestScenarios_AllParse(t *testing.T) {
	// GIVEN: every registered scenario
	// WHEN: parsing its catalog document
	// THEN: it is valid and belongs to the advertised property
	f := factory.NewCatalogFactory()
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			doc, ok := scenarioCatalogs[s.ID]
			require.True(t, ok, "no catalog for scenario")

			var cj factory.CatalogJSON
			require.NoError(t, json.Unmarshal([]byte(doc), &cj))
			bundle, err := f.FromJSON(cj)
			require.NoError(t, err)
			assert.Equal(t, s.PropertyID, string(bundle.Catalog.Property.ID))
		})
	}
}

func TestLoadScenario_SeasideResort(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "seaside-resort"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	summary := decode[CatalogSummaryDTO](t, rec)
	assert.Equal(t, "seaside", summary.PropertyID)
	assert.Equal(t, 3, summary.RoomTypes)
	assert.Equal(t, 9, summary.OverridesCreated, "3 rate modifiers x 3 seasons")

	// Loading again bumps the version and creates nothing new
	rec = do(t, h, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "seaside-resort"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[CatalogSummaryDTO](t, rec).OverridesCreated)

	rec = do(t, h, http.MethodGet, "/api/properties/seaside/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[CatalogDTO](t, rec).Version)

	rec = do(t, h, http.MethodGet, "/api/modifiers/booking-genius/overrides", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]OverrideDTO](t, rec), 3)
}

func TestLoadScenario_CityHotelRules(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "city-hotel"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// GIVEN: the welcome promo is limited to the direct channel
	// WHEN: quoting with the promo on direct and on corporate
	// THEN: direct applies it, corporate rejects it
	rec = do(t, h, http.MethodPost, "/api/properties/city/quote",
		`{"room_type": "dbl", "season": "quiet", "channel": "direct", "guest_type": "member", "promos": ["WELCOME10"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	applied := appliedIDs(decode[QuoteDTO](t, rec))
	assert.Contains(t, applied, "welcome")
	assert.Contains(t, applied, "member")

	rec = do(t, h, http.MethodPost, "/api/properties/city/quote",
		`{"room_type": "dbl", "season": "quiet", "channel": "corporate", "promos": ["WELCOME10"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decode[QuoteDTO](t, rec)
	assert.NotContains(t, appliedIDs(q), "welcome")
	rejected := make([]string, 0, len(q.Rejected))
	for _, r := range q.Rejected {
		rejected = append(rejected, r.Modifier)
	}
	assert.Contains(t, rejected, "welcome")
}

func TestLoadScenario_Unknown(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "moon-base"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/scenarios/load", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListScenarios_Loaded(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/scenarios/load", `{"scenario_id": "city-hotel"}`).Code)

	rec := do(t, h, http.MethodGet, "/api/scenarios/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	loaded := map[string]bool{}
	for _, s := range decode[[]ScenarioDTO](t, rec) {
		loaded[s.ID] = s.Loaded
	}
	assert.Equal(t, map[string]bool{"seaside-resort": false, "city-hotel": true}, loaded)
}

func appliedIDs(q QuoteDTO) []string {
	ids := make([]string, 0, len(q.Breakdown.Modifiers))
	for _, m := range q.Breakdown.Modifiers {
		ids = append(ids, m.ID)
	}
	return ids
}
