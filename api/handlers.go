/*
handlers.go - HTTP API handlers for the rate engine

PURPOSE:
  Exposes the rate engine via REST API. Handles HTTP request/response and
  JSON serialization, and delegates to the pricing and legacy packages.

ENDPOINTS:
  Health:
    GET    /api/health                               Liveness

  Catalogs:
    PUT    /api/properties/{id}/catalog              Save a catalog document
    GET    /api/properties/{id}/catalog              Stored catalog document

  Quotes:
    POST   /api/properties/{id}/quote                Stacking quote for one context
    GET    /api/properties/{id}/matrix               Rate matrix (?rate_plan=&room_type=&pax=)
    POST   /api/quote/legacy                         Legacy step-model quote
    GET    /api/quotes/{id}                          Issued quote from history

  Season overrides:
    GET    /api/overrides/{modifier}/{season}        Resolved row (created on first read)
    PUT    /api/overrides/{modifier}/{season}        Customize
    POST   /api/overrides/{modifier}/{season}/reset  Back to the modifier base
    GET    /api/modifiers/{modifier}/overrides       All rows for a modifier
    POST   /api/modifiers/{modifier}/base            Change base and resync

  Scenarios (scenarios.go):
    GET    /api/scenarios                            Demo catalogs
    POST   /api/scenarios/load                       Load a demo catalog

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Load the property's catalog snapshot (Handler.Catalogs, the store by default)
  4. Call engine logic (quote, matrix, resolver)
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (malformed body, bad date, negative discount,
         rate modifier quoted on another channel)
  - 404: Unknown property, entity, quote or rate modifier
  - 409: Rate modifier ID owned by another property
  - 422: Catalog configuration errors
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
	"github.com/warp/rate-engine/store/sqlite"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// errBadRequest marks input errors raised by the handlers themselves.
var errBadRequest = errors.New("bad request")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	Catalogs      pricing.CatalogProvider
	Resolver      *legacy.Resolver
	MatrixBuilder pricing.MatrixBuilder
	Log           *zap.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Catalogs: store,
		Resolver: legacy.NewResolver(store),
		Log:      log,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CATALOG ENDPOINTS
// =============================================================================

// PutCatalog validates and stores a property's catalog document, then makes
// sure every active rate modifier has an override row for every season.
func (h *Handler) PutCatalog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var doc factory.CatalogJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if doc.Property.ID == "" {
		doc.Property.ID = id
	}
	if doc.Property.ID != id {
		writeError(w, http.StatusBadRequest, "Property ID mismatch",
			fmt.Errorf("path %q, document %q", id, doc.Property.ID))
		return
	}

	bundle, err := h.Store.SaveCatalog(r.Context(), doc)
	if err != nil {
		h.fail(w, "Failed to save catalog", err)
		return
	}

	created, err := ensureOverrides(r.Context(), h.Resolver, bundle)
	if err != nil {
		h.fail(w, "Failed to reconcile season overrides", err)
		return
	}

	h.Log.Info("catalog saved",
		zap.String("property", id),
		zap.Int("modifiers", len(bundle.Catalog.Modifiers)),
		zap.Int("overrides_created", created),
	)

	writeJSON(w, http.StatusOK, catalogSummary(bundle, created))
}

// ensureOverrides creates the missing override rows for every active rate
// modifier of the bundle across the catalog's seasons.
func ensureOverrides(ctx context.Context, res *legacy.Resolver, bundle *factory.Bundle) (int, error) {
	seasons := make([]pricing.SeasonID, 0, len(bundle.Catalog.Seasons))
	for _, s := range bundle.Catalog.Seasons {
		seasons = append(seasons, s.ID)
	}
	created := 0
	for _, m := range bundle.RateModifiers {
		if !m.Active {
			continue
		}
		n, err := res.EnsureForModifier(ctx, m.ID, seasons)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func catalogSummary(bundle *factory.Bundle, created int) CatalogSummaryDTO {
	cat := bundle.Catalog
	return CatalogSummaryDTO{
		PropertyID:       string(cat.Property.ID),
		Name:             cat.Property.Name,
		RoomTypes:        len(cat.RoomTypes),
		Seasons:          len(cat.Seasons),
		Channels:         len(cat.Channels),
		RatePlans:        len(cat.RatePlans),
		Modifiers:        len(cat.Modifiers),
		RateModifiers:    len(bundle.RateModifiers),
		DateOverrides:    len(bundle.DateOverrides),
		OverridesCreated: created,
	}
}

// GetCatalog returns the stored document.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	id := pricing.PropertyID(chi.URLParam(r, "id"))

	rec, err := h.Store.GetCatalogRecord(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get catalog", err)
		return
	}

	var doc factory.CatalogJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &doc); err != nil {
		h.fail(w, "Stored catalog is unreadable", err)
		return
	}

	writeJSON(w, http.StatusOK, CatalogDTO{
		PropertyID: string(rec.PropertyID),
		Version:    rec.Version,
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339),
		Config:     doc,
	})
}

// =============================================================================
// QUOTE ENDPOINTS
// =============================================================================

// Quote prices one booking context and records it in quote history.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id := pricing.PropertyID(chi.URLParam(r, "id"))

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	bctx, err := req.bookingContext()
	if err != nil {
		h.fail(w, "Invalid booking context", err)
		return
	}

	cat, err := h.Catalogs.Catalog(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to load catalog", err)
		return
	}
	q, err := cat.Quote(bctx)
	if err != nil {
		h.fail(w, "Failed to price quote", err)
		return
	}

	dto := toQuoteDTO(id, q)
	rec, err := h.record(r.Context(), string(id), sqlite.QuoteStacking, req, &dto, q.Breakdown.FinalRate)
	if err != nil {
		h.fail(w, "Failed to record quote", err)
		return
	}

	h.Log.Info("quote issued",
		zap.String("quote_id", rec.ID),
		zap.String("property", string(id)),
		zap.String("room_type", req.RoomType),
		zap.String("season", req.Season),
		zap.String("channel", req.Channel),
		zap.String("final_rate", dto.Breakdown.FinalRate),
		zap.Int("modifiers", len(q.Breakdown.Modifiers)),
		zap.Int("warnings", len(q.Breakdown.Warnings)),
	)

	writeJSON(w, http.StatusCreated, dto)
}

// Matrix prices every room × season × channel cell.
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	id := pricing.PropertyID(chi.URLParam(r, "id"))
	q := r.URL.Query()

	req := pricing.MatrixRequest{
		RoomTypeID: pricing.RoomTypeID(q.Get("room_type")),
		RatePlanID: pricing.RatePlanID(q.Get("rate_plan")),
	}
	if v := q.Get("pax"); v != "" {
		pax, err := strconv.Atoi(v)
		if err != nil || pax <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid pax", fmt.Errorf("pax %q", v))
			return
		}
		req.Pax = pax
	}

	cat, err := h.Catalogs.Catalog(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to load catalog", err)
		return
	}

	start := time.Now()
	m, err := h.MatrixBuilder.Build(r.Context(), cat, req)
	if err != nil {
		h.fail(w, "Failed to build matrix", err)
		return
	}
	h.Log.Debug("matrix built",
		zap.String("property", string(id)),
		zap.Int("cells", len(m.Cells)),
		zap.Duration("elapsed", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, toMatrixDTO(m))
}

// LegacyQuote prices one cell with the step model, resolving the rate
// modifier's season discount and any date override covering StayDate. The
// season defaults to the one covering StayDate.
func (h *Handler) LegacyQuote(w http.ResponseWriter, r *http.Request) {
	var req LegacyQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PropertyID == "" || req.RoomType == "" || (req.Season == "" && req.StayDate == "") {
		writeError(w, http.StatusBadRequest, "property_id, room_type and season or stay_date are required", nil)
		return
	}

	bundle, err := h.Store.Bundle(r.Context(), pricing.PropertyID(req.PropertyID))
	if err != nil {
		h.fail(w, "Failed to load catalog", err)
		return
	}
	lq, err := buildLegacyQuote(bundle, req)
	if err != nil {
		h.fail(w, "Invalid legacy quote request", err)
		return
	}

	b, err := h.Resolver.Quote(r.Context(), lq)
	if err != nil {
		h.fail(w, "Failed to price legacy quote", err)
		return
	}

	dto := toLegacyQuoteDTO(b, bundle.Catalog.Property.CurrencySymbol)
	rec, err := h.record(r.Context(), req.PropertyID, sqlite.QuoteLegacy, req, &dto, b.FinalRate)
	if err != nil {
		h.fail(w, "Failed to record quote", err)
		return
	}
	h.Log.Info("legacy quote issued",
		zap.String("quote_id", rec.ID),
		zap.String("property", req.PropertyID),
		zap.String("final_rate", dto.FinalRate),
	)

	writeJSON(w, http.StatusCreated, dto)
}

// GetQuote returns an issued quote from history.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get quote", err)
		return
	}
	writeJSON(w, http.StatusOK, StoredQuoteDTO{
		ID:         rec.ID,
		PropertyID: rec.PropertyID,
		Kind:       rec.Kind,
		FinalRate:  pricing.Money(rec.FinalRate),
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		Request:    json.RawMessage(rec.ContextJSON),
		Quote:      json.RawMessage(rec.BreakdownJSON),
	})
}

// =============================================================================
// SEASON OVERRIDE ENDPOINTS
// =============================================================================

// GetOverride returns the pair's row, creating it from the base on first read.
func (h *Handler) GetOverride(w http.ResponseWriter, r *http.Request) {
	mod, season := overridePair(r)
	rec, err := h.Resolver.GetOrCreate(r.Context(), mod, season)
	if err != nil {
		h.fail(w, "Failed to resolve override", err)
		return
	}
	writeJSON(w, http.StatusOK, toOverrideDTO(rec))
}

// CustomizeOverride sets a season-specific discount.
func (h *Handler) CustomizeOverride(w http.ResponseWriter, r *http.Request) {
	mod, season := overridePair(r)

	var req CustomizeOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Resolver.Customize(r.Context(), mod, season, req.DiscountPercent, req.Notes)
	if err != nil {
		h.fail(w, "Failed to customize override", err)
		return
	}
	h.Log.Info("override customized",
		zap.String("modifier", string(mod)),
		zap.String("season", string(season)),
		zap.String("discount_percent", rec.DiscountPercent.String()),
		zap.Bool("customized", rec.IsCustomized),
	)
	writeJSON(w, http.StatusOK, toOverrideDTO(rec))
}

// ResetOverride returns the pair to the modifier's base.
func (h *Handler) ResetOverride(w http.ResponseWriter, r *http.Request) {
	mod, season := overridePair(r)
	rec, err := h.Resolver.Reset(r.Context(), mod, season)
	if err != nil {
		h.fail(w, "Failed to reset override", err)
		return
	}
	writeJSON(w, http.StatusOK, toOverrideDTO(rec))
}

// ListOverrides returns every season row for a modifier.
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	mod := pricing.ModifierID(chi.URLParam(r, "modifier"))
	if _, err := h.Store.GetRateModifier(r.Context(), mod); err != nil {
		h.fail(w, "Failed to get rate modifier", err)
		return
	}
	rows, err := h.Store.ListOverrides(r.Context(), mod)
	if err != nil {
		h.fail(w, "Failed to list overrides", err)
		return
	}
	out := make([]OverrideDTO, 0, len(rows))
	for _, rec := range rows {
		out = append(out, toOverrideDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// ChangeBase moves a modifier's base discount; non-customized rows follow.
func (h *Handler) ChangeBase(w http.ResponseWriter, r *http.Request) {
	mod := pricing.ModifierID(chi.URLParam(r, "modifier"))

	var req ChangeBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	n, err := h.Resolver.ChangeBase(r.Context(), mod, req.DiscountPercent)
	if err != nil {
		h.fail(w, "Failed to change base discount", err)
		return
	}
	h.Log.Info("base discount changed",
		zap.String("modifier", string(mod)),
		zap.String("discount_percent", req.DiscountPercent.String()),
		zap.Int("resynced", n),
	)
	writeJSON(w, http.StatusOK, ChangeBaseDTO{
		ModifierID:      string(mod),
		DiscountPercent: pricing.Money(req.DiscountPercent),
		Resynced:        n,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (req QuoteRequest) bookingContext() (pricing.BookingContext, error) {
	if req.RoomType == "" {
		return pricing.BookingContext{}, fmt.Errorf("%w: room_type is required", errBadRequest)
	}
	booking, err := parseOptionalDate("booking_date", req.BookingDate)
	if err != nil {
		return pricing.BookingContext{}, err
	}
	arrival, err := parseOptionalDate("arrival_date", req.ArrivalDate)
	if err != nil {
		return pricing.BookingContext{}, err
	}
	return pricing.BookingContext{
		SeasonID:    pricing.SeasonID(req.Season),
		RoomTypeID:  pricing.RoomTypeID(req.RoomType),
		ChannelID:   pricing.ChannelID(req.Channel),
		RatePlanID:  pricing.RatePlanID(req.RatePlan),
		Pax:         req.Pax,
		Nights:      req.Nights,
		BookingDate: booking,
		ArrivalDate: arrival,
		GuestType:   req.GuestType,
	}.WithPromos(req.Promos...), nil
}

func buildLegacyQuote(b *factory.Bundle, req LegacyQuoteRequest) (legacy.QuoteRequest, error) {
	cat := b.Catalog

	room, err := cat.RoomType(pricing.RoomTypeID(req.RoomType))
	if err != nil {
		return legacy.QuoteRequest{}, err
	}
	base, err := cat.Property.BaseRateFor(room)
	if err != nil {
		return legacy.QuoteRequest{}, err
	}
	stay, err := parseOptionalDate("stay_date", req.StayDate)
	if err != nil {
		return legacy.QuoteRequest{}, err
	}
	var season pricing.Season
	if req.Season != "" {
		if season, err = cat.Season(pricing.SeasonID(req.Season)); err != nil {
			return legacy.QuoteRequest{}, err
		}
	} else {
		var ok bool
		if season, ok = pricing.SeasonFor(cat.Seasons, stay); !ok {
			return legacy.QuoteRequest{}, fmt.Errorf("%w: no season covers %s", errBadRequest, req.StayDate)
		}
	}

	lq := legacy.QuoteRequest{
		PropertyID:     cat.Property.ID,
		RoomBaseRate:   base,
		Season:         season,
		RoomModifier:   room.SeasonModifier,
		RateModifierID: pricing.ModifierID(req.RateModifier),
		Occupancy:      req.Pax,
	}
	if lq.Occupancy <= 0 {
		lq.Occupancy = pricing.DefaultPax
	}
	if req.RatePlan != "" {
		plan, err := cat.RatePlan(pricing.RatePlanID(req.RatePlan))
		if err != nil {
			return legacy.QuoteRequest{}, err
		}
		lq.MealSupplement = plan.MealSupplement
	}
	channel := pricing.ChannelID(req.Channel)
	if lq.RateModifierID != "" {
		mod, ok := rateModifier(b, lq.RateModifierID)
		if !ok {
			return legacy.QuoteRequest{}, fmt.Errorf("%w: %q for property %q", legacy.ErrRateModifierNotFound, lq.RateModifierID, cat.Property.ID)
		}
		if channel == "" {
			channel = mod.ChannelID
		}
	}
	if channel != "" {
		if lq.Channel, err = cat.Channel(channel); err != nil {
			return legacy.QuoteRequest{}, err
		}
	}

	if !stay.IsZero() {
		if o, ok := legacy.ForDate(b.DateOverrides, stay); ok {
			lq.Options.DateOverride = &o
		}
	}
	if req.CeilingIncrement != nil {
		lq.Options.CeilingIncrement = *req.CeilingIncrement
	}
	return lq, nil
}

func rateModifier(b *factory.Bundle, id pricing.ModifierID) (legacy.RateModifier, bool) {
	for _, m := range b.RateModifiers {
		if m.ID == id {
			return m, true
		}
	}
	return legacy.RateModifier{}, false
}

func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not YYYY-MM-DD", errBadRequest, field, s)
	}
	return t, nil
}

func overridePair(r *http.Request) (pricing.ModifierID, pricing.SeasonID) {
	return pricing.ModifierID(chi.URLParam(r, "modifier")), pricing.SeasonID(chi.URLParam(r, "season"))
}

// record stores the issued quote and stamps its ID on the response body.
func (h *Handler) record(ctx context.Context, propertyID, kind string, req any, dto any, final decimal.Decimal) (sqlite.QuoteRecord, error) {
	rec := sqlite.QuoteRecord{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Kind:       kind,
		FinalRate:  final,
	}
	switch d := dto.(type) {
	case *QuoteDTO:
		d.ID = rec.ID
	case *LegacyQuoteDTO:
		d.ID = rec.ID
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return sqlite.QuoteRecord{}, err
	}
	dtoJSON, err := json.Marshal(dto)
	if err != nil {
		return sqlite.QuoteRecord{}, err
	}
	rec.ContextJSON = string(reqJSON)
	rec.BreakdownJSON = string(dtoJSON)
	return h.Store.SaveQuote(ctx, rec)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case pricing.IsConfigError(err):
		return http.StatusUnprocessableEntity
	case pricing.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, legacy.ErrRateModifierConflict):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, legacy.ErrNegativeDiscount),
		errors.Is(err, legacy.ErrInvalidIncrement),
		errors.Is(err, legacy.ErrChannelMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status it maps to. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error(message, zap.Error(err))
	} else {
		h.Log.Debug(message, zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
