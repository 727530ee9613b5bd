/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging (method, path, status, duration)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the revenue-management frontend

ROUTE GROUPS:
  /api/health            Liveness
  /api/properties/{id}/* Catalog, quote, matrix
  /api/quote/legacy      Legacy step-model quote
  /api/quotes/{id}       Quote history
  /api/overrides/*       Season override resolution
  /api/modifiers/*       Rate modifier base changes
  /api/scenarios/*       Demo catalogs

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// DefaultAllowedOrigins are used when NewRouter gets none.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Property routes
		r.Route("/properties/{id}", func(r chi.Router) {
			r.Get("/catalog", h.GetCatalog)
			r.Put("/catalog", h.PutCatalog)
			r.Post("/quote", h.Quote)
			r.Get("/matrix", h.Matrix)
		})

		// Quote routes
		r.Post("/quote/legacy", h.LegacyQuote)
		r.Get("/quotes/{id}", h.GetQuote)

		// Season override routes
		r.Route("/overrides/{modifier}/{season}", func(r chi.Router) {
			r.Get("/", h.GetOverride)
			r.Put("/", h.CustomizeOverride)
			r.Post("/reset", h.ResetOverride)
		})

		// Rate modifier routes
		r.Route("/modifiers/{modifier}", func(r chi.Router) {
			r.Get("/overrides", h.ListOverrides)
			r.Post("/base", h.ChangeBase)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// RequestLogger logs one line per request with zap.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
