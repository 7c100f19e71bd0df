// Package handler exposes the HTTP surface: the two contact form endpoints,
// the health endpoint and the service metadata root.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solprod/contact-api/internal/dispatch"
	"github.com/solprod/contact-api/pkg/health"
)

// Service identity, surfaced on / and /api/health.
const (
	ServiceName    = "SolProd Contact API"
	ServiceVersion = "1.0.0"
)

// Handler holds the dependencies of all HTTP endpoints.
type Handler struct {
	dispatcher      *dispatch.Dispatcher
	checks          health.Checks
	log             *slog.Logger
	emailConfigured bool
}

// New creates the Handler. checks may be nil when no probes are configured.
func New(dispatcher *dispatch.Dispatcher, emailConfigured bool, checks health.Checks, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher:      dispatcher,
		checks:          checks,
		log:             log,
		emailConfigured: emailConfigured,
	}
}

// Routes mounts all endpoints on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/contact/discuss", h.discussProject)
	r.Post("/api/contact/review", h.submitReview)
	r.Get("/api/health", h.healthCheck)
	r.Get("/", h.root)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": ServiceName,
		"version": ServiceVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"discuss_project": "/api/contact/discuss",
			"submit_review":   "/api/contact/review",
			"health":          "/api/health",
		},
	})
}

// successResponse is the body of a 200 submission response.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// errorResponse is the body of every non-200 submission response.
type errorResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
