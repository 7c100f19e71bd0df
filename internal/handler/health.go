package handler

import (
	"net/http"
	"time"

	"github.com/solprod/contact-api/pkg/health"
)

// healthResponse mirrors the upstream health payload, extended with probe
// results when any are configured.
type healthResponse struct {
	Status          string                  `json:"status"`
	Timestamp       string                  `json:"timestamp"`
	Service         string                  `json:"service"`
	Version         string                  `json:"version"`
	EmailConfigured bool                    `json:"email_configured"`
	Checks          map[string]health.Check `json:"checks,omitempty"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	result := health.Run(r.Context(), h.checks)

	status := "OK"
	code := http.StatusOK
	if !result.Healthy {
		status = "DEGRADED"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, healthResponse{
		Status:          status,
		Timestamp:       time.Now().Format(time.RFC3339),
		Service:         ServiceName,
		Version:         ServiceVersion,
		EmailConfigured: h.emailConfigured,
		Checks:          result.Checks,
	})
}
