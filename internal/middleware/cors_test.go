package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solprod/contact-api/internal/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("allows all origins by default", func(t *testing.T) {
		t.Parallel()

		h := middleware.CORS()(okHandler())
		req := httptest.NewRequest(http.MethodPost, "/api/contact/discuss", nil)
		req.Header.Set("Origin", "https://solprod.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("answers preflight directly", func(t *testing.T) {
		t.Parallel()

		h := middleware.CORS()(okHandler())
		req := httptest.NewRequest(http.MethodOptions, "/api/contact/discuss", nil)
		req.Header.Set("Origin", "https://solprod.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("echoes configured origin", func(t *testing.T) {
		t.Parallel()

		h := middleware.CORS(middleware.WithAllowOrigins("https://solprod.example"))(okHandler())
		req := httptest.NewRequest(http.MethodPost, "/api/contact/discuss", nil)
		req.Header.Set("Origin", "https://solprod.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "https://solprod.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		t.Parallel()

		h := middleware.CORS(middleware.WithAllowOrigins("https://solprod.example"))(okHandler())
		req := httptest.NewRequest(http.MethodPost, "/api/contact/discuss", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("non-CORS request passes through untouched", func(t *testing.T) {
		t.Parallel()

		h := middleware.CORS()(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
