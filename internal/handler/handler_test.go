package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solprod/contact-api/internal/dispatch"
	"github.com/solprod/contact-api/internal/handler"
	"github.com/solprod/contact-api/internal/notify"
	"github.com/solprod/contact-api/pkg/health"
	"github.com/solprod/contact-api/pkg/logger"
	"github.com/solprod/contact-api/pkg/mailer"
	"github.com/solprod/contact-api/pkg/ratelimit"
)

// fakeSender counts deliveries and optionally fails.
type fakeSender struct {
	sent int
	err  error
}

func (s *fakeSender) Send(context.Context, *mailer.Email) error {
	s.sent++
	return s.err
}

type testServer struct {
	router *chi.Mux
	sender *fakeSender
}

func newTestServer(t *testing.T, opts ...func(*testServer)) *testServer {
	t.Helper()

	ts := &testServer{sender: &fakeSender{}}

	limiter := ratelimit.NewMemory(5, 15*time.Minute)
	formatter := notify.NewFormatter("inbox@example.com")
	d := dispatch.New(limiter, formatter, mailer.New(ts.sender, "noreply@example.com"), logger.NewNope())

	ts.router = chi.NewRouter()
	handler.New(d, true, health.Checks{}, logger.NewNope()).Routes(ts.router)

	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

func (ts *testServer) post(t *testing.T, path, body, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const validDiscussBody = `{"name":"Jo","email":"jo@x.com","phone":"1234567890","comment":"Hello there, please call"}`

func TestDiscussProject(t *testing.T) {
	t.Parallel()

	t.Run("valid submission is delivered", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t)
		rec := ts.post(t, "/api/contact/discuss", validDiscussBody, "10.0.0.1:52000")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Thank you! Your message has been sent successfully.", body["message"])
		assert.Equal(t, 1, ts.sender.sent)
	})

	t.Run("short name fails validation", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t)
		rec := ts.post(t, "/api/contact/discuss",
			`{"name":"J","email":"jo@x.com","phone":"1234567890","comment":"Hello there, please call"}`,
			"10.0.0.1:52000")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["detail"], "Name must be at least 2 characters long")
		assert.Zero(t, ts.sender.sent)
	})

	t.Run("multiple invalid fields are all reported", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t)
		rec := ts.post(t, "/api/contact/discuss",
			`{"name":"J","email":"nope","phone":"123","comment":"short"}`,
			"10.0.0.1:52000")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		detail, _ := decodeBody(t, rec)["detail"].(string)
		assert.Contains(t, detail, "Name must be at least 2 characters long")
		assert.Contains(t, detail, "Invalid email format")
		assert.Contains(t, detail, "Invalid phone number format")
		assert.Contains(t, detail, "Comment must be at least 10 characters long")
		assert.Contains(t, detail, ". ")
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t)
		rec := ts.post(t, "/api/contact/discuss", `{"name":`, "10.0.0.1:52000")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delivery failure stays generic", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t, func(ts *testServer) {
			ts.sender.err = errors.New("smtp: auth: 535 bad credentials")
		})
		rec := ts.post(t, "/api/contact/discuss", validDiscussBody, "10.0.0.1:52000")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Sorry, there was an error sending your message. Please try again.", body["detail"])
		assert.NotContains(t, rec.Body.String(), "535", "transport detail must not leak")
	})
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	t.Run("valid review is delivered", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t)
		rec := ts.post(t, "/api/contact/review",
			`{"name":"Jane","phone":"1234567890","rating":5,"comment":"Great service overall"}`,
			"10.0.0.1:52000")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Thank you for your review!", body["message"])
		assert.Equal(t, 1, ts.sender.sent)
	})

	t.Run("rating out of range mentions the range", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(t)
		rec := ts.post(t, "/api/contact/review",
			`{"name":"Jane","phone":"1234567890","rating":6,"comment":"Great service overall"}`,
			"10.0.0.1:52000")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["detail"], "Rating must be between 1 and 5")
		assert.Zero(t, ts.sender.sent)
	})
}

func TestRateLimiting(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	for i := 0; i < 5; i++ {
		rec := ts.post(t, "/api/contact/discuss", validDiscussBody, "10.0.0.9:52000")
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}

	rec := ts.post(t, "/api/contact/discuss", validDiscussBody, "10.0.0.9:52000")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, false, decodeBody(t, rec)["success"])

	// Another client is unaffected.
	rec = ts.post(t, "/api/contact/discuss", validDiscussBody, "10.0.0.10:52000")
	assert.Equal(t, http.StatusOK, rec.Code)

	// The review endpoint has its own window for the throttled client.
	rec = ts.post(t, "/api/contact/review",
		`{"name":"Jane","phone":"1234567890","rating":5,"comment":"Great service overall"}`,
		"10.0.0.9:52000")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, true, body["email_configured"])

	stamp, ok := body["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
}

func TestRoot(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, handler.ServiceName, body["message"])

	endpoints, ok := body["endpoints"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/api/contact/discuss", endpoints["discuss_project"])
	assert.Equal(t, "/api/contact/review", endpoints["submit_review"])
}
