package handler

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/solprod/contact-api/internal/dispatch"
	"github.com/solprod/contact-api/internal/submission"
)

// Endpoint names used as rate-limiter scopes; each form has its own window.
const (
	endpointDiscuss = "discuss"
	endpointReview  = "review"
)

// Caller-facing messages. Delivery failures stay generic so transport state
// never leaks.
const (
	msgDiscussSent     = "Thank you! Your message has been sent successfully."
	msgReviewSent      = "Thank you for your review!"
	msgDiscussFailed   = "Sorry, there was an error sending your message. Please try again."
	msgReviewFailed    = "Sorry, there was an error submitting your review. Please try again."
	msgTooManyRequests = "Too many requests. Please try again later."
	msgBadBody         = "Invalid request body"
)

type discussProjectRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ProductName string `json:"productName"`
	Comment     string `json:"comment"`
}

type reviewRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) discussProject(w http.ResponseWriter, r *http.Request) {
	var req discussProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: msgBadBody})
		return
	}

	result := h.dispatcher.Dispatch(r.Context(), endpointDiscuss, clientIP(r), func() (submission.Submission, error) {
		return submission.NewDiscussProject(submission.DiscussProjectForm{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			ProductName: req.ProductName,
			Comment:     req.Comment,
		})
	})

	h.respond(w, result, msgDiscussSent, msgDiscussFailed)
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: msgBadBody})
		return
	}

	result := h.dispatcher.Dispatch(r.Context(), endpointReview, clientIP(r), func() (submission.Submission, error) {
		return submission.NewReview(submission.ReviewForm{
			Name:    req.Name,
			Phone:   req.Phone,
			Rating:  req.Rating,
			Comment: req.Comment,
		})
	})

	h.respond(w, result, msgReviewSent, msgReviewFailed)
}

// respond maps each terminal pipeline status to exactly one response shape.
func (h *Handler) respond(w http.ResponseWriter, result dispatch.Result, sentMsg, failedMsg string) {
	switch result.Status {
	case dispatch.StatusDelivered:
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: sentMsg})
	case dispatch.StatusRejected:
		secs := int(math.Ceil(result.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: msgTooManyRequests})
	case dispatch.StatusValidationFailed:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: result.Validation.Detail()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: failedMsg})
	}
}

// clientIP derives the rate-limiter bucket key from the request origin.
// Behind chi's RealIP middleware RemoteAddr is already the client address
// without a port; otherwise the port is stripped here.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
