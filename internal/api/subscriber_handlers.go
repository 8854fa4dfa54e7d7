package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/subscriber"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe handles the newsletter signup form.
//
//	POST /api/subscription
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	_, err := h.subscribers.Subscribe(r.Context(), req.Email)
	switch {
	case err == nil:
		httputil.OK(w, map[string]any{
			"success": true,
			"message": "Check your inbox for the Insights PDF.",
		})
	case errors.Is(err, subscriber.ErrInvalidEmail):
		httputil.BadRequest(w, "Valid email is required")
	case errors.Is(err, subscriber.ErrPDFUnavailable):
		httputil.InternalError(w, err, "PDF not available")
	case errors.Is(err, subscriber.ErrSendFailed):
		httputil.InternalError(w, err, "Failed to send email")
	default:
		httputil.InternalError(w, err)
	}
}

// Unsubscribe verifies the signed link and redirects to the landing page
// with the outcome as a status flag.
//
//	GET /api/subscribers/unsubscribe?email=&token=
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := h.subscribers.Unsubscribe(r.Context(), q.Get("email"), q.Get("token"))
	http.Redirect(w, r, "/unsubscribe?status="+url.QueryEscape(string(status)), http.StatusTemporaryRedirect)
}

// ListSubscribers returns every subscriber, or a CSV export with ?format=csv.
//
//	GET /api/subscribers
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscribers.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch subscribers")
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		httputil.CSV(w, "subscribers.csv", subscriber.CSVHeader, subscriber.CSVRows(subs))
		return
	}
	httputil.OK(w, map[string]any{"subscribers": subs, "count": len(subs)})
}

// SubscriberCount is the public counter shown on the Insights page.
//
//	GET /api/subscribers-count
func (h *Handlers) SubscriberCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.subscribers.Count(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to count subscribers")
		return
	}
	httputil.OK(w, map[string]int64{"count": n})
}
