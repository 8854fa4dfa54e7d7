package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/analytics"
)

// Tracker records a pageview. *analytics.Service satisfies it.
type Tracker interface {
	Track(ctx context.Context, in analytics.TrackInput) (*domain.AnalyticsEvent, error)
}

// Handler serves the public pageview beacon.
type Handler struct {
	tracker Tracker
}

// NewHandler creates the beacon handler.
func NewHandler(tracker Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// Routes mounts POST /track.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/track", h.HandleTrack)
	return r
}

// HandleTrack accepts {path, sessionId, referrer?}. Non-string fields count
// as missing. Country comes from the edge headers; the Referer header is
// used when the body has no referrer.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		httputil.BadRequest(w, "Invalid payload")
		return
	}

	in := analytics.TrackInput{
		Path:      stringField(body, "path"),
		SessionID: stringField(body, "sessionId"),
		Referrer:  stringField(body, "referrer"),
		UserAgent: r.UserAgent(),
		Country:   firstHeader(r, "X-Vercel-IP-Country", "X-Country"),
	}
	if in.Referrer == "" {
		in.Referrer = r.Referer()
	}

	if _, err := h.tracker.Track(r.Context(), in); err != nil {
		if errors.Is(err, analytics.ErrInvalidPayload) {
			httputil.BadRequest(w, "Invalid payload")
			return
		}
		httputil.InternalError(w, err, "Failed to track event")
		return
	}
	httputil.OK(w, map[string]bool{"success": true})
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstHeader(r *http.Request, names ...string) string {
	for _, n := range names {
		if v := r.Header.Get(n); v != "" {
			return v
		}
	}
	return ""
}
