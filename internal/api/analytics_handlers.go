package api

import (
	"net/http"

	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/analytics"
)

// AnalyticsSummary aggregates pageviews over the last ?days= days
// (default 30, clamped to 1..365).
//
//	GET /api/analytics/summary
func (h *Handlers) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	days := analytics.ParseDays(r.URL.Query().Get("days"))
	sum, err := h.analytics.Summary(r.Context(), days)
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch analytics")
		return
	}
	httputil.OK(w, sum)
}
