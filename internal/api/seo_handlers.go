package api

import (
	"errors"
	"net/http"

	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/seo"
)

// GetSEO returns every stored entry keyed by page.
//
//	GET /api/seo
func (h *Handlers) GetSEO(w http.ResponseWriter, r *http.Request) {
	entries, err := h.seo.All(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to read SEO data")
		return
	}
	httputil.OK(w, entries)
}

// SaveSEO upserts a page → entry batch. Entries missing a title or
// description are reported as skipped.
//
//	POST /api/seo
func (h *Handlers) SaveSEO(w http.ResponseWriter, r *http.Request) {
	var batch map[string]seo.EntryInput
	if !httputil.Decode(w, r, &batch) {
		return
	}
	if batch == nil {
		httputil.BadRequest(w, "Invalid data format")
		return
	}

	res, err := h.seo.Save(r.Context(), batch)
	if err != nil {
		httputil.InternalError(w, err, "Failed to update SEO data")
		return
	}
	httputil.OK(w, map[string]any{
		"success": true,
		"saved":   res.Saved,
		"skipped": res.Skipped,
	})
}

// SEOMetadata resolves metadata for one page through the database and the
// seed file.
//
//	GET /api/seo/metadata?page=
func (h *Handlers) SEOMetadata(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		httputil.BadRequest(w, "page is required")
		return
	}
	data, err := h.seo.Metadata(r.Context(), page)
	if errors.Is(err, seo.ErrNotFound) {
		httputil.NotFound(w, "SEO data not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err, "Failed to read SEO data")
		return
	}
	httputil.OK(w, data)
}
