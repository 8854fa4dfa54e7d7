package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/contact"
)

// SubmitContact stores a lead from the public contact form.
//
//	POST /api/contact
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in contact.Input
	if !httputil.Decode(w, r, &in) {
		return
	}

	sub, err := h.contacts.Submit(r.Context(), in)
	switch {
	case errors.Is(err, contact.ErrMissingFields):
		httputil.BadRequest(w, "All fields are required")
		return
	case errors.Is(err, contact.ErrInvalidEmail):
		httputil.BadRequest(w, "Please provide a valid email address")
		return
	case err != nil:
		httputil.InternalError(w, err, "Failed to submit form")
		return
	}

	httputil.OK(w, map[string]any{
		"success":      true,
		"message":      "Your inquiry has been received. We will get back to you soon!",
		"submissionId": sub.ID,
	})
}

// ListSubmissions returns all contact submissions, newest first.
//
//	GET /api/submissions
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.contacts.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch submissions")
		return
	}
	httputil.OK(w, subs)
}

// GetSubmission returns one submission.
//
//	GET /api/submissions/{id}
func (h *Handlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "Invalid submission id")
		return
	}
	sub, err := h.contacts.Get(r.Context(), id)
	if errors.Is(err, contact.ErrNotFound) {
		httputil.NotFound(w, "Submission not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch submission")
		return
	}
	httputil.OK(w, sub)
}
