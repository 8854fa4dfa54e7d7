package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/content"
)

// contentError maps content service errors onto HTTP responses.
func contentError(w http.ResponseWriter, err error, notFound, failed string) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.BadRequest(w, verr.Msg)
	case errors.Is(err, content.ErrNotFound):
		httputil.NotFound(w, notFound)
	default:
		httputil.InternalError(w, err, failed)
	}
}

func decodePatch(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	var patch json.RawMessage
	if !httputil.Decode(w, r, &patch) {
		return nil, false
	}
	return patch, true
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

// ListProjects godoc
//
//	GET /api/projects
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.content.Projects(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch projects")
		return
	}
	httputil.OK(w, projects)
}

// CreateProject godoc
//
//	POST /api/projects
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var p domain.Project
	if !httputil.Decode(w, r, &p) {
		return
	}
	created, err := h.content.CreateProject(r.Context(), p)
	if err != nil {
		contentError(w, err, "Project not found", "Failed to create project")
		return
	}
	httputil.Created(w, created)
}

// UpdateProject merges the body into the stored project.
//
//	PUT /api/projects/{id}
func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}
	updated, err := h.content.UpdateProject(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		contentError(w, err, "Project not found", "Failed to update project")
		return
	}
	httputil.OK(w, updated)
}

// DeleteProject godoc
//
//	DELETE /api/projects/{id}
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		contentError(w, err, "Project not found", "Failed to delete project")
		return
	}
	httputil.OK(w, map[string]string{"message": "Project deleted"})
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

// ListServices godoc
//
//	GET /api/services
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.content.Services(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch services")
		return
	}
	httputil.OK(w, services)
}

// GetService looks a service up by its slug. The route shares the {id}
// segment with PUT, which addresses services by id.
//
//	GET /api/services/{slug}
func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.content.ServiceBySlug(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		contentError(w, err, "Service not found", "Failed to fetch service")
		return
	}
	httputil.OK(w, svc)
}

// UpdateService godoc
//
//	PUT /api/services/{id}
func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}
	updated, err := h.content.UpdateService(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		contentError(w, err, "Service not found", "Failed to update service")
		return
	}
	httputil.OK(w, updated)
}

// ---------------------------------------------------------------------------
// Blogs
// ---------------------------------------------------------------------------

// ListBlogs godoc
//
//	GET /api/blogs
func (h *Handlers) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.content.Blogs(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch blogs")
		return
	}
	httputil.OK(w, blogs)
}

// GetBlog godoc
//
//	GET /api/blogs/{id}
func (h *Handlers) GetBlog(w http.ResponseWriter, r *http.Request) {
	b, err := h.content.Blog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		contentError(w, err, "Blog not found", "Failed to fetch blog")
		return
	}
	httputil.OK(w, b)
}

// CreateBlog derives the id from the title.
//
//	POST /api/blogs
func (h *Handlers) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var b domain.Blog
	if !httputil.Decode(w, r, &b) {
		return
	}
	created, err := h.content.CreateBlog(r.Context(), b)
	if err != nil {
		contentError(w, err, "Blog not found", "Failed to create blog")
		return
	}
	httputil.Created(w, created)
}

// UpdateBlog godoc
//
//	PUT /api/blogs/{id}
func (h *Handlers) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}
	updated, err := h.content.UpdateBlog(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		contentError(w, err, "Blog not found", "Failed to update blog")
		return
	}
	httputil.OK(w, updated)
}

// DeleteBlog godoc
//
//	DELETE /api/blogs/{id}
func (h *Handlers) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteBlog(r.Context(), chi.URLParam(r, "id")); err != nil {
		contentError(w, err, "Blog not found", "Failed to delete blog")
		return
	}
	httputil.OK(w, map[string]string{"message": "Blog deleted"})
}

// ContentRevisions lists recorded writes of the content document.
//
//	GET /api/content/revisions
func (h *Handlers) ContentRevisions(w http.ResponseWriter, r *http.Request) {
	revs, err := h.content.Revisions(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch revisions")
		return
	}
	if revs == nil {
		revs = []domain.ContentRevision{}
	}
	httputil.OK(w, map[string]any{"revisions": revs})
}
