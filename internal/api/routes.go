package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/lumewave/agency-site/internal/auth"
	"github.com/lumewave/agency-site/internal/config"
	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/pkg/metrics"
)

// SetupRoutes configures all routes. Public write endpoints are rate limited
// per client IP; admin endpoints go through authManager.RequireAdmin.
func SetupRoutes(h *Handlers, authManager *auth.AuthManager, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)

	// CORS - allow credentials for the admin session cookie
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limit := rateLimiter(cfg.RateLimit.RequestsPerMinute)
	admin := authManager.RequireAdmin

	// Health and metrics (no auth required)
	if h.health != nil {
		r.Get("/health", h.health.HandleHealth)
		r.Get("/health/live", h.health.HandleLiveness)
		r.Get("/health/ready", h.health.HandleReadiness)
	}
	r.Handle("/metrics", metrics.Handler())
	r.Get("/sitemap.xml", h.Sitemap)

	r.Get("/auth/login", authManager.HandleLogin)
	r.Get("/auth/callback", authManager.HandleCallback)
	r.Get("/auth/logout", authManager.HandleLogout)
	r.Get("/auth/user", authManager.HandleUserInfo)

	r.Route("/api", func(r chi.Router) {
		// Public site endpoints
		r.With(limit).Post("/subscription", h.Subscribe)
		r.With(limit).Post("/contact", h.SubmitContact)
		r.Get("/subscribers/unsubscribe", h.Unsubscribe)
		r.Get("/subscribers-count", h.SubscriberCount)
		r.Get("/seo/metadata", h.SEOMetadata)

		r.Route("/analytics", func(r chi.Router) {
			r.With(admin).Get("/summary", h.AnalyticsSummary)
			r.With(limit).Mount("/", h.tracker.Routes())
		})

		// Content reads are public; writes are admin only
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.With(admin).Post("/", h.CreateProject)
			r.With(admin).Put("/{id}", h.UpdateProject)
			r.With(admin).Delete("/{id}", h.DeleteProject)
		})
		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.ListServices)
			r.Get("/{id}", h.GetService) // reads by slug
			r.With(admin).Put("/{id}", h.UpdateService)
		})
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", h.ListBlogs)
			r.Get("/{id}", h.GetBlog)
			r.With(admin).Post("/", h.CreateBlog)
			r.With(admin).Put("/{id}", h.UpdateBlog)
			r.With(admin).Delete("/{id}", h.DeleteBlog)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(admin)

			r.Get("/subscribers", h.ListSubscribers)
			r.Get("/submissions", h.ListSubmissions)
			r.Get("/submissions/{id}", h.GetSubmission)

			r.Get("/seo", h.GetSEO)
			r.Post("/seo", h.SaveSEO)

			r.Get("/content/revisions", h.ContentRevisions)

			r.Route("/insights", func(r chi.Router) {
				r.Get("/campaigns", h.ListCampaigns)
				r.Post("/campaigns", h.SaveCampaign)
				r.Post("/run", h.RunInsights)
				r.Get("/logs", h.CampaignLogs)
			})
		})
	})

	return r
}

// rateLimiter limits requests per client IP. RealIP runs first, so RemoteAddr
// already holds the forwarded address.
func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httputil.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
	)
}
