package api

import (
	"github.com/lumewave/agency-site/internal/service/analytics"
	"github.com/lumewave/agency-site/internal/service/contact"
	"github.com/lumewave/agency-site/internal/service/content"
	"github.com/lumewave/agency-site/internal/service/insights"
	"github.com/lumewave/agency-site/internal/service/seo"
	"github.com/lumewave/agency-site/internal/service/subscriber"
	"github.com/lumewave/agency-site/internal/tracking"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	subscribers *subscriber.Service
	contacts    *contact.Service
	seo         *seo.Service
	content     *content.Service
	analytics   *analytics.Service
	insights    *insights.Service
	tracker     *tracking.Handler
	health      *HealthChecker
	baseURL     string
}

// Services groups the domain services the handlers delegate to.
type Services struct {
	Subscribers *subscriber.Service
	Contacts    *contact.Service
	SEO         *seo.Service
	Content     *content.Service
	Analytics   *analytics.Service
	Insights    *insights.Service
}

// NewHandlers creates a new Handlers instance. baseURL is the public site
// origin used for absolute sitemap links.
func NewHandlers(svc Services, health *HealthChecker, baseURL string) *Handlers {
	return &Handlers{
		subscribers: svc.Subscribers,
		contacts:    svc.Contacts,
		seo:         svc.SEO,
		content:     svc.Content,
		analytics:   svc.Analytics,
		insights:    svc.Insights,
		tracker:     tracking.NewHandler(svc.Analytics),
		health:      health,
		baseURL:     baseURL,
	}
}
