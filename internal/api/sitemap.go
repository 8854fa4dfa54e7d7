package api

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/service/content"
)

// staticRoutes are the top-level pages always present in the sitemap.
var staticRoutes = []string{"/", "/about", "/services", "/projects", "/blogs", "/contact", "/insights"}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap renders the static routes plus one URL per service and blog.
//
//	GET /sitemap.xml
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := time.Now().UTC().Format("2006-01-02")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, freq, priority string) {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.baseURL + path, LastMod: today, ChangeFreq: freq, Priority: priority})
	}

	for _, p := range staticRoutes {
		if p == "/" {
			add(p, "weekly", "1.0")
			continue
		}
		add(p, "weekly", "0.8")
	}

	services, err := h.content.Services(ctx)
	if err != nil {
		logger.Warn("sitemap: services unavailable", "error", err)
	}
	for i := range services {
		if slug := content.ServiceSlug(&services[i]); slug != "" {
			add("/services/"+slug, "monthly", "0.7")
		}
	}

	blogs, err := h.content.Blogs(ctx)
	if err != nil {
		logger.Warn("sitemap: blogs unavailable", "error", err)
	}
	for _, b := range blogs {
		add("/blogs/"+b.ID, "monthly", "0.6")
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		logger.Error("sitemap: encode failed", "error", err)
	}
}
