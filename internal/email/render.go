package email

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/osteele/liquid"
)

// Renderer renders Liquid templates with a parsed-template cache keyed by
// the template source hash.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer with the site filters registered.
func NewRenderer() *Renderer {
	r := &Renderer{engine: liquid.NewEngine()}
	r.registerFilters()
	return r
}

func (r *Renderer) registerFilters() {
	// {{ first_name | default: "there" }}
	r.engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		if s := fmt.Sprintf("%v", value); s == "" || s == "<nil>" {
			return fallback
		}
		return value
	})
	r.engine.RegisterFilter("urlencode", func(s string) string {
		return url.QueryEscape(s)
	})
	r.engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})
	r.engine.RegisterFilter("nl2br", func(s string) string {
		return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
	})
	// {{ subscribed_at | days_since }}
	r.engine.RegisterFilter("days_since", func(value interface{}) int {
		t, ok := value.(time.Time)
		if !ok || t.IsZero() {
			return 0
		}
		return int(time.Since(t).Hours() / 24)
	})
}

// Render renders src with vars. Sources without Liquid markup are returned
// unchanged without touching the engine.
func (r *Renderer) Render(src string, vars map[string]interface{}) (string, error) {
	if !strings.Contains(src, "{{") && !strings.Contains(src, "{%") {
		return src, nil
	}
	sum := sha256.Sum256([]byte(src))
	key := hex.EncodeToString(sum[:8])

	if cached, ok := r.cache.Load(key); ok {
		return cached.(*liquid.Template).RenderString(vars)
	}
	tpl, err := r.engine.ParseString(src)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	r.cache.Store(key, tpl)
	out, err := tpl.RenderString(vars)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// RenderLax renders src and falls back to the raw source when it is not a
// valid template, so stray braces in campaign copy never block a send.
func (r *Renderer) RenderLax(src string, vars map[string]interface{}) string {
	out, err := r.Render(src, vars)
	if err != nil {
		return src
	}
	return out
}
