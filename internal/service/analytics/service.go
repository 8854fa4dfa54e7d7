package analytics

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/metrics"
)

const (
	DefaultDays = 30
	MaxDays     = 365
	topPages    = 10
)

var botPattern = regexp.MustCompile(`(?i)(bot|crawler|spider|crawling|google|bing|yahoo|duckduck|baidu|yandex|sogou|facebook|slurp|linkedin|meta|telegram|whatsapp|discord|preview)`)

// IsBot reports whether a User-Agent looks like a crawler or link previewer.
// An empty agent is not a bot.
func IsBot(userAgent string) bool {
	return userAgent != "" && botPattern.MatchString(userAgent)
}

// TrackInput is one page view as received from the browser plus request headers.
type TrackInput struct {
	Path      string
	SessionID string
	Referrer  string
	UserAgent string
	Country   string
}

// Service implements page view tracking and aggregation.
type Service struct {
	repo     Repository
	recorder Recorder
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder routes tracked events through r instead of inserting directly.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an analytics service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.recorder == nil {
		s.recorder = repoRecorder{repo}
	}
	return s
}

// Track builds an event from in and hands it to the recorder.
func (s *Service) Track(ctx context.Context, in TrackInput) (*domain.AnalyticsEvent, error) {
	if in.Path == "" || in.SessionID == "" {
		return nil, ErrInvalidPayload
	}
	ev := &domain.AnalyticsEvent{
		TS:        s.now().UTC(),
		Path:      in.Path,
		SessionID: in.SessionID,
		Referrer:  optional(in.Referrer),
		UserAgent: optional(in.UserAgent),
		Country:   optional(in.Country),
		IsBot:     IsBot(in.UserAgent),
	}
	if err := s.recorder.Record(ctx, ev); err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}
	metrics.AnalyticsEvents.WithLabelValues(strconv.FormatBool(ev.IsBot)).Inc()
	return ev, nil
}

// Store persists an already-built event. The queue consumer calls it.
func (s *Service) Store(ctx context.Context, ev *domain.AnalyticsEvent) error {
	return s.repo.Insert(ctx, ev)
}

// Summary aggregates the trailing days window, clamped to [1, 365].
func (s *Service) Summary(ctx context.Context, days int) (*domain.AnalyticsSummary, error) {
	days = ClampDays(days)
	since := s.now().AddDate(0, 0, -days)
	sum, err := s.repo.Summary(ctx, since, topPages)
	if err != nil {
		return nil, err
	}
	sum.Days = days
	if sum.TopPages == nil {
		sum.TopPages = []domain.PageViews{}
	}
	return sum, nil
}

// ClampDays bounds a window to [1, 365].
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// ParseDays reads a ?days= value, defaulting to 30 when absent or not a number.
func ParseDays(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultDays
	}
	return n
}

type repoRecorder struct{ repo Repository }

func (r repoRecorder) Record(ctx context.Context, ev *domain.AnalyticsEvent) error {
	return r.repo.Insert(ctx, ev)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
