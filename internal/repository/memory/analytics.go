package memory

import (
	"context"
	"sort"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
)

// AnalyticsRepo implements analytics.Repository.
type AnalyticsRepo struct{ st *state }

func (r *AnalyticsRepo) Insert(_ context.Context, ev *domain.AnalyticsEvent) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	ev.ID = st.nextID()
	if ev.TS.IsZero() {
		ev.TS = st.now()
	}
	st.events = append(st.events, *ev)
	return nil
}

func (r *AnalyticsRepo) Summary(_ context.Context, since time.Time, topN int) (*domain.AnalyticsSummary, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	sum := &domain.AnalyticsSummary{TopPages: []domain.PageViews{}}
	sessions := map[string]struct{}{}
	views := map[string]int64{}
	for _, ev := range r.st.events {
		if ev.TS.Before(since) {
			continue
		}
		sum.Pageviews++
		if ev.IsBot {
			sum.Bots++
			continue
		}
		sessions[ev.SessionID] = struct{}{}
		views[ev.Path]++
	}
	sum.Visitors = int64(len(sessions))
	for p, v := range views {
		sum.TopPages = append(sum.TopPages, domain.PageViews{Path: p, Views: v})
	}
	sort.Slice(sum.TopPages, func(i, j int) bool {
		a, b := sum.TopPages[i], sum.TopPages[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		return a.Path < b.Path
	})
	if len(sum.TopPages) > topN {
		sum.TopPages = sum.TopPages[:topN]
	}
	return sum, nil
}
