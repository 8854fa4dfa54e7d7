package analytics

import (
	"context"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
)

// Repository defines the data access contract for analytics events.
type Repository interface {
	// Insert appends one event. TS is set by the caller.
	Insert(ctx context.Context, ev *domain.AnalyticsEvent) error

	// Summary aggregates events with ts >= since. TopPages holds at most
	// topN non-bot paths by view count, descending.
	Summary(ctx context.Context, since time.Time, topN int) (*domain.AnalyticsSummary, error)
}

// Recorder accepts a tracked event for persistence. The repository itself is
// the default; the SQS publisher defers the insert to a consumer.
type Recorder interface {
	Record(ctx context.Context, ev *domain.AnalyticsEvent) error
}
