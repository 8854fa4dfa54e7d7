package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
)

// AnalyticsRepo implements analytics.Repository against PostgreSQL.
type AnalyticsRepo struct {
	db     *sql.DB
	schema *Schema
}

// NewAnalyticsRepo creates a Postgres-backed analytics repository.
func NewAnalyticsRepo(db *sql.DB, schema *Schema) *AnalyticsRepo {
	return &AnalyticsRepo{db: db, schema: schema}
}

func (r *AnalyticsRepo) Insert(ctx context.Context, ev *domain.AnalyticsEvent) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO analytics_events (ts, path, session_id, referrer, user_agent, country, is_bot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, ev.TS, ev.Path, ev.SessionID, ev.Referrer, ev.UserAgent, ev.Country, ev.IsBot).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// Summary counts bots in pageviews but not in visitors or top pages.
func (r *AnalyticsRepo) Summary(ctx context.Context, since time.Time, topN int) (*domain.AnalyticsSummary, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	sum := &domain.AnalyticsSummary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT session_id) FILTER (WHERE is_bot IS NOT TRUE),
		       COUNT(*) FILTER (WHERE is_bot IS TRUE)
		FROM analytics_events
		WHERE ts >= $1
	`, since).Scan(&sum.Pageviews, &sum.Visitors, &sum.Bots)
	if err != nil {
		return nil, fmt.Errorf("analytics totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM analytics_events
		WHERE ts >= $1 AND is_bot IS NOT TRUE
		GROUP BY path
		ORDER BY views DESC, path
		LIMIT $2
	`, since, topN)
	if err != nil {
		return nil, fmt.Errorf("analytics top pages: %w", err)
	}
	defer rows.Close()

	sum.TopPages = []domain.PageViews{}
	for rows.Next() {
		var p domain.PageViews
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("scan top page: %w", err)
		}
		sum.TopPages = append(sum.TopPages, p)
	}
	return sum, rows.Err()
}
