package domain

import "time"

// AnalyticsEvent is one page view. Append-only.
type AnalyticsEvent struct {
	ID        int64     `json:"id" db:"id"`
	TS        time.Time `json:"ts" db:"ts"`
	Path      string    `json:"path" db:"path"`
	SessionID string    `json:"session_id" db:"session_id"`
	Referrer  *string   `json:"referrer,omitempty" db:"referrer"`
	UserAgent *string   `json:"user_agent,omitempty" db:"user_agent"`
	Country   *string   `json:"country,omitempty" db:"country"`
	IsBot     bool      `json:"is_bot" db:"is_bot"`
}

// PageViews is a path with its non-bot view count.
type PageViews struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// AnalyticsSummary aggregates events over a trailing window of Days days.
type AnalyticsSummary struct {
	Days      int         `json:"days"`
	Pageviews int64       `json:"pageviews"`
	Visitors  int64       `json:"visitors"`
	Bots      int64       `json:"bots"`
	TopPages  []PageViews `json:"topPages"`
}
