package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lumewave/agency-site/internal/pkg/distlock"
)

// schemaDDL creates every table the site uses. It is idempotent and runs as
// one multi-statement Exec.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS subscribers (
	id            SERIAL PRIMARY KEY,
	email         VARCHAR(255) UNIQUE NOT NULL,
	subscribed_at TIMESTAMPTZ DEFAULT NOW(),
	email_sent    BOOLEAN DEFAULT FALSE,
	unsubscribed  BOOLEAN DEFAULT FALSE
);
ALTER TABLE subscribers ADD COLUMN IF NOT EXISTS unsubscribed BOOLEAN DEFAULT FALSE;
UPDATE subscribers SET unsubscribed = FALSE WHERE unsubscribed IS NULL;

CREATE TABLE IF NOT EXISTS contact_submissions (
	id           SERIAL PRIMARY KEY,
	name         VARCHAR(255) NOT NULL,
	email        VARCHAR(255) NOT NULL,
	phone        VARCHAR(20),
	service      VARCHAR(255),
	requirement  TEXT,
	submitted_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS seo_entries (
	page        VARCHAR(255) PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	keywords    TEXT,
	og_image    TEXT,
	updated_at  TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS analytics_events (
	id         SERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ DEFAULT NOW(),
	path       TEXT NOT NULL,
	session_id TEXT NOT NULL,
	referrer   TEXT,
	user_agent TEXT,
	country    TEXT,
	is_bot     BOOLEAN DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_analytics_events_ts ON analytics_events (ts);

CREATE TABLE IF NOT EXISTS insights_campaigns (
	id                  SERIAL PRIMARY KEY,
	name                TEXT NOT NULL,
	subject             TEXT NOT NULL,
	html                TEXT,
	text                TEXT,
	attachment_filename TEXT,
	attachment_base64   TEXT,
	schedule_type       TEXT NOT NULL,
	target_mode         TEXT NOT NULL DEFAULT 'all',
	send_at             TIMESTAMPTZ,
	every_days          INTEGER,
	drip_days           INTEGER,
	active              BOOLEAN DEFAULT TRUE,
	last_run_at         TIMESTAMPTZ,
	created_at          TIMESTAMPTZ DEFAULT NOW(),
	updated_at          TIMESTAMPTZ DEFAULT NOW()
);
ALTER TABLE insights_campaigns ADD COLUMN IF NOT EXISTS target_mode TEXT NOT NULL DEFAULT 'all';

CREATE TABLE IF NOT EXISTS insights_send_log (
	id          SERIAL PRIMARY KEY,
	campaign_id INTEGER NOT NULL REFERENCES insights_campaigns(id) ON DELETE CASCADE,
	email       VARCHAR(255) NOT NULL,
	sent_at     TIMESTAMPTZ DEFAULT NOW(),
	status      TEXT NOT NULL,
	error       TEXT
);
CREATE INDEX IF NOT EXISTS idx_insights_send_log_campaign_email ON insights_send_log (campaign_id, email);
`

// Schema creates the tables lazily on first use, once per process. A failed
// attempt is retried by the next caller.
type Schema struct {
	db   *sql.DB
	mu   sync.Mutex
	done bool
}

// NewSchema creates a Schema for db.
func NewSchema(db *sql.DB) *Schema { return &Schema{db: db} }

// Ensure applies the DDL if it has not succeeded yet in this process.
func (s *Schema) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaDDL+";"+distlock.LeaseTableDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.done = true
	return nil
}

// Store bundles the Postgres repositories over one connection pool.
type Store struct {
	Schema      *Schema
	Subscribers *SubscriberRepo
	Contacts    *ContactRepo
	SEO         *SEORepo
	Analytics   *AnalyticsRepo
	Insights    *InsightsRepo
}

// New creates every repository sharing one lazily applied schema.
func New(db *sql.DB) *Store {
	schema := NewSchema(db)
	return &Store{
		Schema:      schema,
		Subscribers: NewSubscriberRepo(db, schema),
		Contacts:    NewContactRepo(db, schema),
		SEO:         NewSEORepo(db, schema),
		Analytics:   NewAnalyticsRepo(db, schema),
		Insights:    NewInsightsRepo(db, schema),
	}
}
