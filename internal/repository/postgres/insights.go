package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/service/insights"
)

// InsightsRepo implements insights.Repository against PostgreSQL.
type InsightsRepo struct {
	db     *sql.DB
	schema *Schema
}

// NewInsightsRepo creates a Postgres-backed insights repository.
func NewInsightsRepo(db *sql.DB, schema *Schema) *InsightsRepo {
	return &InsightsRepo{db: db, schema: schema}
}

const campaignColumns = `id, name, subject, html, text, attachment_filename, attachment_base64,
	schedule_type, COALESCE(target_mode, 'all'), send_at, every_days, drip_days,
	COALESCE(active, TRUE), last_run_at, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }, c *domain.Campaign) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Subject, &c.HTML, &c.Text, &c.AttachmentFilename, &c.AttachmentBase64,
		&c.ScheduleType, &c.TargetMode, &c.SendAt, &c.EveryDays, &c.DripDays,
		&c.Active, &c.LastRunAt, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *InsightsRepo) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM insights_campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := []domain.Campaign{}
	for rows.Next() {
		var c domain.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *InsightsRepo) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	c := &domain.Campaign{}
	err := scanCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM insights_campaigns WHERE id = $1`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, insights.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// SaveCampaign inserts when c.ID is zero, otherwise updates by id.
func (r *InsightsRepo) SaveCampaign(ctx context.Context, c *domain.Campaign) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	args := []any{
		c.Name, c.Subject, c.HTML, c.Text, c.AttachmentFilename, c.AttachmentBase64,
		c.ScheduleType, c.TargetMode, c.SendAt, c.EveryDays, c.DripDays, c.Active,
	}

	if c.ID == 0 {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO insights_campaigns (
				name, subject, html, text, attachment_filename, attachment_base64,
				schedule_type, target_mode, send_at, every_days, drip_days, active,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING id, last_run_at, created_at, updated_at
		`, args...).Scan(&c.ID, &c.LastRunAt, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert campaign: %w", err)
		}
		return nil
	}

	err := r.db.QueryRowContext(ctx, `
		UPDATE insights_campaigns SET
			name = $1, subject = $2, html = $3, text = $4,
			attachment_filename = $5, attachment_base64 = $6,
			schedule_type = $7, target_mode = $8, send_at = $9,
			every_days = $10, drip_days = $11, active = $12,
			updated_at = NOW()
		WHERE id = $13
		RETURNING last_run_at, created_at, updated_at
	`, append(args, c.ID)...).Scan(&c.LastRunAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return insights.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// Targets selects active subscribers. With SubscribedBefore set only older
// signups qualify; with ExcludeSent any address already logged for the
// campaign is dropped.
func (r *InsightsRepo) Targets(ctx context.Context, q insights.TargetQuery) ([]domain.Recipient, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.email, s.subscribed_at
		FROM subscribers s
		WHERE s.unsubscribed = FALSE
		  AND ($2::timestamptz IS NULL OR s.subscribed_at <= $2)
		  AND (NOT $3::boolean OR NOT EXISTS (
			SELECT 1 FROM insights_send_log l
			WHERE l.campaign_id = $1 AND l.email = s.email
		  ))
		ORDER BY s.id
		LIMIT $4
	`, q.CampaignID, q.SubscribedBefore, q.ExcludeSent, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list campaign targets: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var rc domain.Recipient
		if err := rows.Scan(&rc.Email, &rc.SubscribedAt); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *InsightsRepo) RecordSend(ctx context.Context, l *domain.SendLog) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO insights_send_log (campaign_id, email, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, l.CampaignID, l.Email, l.Status, l.Error, l.SentAt).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("record send log: %w", err)
	}
	return nil
}

func (r *InsightsRepo) MarkRun(ctx context.Context, id int64, at time.Time) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE insights_campaigns SET last_run_at = $1, updated_at = NOW() WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("mark campaign run: %w", err)
	}
	return nil
}

func (r *InsightsRepo) ListLogs(ctx context.Context, campaignID int64, limit int) ([]domain.SendLog, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, campaign_id, email, sent_at, status, error
		FROM insights_send_log
		WHERE campaign_id = $1
		ORDER BY sent_at DESC, id DESC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list send logs: %w", err)
	}
	defer rows.Close()

	out := []domain.SendLog{}
	for rows.Next() {
		var l domain.SendLog
		if err := rows.Scan(&l.ID, &l.CampaignID, &l.Email, &l.SentAt, &l.Status, &l.Error); err != nil {
			return nil, fmt.Errorf("scan send log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
