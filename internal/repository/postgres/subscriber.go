package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lumewave/agency-site/internal/domain"
)

// SubscriberRepo implements subscriber.Repository against PostgreSQL.
type SubscriberRepo struct {
	db     *sql.DB
	schema *Schema
}

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB, schema *Schema) *SubscriberRepo {
	return &SubscriberRepo{db: db, schema: schema}
}

func (r *SubscriberRepo) Upsert(ctx context.Context, email string, emailSent bool) (*domain.Subscriber, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	s := &domain.Subscriber{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (email, email_sent, subscribed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET
			email_sent = EXCLUDED.email_sent,
			subscribed_at = NOW()
		RETURNING id, email, subscribed_at, COALESCE(email_sent, FALSE), COALESCE(unsubscribed, FALSE)
	`, email, emailSent).Scan(&s.ID, &s.Email, &s.SubscribedAt, &s.EmailSent, &s.Unsubscribed)
	if err != nil {
		return nil, fmt.Errorf("upsert subscriber: %w", err)
	}
	return s, nil
}

func (r *SubscriberRepo) SetUnsubscribed(ctx context.Context, email string, unsubscribed bool) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE subscribers SET unsubscribed = $1 WHERE email = $2`, unsubscribed, email); err != nil {
		return fmt.Errorf("set unsubscribed: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) List(ctx context.Context) ([]domain.Subscriber, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, subscribed_at, COALESCE(email_sent, FALSE), COALESCE(unsubscribed, FALSE)
		FROM subscribers
		ORDER BY subscribed_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	out := []domain.Subscriber{}
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt, &s.EmailSent, &s.Unsubscribed); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) Count(ctx context.Context) (int64, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}
