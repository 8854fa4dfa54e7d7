package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/service/contact"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct {
	db     *sql.DB
	schema *Schema
}

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB, schema *Schema) *ContactRepo {
	return &ContactRepo{db: db, schema: schema}
}

const contactColumns = `id, name, email, COALESCE(phone, ''), COALESCE(service, ''), COALESCE(requirement, ''), submitted_at`

func scanContact(row interface{ Scan(...any) error }, s *domain.ContactSubmission) error {
	return row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Service, &s.Requirement, &s.SubmittedAt)
}

func (r *ContactRepo) Create(ctx context.Context, s *domain.ContactSubmission) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contact_submissions (name, email, phone, service, requirement, submitted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, submitted_at
	`, s.Name, s.Email, s.Phone, s.Service, s.Requirement).Scan(&s.ID, &s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("create contact submission: %w", err)
	}
	return nil
}

func (r *ContactRepo) List(ctx context.Context) ([]domain.ContactSubmission, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	out := []domain.ContactSubmission{}
	for rows.Next() {
		var s domain.ContactSubmission
		if err := scanContact(rows, &s); err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ContactRepo) Get(ctx context.Context, id int64) (*domain.ContactSubmission, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	s := &domain.ContactSubmission{}
	err := scanContact(r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contact_submissions WHERE id = $1`, id), s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact submission: %w", err)
	}
	return s, nil
}
