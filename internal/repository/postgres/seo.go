package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/service/seo"
)

// SEORepo implements seo.Repository against PostgreSQL.
type SEORepo struct {
	db     *sql.DB
	schema *Schema
}

// NewSEORepo creates a Postgres-backed SEO repository.
func NewSEORepo(db *sql.DB, schema *Schema) *SEORepo {
	return &SEORepo{db: db, schema: schema}
}

func (r *SEORepo) Get(ctx context.Context, page string) (*domain.SEOEntry, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	e := &domain.SEOEntry{}
	err := r.db.QueryRowContext(ctx, `
		SELECT page, title, description, keywords, og_image, updated_at
		FROM seo_entries WHERE page = $1
	`, page).Scan(&e.Page, &e.Title, &e.Description, &e.Keywords, &e.OGImage, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, seo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get seo entry: %w", err)
	}
	return e, nil
}

func (r *SEORepo) All(ctx context.Context) ([]domain.SEOEntry, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT page, title, description, keywords, og_image, updated_at
		FROM seo_entries ORDER BY page
	`)
	if err != nil {
		return nil, fmt.Errorf("list seo entries: %w", err)
	}
	defer rows.Close()

	var out []domain.SEOEntry
	for rows.Next() {
		var e domain.SEOEntry
		if err := rows.Scan(&e.Page, &e.Title, &e.Description, &e.Keywords, &e.OGImage, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan seo entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SEORepo) Count(ctx context.Context) (int64, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seo_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count seo entries: %w", err)
	}
	return n, nil
}

// Upsert writes all entries in one transaction.
func (r *SEORepo) Upsert(ctx context.Context, entries []domain.SEOEntry) error {
	if err := r.schema.Ensure(ctx); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seo upsert: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO seo_entries (page, title, description, keywords, og_image, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (page) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				keywords = EXCLUDED.keywords,
				og_image = EXCLUDED.og_image,
				updated_at = NOW()
		`, e.Page, e.Title, e.Description, e.Keywords, e.OGImage); err != nil {
			return fmt.Errorf("upsert seo entry %s: %w", e.Page, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seo upsert: %w", err)
	}
	return nil
}
