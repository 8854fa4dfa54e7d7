package seo

import (
	"context"

	"github.com/lumewave/agency-site/internal/domain"
)

// Repository defines the data access contract for seo_entries.
type Repository interface {
	// Get returns ErrNotFound if the page has no row.
	Get(ctx context.Context, page string) (*domain.SEOEntry, error)
	All(ctx context.Context) ([]domain.SEOEntry, error)
	Count(ctx context.Context) (int64, error)
	// Upsert writes every entry keyed by page, refreshing updated_at.
	Upsert(ctx context.Context, entries []domain.SEOEntry) error
}

// SeedSource loads the static page → metadata map.
type SeedSource interface {
	Load(ctx context.Context) (map[string]domain.SEOData, error)
}

// FileSource reads a raw document from the content store.
type FileSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}
