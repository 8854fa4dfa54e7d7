package seo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/logger"
)

// Resolver looks up metadata for a page. A miss is (nil, nil).
type Resolver interface {
	Resolve(ctx context.Context, page string) (*domain.SEOData, error)
}

// Chain tries each resolver in order and returns the first hit.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, page string) (*domain.SEOData, error) {
	for _, r := range c {
		d, err := r.Resolve(ctx, page)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
	}
	return nil, nil
}

// Seeder fills an empty seo_entries table from the seed source.
type Seeder struct {
	repo   Repository
	source SeedSource
	mu     sync.Mutex
}

// NewSeeder creates a Seeder.
func NewSeeder(repo Repository, source SeedSource) *Seeder {
	return &Seeder{repo: repo, source: source}
}

// EnsureSeeded seeds the table only when it holds no rows at all. A missing
// page in a non-empty table is not a reason to seed.
func (s *Seeder) EnsureSeeded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count seo entries: %w", err)
	}
	if n > 0 {
		return nil
	}
	seed, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load seo seed: %w", err)
	}
	entries := make([]domain.SEOEntry, 0, len(seed))
	for page, d := range seed {
		if d.Title == "" || d.Description == "" {
			continue
		}
		entries = append(entries, d.Entry(page))
	}
	if len(entries) == 0 {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Page < entries[j].Page })
	if err := s.repo.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("seed seo entries: %w", err)
	}
	logger.Info("seeded seo entries", "count", len(entries))
	return nil
}

// DatabaseResolver reads seo_entries, seeding the table on first use.
type DatabaseResolver struct {
	repo   Repository
	seeder *Seeder
}

// NewDatabaseResolver creates a DatabaseResolver.
func NewDatabaseResolver(repo Repository, seeder *Seeder) *DatabaseResolver {
	return &DatabaseResolver{repo: repo, seeder: seeder}
}

func (r *DatabaseResolver) Resolve(ctx context.Context, page string) (*domain.SEOData, error) {
	e, err := r.repo.Get(ctx, page)
	if err == nil {
		return e.Data(), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if r.seeder == nil {
		return nil, nil
	}
	if err := r.seeder.EnsureSeeded(ctx); err != nil {
		// The file layer can still answer.
		logger.Warn("seo seeding failed", "error", err)
		return nil, nil
	}
	e, err = r.repo.Get(ctx, page)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.Data(), nil
}

// FileResolver answers from the static seed file.
type FileResolver struct {
	source SeedSource
}

// NewFileResolver creates a FileResolver.
func NewFileResolver(source SeedSource) *FileResolver {
	return &FileResolver{source: source}
}

func (r *FileResolver) Resolve(ctx context.Context, page string) (*domain.SEOData, error) {
	seed, err := r.source.Load(ctx)
	if err != nil {
		logger.Warn("seo seed file unavailable", "error", err)
		return nil, nil
	}
	d, ok := seed[page]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// StoreSource loads the seed JSON from the content store once and caches it.
// A failed load is retried on the next call.
type StoreSource struct {
	files FileSource
	key   string

	mu   sync.Mutex
	data map[string]domain.SEOData
}

// NewStoreSource creates a StoreSource reading key.
func NewStoreSource(files FileSource, key string) *StoreSource {
	return &StoreSource{files: files, key: key}
}

func (s *StoreSource) Load(ctx context.Context) (map[string]domain.SEOData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		return s.data, nil
	}
	raw, err := s.files.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	data := map[string]domain.SEOData{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.key, err)
	}
	s.data = data
	return data, nil
}
