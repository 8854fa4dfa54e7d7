package seo

import (
	"context"
	"sort"
	"strings"

	"github.com/lumewave/agency-site/internal/domain"
)

// EntryInput is one page in an admin batch save.
type EntryInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Keywords    *string `json:"keywords,omitempty"`
	OGImage     *string `json:"og_image,omitempty"`
}

// SaveResult reports a batch save. Skipped pages failed validation.
type SaveResult struct {
	Saved   int      `json:"saved"`
	Skipped []string `json:"skipped"`
}

// Service exposes metadata lookups and admin edits.
type Service struct {
	repo     Repository
	seeder   *Seeder
	resolver Resolver
}

// NewService wires the standard database-then-file chain.
func NewService(repo Repository, source SeedSource) *Service {
	seeder := NewSeeder(repo, source)
	return &Service{
		repo:   repo,
		seeder: seeder,
		resolver: Chain{
			NewDatabaseResolver(repo, seeder),
			NewFileResolver(source),
		},
	}
}

// Metadata returns the resolved metadata for page or ErrNotFound.
func (s *Service) Metadata(ctx context.Context, page string) (*domain.SEOData, error) {
	d, err := s.resolver.Resolve(ctx, strings.TrimSpace(page))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// All returns every stored entry keyed by page, seeding an empty table first.
func (s *Service) All(ctx context.Context) (map[string]domain.SEOEntry, error) {
	if err := s.seeder.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	entries, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.SEOEntry, len(entries))
	for _, e := range entries {
		out[e.Page] = e
	}
	return out, nil
}

// Save upserts every entry with a non-empty title and description. Invalid
// entries are skipped rather than failing the batch.
func (s *Service) Save(ctx context.Context, batch map[string]EntryInput) (*SaveResult, error) {
	res := &SaveResult{Skipped: []string{}}
	entries := make([]domain.SEOEntry, 0, len(batch))
	for page, in := range batch {
		page = strings.TrimSpace(page)
		title := strings.TrimSpace(in.Title)
		desc := strings.TrimSpace(in.Description)
		if page == "" || title == "" || desc == "" {
			res.Skipped = append(res.Skipped, page)
			continue
		}
		entries = append(entries, domain.SEOEntry{
			Page:        page,
			Title:       title,
			Description: desc,
			Keywords:    blankToNil(in.Keywords),
			OGImage:     blankToNil(in.OGImage),
		})
	}
	sort.Strings(res.Skipped)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Page < entries[j].Page })

	if len(entries) > 0 {
		if err := s.repo.Upsert(ctx, entries); err != nil {
			return nil, err
		}
	}
	res.Saved = len(entries)
	return res, nil
}

func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
