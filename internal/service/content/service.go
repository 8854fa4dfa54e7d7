package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/validate"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases text, collapses runs of non-alphanumerics into '-' and
// trims leading and trailing dashes.
func Slugify(text string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(text), "-"), "-")
}

// Service implements content CRUD over a single stored document.
type Service struct {
	store DocumentStore
	key   string
	mu    sync.Mutex
}

// NewService creates a content service for the document at key.
func NewService(store DocumentStore, key string) *Service {
	return &Service{store: store, key: key}
}

// Document returns the whole content document. A missing document is empty.
func (s *Service) Document(ctx context.Context) (*domain.ContentDocument, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	doc := emptyDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if doc.Projects == nil {
		doc.Projects = []domain.Project{}
	}
	if doc.Services == nil {
		doc.Services = []domain.Service{}
	}
	if doc.Blogs == nil {
		doc.Blogs = []domain.Blog{}
	}
	return doc, nil
}

// Revisions lists recorded writes of the content document.
func (s *Service) Revisions(ctx context.Context) ([]domain.ContentRevision, error) {
	return s.store.Revisions(ctx, s.key)
}

// mutate runs fn against the current document and persists the result.
func (s *Service) mutate(ctx context.Context, fn func(*domain.ContentDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Document(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	if err := s.store.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	return nil
}

// Projects returns all projects.
func (s *Service) Projects(ctx context.Context) ([]domain.Project, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Projects, nil
}

// CreateProject appends p under a fresh id.
func (s *Service) CreateProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if err := check(p); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	err := s.mutate(ctx, func(doc *domain.ContentDocument) error {
		doc.Projects = append(doc.Projects, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject merges the JSON patch over the stored project.
func (s *Service) UpdateProject(ctx context.Context, id string, patch json.RawMessage) (*domain.Project, error) {
	var out domain.Project
	err := s.mutate(ctx, func(doc *domain.ContentDocument) error {
		for i := range doc.Projects {
			if doc.Projects[i].ID != id {
				continue
			}
			next := doc.Projects[i]
			if err := merge(&next, patch); err != nil {
				return err
			}
			next.ID = id
			if err := check(next); err != nil {
				return err
			}
			doc.Projects[i] = next
			out = next
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.mutate(ctx, func(doc *domain.ContentDocument) error {
		for i := range doc.Projects {
			if doc.Projects[i].ID == id {
				doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

// Services returns all services.
func (s *Service) Services(ctx context.Context) ([]domain.Service, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Services, nil
}

// ServiceBySlug finds a service by slug, falling back to the slug of its title.
func (s *Service) ServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	svcs, err := s.Services(ctx)
	if err != nil {
		return nil, err
	}
	for i := range svcs {
		if ServiceSlug(&svcs[i]) == slug {
			return &svcs[i], nil
		}
	}
	return nil, ErrNotFound
}

// ServiceSlug is the URL slug of a service.
func ServiceSlug(svc *domain.Service) string {
	if svc.Slug != "" {
		return svc.Slug
	}
	return Slugify(svc.Title)
}

// UpdateService merges the patch over the stored service. The slug is the
// one provided, else the existing one, else derived from the title.
func (s *Service) UpdateService(ctx context.Context, id string, patch json.RawMessage) (*domain.Service, error) {
	var out domain.Service
	err := s.mutate(ctx, func(doc *domain.ContentDocument) error {
		for i := range doc.Services {
			if doc.Services[i].ID != id {
				continue
			}
			existingSlug := doc.Services[i].Slug
			next := doc.Services[i]
			next.Slug = ""
			if err := merge(&next, patch); err != nil {
				return err
			}
			next.ID = id
			if next.Slug == "" {
				next.Slug = existingSlug
			}
			if next.Slug == "" {
				next.Slug = Slugify(next.Title)
			}
			if err := check(next); err != nil {
				return err
			}
			doc.Services[i] = next
			out = next
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Blogs returns all posts.
func (s *Service) Blogs(ctx context.Context) ([]domain.Blog, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Blogs, nil
}

// Blog returns one post.
func (s *Service) Blog(ctx context.Context, id string) (*domain.Blog, error) {
	blogs, err := s.Blogs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range blogs {
		if blogs[i].ID == id {
			return &blogs[i], nil
		}
	}
	return nil, ErrNotFound
}

// CreateBlog appends b with an id slugged from its title, suffixed -2, -3...
// when taken.
func (s *Service) CreateBlog(ctx context.Context, b domain.Blog) (*domain.Blog, error) {
	if err := check(b); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, func(doc *domain.ContentDocument) error {
		taken := make(map[string]bool, len(doc.Blogs))
		for _, existing := range doc.Blogs {
			taken[existing.ID] = true
		}
		base := Slugify(b.Title)
		if base == "" {
			base = "post"
		}
		b.ID = base
		for n := 2; taken[b.ID]; n++ {
			b.ID = base + "-" + strconv.Itoa(n)
		}
		doc.Blogs = append(doc.Blogs, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBlog merges the patch over the stored post. The id never changes.
func (s *Service) UpdateBlog(ctx context.Context, id string, patch json.RawMessage) (*domain.Blog, error) {
	var out domain.Blog
	err := s.mutate(ctx, func(doc *domain.ContentDocument) error {
		for i := range doc.Blogs {
			if doc.Blogs[i].ID != id {
				continue
			}
			next := doc.Blogs[i]
			if err := merge(&next, patch); err != nil {
				return err
			}
			next.ID = id
			if err := check(next); err != nil {
				return err
			}
			doc.Blogs[i] = next
			out = next
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBlog removes a post.
func (s *Service) DeleteBlog(ctx context.Context, id string) error {
	return s.mutate(ctx, func(doc *domain.ContentDocument) error {
		for i := range doc.Blogs {
			if doc.Blogs[i].ID == id {
				doc.Blogs = append(doc.Blogs[:i], doc.Blogs[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func merge(dst any, patch json.RawMessage) error {
	if len(patch) == 0 {
		return nil
	}
	if err := json.Unmarshal(patch, dst); err != nil {
		return &ValidationError{Msg: "Invalid JSON body"}
	}
	return nil
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}

func emptyDocument() *domain.ContentDocument {
	return &domain.ContentDocument{
		Projects: []domain.Project{},
		Services: []domain.Service{},
		Blogs:    []domain.Blog{},
	}
}
