package memory

import (
	"context"
	"sort"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/service/seo"
)

// SEORepo implements seo.Repository.
type SEORepo struct{ st *state }

func (r *SEORepo) Get(_ context.Context, page string) (*domain.SEOEntry, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	e, ok := r.st.seo[page]
	if !ok {
		return nil, seo.ErrNotFound
	}
	return &e, nil
}

func (r *SEORepo) All(context.Context) ([]domain.SEOEntry, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	out := make([]domain.SEOEntry, 0, len(r.st.seo))
	for _, e := range r.st.seo {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })
	return out, nil
}

func (r *SEORepo) Count(context.Context) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return int64(len(r.st.seo)), nil
}

func (r *SEORepo) Upsert(_ context.Context, entries []domain.SEOEntry) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, e := range entries {
		e.UpdatedAt = st.now()
		st.seo[e.Page] = e
	}
	return nil
}
