package memory

import (
	"context"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/service/contact"
)

// ContactRepo implements contact.Repository.
type ContactRepo struct{ st *state }

func (r *ContactRepo) Create(_ context.Context, s *domain.ContactSubmission) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	s.ID = st.nextID()
	s.SubmittedAt = st.now()
	st.contacts = append(st.contacts, *s)
	return nil
}

func (r *ContactRepo) List(context.Context) ([]domain.ContactSubmission, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]domain.ContactSubmission, 0, len(st.contacts))
	for i := len(st.contacts) - 1; i >= 0; i-- {
		out = append(out, st.contacts[i])
	}
	return out, nil
}

func (r *ContactRepo) Get(_ context.Context, id int64) (*domain.ContactSubmission, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, c := range st.contacts {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, contact.ErrNotFound
}
