package memory

import (
	"context"
	"sort"

	"github.com/lumewave/agency-site/internal/domain"
)

// SubscriberRepo implements subscriber.Repository.
type SubscriberRepo struct{ st *state }

func (r *SubscriberRepo) Upsert(_ context.Context, email string, emailSent bool) (*domain.Subscriber, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.subscribers {
		if s.Email == email {
			s.EmailSent = emailSent
			s.SubscribedAt = st.now()
			cp := *s
			return &cp, nil
		}
	}
	s := &domain.Subscriber{ID: st.nextID(), Email: email, SubscribedAt: st.now(), EmailSent: emailSent}
	st.subscribers = append(st.subscribers, s)
	cp := *s
	return &cp, nil
}

func (r *SubscriberRepo) SetUnsubscribed(_ context.Context, email string, unsubscribed bool) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.subscribers {
		if s.Email == email {
			s.Unsubscribed = unsubscribed
		}
	}
	return nil
}

func (r *SubscriberRepo) List(context.Context) ([]domain.Subscriber, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]domain.Subscriber, 0, len(st.subscribers))
	for _, s := range st.subscribers {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubscribedAt.After(out[j].SubscribedAt) })
	return out, nil
}

func (r *SubscriberRepo) Count(context.Context) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return int64(len(r.st.subscribers)), nil
}
