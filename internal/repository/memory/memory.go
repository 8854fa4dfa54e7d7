// Package memory implements every repository in-process. It backs the
// "memory" database driver used for local development and handler tests.
package memory

import (
	"sync"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
)

// state is shared by all repositories of one Store so that campaign
// targeting sees the same subscribers as the subscriber repository.
type state struct {
	mu sync.RWMutex

	subscribers []*domain.Subscriber
	contacts    []domain.ContactSubmission
	seo         map[string]domain.SEOEntry
	events      []domain.AnalyticsEvent
	campaigns   []*domain.Campaign
	logs        []domain.SendLog

	seq int64
	now func() time.Time
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store bundles the in-memory repositories.
type Store struct {
	Subscribers *SubscriberRepo
	Contacts    *ContactRepo
	SEO         *SEORepo
	Analytics   *AnalyticsRepo
	Insights    *InsightsRepo
}

// New creates an empty in-memory store.
func New() *Store {
	st := &state{seo: make(map[string]domain.SEOEntry), now: time.Now}
	return &Store{
		Subscribers: &SubscriberRepo{st},
		Contacts:    &ContactRepo{st},
		SEO:         &SEORepo{st},
		Analytics:   &AnalyticsRepo{st},
		Insights:    &InsightsRepo{st},
	}
}

// SetClock overrides the time source used for server-side timestamps.
func (s *Store) SetClock(now func() time.Time) {
	st := s.Subscribers.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.now = now
}
