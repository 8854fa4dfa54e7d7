package memory

import (
	"context"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/service/insights"
)

// InsightsRepo implements insights.Repository.
type InsightsRepo struct{ st *state }

func (r *InsightsRepo) ListCampaigns(context.Context) ([]domain.Campaign, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	out := make([]domain.Campaign, 0, len(r.st.campaigns))
	for i := len(r.st.campaigns) - 1; i >= 0; i-- {
		out = append(out, *r.st.campaigns[i])
	}
	return out, nil
}

func (r *InsightsRepo) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, c := range r.st.campaigns {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, insights.ErrNotFound
}

func (r *InsightsRepo) SaveCampaign(_ context.Context, c *domain.Campaign) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	if c.ID == 0 {
		c.ID = st.nextID()
		c.CreatedAt, c.UpdatedAt, c.LastRunAt = now, now, nil
		cp := *c
		st.campaigns = append(st.campaigns, &cp)
		return nil
	}
	for i, existing := range st.campaigns {
		if existing.ID != c.ID {
			continue
		}
		c.LastRunAt = existing.LastRunAt
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
		cp := *c
		st.campaigns[i] = &cp
		return nil
	}
	return insights.ErrNotFound
}

func (r *InsightsRepo) Targets(_ context.Context, q insights.TargetQuery) ([]domain.Recipient, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []domain.Recipient
	for _, s := range st.subscribers {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if s.Unsubscribed {
			continue
		}
		if q.SubscribedBefore != nil && s.SubscribedAt.After(*q.SubscribedBefore) {
			continue
		}
		if q.ExcludeSent && r.logged(q.CampaignID, s.Email) {
			continue
		}
		out = append(out, domain.Recipient{Email: s.Email, SubscribedAt: s.SubscribedAt})
	}
	return out, nil
}

func (r *InsightsRepo) logged(campaignID int64, email string) bool {
	for _, l := range r.st.logs {
		if l.CampaignID == campaignID && l.Email == email {
			return true
		}
	}
	return false
}

func (r *InsightsRepo) RecordSend(_ context.Context, l *domain.SendLog) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	l.ID = st.nextID()
	if l.SentAt.IsZero() {
		l.SentAt = st.now()
	}
	st.logs = append(st.logs, *l)
	return nil
}

func (r *InsightsRepo) MarkRun(_ context.Context, id int64, at time.Time) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, c := range st.campaigns {
		if c.ID == id {
			t := at
			c.LastRunAt = &t
			c.UpdatedAt = st.now()
		}
	}
	return nil
}

func (r *InsightsRepo) ListLogs(_ context.Context, campaignID int64, limit int) ([]domain.SendLog, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	out := []domain.SendLog{}
	for i := len(r.st.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.st.logs[i].CampaignID == campaignID {
			out = append(out, r.st.logs[i])
		}
	}
	return out, nil
}
