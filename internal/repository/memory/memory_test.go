package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/repository/memory"
	"github.com/lumewave/agency-site/internal/service/analytics"
	"github.com/lumewave/agency-site/internal/service/contact"
	"github.com/lumewave/agency-site/internal/service/insights"
	"github.com/lumewave/agency-site/internal/service/seo"
	"github.com/lumewave/agency-site/internal/service/subscriber"
)

var (
	_ subscriber.Repository = (*memory.SubscriberRepo)(nil)
	_ contact.Repository    = (*memory.ContactRepo)(nil)
	_ seo.Repository        = (*memory.SEORepo)(nil)
	_ analytics.Repository  = (*memory.AnalyticsRepo)(nil)
	_ insights.Repository   = (*memory.InsightsRepo)(nil)
)

type sink struct{ to []string }

func (s *sink) SendInsights(_ context.Context, m *domain.InsightsEmail) error {
	s.to = append(s.to, m.To)
	return nil
}

func TestDripRunAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	store.SetClock(func() time.Time { return now.AddDate(0, 0, -10) })
	_, _ = store.Subscribers.Upsert(ctx, "old@example.com", true)
	_, _ = store.Subscribers.Upsert(ctx, "gone@example.com", true)
	require.NoError(t, store.Subscribers.SetUnsubscribed(ctx, "gone@example.com", true))
	store.SetClock(func() time.Time { return now })
	_, _ = store.Subscribers.Upsert(ctx, "new@example.com", true)

	days := 7
	c := &domain.Campaign{Name: "Welcome drip", Subject: "S", ScheduleType: domain.ScheduleDrip, DripDays: &days, Active: true}
	require.NoError(t, store.Insights.SaveCampaign(ctx, c))

	out := &sink{}
	svc := insights.NewService(store.Insights, out, insights.WithClock(func() time.Time { return now }))
	for i := 0; i < 2; i++ {
		res, err := svc.Run(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{c.ID}, res.Processed)
	}
	assert.Equal(t, []string{"old@example.com"}, out.to, "drip sends once per recipient")

	logs, err := store.Insights.ListLogs(ctx, c.ID, 200)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SendSent, logs[0].Status)

	got, err := store.Insights.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastRunAt)
}

func TestSaveCampaignKeepsRunnerFields(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleOneTime}
	require.NoError(t, store.Insights.SaveCampaign(ctx, c))

	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insights.MarkRun(ctx, c.ID, at))

	c.Subject = "Edited"
	require.NoError(t, store.Insights.SaveCampaign(ctx, c))
	require.NotNil(t, c.LastRunAt)
	assert.True(t, c.LastRunAt.Equal(at), "admin save never clears last_run_at")

	missing := &domain.Campaign{ID: 999}
	assert.ErrorIs(t, store.Insights.SaveCampaign(ctx, missing), insights.ErrNotFound)
}

func TestListCampaignsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, n := range []string{"first", "second"} {
		require.NoError(t, store.Insights.SaveCampaign(ctx, &domain.Campaign{Name: n, Subject: "S", ScheduleType: domain.ScheduleDrip}))
	}
	list, err := store.Insights.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
}

func TestSubscriberUpsertKeepsUnsubscribed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, _ = store.Subscribers.Upsert(ctx, "a@example.com", true)
	require.NoError(t, store.Subscribers.SetUnsubscribed(ctx, "a@example.com", true))
	s, err := store.Subscribers.Upsert(ctx, "a@example.com", false)
	require.NoError(t, err)
	assert.True(t, s.Unsubscribed)
	assert.False(t, s.EmailSent)

	n, _ := store.Subscribers.Count(ctx)
	assert.Equal(t, int64(1), n)
}

func TestContactNewestFirstAndNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Contacts.Create(ctx, &domain.ContactSubmission{Name: "A"}))
	require.NoError(t, store.Contacts.Create(ctx, &domain.ContactSubmission{Name: "B"}))
	list, _ := store.Contacts.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].Name)

	_, err := store.Contacts.Get(ctx, 12345)
	assert.ErrorIs(t, err, contact.ErrNotFound)
}

func TestAnalyticsSummaryTopPagesCapped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Now()
	for i := 0; i < 12; i++ {
		p := "/p" + string(rune('a'+i))
		for j := 0; j <= i; j++ {
			require.NoError(t, store.Analytics.Insert(ctx, &domain.AnalyticsEvent{TS: now, Path: p, SessionID: "s"}))
		}
	}
	require.NoError(t, store.Analytics.Insert(ctx, &domain.AnalyticsEvent{TS: now, Path: "/pl", SessionID: "bot", IsBot: true}))

	sum, err := store.Analytics.Summary(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, sum.TopPages, 10)
	assert.Equal(t, "/pl", sum.TopPages[0].Path)
	assert.Equal(t, int64(12), sum.TopPages[0].Views, "bot views are excluded")
	assert.Equal(t, int64(1), sum.Visitors)
	assert.Equal(t, int64(1), sum.Bots)
}
