package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/repository/postgres"
	"github.com/lumewave/agency-site/internal/service/contact"
	"github.com/lumewave/agency-site/internal/service/insights"
	"github.com/lumewave/agency-site/internal/service/seo"
)

func newStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS subscribers").WillReturnResult(sqlmock.NewResult(0, 0))
	return postgres.New(db), mock
}

func TestSchemaAppliedOnceAndRetried(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	schema := postgres.NewSchema(db)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS subscribers").WillReturnError(errors.New("connection refused"))
	require.Error(t, schema.Ensure(context.Background()))

	mock.ExpectExec("run_leases").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, schema.Ensure(context.Background()))
	require.NoError(t, schema.Ensure(context.Background()), "second call is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberUpsert(t *testing.T) {
	store, mock := newStore(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO subscribers").
		WithArgs("a@example.com", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "subscribed_at", "email_sent", "unsubscribed"}).
			AddRow(3, "a@example.com", at, true, true))

	s, err := store.Subscribers.Upsert(context.Background(), "a@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.ID)
	assert.True(t, s.Unsubscribed, "upsert leaves the unsubscribed flag as stored")
}

func TestSubscriberListAndCount(t *testing.T) {
	store, mock := newStore(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, email, subscribed_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "subscribed_at", "email_sent", "unsubscribed"}).
			AddRow(2, "b@example.com", at, false, false).
			AddRow(1, "a@example.com", at, true, true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM subscribers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	subs, err := store.Subscribers.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	n, err := store.Subscribers.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSetUnsubscribed(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectExec("UPDATE subscribers SET unsubscribed").
		WithArgs(true, "a@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Subscribers.SetUnsubscribed(context.Background(), "a@example.com", true))
}

func TestContactCreateAndNotFound(t *testing.T) {
	store, mock := newStore(t)
	at := time.Now()
	mock.ExpectQuery("INSERT INTO contact_submissions").
		WithArgs("Jane", "j@example.com", "123", "SEO", "Help").
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at"}).AddRow(9, at))
	mock.ExpectQuery("FROM contact_submissions WHERE id").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	s := &domain.ContactSubmission{Name: "Jane", Email: "j@example.com", Phone: "123", Service: "SEO", Requirement: "Help"}
	require.NoError(t, store.Contacts.Create(context.Background(), s))
	assert.Equal(t, int64(9), s.ID)

	_, err := store.Contacts.Get(context.Background(), 404)
	assert.ErrorIs(t, err, contact.ErrNotFound)
}

func TestSEOGetMissingAndUpsertBatch(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectQuery("FROM seo_entries WHERE page").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seo_entries").WithArgs("about", "About", "Who", nil, nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO seo_entries").WithArgs("home", "Home", "Hi", nil, "/og.png").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := store.SEO.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, seo.ErrNotFound)

	og := "/og.png"
	err = store.SEO.Upsert(context.Background(), []domain.SEOEntry{
		{Page: "about", Title: "About", Description: "Who"},
		{Page: "home", Title: "Home", Description: "Hi", OGImage: &og},
	})
	require.NoError(t, err)
}

func TestSEOUpsertRollsBackOnError(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seo_entries").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := store.SEO.Upsert(context.Background(), []domain.SEOEntry{{Page: "a", Title: "A", Description: "D"}})
	assert.Error(t, err)
}

func TestAnalyticsSummary(t *testing.T) {
	store, mock := newStore(t)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FILTER \(WHERE is_bot IS NOT TRUE\)`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"pageviews", "visitors", "bots"}).AddRow(12, 4, 3))
	mock.ExpectQuery("GROUP BY path").
		WithArgs(since, 10).
		WillReturnRows(sqlmock.NewRows([]string{"path", "views"}).AddRow("/", 6).AddRow("/about", 3))

	sum, err := store.Analytics.Summary(context.Background(), since, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), sum.Pageviews)
	assert.Equal(t, int64(4), sum.Visitors)
	assert.Equal(t, int64(3), sum.Bots)
	assert.Equal(t, []domain.PageViews{{Path: "/", Views: 6}, {Path: "/about", Views: 3}}, sum.TopPages)
}

func TestAnalyticsInsert(t *testing.T) {
	store, mock := newStore(t)
	ua := "Googlebot"
	ev := &domain.AnalyticsEvent{TS: time.Now(), Path: "/about", SessionID: "abc", UserAgent: &ua, IsBot: true}
	mock.ExpectQuery("INSERT INTO analytics_events").
		WithArgs(ev.TS, "/about", "abc", nil, "Googlebot", nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	require.NoError(t, store.Analytics.Insert(context.Background(), ev))
	assert.Equal(t, int64(1), ev.ID)
}

var campaignCols = []string{
	"id", "name", "subject", "html", "text", "attachment_filename", "attachment_base64",
	"schedule_type", "target_mode", "send_at", "every_days", "drip_days",
	"active", "last_run_at", "created_at", "updated_at",
}

func TestListCampaignsScansNullables(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now()
	mock.ExpectQuery("FROM insights_campaigns ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(campaignCols).
			AddRow(2, "Drip", "S", nil, "plain", nil, nil, "drip", "all", nil, nil, 3, true, nil, now, now).
			AddRow(1, "Once", "S", "<p>x</p>", nil, "a.pdf", "JVBE", "one_time", "all", now, nil, nil, false, now, now, now))

	list, err := store.Insights.ListCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ScheduleDrip, list[0].ScheduleType)
	assert.Nil(t, list[0].HTML)
	require.NotNil(t, list[0].DripDays)
	assert.Equal(t, 3, *list[0].DripDays)
	require.NotNil(t, list[1].SendAt)
	require.NotNil(t, list[1].LastRunAt)
}

func TestSaveCampaignInsertAndUnknownUpdate(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO insights_campaigns").
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_run_at", "created_at", "updated_at"}).AddRow(5, nil, now, now))
	mock.ExpectQuery("UPDATE insights_campaigns SET").
		WillReturnError(sql.ErrNoRows)

	c := &domain.Campaign{Name: "N", Subject: "S", ScheduleType: domain.ScheduleRecurring, TargetMode: domain.TargetAll, Active: true}
	require.NoError(t, store.Insights.SaveCampaign(context.Background(), c))
	assert.Equal(t, int64(5), c.ID)

	missing := &domain.Campaign{ID: 77, Name: "N", Subject: "S", ScheduleType: domain.ScheduleDrip}
	assert.ErrorIs(t, store.Insights.SaveCampaign(context.Background(), missing), insights.ErrNotFound)
}

func TestTargetsPassesDripFilters(t *testing.T) {
	store, mock := newStore(t)
	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("NOT EXISTS").
		WithArgs(int64(7), cutoff, true, 500).
		WillReturnRows(sqlmock.NewRows([]string{"email", "subscribed_at"}).AddRow("a@example.com", cutoff.AddDate(0, 0, -1)))

	got, err := store.Insights.Targets(context.Background(), insights.TargetQuery{
		CampaignID: 7, SubscribedBefore: &cutoff, ExcludeSent: true, Limit: 500,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a@example.com", got[0].Email)
}

func TestTargetsBroadcastHasNoCutoff(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectQuery("FROM subscribers s").
		WithArgs(int64(1), nil, false, 1000).
		WillReturnRows(sqlmock.NewRows([]string{"email", "subscribed_at"}))

	got, err := store.Insights.Targets(context.Background(), insights.TargetQuery{CampaignID: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordSendMarkRunAndLogs(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now()
	msg := "bounced"
	mock.ExpectQuery("INSERT INTO insights_send_log").
		WithArgs(int64(1), "a@example.com", "failed", "bounced", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec("UPDATE insights_campaigns SET last_run_at").
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM insights_send_log").
		WithArgs(int64(1), 200).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "email", "sent_at", "status", "error"}).
			AddRow(11, 1, "a@example.com", now, "failed", "bounced"))

	l := &domain.SendLog{CampaignID: 1, Email: "a@example.com", Status: domain.SendFailed, Error: &msg, SentAt: now}
	require.NoError(t, store.Insights.RecordSend(context.Background(), l))
	assert.Equal(t, int64(11), l.ID)
	require.NoError(t, store.Insights.MarkRun(context.Background(), 1, now))

	logs, err := store.Insights.ListLogs(context.Background(), 1, 200)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SendFailed, logs[0].Status)
	require.NotNil(t, logs[0].Error)
}
