package insights_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/distlock"
	"github.com/lumewave/agency-site/internal/service/insights"
)

// memRepo is an in-memory insights repository for unit testing.
type memRepo struct {
	mu          sync.Mutex
	campaigns   map[int64]*domain.Campaign
	subscribers []domain.Subscriber
	logs        []domain.SendLog
	nextID      int64
	listErr     error
	targetsErr  error
	recordErr   error
	markErr     error
	marked      map[int64]time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{campaigns: make(map[int64]*domain.Campaign), marked: make(map[int64]time.Time)}
}

func (m *memRepo) ListCampaigns(context.Context) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memRepo) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, insights.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) SaveCampaign(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
	} else if _, ok := m.campaigns[c.ID]; !ok {
		return insights.ErrNotFound
	}
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *memRepo) Targets(_ context.Context, q insights.TargetQuery) ([]domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.targetsErr != nil {
		return nil, m.targetsErr
	}
	var out []domain.Recipient
	for _, s := range m.subscribers {
		if s.Unsubscribed {
			continue
		}
		if q.SubscribedBefore != nil && s.SubscribedAt.After(*q.SubscribedBefore) {
			continue
		}
		if q.ExcludeSent && m.hasLog(q.CampaignID, s.Email) {
			continue
		}
		out = append(out, domain.Recipient{Email: s.Email, SubscribedAt: s.SubscribedAt})
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *memRepo) hasLog(campaignID int64, email string) bool {
	for _, l := range m.logs {
		if l.CampaignID == campaignID && l.Email == email {
			return true
		}
	}
	return false
}

func (m *memRepo) RecordSend(_ context.Context, l *domain.SendLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memRepo) MarkRun(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.marked[id] = at
	m.campaigns[id].LastRunAt = &at
	return nil
}

func (m *memRepo) ListLogs(_ context.Context, campaignID int64, limit int) ([]domain.SendLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SendLog
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.logs[i].CampaignID == campaignID {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

func (m *memRepo) addSubscriber(email string, at time.Time) {
	m.subscribers = append(m.subscribers, domain.Subscriber{Email: email, SubscribedAt: at})
}

type fakeSender struct {
	mu   sync.Mutex
	sent []domain.InsightsEmail
	fail map[string]bool
}

func (f *fakeSender) SendInsights(_ context.Context, msg *domain.InsightsEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[msg.To] {
		return errors.New("provider rejected")
	}
	f.sent = append(f.sent, *msg)
	return nil
}

type fakeLease struct {
	held      bool
	acquired  bool
	extends   int
	released  bool
	extendErr error
}

func (l *fakeLease) Acquire(context.Context) (bool, error) {
	if l.held {
		return false, nil
	}
	l.acquired = true
	return true, nil
}
func (l *fakeLease) Extend(context.Context) error { l.extends++; return l.extendErr }
func (l *fakeLease) Release(context.Context) error {
	l.released = true
	return nil
}

var (
	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

func intp(n int) *int                   { return &n }
func timep(t time.Time) *time.Time      { return &t }
func strp(s string) *string             { return &s }
func clock(t time.Time) insights.Option { return insights.WithClock(func() time.Time { return t }) }

func TestRunOneTimeStampsAndNeverRefires(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	repo.addSubscriber("b@example.com", jan1)
	c := &domain.Campaign{Name: "Launch", Subject: "Hello", ScheduleType: domain.ScheduleOneTime, SendAt: timep(jan1), Active: true}
	if err := repo.SaveCampaign(context.Background(), c); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{}
	svc := insights.NewService(repo, sender, clock(jan2))
	res, err := svc.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Processed) != 1 || res.Processed[0] != c.ID {
		t.Fatalf("processed = %v", res.Processed)
	}
	if len(sender.sent) != 2 || res.Sent != 2 {
		t.Fatalf("sent %d emails, result %+v", len(sender.sent), res)
	}
	if got := repo.marked[c.ID]; !got.Equal(jan2) {
		t.Fatalf("last_run_at = %v, want %v", got, jan2)
	}

	later := insights.NewService(repo, sender, clock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	res, err = later.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Processed) != 0 || len(sender.sent) != 2 {
		t.Fatalf("one_time campaign re-fired: %+v", res)
	}
}

func TestRunFailureRecordedAndLoopContinues(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("bad@example.com", jan1)
	repo.addSubscriber("good@example.com", jan1)
	c := &domain.Campaign{Name: "R", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(7), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)

	sender := &fakeSender{fail: map[string]bool{"bad@example.com": true}}
	res, err := insights.NewService(repo, sender, clock(jan2)).Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 || res.Sent != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(repo.logs) != 2 {
		t.Fatalf("want 2 log rows, got %d", len(repo.logs))
	}
	failed := repo.logs[0]
	if failed.Status != domain.SendFailed || failed.Error == nil || !strings.Contains(*failed.Error, "rejected") {
		t.Fatalf("unexpected failed row %+v", failed)
	}
	if repo.logs[1].Status != domain.SendSent {
		t.Fatalf("second row status = %s", repo.logs[1].Status)
	}
}

func TestRunRecurringResendsWholeListByDefault(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	c := &domain.Campaign{Name: "Weekly", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)
	sender := &fakeSender{}

	for _, now := range []time.Time{jan1, jan2} {
		if _, err := insights.NewService(repo, sender, clock(now)).Run(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
	}
	if len(sender.sent) != 2 {
		t.Fatalf("recurring/all should resend each cycle, sent %d", len(sender.sent))
	}
}

func TestRunRecurringNewOnlySkipsPriorRecipients(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	c := &domain.Campaign{Name: "New", Subject: "S", ScheduleType: domain.ScheduleRecurring, TargetMode: domain.TargetNewOnly, EveryDays: intp(1), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)
	sender := &fakeSender{}

	if _, err := insights.NewService(repo, sender, clock(jan1)).Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	repo.addSubscriber("b@example.com", jan1)
	if _, err := insights.NewService(repo, sender, clock(jan2)).Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 || sender.sent[1].To != "b@example.com" {
		t.Fatalf("new_only sent %+v", sender.sent)
	}
}

func TestRunDripTargetsByAgeAndNeverStamps(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.addSubscriber("old@example.com", now.AddDate(0, 0, -5))
	repo.addSubscriber("edge@example.com", now.AddDate(0, 0, -3))
	repo.addSubscriber("fresh@example.com", now.AddDate(0, 0, -2))
	repo.subscribers = append(repo.subscribers, domain.Subscriber{Email: "gone@example.com", SubscribedAt: now.AddDate(0, -1, 0), Unsubscribed: true})
	c := &domain.Campaign{Name: "Drip", Subject: "S", ScheduleType: domain.ScheduleDrip, DripDays: intp(3), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)
	sender := &fakeSender{}

	svc := insights.NewService(repo, sender, clock(now))
	if _, err := svc.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("drip sent to %+v", sender.sent)
	}
	if _, ok := repo.marked[c.ID]; ok {
		t.Fatal("drip campaigns must not stamp last_run_at")
	}

	// Second run at the same instant: everyone eligible already has a log row.
	if _, err := svc.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("drip re-sent to a prior recipient: %d sends", len(sender.sent))
	}
}

func TestRunOnlyCampaignID(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	a := &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true}
	b := &domain.Campaign{Name: "B", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true}
	_ = repo.SaveCampaign(context.Background(), a)
	_ = repo.SaveCampaign(context.Background(), b)

	only := b.ID
	res, err := insights.NewService(repo, &fakeSender{}, clock(jan1)).Run(context.Background(), &only)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Processed) != 1 || res.Processed[0] != b.ID {
		t.Fatalf("processed = %v", res.Processed)
	}
}

func TestRunListErrorsPropagate(t *testing.T) {
	repo := newMemRepo()
	repo.listErr = errors.New("db down")
	if _, err := insights.NewService(repo, &fakeSender{}).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error when campaigns cannot be listed")
	}

	repo = newMemRepo()
	_ = repo.SaveCampaign(context.Background(), &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true})
	repo.targetsErr = errors.New("db down")
	if _, err := insights.NewService(repo, &fakeSender{}, clock(jan1)).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error when targets cannot be listed")
	}
}

func TestRunSwallowsBookkeepingErrors(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	_ = repo.SaveCampaign(context.Background(), &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true})
	repo.recordErr = errors.New("insert failed")
	repo.markErr = errors.New("update failed")

	res, err := insights.NewService(repo, &fakeSender{}, clock(jan1)).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("bookkeeping errors must not fail the run: %v", err)
	}
	if len(res.Processed) != 1 || res.Sent != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunSkipsCampaignWithHeldLease(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	c := &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)

	lease := &fakeLease{held: true}
	var names []string
	sender := &fakeSender{}
	svc := insights.NewService(repo, sender, clock(jan1), insights.WithLeases(func(name string) insights.Lease {
		names = append(names, name)
		return lease
	}))
	res, err := svc.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Processed) != 0 || len(res.Skipped) != 1 || len(sender.sent) != 0 {
		t.Fatalf("held lease should skip campaign: %+v", res)
	}
	if len(names) != 1 || names[0] != insights.LeaseName(c.ID) {
		t.Fatalf("lease names = %v", names)
	}
	if _, ok := repo.marked[c.ID]; ok {
		t.Fatal("skipped campaign must not be stamped")
	}
}

func TestRunExtendsAndReleasesLease(t *testing.T) {
	repo := newMemRepo()
	for _, e := range []string{"a", "b", "c", "d", "e"} {
		repo.addSubscriber(e+"@example.com", jan1)
	}
	_ = repo.SaveCampaign(context.Background(), &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true})

	lease := &fakeLease{}
	svc := insights.NewService(repo, &fakeSender{}, clock(jan1),
		insights.WithExtendEvery(2),
		insights.WithLeases(func(string) insights.Lease { return lease }))
	if _, err := svc.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if !lease.acquired || !lease.released {
		t.Fatalf("lease acquired=%v released=%v", lease.acquired, lease.released)
	}
	if lease.extends != 2 {
		t.Fatalf("extends = %d, want 2", lease.extends)
	}
}

func TestRunStopsWhenLeaseLost(t *testing.T) {
	repo := newMemRepo()
	for _, e := range []string{"a", "b", "c"} {
		repo.addSubscriber(e+"@example.com", jan1)
	}
	c := &domain.Campaign{Name: "A", Subject: "S", ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)

	lease := &fakeLease{extendErr: errors.New("lost")}
	sender := &fakeSender{}
	svc := insights.NewService(repo, sender, clock(jan1),
		insights.WithExtendEvery(1),
		insights.WithLeases(func(string) insights.Lease { return lease }))
	if _, err := svc.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d after losing lease", len(sender.sent))
	}
	if _, ok := repo.marked[c.ID]; ok {
		t.Fatal("campaign stamped after losing lease")
	}
	if !lease.released {
		t.Fatal("lease not released")
	}
}

// hookSender runs onSend after each delivery, outside any repository lock.
type hookSender struct {
	fakeSender
	onSend func(ctx context.Context, msg *domain.InsightsEmail)
}

func (h *hookSender) SendInsights(ctx context.Context, msg *domain.InsightsEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := h.fakeSender.SendInsights(ctx, msg); err != nil {
		return err
	}
	if h.onSend != nil {
		h.onSend(ctx, msg)
	}
	return nil
}

func TestOverlappingRunsSendOneTimeCampaignOnce(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	// Listed newest first: the slow campaign is processed before the other.
	other := &domain.Campaign{Name: "Other", Subject: "S", ScheduleType: domain.ScheduleOneTime, SendAt: timep(jan1), Active: true}
	slow := &domain.Campaign{Name: "Slow", Subject: "S", ScheduleType: domain.ScheduleOneTime, SendAt: timep(jan1), Active: true}
	_ = repo.SaveCampaign(context.Background(), other)
	_ = repo.SaveCampaign(context.Background(), slow)

	table := distlock.NewLocalTable()
	sender := &hookSender{}
	svc := insights.NewService(repo, sender, clock(jan2),
		insights.WithLeases(func(name string) insights.Lease { return table.Lock(name, time.Minute) }))

	var inner *insights.RunResult
	sender.onSend = func(ctx context.Context, msg *domain.InsightsEmail) {
		if msg.CampaignID != slow.ID || inner != nil {
			return
		}
		// A second trigger runs the other campaign to completion while the
		// first run is still busy with the slow one.
		only := other.ID
		res, err := svc.Run(ctx, &only)
		if err != nil {
			t.Errorf("inner Run: %v", err)
		}
		inner = res
	}

	outer, err := svc.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if inner == nil || len(inner.Processed) != 1 || inner.Processed[0] != other.ID {
		t.Fatalf("inner run = %+v", inner)
	}

	deliveries := map[int64]int{}
	for _, m := range sender.sent {
		deliveries[m.CampaignID]++
	}
	if deliveries[other.ID] != 1 || deliveries[slow.ID] != 1 {
		t.Fatalf("deliveries per campaign = %v", deliveries)
	}
	if len(outer.Processed) != 1 || outer.Processed[0] != slow.ID {
		t.Fatalf("outer processed = %v", outer.Processed)
	}
	if len(outer.Skipped) != 1 || outer.Skipped[0] != other.ID {
		t.Fatalf("outer skipped = %v", outer.Skipped)
	}
}

func TestRunIgnoresCallerCancellation(t *testing.T) {
	repo := newMemRepo()
	for _, e := range []string{"a", "b", "c"} {
		repo.addSubscriber(e+"@example.com", jan1)
	}
	c := &domain.Campaign{Name: "Launch", Subject: "S", ScheduleType: domain.ScheduleOneTime, SendAt: timep(jan1), Active: true}
	_ = repo.SaveCampaign(context.Background(), c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &hookSender{onSend: func(context.Context, *domain.InsightsEmail) { cancel() }}

	res, err := insights.NewService(repo, sender, clock(jan2)).Run(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 3 || res.Failed != 0 {
		t.Fatalf("result = %+v", res)
	}
	for _, l := range repo.logs {
		if l.Status != domain.SendSent {
			t.Fatalf("unexpected log row %+v", l)
		}
	}
	if got := repo.marked[c.ID]; !got.Equal(jan2) {
		t.Fatalf("last_run_at = %v, want %v", got, jan2)
	}
}

func TestBuildsEmailFromCampaign(t *testing.T) {
	repo := newMemRepo()
	repo.addSubscriber("a@example.com", jan1)
	_ = repo.SaveCampaign(context.Background(), &domain.Campaign{
		Name: "A", Subject: "Report", HTML: strp("<p>hi</p>"),
		AttachmentFilename: strp("r.pdf"), AttachmentBase64: strp("JVBERg=="),
		ScheduleType: domain.ScheduleRecurring, EveryDays: intp(1), Active: true,
	})
	sender := &fakeSender{}
	if _, err := insights.NewService(repo, sender, clock(jan1)).Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	got := sender.sent[0]
	if got.Subject != "Report" || got.HTML != "<p>hi</p>" || got.Text != "" || got.AttachmentFilename != "r.pdf" {
		t.Fatalf("email = %+v", got)
	}
}

func TestSaveValidation(t *testing.T) {
	svc := insights.NewService(newMemRepo(), &fakeSender{})
	cases := []struct {
		name string
		c    domain.Campaign
		want string
	}{
		{"missing name", domain.Campaign{Subject: "S", ScheduleType: domain.ScheduleDrip}, "name is required"},
		{"missing subject", domain.Campaign{Name: "N", ScheduleType: domain.ScheduleDrip}, "subject is required"},
		{"bad schedule", domain.Campaign{Name: "N", Subject: "S", ScheduleType: "weekly"}, "schedule_type"},
		{"bad target mode", domain.Campaign{Name: "N", Subject: "S", ScheduleType: domain.ScheduleDrip, TargetMode: "some"}, "target_mode"},
		{"negative days", domain.Campaign{Name: "N", Subject: "S", ScheduleType: domain.ScheduleDrip, DripDays: intp(-1)}, "drip_days"},
		{"bad base64", domain.Campaign{Name: "N", Subject: "S", ScheduleType: domain.ScheduleDrip, AttachmentBase64: strp("%%%")}, "base64"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.c
			_, err := svc.Save(context.Background(), &c)
			if !insights.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestSaveInsertUpdateAndDefaults(t *testing.T) {
	repo := newMemRepo()
	svc := insights.NewService(repo, &fakeSender{})

	c, err := svc.Save(context.Background(), &domain.Campaign{
		Name: " Launch ", Subject: "S", ScheduleType: domain.ScheduleOneTime,
		HTML: strp("  "), LastRunAt: timep(jan1), Active: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == 0 || c.Name != "Launch" || c.TargetMode != domain.TargetAll {
		t.Fatalf("saved = %+v", c)
	}
	if c.HTML != nil || c.LastRunAt != nil {
		t.Fatal("blank html should be nil and last_run_at must not come from input")
	}

	c.Subject = "Updated"
	if _, err := svc.Save(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.GetCampaign(context.Background(), c.ID)
	if got.Subject != "Updated" {
		t.Fatalf("subject = %q", got.Subject)
	}

	_, err = svc.Save(context.Background(), &domain.Campaign{ID: 999, Name: "N", Subject: "S", ScheduleType: domain.ScheduleDrip})
	if !errors.Is(err, insights.ErrNotFound) {
		t.Fatalf("unknown id: got %v", err)
	}
}

func TestLogs(t *testing.T) {
	repo := newMemRepo()
	svc := insights.NewService(repo, &fakeSender{})
	if _, err := svc.Logs(context.Background(), 0); !insights.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	repo.logs = []domain.SendLog{{CampaignID: 1, Email: "a"}, {CampaignID: 2, Email: "x"}, {CampaignID: 1, Email: "b"}}
	logs, err := svc.Logs(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].Email != "b" {
		t.Fatalf("logs = %+v", logs)
	}
}
