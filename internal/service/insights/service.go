package insights

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/pkg/metrics"
	"github.com/lumewave/agency-site/internal/pkg/validate"
)

const (
	defaultDripLimit      = 500
	defaultBroadcastLimit = 1000
	defaultExtendEvery    = 50
	logLimit              = 200
)

// Service implements campaign storage rules and the due-campaign runner.
// All public methods are safe for concurrent use if the repository is.
type Service struct {
	repo   Repository
	sender Sender
	leases LeaseFactory
	now    func() time.Time
	log    *logger.Logger

	dripLimit      int
	broadcastLimit int
	extendEvery    int
}

// Option configures a Service.
type Option func(*Service)

// WithLeases sets the lease backend. Without it every campaign runs unguarded.
func WithLeases(f LeaseFactory) Option {
	return func(s *Service) { s.leases = f }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimits sets the per-run recipient caps. Non-positive values keep the defaults.
func WithLimits(drip, broadcast int) Option {
	return func(s *Service) {
		if drip > 0 {
			s.dripLimit = drip
		}
		if broadcast > 0 {
			s.broadcastLimit = broadcast
		}
	}
}

// WithExtendEvery sets how many recipients are processed between lease extensions.
func WithExtendEvery(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.extendEvery = n
		}
	}
}

// NewService creates an insights service.
func NewService(repo Repository, sender Sender, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		sender:         sender,
		leases:         func(string) Lease { return noLease{} },
		now:            time.Now,
		log:            logger.With("component", "insights"),
		dripLimit:      defaultDripLimit,
		broadcastLimit: defaultBroadcastLimit,
		extendEvery:    defaultExtendEvery,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LeaseName is the lease key guarding one campaign.
func LeaseName(campaignID int64) string {
	return fmt.Sprintf("insights:campaign:%d", campaignID)
}

// IsDue reports whether c would be processed by a run at now.
func IsDue(c *domain.Campaign, now time.Time) bool {
	return c.IsDue(now)
}

// List returns all campaigns, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.repo.ListCampaigns(ctx)
}

// Logs returns the most recent send-log rows for a campaign.
func (s *Service) Logs(ctx context.Context, campaignID int64) ([]domain.SendLog, error) {
	if campaignID <= 0 {
		return nil, &ValidationError{Msg: "Invalid campaignId"}
	}
	return s.repo.ListLogs(ctx, campaignID, logLimit)
}

type campaignRules struct {
	Name         string `json:"name" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	ScheduleType string `json:"schedule_type" validate:"oneof=one_time recurring drip"`
	TargetMode   string `json:"target_mode" validate:"omitempty,oneof=all new_only"`
	EveryDays    *int   `json:"every_days" validate:"omitempty,gte=0"`
	DripDays     *int   `json:"drip_days" validate:"omitempty,gte=0"`
}

// Save validates and upserts a campaign: a zero ID inserts, any other ID
// updates. last_run_at is owned by the runner and is never taken from input.
func (s *Service) Save(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Subject = strings.TrimSpace(c.Subject)
	c.HTML = nilIfBlank(c.HTML)
	c.Text = nilIfBlank(c.Text)
	c.AttachmentFilename = nilIfBlank(c.AttachmentFilename)
	c.AttachmentBase64 = nilIfBlank(c.AttachmentBase64)

	if err := validate.Struct(campaignRules{
		Name:         c.Name,
		Subject:      c.Subject,
		ScheduleType: string(c.ScheduleType),
		TargetMode:   string(c.TargetMode),
		EveryDays:    c.EveryDays,
		DripDays:     c.DripDays,
	}); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if c.AttachmentBase64 != nil {
		if _, err := base64.StdEncoding.DecodeString(*c.AttachmentBase64); err != nil {
			return nil, &ValidationError{Msg: "attachment_base64 is not valid base64"}
		}
	}
	if c.TargetMode == "" {
		c.TargetMode = domain.TargetAll
	}
	c.LastRunAt = nil

	if err := s.repo.SaveCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RunResult summarizes one invocation of Run. Processed lists the campaigns
// that were attempted, not the number of successful sends.
type RunResult struct {
	Processed []int64 `json:"processed"`
	Skipped   []int64 `json:"skipped,omitempty"`
	Sent      int     `json:"sent"`
	Failed    int     `json:"failed"`
}

// Run processes every due campaign, or only onlyID when it is non-nil.
//
// A failed send is recorded as a failed log row and the loop continues.
// Failing to list campaigns or targets aborts the run with an error. A
// campaign whose lease is held by another run, or that stopped being due
// before its lease was taken, is skipped.
//
// Cancelling ctx does not stop a run once started; only its values are used.
func (s *Service) Run(ctx context.Context, onlyID *int64) (*RunResult, error) {
	ctx = context.WithoutCancel(ctx)
	campaigns, err := s.repo.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	now := s.now()
	res := &RunResult{Processed: []int64{}}
	for i := range campaigns {
		c := &campaigns[i]
		if onlyID != nil && c.ID != *onlyID {
			continue
		}
		if !c.IsDue(now) {
			continue
		}
		ran, err := s.runCampaign(ctx, c, now, res)
		if err != nil {
			return res, err
		}
		if ran {
			res.Processed = append(res.Processed, c.ID)
		} else {
			res.Skipped = append(res.Skipped, c.ID)
		}
	}

	s.log.Info("insights run finished",
		"processed", len(res.Processed), "skipped", len(res.Skipped),
		"sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (s *Service) runCampaign(ctx context.Context, c *domain.Campaign, now time.Time, res *RunResult) (bool, error) {
	lease := s.leases(LeaseName(c.ID))
	ok, err := lease.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire lease for campaign %d: %w", c.ID, err)
	}
	if !ok {
		metrics.InsightsLeaseSkips.Inc()
		s.log.Info("campaign already running elsewhere, skipping", "campaign_id", c.ID)
		return false, nil
	}
	defer func() {
		if err := lease.Release(ctx); err != nil {
			s.log.Warn("release campaign lease", "campaign_id", c.ID, "error", err)
		}
	}()

	// The listing predates the lease; another run may have finished this
	// campaign in between.
	fresh, err := s.repo.GetCampaign(ctx, c.ID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reload campaign %d: %w", c.ID, err)
	}
	if !fresh.IsDue(now) {
		s.log.Info("campaign no longer due, skipping", "campaign_id", c.ID)
		return false, nil
	}
	c = fresh

	recipients, err := s.repo.Targets(ctx, s.targetQuery(c, now))
	if err != nil {
		return false, fmt.Errorf("targets for campaign %d: %w", c.ID, err)
	}
	metrics.InsightsRuns.WithLabelValues(string(c.ScheduleType)).Inc()

	for i, r := range recipients {
		if i > 0 && i%s.extendEvery == 0 {
			if err := lease.Extend(ctx); err != nil {
				// Another run may own the campaign now; stop without stamping.
				s.log.Error("lost campaign lease mid-run", "campaign_id", c.ID, "sent_so_far", i, "error", err)
				return true, nil
			}
		}
		s.deliver(ctx, c, r, res)
	}

	if c.StampsRun() {
		if err := s.repo.MarkRun(ctx, c.ID, now); err != nil {
			s.log.Error("mark campaign run", "campaign_id", c.ID, "error", err)
		}
	}
	return true, nil
}

func (s *Service) targetQuery(c *domain.Campaign, now time.Time) TargetQuery {
	q := TargetQuery{
		CampaignID:  c.ID,
		ExcludeSent: c.ExcludesPriorRecipients(),
		Limit:       s.broadcastLimit,
	}
	if c.ScheduleType == domain.ScheduleDrip {
		cutoff := now.AddDate(0, 0, -*c.DripDays)
		q.SubscribedBefore = &cutoff
		q.Limit = s.dripLimit
	}
	return q
}

func (s *Service) deliver(ctx context.Context, c *domain.Campaign, r domain.Recipient, res *RunResult) {
	entry := &domain.SendLog{
		CampaignID: c.ID,
		Email:      r.Email,
		Status:     domain.SendSent,
	}
	if err := s.sender.SendInsights(ctx, buildEmail(c, r)); err != nil {
		msg := err.Error()
		entry.Status = domain.SendFailed
		entry.Error = &msg
		res.Failed++
		s.log.Warn("insights send failed", "campaign_id", c.ID, "email", r.Email, "error", err)
	} else {
		res.Sent++
	}
	entry.SentAt = s.now()
	metrics.InsightsEmails.WithLabelValues(string(entry.Status)).Inc()

	if err := s.repo.RecordSend(ctx, entry); err != nil {
		s.log.Error("record send log", "campaign_id", c.ID, "email", r.Email, "error", err)
	}
}

func buildEmail(c *domain.Campaign, r domain.Recipient) *domain.InsightsEmail {
	return &domain.InsightsEmail{
		CampaignID:         c.ID,
		To:                 r.Email,
		SubscribedAt:       r.SubscribedAt,
		Subject:            c.Subject,
		HTML:               deref(c.HTML),
		Text:               deref(c.Text),
		AttachmentFilename: deref(c.AttachmentFilename),
		AttachmentBase64:   deref(c.AttachmentBase64),
	}
}

// IsValidation reports whether err is a campaign validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type noLease struct{}

func (noLease) Acquire(context.Context) (bool, error) { return true, nil }
func (noLease) Extend(context.Context) error          { return nil }
func (noLease) Release(context.Context) error         { return nil }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nilIfBlank(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}
