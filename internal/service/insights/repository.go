package insights

import (
	"context"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
)

// Repository defines the data access contract for campaigns and send logs.
// Implementations must be safe for concurrent use.
type Repository interface {
	// ListCampaigns returns every campaign, newest first.
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)

	// GetCampaign returns ErrNotFound if the id does not exist.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)

	// SaveCampaign inserts c when c.ID is zero and updates it otherwise,
	// filling server-managed fields (id, last_run_at, timestamps) in place.
	// Updating an unknown id returns ErrNotFound.
	SaveCampaign(ctx context.Context, c *domain.Campaign) error

	// Targets returns active subscribers matching q, in insertion order.
	Targets(ctx context.Context, q TargetQuery) ([]domain.Recipient, error)

	// RecordSend appends a send-log row.
	RecordSend(ctx context.Context, l *domain.SendLog) error

	// MarkRun stamps last_run_at.
	MarkRun(ctx context.Context, id int64, at time.Time) error

	// ListLogs returns up to limit send-log rows for a campaign, newest first.
	ListLogs(ctx context.Context, campaignID int64, limit int) ([]domain.SendLog, error)
}

// TargetQuery narrows the subscriber list for one campaign run.
type TargetQuery struct {
	CampaignID int64
	// SubscribedBefore, when set, keeps only subscribers who signed up at or
	// before this instant.
	SubscribedBefore *time.Time
	// ExcludeSent drops addresses that already have a send-log row for CampaignID.
	ExcludeSent bool
	Limit       int
}

// Sender delivers one Insights email. Any provider failure is returned as an error.
type Sender interface {
	SendInsights(ctx context.Context, msg *domain.InsightsEmail) error
}

// Lease guards one campaign against concurrent runs. distlock.DistLock satisfies it.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Extend(ctx context.Context) error
	Release(ctx context.Context) error
}

// LeaseFactory returns the lease for a name.
type LeaseFactory func(name string) Lease
