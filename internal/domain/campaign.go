package domain

import "time"

// ScheduleType selects how an Insights campaign decides it is due.
type ScheduleType string

const (
	ScheduleOneTime   ScheduleType = "one_time"
	ScheduleRecurring ScheduleType = "recurring"
	ScheduleDrip      ScheduleType = "drip"
)

// Valid reports whether t is one of the known schedule types.
func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleOneTime, ScheduleRecurring, ScheduleDrip:
		return true
	}
	return false
}

// TargetMode controls whether one_time and recurring campaigns skip
// addresses that already have a send-log row for the campaign.
type TargetMode string

const (
	TargetAll     TargetMode = "all"
	TargetNewOnly TargetMode = "new_only"
)

// Valid reports whether m is a known targeting mode. Empty is treated as TargetAll.
func (m TargetMode) Valid() bool {
	return m == "" || m == TargetAll || m == TargetNewOnly
}

// Campaign is an Insights email campaign. Only one of SendAt, EveryDays and
// DripDays is meaningful, selected by ScheduleType.
type Campaign struct {
	ID                 int64        `json:"id" db:"id"`
	Name               string       `json:"name" db:"name"`
	Subject            string       `json:"subject" db:"subject"`
	HTML               *string      `json:"html" db:"html"`
	Text               *string      `json:"text" db:"text"`
	AttachmentFilename *string      `json:"attachment_filename" db:"attachment_filename"`
	AttachmentBase64   *string      `json:"attachment_base64" db:"attachment_base64"`
	ScheduleType       ScheduleType `json:"schedule_type" db:"schedule_type"`
	TargetMode         TargetMode   `json:"target_mode" db:"target_mode"`
	SendAt             *time.Time   `json:"send_at" db:"send_at"`
	EveryDays          *int         `json:"every_days" db:"every_days"`
	DripDays           *int         `json:"drip_days" db:"drip_days"`
	Active             bool         `json:"active" db:"active"`
	LastRunAt          *time.Time   `json:"last_run_at" db:"last_run_at"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the campaign should be processed by a run at now.
//
// one_time fires once: send_at reached and never run. recurring fires when it
// has never run or every_days calendar days have passed since last_run_at.
// drip is due whenever drip_days is positive; recipient eligibility is decided
// by targeting, not here.
func (c *Campaign) IsDue(now time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	switch c.ScheduleType {
	case ScheduleOneTime:
		if c.SendAt == nil || c.LastRunAt != nil {
			return false
		}
		return !now.Before(*c.SendAt)
	case ScheduleRecurring:
		if c.EveryDays == nil || *c.EveryDays <= 0 {
			return false
		}
		if c.LastRunAt == nil {
			return true
		}
		return !now.Before(c.LastRunAt.AddDate(0, 0, *c.EveryDays))
	case ScheduleDrip:
		return c.DripDays != nil && *c.DripDays > 0
	}
	return false
}

// ExcludesPriorRecipients reports whether targeting must skip addresses that
// already appear in this campaign's send log. Drip always does.
func (c *Campaign) ExcludesPriorRecipients() bool {
	return c.ScheduleType == ScheduleDrip || c.TargetMode == TargetNewOnly
}

// StampsRun reports whether a completed run records last_run_at.
func (c *Campaign) StampsRun() bool {
	return c.ScheduleType != ScheduleDrip
}

// Recipient is a subscriber selected by campaign targeting.
type Recipient struct {
	Email        string    `json:"email" db:"email"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// SendStatus is the outcome recorded for one attempted delivery.
type SendStatus string

const (
	SendSent   SendStatus = "sent"
	SendFailed SendStatus = "failed"
)

// SendLog is one append-only audit row of an attempted campaign delivery.
type SendLog struct {
	ID         int64      `json:"id" db:"id"`
	CampaignID int64      `json:"campaign_id" db:"campaign_id"`
	Email      string     `json:"email" db:"email"`
	SentAt     time.Time  `json:"sent_at" db:"sent_at"`
	Status     SendStatus `json:"status" db:"status"`
	Error      *string    `json:"error" db:"error"`
}

// InsightsEmail is the per-recipient payload handed to the email adapter.
type InsightsEmail struct {
	CampaignID         int64
	To                 string
	SubscribedAt       time.Time
	Subject            string
	HTML               string
	Text               string
	AttachmentFilename string
	AttachmentBase64   string
}
