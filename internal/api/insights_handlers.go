package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/httputil"
	"github.com/lumewave/agency-site/internal/service/insights"
)

// ListCampaigns godoc
//
//	GET /api/insights/campaigns
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.insights.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}
	httputil.OK(w, map[string]any{"campaigns": campaigns})
}

// campaignRequest is the admin form body. Active defaults to true when
// omitted; send_at accepts RFC3339 or a datetime-local value.
type campaignRequest struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Subject            string  `json:"subject"`
	HTML               *string `json:"html"`
	Text               *string `json:"text"`
	AttachmentFilename *string `json:"attachment_filename"`
	AttachmentBase64   *string `json:"attachment_base64"`
	ScheduleType       string  `json:"schedule_type"`
	TargetMode         string  `json:"target_mode"`
	SendAt             *string `json:"send_at"`
	EveryDays          *int    `json:"every_days"`
	DripDays           *int    `json:"drip_days"`
	Active             *bool   `json:"active"`
}

var sendAtLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// parseSendAt reads send_at. Values without a zone are taken in server local
// time. Blank means unset.
func parseSendAt(raw *string) (*time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	v := strings.TrimSpace(*raw)
	for _, layout := range sendAtLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (req *campaignRequest) campaign() (*domain.Campaign, bool) {
	sendAt, ok := parseSendAt(req.SendAt)
	if !ok {
		return nil, false
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &domain.Campaign{
		ID:                 req.ID,
		Name:               req.Name,
		Subject:            req.Subject,
		HTML:               req.HTML,
		Text:               req.Text,
		AttachmentFilename: req.AttachmentFilename,
		AttachmentBase64:   req.AttachmentBase64,
		ScheduleType:       domain.ScheduleType(req.ScheduleType),
		TargetMode:         domain.TargetMode(req.TargetMode),
		SendAt:             sendAt,
		EveryDays:          req.EveryDays,
		DripDays:           req.DripDays,
		Active:             active,
	}, true
}

// SaveCampaign inserts a campaign when the body has no id and updates it
// otherwise.
//
//	POST /api/insights/campaigns
func (h *Handlers) SaveCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, ok := req.campaign()
	if !ok {
		httputil.BadRequest(w, "Invalid send_at")
		return
	}

	saved, err := h.insights.Save(r.Context(), c)
	switch {
	case insights.IsValidation(err):
		httputil.BadRequest(w, err.Error())
		return
	case errors.Is(err, insights.ErrNotFound):
		httputil.NotFound(w, "Campaign not found")
		return
	case err != nil:
		httputil.InternalError(w, err, "Failed to save campaign")
		return
	}
	httputil.OK(w, map[string]any{"success": true, "campaign": saved})
}

type runRequest struct {
	CampaignID *int64 `json:"campaignId"`
}

// RunInsights evaluates due campaigns now, optionally only one of them.
// Cron callers hit this with the admin bearer key.
//
//	POST /api/insights/run
func (h *Handlers) RunInsights(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !httputil.DecodeOptional(w, r, &req) {
		return
	}

	res, err := h.insights.Run(r.Context(), req.CampaignID)
	if err != nil {
		httputil.InternalError(w, err, "Failed to run insights")
		return
	}
	processed := res.Processed
	if processed == nil {
		processed = []int64{}
	}
	httputil.OK(w, map[string]any{
		"success":   true,
		"processed": processed,
		"skipped":   res.Skipped,
		"sent":      res.Sent,
		"failed":    res.Failed,
	})
}

// CampaignLogs returns the newest send-log rows for one campaign.
//
//	GET /api/insights/logs?campaignId=
func (h *Handlers) CampaignLogs(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("campaignId"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "Invalid campaignId")
		return
	}
	logs, err := h.insights.Logs(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err, "Failed to fetch logs")
		return
	}
	if logs == nil {
		logs = []domain.SendLog{}
	}
	httputil.OK(w, map[string]any{"logs": logs})
}
