package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumewave/agency-site/internal/pkg/httpretry"
)

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	client  httpretry.HTTPDoer
	apiKey  string
	baseURL string
}

// ResendConfig holds Resend API settings. Retries above zero wrap the HTTP
// client in a retrying client; each message carries an idempotency key so a
// retried POST is not delivered twice.
type ResendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retries int
}

// NewResendSender creates a Resend sender. client may be nil.
func NewResendSender(cfg ResendConfig, client httpretry.HTTPDoer) *ResendSender {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if cfg.Retries > 0 {
		client = httpretry.NewRetryClient(client, cfg.Retries)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.resend.com"
	}
	return &ResendSender{client: client, apiKey: cfg.APIKey, baseURL: strings.TrimRight(base, "/")}
}

// Name implements Sender.
func (s *ResendSender) Name() string { return "resend" }

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html,omitempty"`
	Text        string             `json:"text,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.check(); err != nil {
		return err
	}
	if s.apiKey == "" {
		return fmt.Errorf("resend: API key not configured")
	}

	payload := resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	if a := msg.Attachment; a != nil {
		payload.Attachments = []resendAttachment{{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Data),
		}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
