package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/pkg/metrics"
)

const footerHTML = `
<div style="margin-top:24px;border-top:1px solid #e8f1f7;padding-top:12px;color:#7a8699;font-size:12px;font-family:Inter,Arial,sans-serif;">
  <p style="margin:0;">You are receiving this because you subscribed on our website.</p>
  <p style="margin:8px 0 0;">To unsubscribe, <a href="{{ unsubscribe_url }}" style="color:#1ba9e8;text-decoration:none;">click here</a>.</p>
</div>
`

const subscriptionHTML = `
<div style="font-family: Inter, Arial, sans-serif; color: #001f3f; line-height: 1.6;">
  <p style="margin: 0 0 16px">Hi,</p>
  <p style="margin: 0 0 16px">You're now subscribed to receive occasional insights on building clarity, inbound systems, and automation.</p>
  <p style="margin: 0 0 16px">These are short notes based on what we see while building real growth systems. No noise, no spam.</p>
  <p style="margin: 0 0 16px">You'll hear from us occasionally. Until then, feel free to explore the site or reach out if something feels stuck.</p>
  <p style="margin: 0; font-weight: 500;">LumeWave Digital</p>
</div>
`

const subscriptionText = "Thanks for subscribing! Your PDF is attached."

const contactHTML = `
<div style="font-family: Inter, Arial, sans-serif; color: #001f3f; line-height: 1.6; max-width: 600px;">
  <h2 style="margin: 0 0 16px;">New Contact Form Submission</h2>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 8px 0;"><strong>Name</strong><br>{{ name | escape }}</td></tr>
    <tr><td style="padding: 8px 0;"><strong>Email</strong><br><a href="mailto:{{ email | escape }}">{{ email | escape }}</a></td></tr>
    <tr><td style="padding: 8px 0;"><strong>Phone</strong><br><a href="tel:{{ phone | escape }}">{{ phone | escape }}</a></td></tr>
    <tr><td style="padding: 8px 0;"><strong>Service Interested In</strong><br>{{ service | escape }}</td></tr>
    <tr><td style="padding: 8px 0;"><strong>Requirement</strong><br>{{ requirement | nl2br }}</td></tr>
  </table>
  <p style="color: #999999; font-size: 12px;">This submission was received from your website contact form.</p>
</div>
`

// MailerConfig holds the addresses and subjects used by Mailer.
type MailerConfig struct {
	From                string
	AdminEmail          string
	SubscriptionSubject string
}

// Mailer composes site emails and hands them to a Sender. It satisfies the
// insights, subscriber and contact delivery contracts.
type Mailer struct {
	sender   Sender
	signer   *Signer
	renderer *Renderer
	cfg      MailerConfig
}

// NewMailer creates a mailer.
func NewMailer(sender Sender, signer *Signer, renderer *Renderer, cfg MailerConfig) *Mailer {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Mailer{sender: sender, signer: signer, renderer: renderer, cfg: cfg}
}

// Provider returns the underlying sender name.
func (m *Mailer) Provider() string { return m.sender.Name() }

// SendInsights delivers one campaign email. Subject and bodies are Liquid
// templates with email, subscribed_at and unsubscribe_url bound. A missing
// HTML body falls back to the text wrapped in <pre>, then to a placeholder.
func (m *Mailer) SendInsights(ctx context.Context, e *domain.InsightsEmail) error {
	unsub := m.signer.URL(e.To)
	vars := map[string]interface{}{
		"email":           e.To,
		"subscribed_at":   e.SubscribedAt,
		"unsubscribe_url": unsub,
	}

	body := m.renderer.RenderLax(e.HTML, vars)
	text := m.renderer.RenderLax(e.Text, vars)
	if body == "" {
		if text != "" {
			body = "<pre>" + html.EscapeString(text) + "</pre>"
		} else {
			body = "<p>Hello from Insights</p>"
		}
	}

	msg := &Message{
		From:    m.cfg.From,
		To:      e.To,
		Subject: m.renderer.RenderLax(e.Subject, vars),
		HTML:    body + m.footer(unsub),
	}
	if text != "" {
		msg.Text = text + "\n\nUnsubscribe: " + unsub
	}
	if e.AttachmentFilename != "" && e.AttachmentBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(e.AttachmentBase64)
		if err != nil {
			return fmt.Errorf("decode attachment: %w", err)
		}
		msg.Attachment = &Attachment{Filename: e.AttachmentFilename, Data: data}
	}
	return m.send(ctx, msg, "insights")
}

// SendSubscriptionPDF sends the newsletter welcome email with the PDF.
func (m *Mailer) SendSubscriptionPDF(ctx context.Context, to, filename string, pdf []byte) error {
	unsub := m.signer.URL(to)
	msg := &Message{
		From:       m.cfg.From,
		To:         to,
		Subject:    m.cfg.SubscriptionSubject,
		HTML:       subscriptionHTML + m.footer(unsub),
		Text:       subscriptionText + "\n\nUnsubscribe: " + unsub,
		Attachment: &Attachment{Filename: filename, ContentType: "application/pdf", Data: pdf},
	}
	return m.send(ctx, msg, "subscription")
}

// NotifyContact emails the site owner about a new lead.
func (m *Mailer) NotifyContact(ctx context.Context, s *domain.ContactSubmission) error {
	if m.cfg.AdminEmail == "" {
		return fmt.Errorf("admin email not configured")
	}
	body, err := m.renderer.Render(contactHTML, map[string]interface{}{
		"name":        s.Name,
		"email":       s.Email,
		"phone":       s.Phone,
		"service":     s.Service,
		"requirement": s.Requirement,
	})
	if err != nil {
		return err
	}
	msg := &Message{
		From:    m.cfg.From,
		To:      m.cfg.AdminEmail,
		Subject: "New Contact Form Submission - " + s.Service,
		HTML:    body,
	}
	return m.send(ctx, msg, "contact")
}

func (m *Mailer) footer(unsubscribeURL string) string {
	return m.renderer.RenderLax(footerHTML, map[string]interface{}{"unsubscribe_url": unsubscribeURL})
}

func (m *Mailer) send(ctx context.Context, msg *Message, kind string) error {
	provider := m.sender.Name()
	if err := m.sender.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(provider, "failed").Inc()
		logger.Warn("email send failed", "kind", kind, "provider", provider, "to_email", msg.To, "error", err)
		return err
	}
	metrics.EmailsSent.WithLabelValues(provider, "sent").Inc()
	logger.Debug("email sent", "kind", kind, "provider", provider, "to_email", msg.To)
	return nil
}
