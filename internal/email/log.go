package email

import (
	"context"

	"github.com/lumewave/agency-site/internal/pkg/logger"
)

// LogSender logs messages instead of delivering them. Used in local
// development when no provider is configured.
type LogSender struct{}

// Name implements Sender.
func (LogSender) Name() string { return "log" }

// Send implements Sender.
func (LogSender) Send(_ context.Context, msg *Message) error {
	if err := msg.check(); err != nil {
		return err
	}
	attachment := ""
	if msg.Attachment != nil {
		attachment = msg.Attachment.Filename
	}
	logger.Info("email (log provider)",
		"to_email", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
		"text_bytes", len(msg.Text),
		"attachment", attachment,
	)
	return nil
}
