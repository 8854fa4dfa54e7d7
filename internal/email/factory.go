package email

import (
	"context"
	"fmt"

	"github.com/lumewave/agency-site/internal/config"
)

// NewSender builds the Sender selected by cfg.Provider.
func NewSender(ctx context.Context, cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "ses":
		return NewSESSender(ctx, SESConfig{
			Region:    cfg.SESRegion,
			AccessKey: cfg.SESAccessKey,
			SecretKey: cfg.SESSecretKey,
		})
	case "resend":
		return NewResendSender(ResendConfig{
			APIKey:  cfg.ResendAPIKey,
			BaseURL: cfg.ResendBaseURL,
			Timeout: cfg.Timeout(),
			Retries: cfg.RetryAttempts,
		}, nil), nil
	case "log", "":
		return LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
