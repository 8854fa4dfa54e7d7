package subscriber

import (
	"context"

	"github.com/lumewave/agency-site/internal/domain"
)

// Repository defines the data access contract for subscribers.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Upsert inserts email or, on conflict, refreshes subscribed_at and
	// email_sent. The unsubscribed flag is left untouched.
	Upsert(ctx context.Context, email string, emailSent bool) (*domain.Subscriber, error)

	// SetUnsubscribed updates the flag for email. Unknown addresses are a no-op.
	SetUnsubscribed(ctx context.Context, email string, unsubscribed bool) error

	// List returns every subscriber, newest signup first.
	List(ctx context.Context) ([]domain.Subscriber, error)

	// Count returns the number of subscriber rows.
	Count(ctx context.Context) (int64, error)
}

// FileSource loads the welcome PDF from the content store.
type FileSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Mailer sends the welcome email carrying the PDF.
type Mailer interface {
	SendSubscriptionPDF(ctx context.Context, to, filename string, pdf []byte) error
}

// TokenVerifier checks unsubscribe capability tokens.
type TokenVerifier interface {
	Verify(email, token string) bool
}
