package contact

import (
	"context"

	"github.com/lumewave/agency-site/internal/domain"
)

// Repository defines the data access contract for contact submissions.
type Repository interface {
	// Create inserts s and fills ID and SubmittedAt.
	Create(ctx context.Context, s *domain.ContactSubmission) error
	// List returns submissions newest first.
	List(ctx context.Context) ([]domain.ContactSubmission, error)
	// Get returns ErrNotFound if id does not exist.
	Get(ctx context.Context, id int64) (*domain.ContactSubmission, error)
}

// Notifier tells the site owner about a new lead.
type Notifier interface {
	NotifyContact(ctx context.Context, s *domain.ContactSubmission) error
}
