package subscriber

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/pkg/validate"
)

// CSVHeader is the header row of the subscriber export.
var CSVHeader = []string{"ID", "Email", "Subscribed At", "Email Sent", "Unsubscribed"}

// Service implements subscriber business logic. It is safe for concurrent use.
type Service struct {
	repo     Repository
	files    FileSource
	mailer   Mailer
	verifier TokenVerifier
	pdfKey   string
	log      *logger.Logger
}

// NewService creates a subscriber service. pdfKey is the content-store key of
// the welcome PDF.
func NewService(repo Repository, files FileSource, mailer Mailer, verifier TokenVerifier, pdfKey string) *Service {
	return &Service{
		repo:     repo,
		files:    files,
		mailer:   mailer,
		verifier: verifier,
		pdfKey:   pdfKey,
		log:      logger.With("component", "subscriber"),
	}
}

// Normalize lowercases and trims an address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Subscribe records a signup and mails the welcome PDF. The subscriber row is
// written even when the PDF is missing or the email fails, with email_sent
// reflecting the outcome.
func (s *Service) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	email = Normalize(email)
	if !validate.Email(email) {
		return nil, ErrInvalidEmail
	}

	pdf, err := s.files.Get(ctx, s.pdfKey)
	if err != nil {
		s.log.Error("load subscription pdf", "key", s.pdfKey, "error", err)
		if _, uerr := s.repo.Upsert(ctx, email, false); uerr != nil {
			return nil, fmt.Errorf("save subscriber: %w", uerr)
		}
		return nil, ErrPDFUnavailable
	}

	sendErr := s.mailer.SendSubscriptionPDF(ctx, email, path.Base(s.pdfKey), pdf)
	if sendErr != nil {
		s.log.Error("send subscription pdf", "email", email, "error", sendErr)
	}

	sub, err := s.repo.Upsert(ctx, email, sendErr == nil)
	if err != nil {
		return nil, fmt.Errorf("save subscriber: %w", err)
	}
	if sendErr != nil {
		return sub, fmt.Errorf("%w: %v", ErrSendFailed, sendErr)
	}
	return sub, nil
}

// Unsubscribe verifies the capability token and flags the address. Replaying a
// valid link is a harmless no-op.
func (s *Service) Unsubscribe(ctx context.Context, email, token string) domain.UnsubscribeStatus {
	email = Normalize(email)
	if email == "" || token == "" {
		return domain.UnsubscribeError
	}
	if !s.verifier.Verify(email, token) {
		return domain.UnsubscribeInvalid
	}
	if err := s.repo.SetUnsubscribed(ctx, email, true); err != nil {
		s.log.Error("unsubscribe", "email", email, "error", err)
		return domain.UnsubscribeError
	}
	return domain.UnsubscribeSuccess
}

// List returns all subscribers, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Subscriber, error) {
	return s.repo.List(ctx)
}

// Count returns the total number of subscribers.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CSVRows renders subscribers for export, matching CSVHeader.
func CSVRows(subs []domain.Subscriber) [][]string {
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{
			strconv.FormatInt(sub.ID, 10),
			sub.Email,
			sub.SubscribedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(sub.EmailSent),
			strconv.FormatBool(sub.Unsubscribed),
		})
	}
	return rows
}
