package contact

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumewave/agency-site/internal/domain"
	"github.com/lumewave/agency-site/internal/pkg/logger"
	"github.com/lumewave/agency-site/internal/pkg/validate"
)

// Input is the public contact form payload.
type Input struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Service     string `json:"service" validate:"required"`
	Requirement string `json:"requirement" validate:"required"`
}

// Service handles contact submissions.
type Service struct {
	repo     Repository
	notifier Notifier
}

// NewService creates a contact service.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Submit persists a lead and then notifies the admin. A failed notification
// is logged; the lead is already saved.
func (s *Service) Submit(ctx context.Context, in Input) (*domain.ContactSubmission, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Service = strings.TrimSpace(in.Service)
	in.Requirement = strings.TrimSpace(in.Requirement)

	if err := validate.Struct(in); err != nil {
		return nil, ErrMissingFields
	}
	if !validate.Email(in.Email) {
		return nil, ErrInvalidEmail
	}

	sub := &domain.ContactSubmission{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Service:     in.Service,
		Requirement: in.Requirement,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}

	if err := s.notifier.NotifyContact(ctx, sub); err != nil {
		logger.Error("contact notification failed", "submission_id", sub.ID, "error", err)
	}
	return sub, nil
}

// List returns all submissions, newest first.
func (s *Service) List(ctx context.Context) ([]domain.ContactSubmission, error) {
	return s.repo.List(ctx)
}

// Get returns one submission.
func (s *Service) Get(ctx context.Context, id int64) (*domain.ContactSubmission, error) {
	return s.repo.Get(ctx, id)
}
