// Package recipients manages the bill-to company profiles referenced by
// invoices and memos.
package recipients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/facet-erp/facet-erp/internal/platform/httpx"
)

// ErrNotFound indicates the profile does not exist.
var ErrNotFound = fmt.Errorf("recipients: profile %w", httpx.ErrNotFound)

// ErrInvalid indicates the profile failed validation.
var ErrInvalid = fmt.Errorf("recipients: invalid profile: %w", httpx.ErrValidation)

// Profile is one bill-to company.
type Profile struct {
	ID           int64
	CompanyName  string
	ContactName  string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	PostalCode   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateProfileInput carries a create or update request.
type CreateProfileInput struct {
	CompanyName  string
	ContactName  string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	PostalCode   string
}

// RepositoryPort defines the persistence surface the service needs.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateProfileInput) (*Profile, error)
	Update(ctx context.Context, id int64, input CreateProfileInput) (*Profile, error)
	Get(ctx context.Context, id int64) (*Profile, error)
	List(ctx context.Context, search string, limit, offset int) ([]Profile, error)
}

// Service owns profile management.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func validate(input *CreateProfileInput) error {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	if input.CompanyName == "" {
		return ErrInvalid
	}
	return nil
}

// Create validates and stores a new profile.
func (s *Service) Create(ctx context.Context, input CreateProfileInput) (*Profile, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

// Update validates and replaces an existing profile.
func (s *Service) Update(ctx context.Context, id int64, input CreateProfileInput) (*Profile, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, input)
}

// Get loads one profile.
func (s *Service) Get(ctx context.Context, id int64) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

// List returns profiles matching the search term.
func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Profile, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, strings.TrimSpace(search), limit, offset)
}
