package customers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bryanwahyu/callprep/internal/application"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	domain "github.com/bryanwahyu/callprep/internal/domain/customers"
)

const maxNameLen = 200

// Service implements customer use-cases. Every call is scoped to one owner.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// Create stores a new customer for ownerID.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, fmt.Errorf("%w: name is longer than %d characters", apperr.ErrValidation, maxNameLen)
	}

	now := s.Clock.Now()
	c := &domain.Customer{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: creating customer: %v", apperr.ErrPersistence, err)
	}
	return c, nil
}

// List returns the owner's customers, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*domain.Customer, error) {
	list, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing customers: %v", apperr.ErrPersistence, err)
	}
	if list == nil {
		list = []*domain.Customer{}
	}
	return list, nil
}

// Get returns one customer, or apperr.ErrNotFound when it is missing or not owned.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*domain.Customer, error) {
	return s.Repo.Get(ctx, ownerID, id)
}
