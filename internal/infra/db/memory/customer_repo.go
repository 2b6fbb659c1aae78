// Package memory holds map-backed repositories for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	domain "github.com/bryanwahyu/callprep/internal/domain/customers"
)

type CustomerRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{rows: make(map[string]domain.Customer)}
}

func (r *CustomerRepository) Create(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = *c
	return nil
}

func (r *CustomerRepository) Get(_ context.Context, owner string, id domain.CustomerID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok || c.OwnerID != owner {
		return nil, apperr.ErrNotFound
	}
	return &c, nil
}

func (r *CustomerRepository) ListByOwner(_ context.Context, owner string) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Customer
	for _, c := range r.rows {
		if c.OwnerID == owner {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CustomerRepository) Touch(_ context.Context, id domain.CustomerID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.UpdatedAt = at
	r.rows[id] = c
	return nil
}
