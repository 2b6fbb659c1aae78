package customers

import (
	"context"
	"time"
)

// Repository port for customers.
// Get returns apperr.ErrNotFound when the row is missing or owned by someone else.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, owner string, id CustomerID) (*Customer, error)
	ListByOwner(ctx context.Context, owner string) ([]*Customer, error)
	Touch(ctx context.Context, id CustomerID, at time.Time) error
}
