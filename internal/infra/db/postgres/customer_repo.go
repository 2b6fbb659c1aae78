package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	domain "github.com/bryanwahyu/callprep/internal/domain/customers"
)

type CustomerRepository struct{ db *sql.DB }

func NewCustomerRepository(db *sql.DB) *CustomerRepository { return &CustomerRepository{db: db} }

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	const q = `
INSERT INTO customers (id, owner_id, name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5);`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.OwnerID, c.Name, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

// Get by ID + owner
func (r *CustomerRepository) Get(ctx context.Context, owner string, id domain.CustomerID) (*domain.Customer, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	const q = `
SELECT id, owner_id, name, created_at, updated_at
FROM customers
WHERE owner_id=$1 AND id=$2
LIMIT 1;`
	var c domain.Customer
	if err := r.db.QueryRowContext(ctx, q, owner, id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CustomerRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Customer, error) {
	const q = `
SELECT id, owner_id, name, created_at, updated_at
FROM customers
WHERE owner_id=$1
ORDER BY created_at DESC, id DESC;`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) Touch(ctx context.Context, id domain.CustomerID, at time.Time) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}
	_, err := r.db.ExecContext(ctx, `UPDATE customers SET updated_at=$1 WHERE id=$2;`, at.UTC(), id)
	return err
}
