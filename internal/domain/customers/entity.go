package customers

import "time"

// CustomerID identifier type
type CustomerID = string

// Customer is owned by exactly one user and never deleted by this service.
type Customer struct {
	ID        CustomerID `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
