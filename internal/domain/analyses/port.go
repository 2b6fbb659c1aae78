package analyses

import "context"

// Repository port for persisting and querying analyses. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	// Get returns apperr.ErrNotFound when no row matches.
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	Paginate(ctx context.Context, customerID string, page, pageSize int) ([]*Analysis, error)
}

// Parser splits free model text into the sections of a schema.
type Parser interface {
	Structure(text string, schema Schema) Content
}
