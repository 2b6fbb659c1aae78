package files

import (
	"context"
	"io"
)

// Repository port for file records
type Repository interface {
	Create(ctx context.Context, f *File) error
	// Get returns apperr.ErrNotFound when no row matches.
	Get(ctx context.Context, id string) (*File, error)
	// ListByCustomer returns files newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]*File, error)
	// GetMany returns the subset of ids that belong to customerID, in no particular order.
	GetMany(ctx context.Context, customerID string, ids []string) ([]*File, error)
	UpdateTranscription(ctx context.Context, id string, u TranscriptionUpdate) error
	ListByTranscriptionStatus(ctx context.Context, status TranscriptionStatus, limit int) ([]*File, error)
}

// TranscriptionUpdate is the single mutation a file record goes through.
// A nil Content leaves the stored content untouched.
type TranscriptionUpdate struct {
	Status  TranscriptionStatus
	Content *string
	Error   *string
}

// BlobStore port for raw audio and archived model output.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns apperr.ErrFileNotFound when the object does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Check(ctx context.Context) error
}
