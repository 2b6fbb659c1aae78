package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	domain "github.com/bryanwahyu/callprep/internal/domain/files"
)

type FileRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.File
}

func NewFileRepository() *FileRepository {
	return &FileRepository{rows: make(map[string]domain.File)}
}

func (r *FileRepository) Create(_ context.Context, f *domain.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[f.ID] = *f
	return nil
}

func (r *FileRepository) Get(_ context.Context, id string) (*domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &f, nil
}

func (r *FileRepository) ListByCustomer(_ context.Context, customerID string) ([]*domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.File
	for _, f := range r.rows {
		if f.CustomerID == customerID {
			f := f
			out = append(out, &f)
		}
	}
	newestFirst(out)
	return out, nil
}

func (r *FileRepository) GetMany(_ context.Context, customerID string, ids []string) ([]*domain.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.File
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if f, ok := r.rows[id]; ok && f.CustomerID == customerID {
			f := f
			out = append(out, &f)
		}
	}
	return out, nil
}

func (r *FileRepository) UpdateTranscription(_ context.Context, id string, u domain.TranscriptionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	f.TranscriptionStatus = u.Status
	f.TranscriptionError = u.Error
	if u.Content != nil {
		text := *u.Content
		f.Content = &text
	}
	r.rows[id] = f
	return nil
}

func (r *FileRepository) ListByTranscriptionStatus(_ context.Context, status domain.TranscriptionStatus, limit int) ([]*domain.File, error) {
	if limit <= 0 {
		limit = 100
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.File
	for _, f := range r.rows {
		if f.Type == domain.TypeAudio && f.TranscriptionStatus == status {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newestFirst(list []*domain.File) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
