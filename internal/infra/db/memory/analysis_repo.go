package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/callprep/internal/domain/analyses"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
)

type AnalysisRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Analysis
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{rows: make(map[string]domain.Analysis)}
}

func (r *AnalysisRepository) Create(_ context.Context, a *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[a.ID]; exists {
		return fmt.Errorf("analysis %s already exists", a.ID)
	}
	cp := *a
	cp.FilesAnalyzed = append([]string(nil), a.FilesAnalyzed...)
	r.rows[a.ID] = cp
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &a, nil
}

func (r *AnalysisRepository) Paginate(_ context.Context, customerID string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Analysis
	for _, a := range r.rows {
		if a.CustomerID == customerID {
			a := a
			all = append(all, &a)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
