package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/callprep/internal/domain/analyses"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create inserts an analysis record. Rows are never updated.
func (r *AnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analyses (id, customer_id, files_analyzed, content, created_at)
VALUES (?,?,?,?,?);`
	ids := a.FilesAnalyzed
	if ids == nil {
		ids = []string{}
	}
	filesJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding files_analyzed: %w", err)
	}
	contentJSON, err := json.Marshal(a.Content)
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, a.ID, a.CustomerID, string(filesJSON), string(contentJSON), a.CreatedAt.UTC())
	return err
}

func (r *AnalysisRepository) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT id, customer_id, files_analyzed, content, created_at
FROM analyses
WHERE id=? LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// Paginate returns a page of analyses ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, customerID string, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, customer_id, files_analyzed, content, created_at
FROM analyses
WHERE customer_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, customerID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var (
		a                    domain.Analysis
		filesJSON, contentJS []byte
	)
	if err := row.Scan(&a.ID, &a.CustomerID, &filesJSON, &contentJS, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filesJSON, &a.FilesAnalyzed); err != nil {
		return nil, fmt.Errorf("decoding files_analyzed of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(contentJS, &a.Content); err != nil {
		return nil, fmt.Errorf("decoding content of %s: %w", a.ID, err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
