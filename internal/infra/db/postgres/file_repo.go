package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	domain "github.com/bryanwahyu/callprep/internal/domain/files"
)

const fileColumns = `id, customer_id, name, type, content, storage_path, file_size,
       occurred_at, notes, transcription_status, transcription_error, created_at`

type FileRepository struct{ db *sql.DB }

func NewFileRepository(db *sql.DB) *FileRepository { return &FileRepository{db: db} }

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	const q = `
INSERT INTO files
  (id, customer_id, name, type, content, storage_path, file_size,
   occurred_at, notes, transcription_status, transcription_error, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`
	_, err := r.db.ExecContext(ctx, q,
		f.ID, f.CustomerID, f.Name, string(f.Type),
		nullString(f.Content), nullString(f.StoragePath), nullInt64(f.FileSize),
		nullTime(f.OccurredAt), nullString(f.Notes),
		string(f.TranscriptionStatus), nullString(f.TranscriptionError),
		f.CreatedAt.UTC(),
	)
	return err
}

func (r *FileRepository) Get(ctx context.Context, id string) (*domain.File, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	q := `SELECT ` + fileColumns + ` FROM files WHERE id=$1 LIMIT 1;`
	f, err := scanFile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *FileRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.File, error) {
	if !validID(customerID) {
		return nil, nil
	}
	q := `SELECT ` + fileColumns + `
FROM files
WHERE customer_id=$1
ORDER BY created_at DESC, id DESC;`
	return r.query(ctx, q, customerID)
}

func (r *FileRepository) GetMany(ctx context.Context, customerID string, ids []string) ([]*domain.File, error) {
	ids = validIDs(ids)
	if len(ids) == 0 || !validID(customerID) {
		return nil, nil
	}
	q := `SELECT ` + fileColumns + `
FROM files
WHERE customer_id=$1 AND id = ANY($2::uuid[]);`
	return r.query(ctx, q, customerID, pq.Array(ids))
}

func (r *FileRepository) UpdateTranscription(ctx context.Context, id string, u domain.TranscriptionUpdate) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}
	const q = `
UPDATE files
SET transcription_status = $1,
    transcription_error = $2,
    content = COALESCE($3, content)
WHERE id = $4;`
	_, err := r.db.ExecContext(ctx, q, string(u.Status), nullString(u.Error), nullString(u.Content), id)
	return err
}

func (r *FileRepository) ListByTranscriptionStatus(ctx context.Context, status domain.TranscriptionStatus, limit int) ([]*domain.File, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + fileColumns + `
FROM files
WHERE type='audio' AND transcription_status=$1
ORDER BY created_at ASC
LIMIT $2;`
	return r.query(ctx, q, string(status), limit)
}

func (r *FileRepository) query(ctx context.Context, q string, args ...any) ([]*domain.File, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFile(row rowScanner) (*domain.File, error) {
	var (
		f                                    domain.File
		typ, status                          string
		content, storagePath, notes, txError sql.NullString
		size                                 sql.NullInt64
		occurred                             sql.NullTime
	)
	if err := row.Scan(
		&f.ID, &f.CustomerID, &f.Name, &typ, &content, &storagePath, &size,
		&occurred, &notes, &status, &txError, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	f.Type = domain.Type(typ)
	f.Content = stringPtr(content)
	f.StoragePath = stringPtr(storagePath)
	f.FileSize = int64Ptr(size)
	f.OccurredAt = timePtr(occurred)
	f.Notes = stringPtr(notes)
	f.TranscriptionStatus = domain.TranscriptionStatus(status)
	f.TranscriptionError = stringPtr(txError)
	f.CreatedAt = f.CreatedAt.UTC()
	return &f, nil
}
