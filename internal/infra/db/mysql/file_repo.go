package mysql

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/callprep/internal/domain/files"
)

const fileColumns = `id, customer_id, name, type, content, storage_path, file_size,
       occurred_at, notes, transcription_status, transcription_error, created_at`

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	const q = `
INSERT INTO files
  (id, customer_id, name, type, content, storage_path, file_size,
   occurred_at, notes, transcription_status, transcription_error, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?);`
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
	q := `SELECT ` + fileColumns + ` FROM files WHERE id=? LIMIT 1;`
	f, err := scanFile(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *FileRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.File, error) {
	q := `SELECT ` + fileColumns + `
FROM files
WHERE customer_id=?
ORDER BY created_at DESC, id DESC;`
	return r.query(ctx, q, customerID)
}

func (r *FileRepository) GetMany(ctx context.Context, customerID string, ids []string) ([]*domain.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + fileColumns + `
FROM files
WHERE customer_id=? AND id IN (` + placeholders(len(ids)) + `);`
	args := make([]any, 0, len(ids)+1)
	args = append(args, customerID)
	for _, id := range ids {
		args = append(args, id)
	}
	return r.query(ctx, q, args...)
}

func (r *FileRepository) UpdateTranscription(ctx context.Context, id string, u domain.TranscriptionUpdate) error {
	const q = `
UPDATE files
SET transcription_status = ?,
    transcription_error = ?,
    content = COALESCE(?, content)
WHERE id = ?;`
	_, err := r.db.ExecContext(ctx, q, string(u.Status), nullString(u.Error), nullString(u.Content), id)
	return err
}

func (r *FileRepository) ListByTranscriptionStatus(ctx context.Context, status domain.TranscriptionStatus, limit int) ([]*domain.File, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + fileColumns + `
FROM files
WHERE type='audio' AND transcription_status=?
ORDER BY created_at ASC
LIMIT ?;`
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
