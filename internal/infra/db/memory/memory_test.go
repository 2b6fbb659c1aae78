package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/callprep/internal/domain/analyses"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	"github.com/bryanwahyu/callprep/internal/domain/files"
)

var base = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()
	r := NewCustomerRepository()

	require.NoError(t, r.Create(ctx, &customers.Customer{ID: "c1", OwnerID: "alice", Name: "Acme", CreatedAt: base}))
	require.NoError(t, r.Create(ctx, &customers.Customer{ID: "c2", OwnerID: "alice", Name: "Globex", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, r.Create(ctx, &customers.Customer{ID: "c3", OwnerID: "bob", Name: "Initech", CreatedAt: base}))

	c, err := r.Get(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)

	_, err = r.Get(ctx, "bob", "c1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	list, err := r.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)

	require.NoError(t, r.Touch(ctx, "c1", base.Add(48*time.Hour)))
	c, _ = r.Get(ctx, "alice", "c1")
	assert.Equal(t, base.Add(48*time.Hour), c.UpdatedAt)
	assert.ErrorIs(t, r.Touch(ctx, "nope", base), apperr.ErrNotFound)
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	r := NewFileRepository()
	body := "hello"

	require.NoError(t, r.Create(ctx, &files.File{ID: "f1", CustomerID: "c1", Type: files.TypeEmail, Content: &body, CreatedAt: base}))
	require.NoError(t, r.Create(ctx, &files.File{ID: "f2", CustomerID: "c1", Type: files.TypeAudio, TranscriptionStatus: files.TranscriptionPending, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, r.Create(ctx, &files.File{ID: "f3", CustomerID: "c2", Type: files.TypeAudio, TranscriptionStatus: files.TranscriptionPending, CreatedAt: base.Add(-time.Minute)}))

	list, err := r.ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "f2", list[0].ID)

	many, err := r.GetMany(ctx, "c1", []string{"f1", "f3", "f1", "missing"})
	require.NoError(t, err)
	require.Len(t, many, 1)
	assert.Equal(t, "f1", many[0].ID)

	pending, err := r.ListByTranscriptionStatus(ctx, files.TranscriptionPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "f3", pending[0].ID)

	text := "transcribed"
	require.NoError(t, r.UpdateTranscription(ctx, "f2", files.TranscriptionUpdate{Status: files.TranscriptionDone, Content: &text}))
	f, err := r.Get(ctx, "f2")
	require.NoError(t, err)
	assert.Equal(t, "transcribed", *f.Content)
	assert.Equal(t, files.TranscriptionDone, f.TranscriptionStatus)

	msg := "boom"
	require.NoError(t, r.UpdateTranscription(ctx, "f2", files.TranscriptionUpdate{Status: files.TranscriptionFailed, Error: &msg}))
	f, _ = r.Get(ctx, "f2")
	assert.Equal(t, "transcribed", *f.Content, "nil content leaves text untouched")
	assert.Equal(t, "boom", *f.TranscriptionError)

	assert.ErrorIs(t, r.UpdateTranscription(ctx, "nope", files.TranscriptionUpdate{}), apperr.ErrNotFound)
	_, err = r.Get(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnalysisRepository(t *testing.T) {
	ctx := context.Background()
	r := NewAnalysisRepository()

	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, r.Create(ctx, &analyses.Analysis{
			ID:            id,
			CustomerID:    "c1",
			FilesAnalyzed: []string{"f1"},
			Content:       analyses.Content{Schema: analyses.SchemaFivePart, FullText: id},
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}
	assert.Error(t, r.Create(ctx, &analyses.Analysis{ID: "a1"}))

	page1, err := r.Paginate(ctx, "c1", 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "a3", page1[0].ID)
	assert.Equal(t, "a2", page1[1].ID)

	page2, err := r.Paginate(ctx, "c1", 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "a1", page2[0].ID)

	empty, err := r.Paginate(ctx, "c1", 5, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a, err := r.Get(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "a2", a.Content.FullText)
	_, err = r.Get(ctx, "zzz")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
