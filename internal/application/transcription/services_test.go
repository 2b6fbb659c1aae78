package transcription

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	"github.com/bryanwahyu/callprep/internal/domain/files"
	"github.com/bryanwahyu/callprep/internal/infra/db/memory"
	"github.com/bryanwahyu/callprep/internal/infra/storage"
)

// MockTranscriber counts calls and delegates to TranscribeFunc.
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, a ai.Audio) (string, error)
	calls          atomic.Int32
}

func (m *MockTranscriber) Transcribe(ctx context.Context, a ai.Audio) (string, error) {
	m.calls.Add(1)
	return m.TranscribeFunc(ctx, a)
}

type fixture struct {
	svc   *Service
	files *memory.FileRepository
	blobs *storage.MemoryStore
	mock  *MockTranscriber
}

var created = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, fn func(context.Context, ai.Audio) (string, error)) fixture {
	t.Helper()
	ctx := context.Background()

	custs := memory.NewCustomerRepository()
	require.NoError(t, custs.Create(ctx, &customers.Customer{ID: "c1", OwnerID: "alice", Name: "Acme"}))

	fileRepo := memory.NewFileRepository()
	blobs := storage.NewMemory()
	mock := &MockTranscriber{TranscribeFunc: fn}

	return fixture{
		svc: &Service{
			Customers:   custs,
			Files:       fileRepo,
			Blobs:       blobs,
			Transcriber: mock,
		},
		files: fileRepo,
		blobs: blobs,
		mock:  mock,
	}
}

func (fx fixture) addAudio(t *testing.T, id string, withBlob bool) {
	t.Helper()
	ctx := context.Background()
	key := "1733047200000_" + id + ".mp3"
	if withBlob {
		require.NoError(t, fx.blobs.Put(ctx, key, strings.NewReader("AUDIO-"+id), 0, "audio/mpeg"))
	}
	require.NoError(t, fx.files.Create(ctx, &files.File{
		ID:                  id,
		CustomerID:          "c1",
		Name:                id + ".mp3",
		Type:                files.TypeAudio,
		StoragePath:         &key,
		TranscriptionStatus: files.TranscriptionPending,
		CreatedAt:           created,
	}))
}

func TestTranscribe_PersistsAndIsIdempotent(t *testing.T) {
	fx := newFixture(t, func(_ context.Context, a ai.Audio) (string, error) {
		return "transcribed " + string(a.Data), nil
	})
	fx.addAudio(t, "f1", true)
	ctx := context.Background()

	first, err := fx.svc.Transcribe(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.Equal(t, "transcribed AUDIO-f1", first.Transcription)
	assert.Equal(t, files.TranscriptionDone, first.File.TranscriptionStatus)

	stored, err := fx.files.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "transcribed AUDIO-f1", *stored.Content)
	assert.Equal(t, files.TranscriptionDone, stored.TranscriptionStatus)

	second, err := fx.svc.Transcribe(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.Equal(t, first.Transcription, second.Transcription)
	assert.Equal(t, int32(1), fx.mock.calls.Load())
}

func TestTranscribe_NotFoundCases(t *testing.T) {
	fx := newFixture(t, func(context.Context, ai.Audio) (string, error) { return "x", nil })
	fx.addAudio(t, "f1", true)
	ctx := context.Background()
	body := "text"
	require.NoError(t, fx.files.Create(ctx, &files.File{ID: "email", CustomerID: "c1", Type: files.TypeEmail, Content: &body}))

	tests := []struct {
		name  string
		owner string
		id    string
	}{
		{"missing file", "alice", "nope"},
		{"not audio", "alice", "email"},
		{"other owner", "bob", "f1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Transcribe(ctx, tt.owner, tt.id)
			assert.ErrorIs(t, err, apperr.ErrNotFound)
		})
	}
	assert.Equal(t, int32(0), fx.mock.calls.Load())
}

func TestTranscribe_MissingBlob(t *testing.T) {
	fx := newFixture(t, func(context.Context, ai.Audio) (string, error) { return "x", nil })
	fx.addAudio(t, "f1", false)

	_, err := fx.svc.Transcribe(context.Background(), "alice", "f1")
	assert.ErrorIs(t, err, apperr.ErrFileNotFound)
	assert.Equal(t, int32(0), fx.mock.calls.Load())

	stored, err := fx.files.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, files.TranscriptionFailed, stored.TranscriptionStatus)
	require.NotNil(t, stored.TranscriptionError)
	assert.Contains(t, *stored.TranscriptionError, "stored file not found")
}

func TestTranscribe_NoStoragePathMarksFailed(t *testing.T) {
	fx := newFixture(t, func(context.Context, ai.Audio) (string, error) { return "x", nil })
	ctx := context.Background()
	require.NoError(t, fx.files.Create(ctx, &files.File{
		ID: "f1", CustomerID: "c1", Name: "call.mp3", Type: files.TypeAudio,
		TranscriptionStatus: files.TranscriptionPending,
	}))

	_, err := fx.svc.Transcribe(ctx, "alice", "f1")
	assert.ErrorIs(t, err, apperr.ErrFileNotFound)

	stored, _ := fx.files.Get(ctx, "f1")
	assert.Equal(t, files.TranscriptionFailed, stored.TranscriptionStatus)
}

func TestTranscribe_InProgressSkipsProvider(t *testing.T) {
	fx := newFixture(t, func(context.Context, ai.Audio) (string, error) { return "x", nil })
	fx.addAudio(t, "f1", true)
	ctx := context.Background()
	require.NoError(t, fx.files.UpdateTranscription(ctx, "f1", files.TranscriptionUpdate{Status: files.TranscriptionProcessing}))

	res, err := fx.svc.Transcribe(ctx, "alice", "f1")
	require.NoError(t, err)
	assert.Empty(t, res.Transcription)
	assert.Equal(t, files.TranscriptionProcessing, res.File.TranscriptionStatus)
	assert.Equal(t, int32(0), fx.mock.calls.Load())
}

func TestTranscribe_ProviderFailureMarksFile(t *testing.T) {
	fx := newFixture(t, func(context.Context, ai.Audio) (string, error) {
		return "", errors.New("unsupported audio format")
	})
	fx.addAudio(t, "f1", true)
	var observed error
	fx.svc.Observe = func(err error) { observed = err }

	_, err := fx.svc.Transcribe(context.Background(), "alice", "f1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrTranscription)
	assert.Contains(t, err.Error(), "unsupported audio format")
	assert.Error(t, observed)

	stored, err := fx.files.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Nil(t, stored.Content)
	assert.Equal(t, files.TranscriptionFailed, stored.TranscriptionStatus)
	require.NotNil(t, stored.TranscriptionError)
	assert.Contains(t, *stored.TranscriptionError, "unsupported audio format")
}

func TestTranscribe_Timeout(t *testing.T) {
	fx := newFixture(t, func(ctx context.Context, _ ai.Audio) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	fx.svc.Timeout = 10 * time.Millisecond
	fx.addAudio(t, "f1", true)

	_, err := fx.svc.Transcribe(context.Background(), "alice", "f1")
	assert.ErrorIs(t, err, apperr.ErrTranscription)

	stored, _ := fx.files.Get(context.Background(), "f1")
	assert.Equal(t, files.TranscriptionFailed, stored.TranscriptionStatus)
}
