package files

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/callprep/internal/application"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	domain "github.com/bryanwahyu/callprep/internal/domain/files"
	"github.com/bryanwahyu/callprep/internal/infra/db/memory"
	"github.com/bryanwahyu/callprep/internal/infra/storage"
)

var now = time.Date(2024, 12, 12, 8, 30, 0, 0, time.UTC)

type recordingTrigger struct {
	mu  sync.Mutex
	got []*domain.File
}

func (r *recordingTrigger) Dispatch(f *domain.File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, f)
}

type fixture struct {
	svc     *Service
	blobs   *storage.MemoryStore
	trigger *recordingTrigger
	custs   *memory.CustomerRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	custs := memory.NewCustomerRepository()
	require.NoError(t, custs.Create(context.Background(), &customers.Customer{
		ID: "c1", OwnerID: "alice", Name: "Acme Corp", CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
	}))
	blobs := storage.NewMemory()
	trigger := &recordingTrigger{}
	return fixture{
		svc: &Service{
			Customers:      custs,
			Files:          memory.NewFileRepository(),
			Blobs:          blobs,
			Transcriptions: trigger,
			Clock:          application.FixedClock{T: now},
		},
		blobs:   blobs,
		trigger: trigger,
		custs:   custs,
	}
}

func TestAdd_Transcript(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	occurred := time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)

	f, err := fx.svc.Add(ctx, AddFileCommand{
		OwnerID:           "alice",
		CustomerID:        "c1",
		TranscriptContent: "TRANSCRIPT BODY B",
		OccurredAt:        &occurred,
		Notes:             "  discovery  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeTranscript, f.Type)
	assert.Equal(t, "Transcript", f.Name)
	assert.Equal(t, "TRANSCRIPT BODY B", *f.Content)
	assert.Nil(t, f.StoragePath)
	assert.Equal(t, "discovery", *f.Notes)
	assert.Equal(t, occurred, *f.OccurredAt)
	assert.Empty(t, fx.trigger.got)

	c, err := fx.custs.Get(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Equal(t, now, c.UpdatedAt)
}

func TestAdd_EmailUsesHeaders(t *testing.T) {
	fx := newFixture(t)
	raw := "From: dana@acme.test\nSubject: Renewal terms\nDate: Tue, 03 Dec 2024 14:00:00 +0000\n\nCan we talk price?"

	f, err := fx.svc.Add(context.Background(), AddFileCommand{OwnerID: "alice", CustomerID: "c1", EmailContent: raw})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeEmail, f.Type)
	assert.Equal(t, "Email: Renewal terms", f.Name)
	assert.Equal(t, raw, *f.Content)
	require.NotNil(t, f.OccurredAt)
	assert.Equal(t, time.Date(2024, 12, 3, 14, 0, 0, 0, time.UTC), *f.OccurredAt)
}

func TestAdd_EmailKeepsCallerDate(t *testing.T) {
	fx := newFixture(t)
	given := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	f, err := fx.svc.Add(context.Background(), AddFileCommand{
		OwnerID:      "alice",
		CustomerID:   "c1",
		EmailContent: "Subject: Hello\n\nbody",
		OccurredAt:   &given,
	})
	require.NoError(t, err)
	assert.Equal(t, given, *f.OccurredAt)
}

func TestAdd_PlainEmail(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.svc.Add(context.Background(), AddFileCommand{OwnerID: "alice", CustomerID: "c1", EmailContent: "EMAIL BODY A"})
	require.NoError(t, err)
	assert.Equal(t, "Email thread", f.Name)
	assert.Nil(t, f.OccurredAt)
}

func TestAdd_AudioUpload(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f, err := fx.svc.Add(ctx, AddFileCommand{
		OwnerID:    "alice",
		CustomerID: "c1",
		Upload: &Upload{
			Name: "Q4 call (final).mp3",
			Size: 5,
			Body: strings.NewReader("ID3xx"),
		},
		EmailContent: "ignored, the upload wins",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeAudio, f.Type)
	assert.Equal(t, "Q4 call (final).mp3", f.Name)
	assert.Nil(t, f.Content)
	assert.Equal(t, domain.TranscriptionPending, f.TranscriptionStatus)
	require.NotNil(t, f.StoragePath)
	assert.Equal(t, StorageKey(now, "Q4 call (final).mp3"), *f.StoragePath)
	assert.Equal(t, int64(5), *f.FileSize)

	data, err := fx.blobs.Get(ctx, *f.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "ID3xx", string(data))

	require.Len(t, fx.trigger.got, 1)
	assert.Equal(t, f.ID, fx.trigger.got[0].ID)
}

func TestAdd_Errors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Add(ctx, AddFileCommand{OwnerID: "alice", CustomerID: "c1", EmailContent: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "no file, email content, or transcript content provided")

	_, err = fx.svc.Add(ctx, AddFileCommand{OwnerID: "bob", CustomerID: "c1", TranscriptContent: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = fx.svc.Add(ctx, AddFileCommand{OwnerID: "alice", CustomerID: "c1", Upload: &Upload{Name: "", Body: strings.NewReader("x")}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestList(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	list, err := fx.svc.List(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = fx.svc.Add(ctx, AddFileCommand{OwnerID: "alice", CustomerID: "c1", TranscriptContent: "x"})
	require.NoError(t, err)

	list, err = fx.svc.List(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = fx.svc.List(ctx, "bob", "c1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStorageKey(t *testing.T) {
	at := time.UnixMilli(1733992200000).UTC()
	assert.Equal(t, "1733992200000_Q4_call__final_.mp3", StorageKey(at, "Q4 call (final).mp3"))
	assert.Equal(t, "1733992200000_r_sum_.wav", StorageKey(at, "résumé.wav"))
}
