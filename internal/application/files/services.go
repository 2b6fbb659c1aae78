package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/callprep/internal/application"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	domain "github.com/bryanwahyu/callprep/internal/domain/files"
)

const (
	defaultEmailName      = "Email thread"
	defaultTranscriptName = "Transcript"
)

// Trigger starts transcription of a freshly stored audio file without blocking the caller.
type Trigger interface {
	Dispatch(f *domain.File)
}

// Service implements file use-cases.
type Service struct {
	Customers      customers.Repository
	Files          domain.Repository
	Blobs          domain.BlobStore
	Transcriptions Trigger
	Clock          application.Clock
	Logger         *slog.Logger
}

// Upload is a binary audio payload.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// AddFileCommand carries exactly one payload kind. When several are set the audio upload
// wins, then email, then transcript.
type AddFileCommand struct {
	OwnerID           string
	CustomerID        string
	Upload            *Upload
	EmailContent      string
	TranscriptContent string
	OccurredAt        *time.Time
	Notes             string
}

// List returns the files of an owned customer, newest first.
func (s *Service) List(ctx context.Context, ownerID, customerID string) ([]*domain.File, error) {
	if _, err := s.Customers.Get(ctx, ownerID, customerID); err != nil {
		return nil, err
	}
	list, err := s.Files.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing files: %v", apperr.ErrPersistence, err)
	}
	if list == nil {
		list = []*domain.File{}
	}
	return list, nil
}

// Add stores one artifact. Audio files are written to the blob store first and handed to
// the transcription trigger after the row exists; a failed trigger leaves the file pending.
func (s *Service) Add(ctx context.Context, cmd AddFileCommand) (*domain.File, error) {
	customer, err := s.Customers.Get(ctx, cmd.OwnerID, cmd.CustomerID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	f := &domain.File{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		OccurredAt: cmd.OccurredAt,
		Notes:      optional(cmd.Notes),
		CreatedAt:  now,
	}

	switch {
	case cmd.Upload != nil:
		if err := s.storeAudio(ctx, f, cmd.Upload, now); err != nil {
			return nil, err
		}
	case strings.TrimSpace(cmd.EmailContent) != "":
		f.Type = domain.TypeEmail
		f.Name = defaultEmailName
		f.Content = &cmd.EmailContent
		if subject, date := emailHeaders(cmd.EmailContent); subject != "" || date != nil {
			if subject != "" {
				f.Name = "Email: " + subject
			}
			if f.OccurredAt == nil {
				f.OccurredAt = date
			}
		}
	case strings.TrimSpace(cmd.TranscriptContent) != "":
		f.Type = domain.TypeTranscript
		f.Name = defaultTranscriptName
		f.Content = &cmd.TranscriptContent
	default:
		return nil, fmt.Errorf("%w: no file, email content, or transcript content provided", apperr.ErrValidation)
	}

	if err := s.Files.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("%w: saving file: %v", apperr.ErrPersistence, err)
	}

	// Not atomic with the insert above; a stale updated_at is tolerated.
	if err := s.Customers.Touch(ctx, customer.ID, now); err != nil {
		s.log().Warn("touching customer failed", "customer_id", customer.ID, "error", err)
	}

	if f.Type == domain.TypeAudio && s.Transcriptions != nil {
		s.Transcriptions.Dispatch(f)
	}
	return f, nil
}

func (s *Service) storeAudio(ctx context.Context, f *domain.File, up *Upload, now time.Time) error {
	name := strings.TrimSpace(filepath.Base(up.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("%w: uploaded file has no name", apperr.ErrValidation)
	}
	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
			contentType = byExt
		}
	}

	key := StorageKey(now, name)
	if err := s.Blobs.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		return fmt.Errorf("%w: uploading audio: %v", apperr.ErrPersistence, err)
	}

	size := up.Size
	f.Type = domain.TypeAudio
	f.Name = name
	f.StoragePath = &key
	f.FileSize = &size
	f.TranscriptionStatus = domain.TranscriptionPending
	return nil
}

// StorageKey names an audio blob: creation time in unix milliseconds, then the
// sanitised original name.
func StorageKey(now time.Time, name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return fmt.Sprintf("%d_%s", now.UnixMilli(), clean)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
