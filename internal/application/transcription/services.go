package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	"github.com/bryanwahyu/callprep/internal/domain/files"
)

// Service turns stored audio into text and persists it onto the file record.
type Service struct {
	Customers   customers.Repository
	Files       files.Repository
	Blobs       files.BlobStore
	Transcriber ai.Transcriber
	Logger      *slog.Logger
	// Timeout bounds the provider call. Zero means no extra deadline.
	Timeout time.Duration
	// Observe, when set, sees the outcome of every provider call.
	Observe func(err error)
}

// Result is what the transcribe endpoint returns.
type Result struct {
	Transcription string      `json:"transcription"`
	File          *files.File `json:"file"`
}

// Transcribe runs on behalf of ownerID. Files that are missing, not audio, or belong to
// another owner's customer are reported as apperr.ErrNotFound. A file whose transcription
// is already in progress is returned as is with an empty Transcription.
func (s *Service) Transcribe(ctx context.Context, ownerID, fileID string) (Result, error) {
	f, err := s.Files.Get(ctx, fileID)
	if err != nil {
		return Result{}, err
	}
	if f.Type != files.TypeAudio {
		return Result{}, fmt.Errorf("%w: file %s is not audio", apperr.ErrNotFound, fileID)
	}
	if _, err := s.Customers.Get(ctx, ownerID, f.CustomerID); err != nil {
		return Result{}, err
	}

	// another run is already paying for this file
	if f.Content == nil && f.TranscriptionStatus == files.TranscriptionProcessing {
		return Result{File: f}, nil
	}

	out, err := s.Run(ctx, f)
	if err != nil {
		return Result{}, err
	}
	return Result{Transcription: *out.Content, File: out}, nil
}

// Run transcribes f. A file that already has content is returned as is, without
// calling the provider again.
func (s *Service) Run(ctx context.Context, f *files.File) (*files.File, error) {
	if f.Content != nil {
		return f, nil
	}
	if f.StoragePath == nil || *f.StoragePath == "" {
		err := fmt.Errorf("%w: file %s has no stored audio", apperr.ErrFileNotFound, f.ID)
		s.fail(ctx, f.ID, err)
		return nil, err
	}

	data, err := s.Blobs.Get(ctx, *f.StoragePath)
	if err != nil {
		s.fail(ctx, f.ID, err)
		return nil, err
	}

	s.update(ctx, f.ID, files.TranscriptionUpdate{Status: files.TranscriptionProcessing})

	text, err := s.call(ctx, ai.Audio{Name: f.Name, Data: data})
	if s.Observe != nil {
		s.Observe(err)
	}
	if err != nil {
		s.fail(ctx, f.ID, err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrTranscription, err)
	}

	if err := s.Files.UpdateTranscription(ctx, f.ID, files.TranscriptionUpdate{
		Status:  files.TranscriptionDone,
		Content: &text,
	}); err != nil {
		return nil, fmt.Errorf("%w: saving transcription: %v", apperr.ErrPersistence, err)
	}

	out := *f
	out.Content = &text
	out.TranscriptionStatus = files.TranscriptionDone
	out.TranscriptionError = nil
	return &out, nil
}

func (s *Service) call(ctx context.Context, a ai.Audio) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Transcriber.Transcribe(ctx, a)
}

// fail records err on the file even when ctx is already cancelled.
func (s *Service) fail(ctx context.Context, id string, err error) {
	msg := err.Error()
	s.update(context.WithoutCancel(ctx), id, files.TranscriptionUpdate{Status: files.TranscriptionFailed, Error: &msg})
}

func (s *Service) update(ctx context.Context, id string, u files.TranscriptionUpdate) {
	if err := s.Files.UpdateTranscription(ctx, id, u); err != nil {
		s.log().Warn("updating transcription status failed", "file_id", id, "status", u.Status, "error", err)
	}
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
