package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bryanwahyu/callprep/internal/domain/files"
)

// Dispatcher runs transcriptions in the background with bounded concurrency.
// Failures are recorded on the file (status failed) and logged; callers never see them.
type Dispatcher struct {
	svc    *Service
	logger *slog.Logger
	sem    chan struct{}
	wg     sync.WaitGroup

	// OnDone, when set, is called after every background run.
	OnDone func(fileID string, err error)
}

// NewDispatcher allows at most maxConcurrent provider calls at once.
func NewDispatcher(svc *Service, maxConcurrent int, logger *slog.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		svc:    svc,
		logger: logger,
		sem:    make(chan struct{}, maxConcurrent),
	}
}

// Dispatch starts transcription of f and returns immediately.
func (d *Dispatcher) Dispatch(f *files.File) {
	if f == nil || f.Type != files.TypeAudio {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// detached from the request so the upload response does not cancel it
		ctx := context.Background()

		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		_, err := d.svc.Run(ctx, f)
		if err != nil {
			d.logger.Error("background transcription failed", "file_id", f.ID, "error", err)
		} else {
			d.logger.Info("background transcription finished", "file_id", f.ID)
		}
		if d.OnDone != nil {
			d.OnDone(f.ID, err)
		}
	}()
}

// Resume re-dispatches audio files left pending or processing by an earlier run.
// Call it once at startup, before new uploads are dispatched, so that every processing
// row it sees is stale.
func (d *Dispatcher) Resume(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	var stale []*files.File
	for _, status := range []files.TranscriptionStatus{files.TranscriptionPending, files.TranscriptionProcessing} {
		if len(stale) >= limit {
			break
		}
		list, err := d.svc.Files.ListByTranscriptionStatus(ctx, status, limit-len(stale))
		if err != nil {
			return 0, fmt.Errorf("listing %s transcriptions: %w", status, err)
		}
		stale = append(stale, list...)
	}
	for _, f := range stale {
		d.Dispatch(f)
	}
	return len(stale), nil
}

// Shutdown waits for in-flight transcriptions or until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
