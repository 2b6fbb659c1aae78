package apperr

import "errors"

// Error taxonomy shared by services and the HTTP boundary.
// Services wrap these with fmt.Errorf("%w: ...") so the router can map them with errors.Is.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrTooLarge           = errors.New("payload too large")
	ErrNoContent          = errors.New("no analyzable content")
	ErrFileNotFound       = errors.New("stored file not found")
	ErrTranscription      = errors.New("transcription failed")
	ErrAnalysisGeneration = errors.New("analysis generation failed")
	ErrPersistence        = errors.New("persistence error")
)
