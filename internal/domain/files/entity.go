package files

import (
	"fmt"
	"time"
)

// Type of an uploaded artifact
type Type string

const (
	TypeEmail      Type = "email"
	TypeAudio      Type = "audio"
	TypeTranscript Type = "transcript"
)

// ParseType validates a raw type string.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeEmail, TypeAudio, TypeTranscript:
		return t, nil
	default:
		return "", fmt.Errorf("unknown file type: %q", s)
	}
}

// TranscriptionStatus tracks the asynchronous transcription of audio files.
// Text files leave it empty.
type TranscriptionStatus string

const (
	TranscriptionPending    TranscriptionStatus = "pending"
	TranscriptionProcessing TranscriptionStatus = "processing"
	TranscriptionDone       TranscriptionStatus = "done"
	TranscriptionFailed     TranscriptionStatus = "failed"
)

// File is one customer artifact. Email and transcript files carry Content from creation;
// audio files carry StoragePath and gain Content once transcription succeeds.
type File struct {
	ID                  string              `json:"id"`
	CustomerID          string              `json:"customer_id"`
	Name                string              `json:"name"`
	Type                Type                `json:"type"`
	Content             *string             `json:"content"`
	StoragePath         *string             `json:"storage_path"`
	FileSize            *int64              `json:"file_size"`
	OccurredAt          *time.Time          `json:"occurred_at"`
	Notes               *string             `json:"notes"`
	TranscriptionStatus TranscriptionStatus `json:"transcription_status,omitempty"`
	TranscriptionError  *string             `json:"transcription_error,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// HasContent reports whether the file carries non-empty text.
func (f *File) HasContent() bool {
	return f.Content != nil && *f.Content != ""
}

// Eligible reports whether the file can be part of an analysis bundle.
func (f *File) Eligible() bool {
	switch f.Type {
	case TypeEmail, TypeTranscript, TypeAudio:
		return f.HasContent()
	default:
		return false
	}
}

// EffectiveDate is OccurredAt, falling back to CreatedAt.
func (f *File) EffectiveDate() time.Time {
	if f.OccurredAt != nil && !f.OccurredAt.IsZero() {
		return *f.OccurredAt
	}
	return f.CreatedAt
}
