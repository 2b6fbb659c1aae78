package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/callprep/internal/application"
	"github.com/bryanwahyu/callprep/internal/application/content"
	"github.com/bryanwahyu/callprep/internal/domain/ai"
	"github.com/bryanwahyu/callprep/internal/domain/analyses"
	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	"github.com/bryanwahyu/callprep/internal/domain/files"
	"github.com/bryanwahyu/callprep/internal/infra/ai/prompt"
)

// Service orchestrates bundle assembly, the model call, section parsing and storage.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	Customers customers.Repository
	Analyses  analyses.Repository
	Assembler *content.Assembler
	Generator ai.Generator
	Parser    analyses.Parser
	// Archive receives the raw model output before the analysis row is written. Optional.
	Archive files.BlobStore
	Clock   application.Clock
	Logger  *slog.Logger
	// Schema is the canonical shape new analyses are parsed into.
	Schema analyses.Schema
	// Timeout bounds the model call. Zero means no extra deadline.
	Timeout time.Duration
}

// GenerateCommand asks for a new analysis of a customer's files.
type GenerateCommand struct {
	OwnerID    string
	CustomerID string
	FileIDs    []string
}

// ArchiveKey is where the raw model output of an analysis is kept.
func ArchiveKey(id analyses.AnalysisID) string {
	return fmt.Sprintf("analyses/%s.txt", id)
}

// Generate runs the whole pipeline once. There are no retries; concurrent calls for the
// same customer produce independent analyses.
func (s *Service) Generate(ctx context.Context, cmd GenerateCommand) (*analyses.Analysis, error) {
	customer, err := s.Customers.Get(ctx, cmd.OwnerID, cmd.CustomerID)
	if err != nil {
		return nil, err
	}

	bundle, err := s.Assembler.Assemble(ctx, customer.ID, cmd.FileIDs)
	if err != nil {
		return nil, err
	}

	schema := s.schema()
	raw, err := s.generate(ctx, prompt.Briefing(schema, customer.Name, bundle.Text))
	if err != nil {
		return nil, err
	}

	a := &analyses.Analysis{
		ID:            uuid.New().String(),
		CustomerID:    customer.ID,
		FilesAnalyzed: bundle.Selected,
		Content:       s.Parser.Structure(raw, schema),
		CreatedAt:     s.Clock.Now(),
	}

	archived := s.archive(ctx, a.ID, raw)
	if err := s.Analyses.Create(ctx, a); err != nil {
		s.log().Error("analysis insert failed after model call",
			"analysis_id", a.ID, "customer_id", customer.ID, "archived", archived, "archive_key", ArchiveKey(a.ID), "error", err)
		return nil, fmt.Errorf("%w: saving analysis: %v", apperr.ErrPersistence, err)
	}

	s.log().Info("analysis created",
		"analysis_id", a.ID, "customer_id", customer.ID, "files", len(bundle.FileIDs), "schema", schema)
	return a, nil
}

// Get returns one analysis of a customer owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID string, id analyses.AnalysisID) (*analyses.Analysis, error) {
	a, err := s.Analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Customers.Get(ctx, ownerID, a.CustomerID); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns a page of analyses for an owned customer, newest first.
func (s *Service) List(ctx context.Context, ownerID, customerID string, page, pageSize int) ([]analyses.Summary, error) {
	if _, err := s.Customers.Get(ctx, ownerID, customerID); err != nil {
		return nil, err
	}
	list, err := s.Analyses.Paginate(ctx, customerID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: listing analyses: %v", apperr.ErrPersistence, err)
	}
	out := make([]analyses.Summary, 0, len(list))
	for _, a := range list {
		out = append(out, a.Summarize())
	}
	return out, nil
}

// Reparse re-runs the parser over the stored full text with the current schema.
// The stored analysis is not modified.
func (s *Service) Reparse(ctx context.Context, ownerID string, id analyses.AnalysisID) (analyses.Content, error) {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return analyses.Content{}, err
	}
	return s.Parser.Structure(a.Content.FullText, s.schema()), nil
}

func (s *Service) generate(ctx context.Context, p ai.Prompt) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.Generator.Generate(ctx, p)
	if err != nil {
		s.log().Warn("model call failed", "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("%w: %w", apperr.ErrAnalysisGeneration, err)
	}
	if raw == "" {
		return "", fmt.Errorf("%w: model returned an empty response", apperr.ErrAnalysisGeneration)
	}
	return raw, nil
}

func (s *Service) archive(ctx context.Context, id analyses.AnalysisID, raw string) bool {
	if s.Archive == nil {
		return false
	}
	data := []byte(raw)
	if err := s.Archive.Put(ctx, ArchiveKey(id), bytes.NewReader(data), int64(len(data)), "text/plain; charset=utf-8"); err != nil {
		s.log().Warn("archiving model output failed", "analysis_id", id, "error", err)
		return false
	}
	return true
}

func (s *Service) schema() analyses.Schema {
	if s.Schema == "" {
		return analyses.SchemaFivePart
	}
	return s.Schema
}

func (s *Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
