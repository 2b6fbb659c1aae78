package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/callprep/internal/application"
	"github.com/bryanwahyu/callprep/internal/application/analysis"
	"github.com/bryanwahyu/callprep/internal/application/content"
	appcustomers "github.com/bryanwahyu/callprep/internal/application/customers"
	appfiles "github.com/bryanwahyu/callprep/internal/application/files"
	"github.com/bryanwahyu/callprep/internal/application/sections"
	"github.com/bryanwahyu/callprep/internal/application/transcription"
	"github.com/bryanwahyu/callprep/internal/config"
	"github.com/bryanwahyu/callprep/internal/domain/analyses"
	"github.com/bryanwahyu/callprep/internal/infra/httpserver"
	"github.com/bryanwahyu/callprep/internal/infra/storage"
	"github.com/bryanwahyu/callprep/internal/logger"
	"github.com/bryanwahyu/callprep/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "path", path, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repos.close()

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}

	generator, err := newGenerator(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("model client: %w", err)
	}
	transcriber, err := newTranscriber(cfg.Transcription)
	if err != nil {
		return fmt.Errorf("transcription client: %w", err)
	}

	schema, err := analyses.ParseSchema(cfg.AI.Schema)
	if err != nil {
		return err
	}
	clock := application.SystemClock{}

	transcriptionSvc := &transcription.Service{
		Customers:   repos.customers,
		Files:       repos.files,
		Blobs:       blobs,
		Transcriber: transcriber,
		Logger:      log,
		Timeout:     cfg.Transcription.Timeout,
		Observe:     middleware.RecordTranscription,
	}
	dispatcher := transcription.NewDispatcher(transcriptionSvc, cfg.Transcription.MaxConcurrent, log)

	services := httpserver.Services{
		Customers: &appcustomers.Service{Repo: repos.customers, Clock: clock},
		Files: &appfiles.Service{
			Customers:      repos.customers,
			Files:          repos.files,
			Blobs:          blobs,
			Transcriptions: dispatcher,
			Clock:          clock,
			Logger:         log,
		},
		Transcription: transcriptionSvc,
		Analysis: &analysis.Service{
			Customers: repos.customers,
			Analyses:  repos.analyses,
			Assembler: &content.Assembler{Files: repos.files},
			Generator: generator,
			Parser:    sections.New(),
			Archive:   blobs,
			Clock:     clock,
			Logger:    log,
			Schema:    schema,
			Timeout:   cfg.AI.Timeout,
		},
	}

	if n, err := dispatcher.Resume(ctx, 100); err != nil {
		log.Warn("resuming pending transcriptions failed", "error", err)
	} else if n > 0 {
		log.Info("resumed pending transcriptions", "count", n)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer limiter.Stop()

	handler := httpserver.NewRouter(services, httpserver.Options{
		APIKeys:        cfg.Auth.APIKeys,
		TrustedHeader:  cfg.Auth.TrustedHeader,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimiter:    limiter,
		Checkers:       map[string]middleware.HealthChecker{"database": repos.health, "storage": blobs},
		Logger:         log,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr,
			"database", cfg.Database.Driver,
			"storage", cfg.Storage.Driver,
			"model", cfg.AI.Provider,
			"transcription", cfg.Transcription.Provider,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn("transcriptions still running at exit; they stay pending or processing", "error", err)
	}
	return nil
}
