package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bryanwahyu/callprep/internal/config"
	"github.com/bryanwahyu/callprep/internal/domain/ai"
	"github.com/bryanwahyu/callprep/internal/domain/analyses"
	"github.com/bryanwahyu/callprep/internal/domain/customers"
	"github.com/bryanwahyu/callprep/internal/domain/files"
	"github.com/bryanwahyu/callprep/internal/infra/ai/gemini"
	"github.com/bryanwahyu/callprep/internal/infra/ai/openai"
	"github.com/bryanwahyu/callprep/internal/infra/ai/whisper"
	"github.com/bryanwahyu/callprep/internal/infra/db/memory"
	"github.com/bryanwahyu/callprep/internal/infra/db/migrations"
	mysqlp "github.com/bryanwahyu/callprep/internal/infra/db/mysql"
	"github.com/bryanwahyu/callprep/internal/infra/db/postgres"
	"github.com/bryanwahyu/callprep/internal/middleware"
)

type repositories struct {
	customers customers.Repository
	files     files.Repository
	analyses  analyses.Repository
	health    middleware.HealthChecker
	close     func()
}

func openRepositories(ctx context.Context, cfg *config.Config, log *slog.Logger) (*repositories, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("using in-memory repositories; data is lost on exit")
		return &repositories{
			customers: memory.NewCustomerRepository(),
			files:     memory.NewFileRepository(),
			analyses:  memory.NewAnalysisRepository(),
			health:    middleware.CheckFunc(func(context.Context) error { return nil }),
			close:     func() {},
		}, nil
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
	case "postgres":
		db, err = postgres.Connect(ctx, cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}

	if cfg.Database.Migrate {
		if err := migrations.MigrateUp(db, cfg.Database.Driver); err != nil {
			db.Close()
			return nil, err
		}
		if v, dirty, err := migrations.Version(db, cfg.Database.Driver); err == nil {
			log.Info("database migrated", "driver", cfg.Database.Driver, "version", v, "dirty", dirty)
		}
	}

	r := &repositories{
		health: &middleware.DatabaseHealthChecker{DB: db},
		close:  func() { db.Close() },
	}
	if cfg.Database.Driver == "mysql" {
		r.customers = mysqlp.NewCustomerRepository(db)
		r.files = mysqlp.NewFileRepository(db)
		r.analyses = mysqlp.NewAnalysisRepository(db)
	} else {
		r.customers = postgres.NewCustomerRepository(db)
		r.files = postgres.NewFileRepository(db)
		r.analyses = postgres.NewAnalysisRepository(db)
	}
	return r, nil
}

func newGenerator(ctx context.Context, cfg config.AIConfig) (ai.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(ctx, gemini.Options{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "openai":
		return openai.NewClient(openai.Options{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newTranscriber(cfg config.TranscriptionConfig) (ai.Transcriber, error) {
	switch cfg.Provider {
	case "whisper":
		return whisper.NewClient(cfg.Endpoint, cfg.APIKey, cfg.Timeout)
	case "openai":
		return openai.NewClient(openai.Options{
			APIKey:             cfg.APIKey,
			BaseURL:            cfg.Endpoint,
			TranscriptionModel: cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", cfg.Provider)
	}
}
