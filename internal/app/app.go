// Package app assembles the estimation pipeline and its HTTP surface from config.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"autoprice/internal/config"
	"autoprice/internal/extraction"
	"autoprice/internal/handler"
	"autoprice/internal/llm"
	"autoprice/internal/llm/claude"
	"autoprice/internal/llm/gemini"
	"autoprice/internal/llm/openai"
	"autoprice/internal/narrative"
	"autoprice/internal/port"
	"autoprice/internal/predictor"
	"autoprice/internal/ratelimit"
	"autoprice/internal/repository/sqlstore"
	"autoprice/internal/router"
	"autoprice/internal/schema"
	"autoprice/internal/service"
	s3storage "autoprice/internal/storage/s3"
	"autoprice/internal/validation"
)

// App holds the wired services. DB is nil when history is disabled.
type App struct {
	Schema   *schema.Schema
	Estimate service.EstimateService
	History  service.HistoryService
	Router   *gin.Engine
	DB       *sqlx.DB

	llmConfigured bool
}

// Options trims the wiring for callers that do not need every component.
type Options struct {
	// SkipHistory leaves history disabled regardless of config.
	SkipHistory bool
}

// NewRegistry returns a provider registry with every built-in text generator.
func NewRegistry(ctx context.Context) *llm.Registry {
	reg := llm.NewRegistry()
	reg.Register("gemini", func(cfg *config.ProviderConfig) (port.TextGenerator, error) {
		gen, err := gemini.NewGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gen, nil
	})
	reg.Register("claude", func(cfg *config.ProviderConfig) (port.TextGenerator, error) {
		return claude.NewGenerator(cfg), nil
	})
	reg.Register("openai", func(cfg *config.ProviderConfig) (port.TextGenerator, error) {
		return openai.NewGenerator(cfg), nil
	})
	return reg
}

// NewTextGenerator builds the fallback chain over every configured provider.
func NewTextGenerator(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (port.TextGenerator, bool, error) {
	reg := NewRegistry(ctx)
	providers := cfg.Providers()

	generators := make([]port.TextGenerator, 0, len(providers))
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		gen, err := reg.New(p)
		if err != nil {
			return nil, false, fmt.Errorf("initializing %s generator: %w", p.Provider, err)
		}
		generators = append(generators, gen)
		names = append(names, p.Provider)
	}

	if len(generators) == 0 {
		logger.Warn("no llm provider configured; extraction will fail until an API key is set")
	}
	return llm.NewFallbackGenerator(generators, names, logger), len(generators) > 0, nil
}

// Build wires every component from cfg. The caller owns Close.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	s, err := schema.Load()
	if err != nil {
		return nil, fmt.Errorf("loading feature schema: %w", err)
	}

	gen, llmConfigured, err := NewTextGenerator(ctx, &cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	var store port.ObjectStorage
	if strings.HasPrefix(cfg.Predictor.ArtifactPath, "s3://") {
		store, err = s3storage.NewArtifactStore(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("initializing artifact store: %w", err)
		}
	}

	model, err := predictor.New(ctx, cfg.Predictor, s, store)
	if err != nil {
		return nil, fmt.Errorf("loading price model: %w", err)
	}
	adapter := predictor.NewAdapter(s, model)
	validator := validation.New(s)
	logger.Info("price model loaded", zap.String("model", adapter.ModelName()))

	a := &App{Schema: s, llmConfigured: llmConfigured}

	var repo port.PredictionRepository
	if cfg.History.Enabled && !opts.SkipHistory {
		if cfg.History.AutoMigrate {
			if err := sqlstore.Migrate(&cfg.DB); err != nil {
				return nil, fmt.Errorf("running migrations: %w", err)
			}
		}
		db, err := sqlstore.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("connecting to history database: %w", err)
		}
		a.DB = db
		repo = sqlstore.NewPredictionRepo(db)
		logger.Info("prediction history enabled", zap.String("driver", cfg.DB.Driver))
	}

	a.Estimate = service.NewEstimateService(service.EstimateDeps{
		Schema:    s,
		Extractor: extraction.NewEngine(gen, s, cfg.Extraction, logger),
		Validator: validator,
		Predictor: adapter,
		Narrator:  narrative.NewGenerator(gen, logger),
		Counter:   ratelimit.NewDailyCounter(cfg.RateLimit.PerDay, logger),
		Repo:      repo,
		Logger:    logger,
	})
	a.History = service.NewHistoryService(repo, s, validator, adapter, logger)

	a.Router = router.Setup(a.handlers(repo, logger), cfg.CORS.AllowedOrigins, logger)
	return a, nil
}

func (a *App) handlers(repo port.PredictionRepository, logger *zap.Logger) router.Handlers {
	h := router.Handlers{
		Estimate: handler.NewEstimateHandler(a.Estimate, logger),
		Schema:   handler.NewSchemaHandler(a.Schema),
	}
	if repo != nil {
		h.History = handler.NewHistoryHandler(a.History, logger)
		h.Health = handler.NewHealthHandler(repo, true, a.llmConfigured)
	} else {
		h.Health = handler.NewHealthHandler(nil, true, a.llmConfigured)
	}
	return h
}

// Close releases the history database, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
