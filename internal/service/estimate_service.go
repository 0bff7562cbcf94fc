package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"autoprice/internal/domain"
	"autoprice/internal/extraction"
	"autoprice/internal/narrative"
	"autoprice/internal/port"
	"autoprice/internal/predictor"
	"autoprice/internal/pricing"
	"autoprice/internal/ratelimit"
	"autoprice/internal/reconcile"
	"autoprice/internal/schema"
	"autoprice/internal/validation"
)

// MaxDescriptionLength is the longest accepted description, in runes, after trimming.
const MaxDescriptionLength = 1000

// EstimateService runs the description-to-price pipeline.
type EstimateService interface {
	Estimate(ctx context.Context, description string) (*domain.Estimate, error)
	Usage() domain.UsageStatus
}

// EstimateDeps are the collaborators of the estimate pipeline. Repo is nil when
// history is disabled.
type EstimateDeps struct {
	Schema    *schema.Schema
	Extractor *extraction.Engine
	Validator *validation.Validator
	Predictor *predictor.Adapter
	Narrator  *narrative.Generator
	Counter   *ratelimit.DailyCounter
	Repo      port.PredictionRepository
	Logger    *zap.Logger
}

type estimateService struct {
	schema    *schema.Schema
	extractor *extraction.Engine
	validator *validation.Validator
	predictor *predictor.Adapter
	narrator  *narrative.Generator
	counter   *ratelimit.DailyCounter
	repo      port.PredictionRepository
	logger    *zap.Logger
}

// NewEstimateService creates a new EstimateService implementation.
func NewEstimateService(deps EstimateDeps) EstimateService {
	return &estimateService{
		schema:    deps.Schema,
		extractor: deps.Extractor,
		validator: deps.Validator,
		predictor: deps.Predictor,
		narrator:  deps.Narrator,
		counter:   deps.Counter,
		repo:      deps.Repo,
		logger:    deps.Logger,
	}
}

func (s *estimateService) Usage() domain.UsageStatus {
	return s.counter.Status()
}

func (s *estimateService) Estimate(ctx context.Context, description string) (*domain.Estimate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description cannot be empty", domain.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description is %d characters, maximum is %d",
			domain.ErrInvalidInput, n, MaxDescriptionLength)
	}

	if err := s.counter.Acquire(); err != nil {
		s.logger.Warn("daily limit exceeded", zap.Int("remaining", s.counter.Remaining()))
		return nil, err
	}

	extracted, err := s.extractor.Extract(ctx, description)
	if err != nil {
		return nil, err
	}
	s.logger.Info("features extracted",
		zap.Int("attempts", extracted.Attempts),
		zap.String("provider", extracted.Provider),
		zap.Int("mentioned", len(extracted.Partial)))

	rec, err := reconcile.Backfill(s.schema, extracted.Partial)
	if err != nil {
		return nil, fmt.Errorf("backfilling features: %w", err)
	}

	validated, err := s.validator.Validate(rec)
	if err != nil {
		return nil, err
	}

	raw, err := s.predictor.Predict(ctx, validated.Record)
	if err != nil {
		return nil, err
	}
	r := pricing.FormatRange(raw)
	s.logger.Info("price predicted",
		zap.Float64("raw", raw),
		zap.Float64("price", r.Price),
		zap.Int("warnings", len(validated.Warnings)))

	featuresJSON, err := json.Marshal(validated.Record)
	if err != nil {
		return nil, fmt.Errorf("encoding features: %w", err)
	}

	est := &domain.Estimate{
		Price:      r.Price,
		PriceMin:   r.PriceMin,
		PriceMax:   r.PriceMax,
		Confidence: r.Confidence,
		Warnings:   validated.Warnings,
		Narrative:  s.narrator.Narrate(ctx, description, r.PriceMin, r.PriceMax, validated.Warnings),
		Features:   featuresJSON,
		Attempts:   extracted.Attempts,
		ModelUsed:  s.predictor.ModelName(),
	}
	s.save(ctx, description, est)
	return est, nil
}

// save records the estimate in history. Failures are logged and never fail the request.
func (s *estimateService) save(ctx context.Context, description string, est *domain.Estimate) {
	if s.repo == nil {
		return
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	p := &domain.Prediction{
		ID:          id,
		Description: description,
		Features:    est.Features,
		Warnings:    est.Warnings,
		Price:       est.Price,
		PriceMin:    est.PriceMin,
		PriceMax:    est.PriceMax,
		Confidence:  est.Confidence,
		Narrative:   est.Narrative,
		ModelUsed:   est.ModelUsed,
		Attempts:    est.Attempts,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Warn("failed to save prediction history", zap.Error(err))
		return
	}
	est.ID = &p.ID
}
