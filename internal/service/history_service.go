package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"autoprice/internal/domain"
	"autoprice/internal/export"
	"autoprice/internal/features"
	"autoprice/internal/port"
	"autoprice/internal/predictor"
	"autoprice/internal/pricing"
	"autoprice/internal/schema"
	"autoprice/internal/validation"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	exportBatchSize  = 500
)

// RepriceSummary reports the outcome of a reprice run.
type RepriceSummary struct {
	Scanned   int `json:"scanned"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// HistoryService reads and maintains stored estimates.
type HistoryService interface {
	List(ctx context.Context, offset, limit int) ([]domain.Prediction, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error)
	Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error
	Reprice(ctx context.Context, batchSize int) (*RepriceSummary, error)
}

type historyService struct {
	repo      port.PredictionRepository
	schema    *schema.Schema
	validator *validation.Validator
	predictor *predictor.Adapter
	logger    *zap.Logger
}

// NewHistoryService creates a new HistoryService implementation. A nil repo
// means history is disabled and every call fails with domain.ErrHistoryDisabled.
func NewHistoryService(
	repo port.PredictionRepository,
	s *schema.Schema,
	v *validation.Validator,
	adapter *predictor.Adapter,
	logger *zap.Logger,
) HistoryService {
	return &historyService{
		repo:      repo,
		schema:    s,
		validator: v,
		predictor: adapter,
		logger:    logger,
	}
}

func (s *historyService) List(ctx context.Context, offset, limit int) ([]domain.Prediction, int, error) {
	if s.repo == nil {
		return nil, 0, domain.ErrHistoryDisabled
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *historyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error) {
	if s.repo == nil {
		return nil, domain.ErrHistoryDisabled
	}
	return s.repo.GetByID(ctx, id)
}

// Export writes every stored prediction in id order.
func (s *historyService) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	if s.repo == nil {
		return domain.ErrHistoryDisabled
	}
	ew, err := export.New(format, w, s.schema.Names())
	if err != nil {
		return err
	}
	if err := ew.WriteHeader(); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	err = s.each(ctx, exportBatchSize, func(batch []domain.Prediction) error {
		return ew.WritePredictions(batch)
	})
	if err != nil {
		return err
	}
	return ew.Finish()
}

// Reprice re-runs the current predictor over the stored validated features and
// updates rows whose price range or model changed. Rows that no longer validate
// or predict are skipped and logged.
func (s *historyService) Reprice(ctx context.Context, batchSize int) (*RepriceSummary, error) {
	if s.repo == nil {
		return nil, domain.ErrHistoryDisabled
	}
	if batchSize <= 0 {
		batchSize = defaultListLimit
	}

	summary := &RepriceSummary{}
	model := s.predictor.ModelName()
	err := s.each(ctx, batchSize, func(batch []domain.Prediction) error {
		for i := range batch {
			p := &batch[i]
			summary.Scanned++

			r, err := s.reprice(ctx, p)
			if err != nil {
				s.logger.Warn("skipping prediction", zap.String("id", p.ID.String()), zap.Error(err))
				summary.Skipped++
				continue
			}
			if r.Price == p.Price && r.PriceMin == p.PriceMin && r.PriceMax == p.PriceMax && p.ModelUsed == model {
				summary.Unchanged++
				continue
			}

			p.Price, p.PriceMin, p.PriceMax, p.Confidence = r.Price, r.PriceMin, r.PriceMax, r.Confidence
			p.ModelUsed = model
			if err := s.repo.UpdatePrice(ctx, p); err != nil {
				return fmt.Errorf("updating prediction %s: %w", p.ID, err)
			}
			summary.Updated++
		}
		s.logger.Info("reprice progress",
			zap.Int("scanned", summary.Scanned),
			zap.Int("updated", summary.Updated))
		return nil
	})
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *historyService) reprice(ctx context.Context, p *domain.Prediction) (pricing.Range, error) {
	var values map[string]any
	if err := json.Unmarshal(p.Features, &values); err != nil {
		return pricing.Range{}, fmt.Errorf("decoding stored features: %w", err)
	}
	rec, err := features.NewRecord(s.schema.Names(), values)
	if err != nil {
		return pricing.Range{}, err
	}
	validated, err := s.validator.Validate(rec)
	if err != nil {
		return pricing.Range{}, err
	}
	raw, err := s.predictor.Predict(ctx, validated.Record)
	if err != nil {
		return pricing.Range{}, err
	}
	return pricing.FormatRange(raw), nil
}

// each walks all predictions in keyset pages.
func (s *historyService) each(ctx context.Context, batchSize int, fn func([]domain.Prediction) error) error {
	after := uuid.Nil
	for {
		batch, err := s.repo.ListAfter(ctx, after, batchSize)
		if err != nil {
			return fmt.Errorf("listing predictions after %s: %w", after, err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		after = batch[len(batch)-1].ID
	}
}
