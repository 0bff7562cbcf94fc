package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autoprice/internal/config"
	"autoprice/internal/domain"
	"autoprice/internal/extraction"
	"autoprice/internal/narrative"
	"autoprice/internal/port"
	"autoprice/internal/predictor"
	"autoprice/internal/ratelimit"
	"autoprice/internal/schema"
	"autoprice/internal/service"
	"autoprice/internal/validation"
	"autoprice/mocks"
)

const civicReply = `{
  "manufacturer": "Honda",
  "year": 2018,
  "mileage": null,
  "transmission": null,
  "drivetrain": null,
  "fuel_type": null,
  "interior_color": null,
  "mpg": null,
  "accidents_or_damage": null,
  "one_owner": null,
  "personal_use_only": null
}`

var civicWarnings = []string{
	"Using default seller rating (average seller quality)",
	"Using default driver rating (average driver quality)",
	"Using default driver reviews count",
	"Unknown transmission - using generic category",
	"Unknown drivetrain - using generic category",
	"Unknown interior color - using generic category",
	"MPG was estimated based on fuel type and year",
}

func isExtractionPrompt(p string) bool {
	return strings.HasPrefix(p, "You are a car feature extraction assistant")
}

func isNarrativePrompt(p string) bool {
	return strings.HasPrefix(p, "You are a friendly car pricing assistant")
}

type pipeline struct {
	gen   *mocks.MockTextGenerator
	model *mocks.MockPriceModel
	repo  *mocks.MockPredictionRepo
	svc   service.EstimateService
}

func newPipeline(t *testing.T, limit int, withRepo bool) *pipeline {
	t.Helper()
	s, err := schema.Load()
	require.NoError(t, err)

	p := &pipeline{
		gen:   new(mocks.MockTextGenerator),
		model: new(mocks.MockPriceModel),
	}
	p.model.On("Name").Return("test-model").Maybe()

	var repo port.PredictionRepository
	if withRepo {
		p.repo = new(mocks.MockPredictionRepo)
		repo = p.repo
	}
	p.svc = newService(t, s, p.gen, p.model, limit, repo)
	return p
}

func newService(t *testing.T, s *schema.Schema, gen port.TextGenerator, model port.PriceModel, limit int, repo port.PredictionRepository) service.EstimateService {
	t.Helper()
	logger := zap.NewNop()
	deps := service.EstimateDeps{
		Schema:    s,
		Extractor: extraction.NewEngine(gen, s, config.ExtractionConfig{MaxRetries: 3}, logger),
		Validator: validation.New(s),
		Predictor: predictor.NewAdapter(s, model),
		Narrator:  narrative.NewGenerator(gen, logger),
		Counter:   ratelimit.NewDailyCounter(limit, logger),
		Repo:      repo,
		Logger:    logger,
	}
	return service.NewEstimateService(deps)
}

func (p *pipeline) extractionReplies(texts ...string) {
	for _, text := range texts {
		p.gen.On("Generate", mock.Anything, mock.MatchedBy(isExtractionPrompt)).
			Return(&port.Generation{Text: text, Provider: "gemini"}, nil).Once()
	}
}

func (p *pipeline) narrativeReply(text string, err error) {
	if err != nil {
		p.gen.On("Generate", mock.Anything, mock.MatchedBy(isNarrativePrompt)).Return(nil, err).Once()
		return
	}
	p.gen.On("Generate", mock.Anything, mock.MatchedBy(isNarrativePrompt)).
		Return(&port.Generation{Text: text}, nil).Once()
}

func TestEstimate_UsedHondaCivic2018(t *testing.T) {
	p := newPipeline(t, 30, false)
	p.extractionReplies("```json\n" + civicReply + "\n```")
	p.narrativeReply("Hi there! We estimated your Civic's value.", nil)
	p.model.On("Predict", mock.Anything, mock.Anything, mock.Anything).Return(12345.0, nil).Once()

	est, err := p.svc.Estimate(context.Background(), "  Used Honda Civic 2018  ")

	require.NoError(t, err)
	assert.Equal(t, 12300.0, est.Price)
	assert.Equal(t, 11100.0, est.PriceMin)
	assert.Equal(t, 13600.0, est.PriceMax)
	assert.Equal(t, 0.9, est.Confidence)
	assert.Equal(t, civicWarnings, est.Warnings)
	assert.Equal(t, "Hi there! We estimated your Civic's value.", est.Narrative)
	assert.Equal(t, 1, est.Attempts)
	assert.Equal(t, "test-model", est.ModelUsed)
	assert.Nil(t, est.ID)
	assert.True(t, strings.HasPrefix(string(est.Features), `{"accidents_or_damage":0,"one_owner":0`))

	var feats map[string]any
	require.NoError(t, json.Unmarshal(est.Features, &feats))
	assert.Len(t, feats, 14)
	assert.Equal(t, 2018.0, feats["year"])
	assert.Equal(t, 25.0, feats["mpg"])

	assert.Equal(t, 1, p.svc.Usage().Used)
	p.gen.AssertExpectations(t)
}

func TestEstimate_RealLinearModel(t *testing.T) {
	s, err := schema.Load()
	require.NoError(t, err)
	model, err := predictor.New(context.Background(), config.PredictorConfig{
		Kind:         "linear",
		ArtifactPath: filepath.Join("..", "..", "models", "price_linear_v0.json"),
	}, s, nil)
	require.NoError(t, err)

	gen := new(mocks.MockTextGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(isExtractionPrompt)).
		Return(&port.Generation{Text: civicReply}, nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(isNarrativePrompt)).
		Return(nil, errors.New("unavailable")).Once()

	est, err := newService(t, s, gen, model, 30, nil).Estimate(context.Background(), "Used Honda Civic 2018")

	require.NoError(t, err)
	assert.Equal(t, 22900.0, est.Price)
	assert.Equal(t, 20600.0, est.PriceMin)
	assert.Equal(t, 25100.0, est.PriceMax)
	assert.Equal(t, "price_linear_v0", est.ModelUsed)
}

func TestEstimate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{"empty", ""},
		{"whitespace", " \n\t "},
		{"too long", strings.Repeat("é", service.MaxDescriptionLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, 30, false)

			_, err := p.svc.Estimate(context.Background(), tt.desc)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, p.svc.Usage().Used)
			p.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestEstimate_DailyLimitExceeded(t *testing.T) {
	p := newPipeline(t, 0, false)

	_, err := p.svc.Estimate(context.Background(), "2020 Toyota Camry")

	assert.ErrorIs(t, err, domain.ErrDailyLimitExceeded)
	p.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestEstimate_ExtractionFailsAfterAllAttempts(t *testing.T) {
	p := newPipeline(t, 30, false)
	p.extractionReplies("no idea", "still no idea", "```\nnope\n```")

	_, err := p.svc.Estimate(context.Background(), "something vague")

	var extErr *domain.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, 3, extErr.Attempts)
	assert.Equal(t, 1, p.svc.Usage().Used)
	p.model.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstimate_SchemaViolation(t *testing.T) {
	p := newPipeline(t, 30, false)
	p.extractionReplies(`{"year": 2030, "mileage": -4}`)

	_, err := p.svc.Estimate(context.Background(), "2030 concept car with negative miles")

	var svErr *domain.SchemaViolationError
	require.True(t, errors.As(err, &svErr))
	assert.Len(t, svErr.Violations, 2)
	p.model.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstimate_PredictionFailure(t *testing.T) {
	p := newPipeline(t, 30, false)
	p.extractionReplies(civicReply)
	p.model.On("Predict", mock.Anything, mock.Anything, mock.Anything).Return(0.0, errors.New("model server down"))

	_, err := p.svc.Estimate(context.Background(), "Used Honda Civic 2018")

	assert.ErrorIs(t, err, domain.ErrPredictionFailed)
}

func TestEstimate_NarrativeFallback(t *testing.T) {
	p := newPipeline(t, 30, false)
	p.extractionReplies(civicReply)
	p.narrativeReply("", errors.New("rate limited"))
	p.model.On("Predict", mock.Anything, mock.Anything, mock.Anything).Return(12345.0, nil)

	est, err := p.svc.Estimate(context.Background(), "Used Honda Civic 2018")

	require.NoError(t, err)
	assert.Equal(t,
		"Based on your description, the estimated price range is $11,100 to $13,600.\n\nNote: Using default seller rating (average seller quality)",
		est.Narrative)
}

func TestEstimate_SavesHistory(t *testing.T) {
	p := newPipeline(t, 30, true)
	p.extractionReplies(civicReply)
	p.narrativeReply("Hello!", nil)
	p.model.On("Predict", mock.Anything, mock.Anything, mock.Anything).Return(12345.0, nil)
	p.repo.On("Create", mock.Anything, mock.MatchedBy(func(pred *domain.Prediction) bool {
		return pred.Description == "Used Honda Civic 2018" &&
			pred.Price == 12300 &&
			pred.ModelUsed == "test-model" &&
			len(pred.Warnings) == 7
	})).Return(nil).Once()

	est, err := p.svc.Estimate(context.Background(), "Used Honda Civic 2018")

	require.NoError(t, err)
	require.NotNil(t, est.ID)
	assert.Equal(t, uuid.Version(7), est.ID.Version())
	p.repo.AssertExpectations(t)
}

func TestEstimate_HistoryFailureDoesNotFailRequest(t *testing.T) {
	p := newPipeline(t, 30, true)
	p.extractionReplies(civicReply)
	p.narrativeReply("Hello!", nil)
	p.model.On("Predict", mock.Anything, mock.Anything, mock.Anything).Return(12345.0, nil)
	p.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	est, err := p.svc.Estimate(context.Background(), "Used Honda Civic 2018")

	require.NoError(t, err)
	assert.Nil(t, est.ID)
	assert.Equal(t, 12300.0, est.Price)
}
