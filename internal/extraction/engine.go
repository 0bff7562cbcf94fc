package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"autoprice/internal/config"
	"autoprice/internal/domain"
	"autoprice/internal/features"
	"autoprice/internal/port"
	"autoprice/internal/reconcile"
	"autoprice/internal/schema"
)

// Result is a successful extraction.
type Result struct {
	Partial  features.Partial
	Attempts int
	Raw      string
	Model    string
	Provider string
}

// Engine turns a free-text description into a partial feature map by prompting a
// text generator and parsing its reply, retrying on any failure.
type Engine struct {
	generator   port.TextGenerator
	schema      *schema.Schema
	parser      *reconcile.Parser
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewEngine creates an extraction engine. cfg.MaxRetries is the total number of
// attempts and is clamped to at least one.
func NewEngine(generator port.TextGenerator, s *schema.Schema, cfg config.ExtractionConfig, logger *zap.Logger) *Engine {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	return &Engine{
		generator:   generator,
		schema:      s,
		parser:      reconcile.NewParser(s, cfg.RepairJSON),
		maxAttempts: attempts,
		retryDelay:  cfg.RetryDelay,
		logger:      logger,
	}
}

// MaxAttempts returns the attempt bound.
func (e *Engine) MaxAttempts() int {
	return e.maxAttempts
}

// Extract runs the bounded generate-and-parse loop. It fails with a
// *domain.ExtractionError when the description is blank or every attempt failed.
func (e *Engine) Extract(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &domain.ExtractionError{
			Err: fmt.Errorf("%w: description cannot be empty", domain.ErrInvalidInput),
		}
	}

	prompt := BuildPrompt(e.schema, description)

	var lastErr error
	attempts := 0
	for attempts < e.maxAttempts {
		if err := e.wait(ctx, attempts); err != nil {
			lastErr = err
			break
		}
		attempts++

		res, stage, err := e.attempt(ctx, prompt)
		if err == nil {
			res.Attempts = attempts
			e.logger.Debug("feature extraction succeeded",
				zap.Int("attempt", attempts),
				zap.String("provider", res.Provider),
				zap.Int("features", len(res.Partial)))
			return res, nil
		}

		lastErr = err
		e.logger.Warn("feature extraction attempt failed",
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", e.maxAttempts),
			zap.String("stage", stage),
			zap.Error(err))
	}

	return nil, &domain.ExtractionError{Attempts: attempts, Err: lastErr}
}

// wait returns the context error if the loop must stop before the next attempt,
// sleeping for the retry delay between attempts.
func (e *Engine) wait(ctx context.Context, done int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if done == 0 || e.retryDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.retryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) attempt(ctx context.Context, prompt string) (*Result, string, error) {
	gen, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, "generate", err
	}
	partial, err := e.parser.Parse(gen.Text)
	if err != nil {
		return nil, "parse", err
	}
	return &Result{
		Partial:  partial,
		Raw:      gen.Text,
		Model:    gen.Model,
		Provider: gen.Provider,
	}, "", nil
}
