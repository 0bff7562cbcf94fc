package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrExtractionFailed   = errors.New("feature extraction failed")
	ErrSchemaViolation    = errors.New("features violate schema")
	ErrPredictionFailed   = errors.New("price prediction failed")
	ErrDailyLimitExceeded = errors.New("daily request limit exceeded")
	ErrNotFound           = errors.New("resource not found")
	ErrHistoryDisabled    = errors.New("prediction history is disabled")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
)

// ExtractionError is returned when no extraction attempt produced a parseable object.
type ExtractionError struct {
	Attempts int
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("feature extraction failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// Violation describes one feature that failed a range or type rule.
type Violation struct {
	Feature string `json:"feature"`
	Value   any    `json:"value"`
	Rule    string `json:"rule"`
}

// SchemaViolationError lists every violated feature of a backfilled record.
// Warnings collected before the bound checks are carried along.
type SchemaViolationError struct {
	Violations []Violation
	Warnings   []string
}

func (e *SchemaViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s=%v (%s)", v.Feature, v.Value, v.Rule)
	}
	return "schema violation: " + strings.Join(parts, ", ")
}

func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

// PredictionError wraps a failure at the predictor boundary. Missing is set when the
// record lacked required features.
type PredictionError struct {
	Missing []string
	Err     error
}

func (e *PredictionError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required features: [%s]", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

func (e *PredictionError) Is(target error) bool {
	return target == ErrPredictionFailed
}
