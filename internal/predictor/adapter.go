package predictor

import (
	"context"
	"fmt"
	"math"

	"autoprice/internal/domain"
	"autoprice/internal/features"
	"autoprice/internal/port"
	"autoprice/internal/schema"
)

// Adapter is the boundary between validated records and the price model. It asserts
// that every feature the model expects is present and orders the vector.
type Adapter struct {
	names []string
	model port.PriceModel
}

// NewAdapter creates an adapter expecting the schema's features in schema order.
func NewAdapter(s *schema.Schema, model port.PriceModel) *Adapter {
	return &Adapter{names: s.Names(), model: model}
}

// ModelName identifies the underlying model.
func (a *Adapter) ModelName() string {
	return a.model.Name()
}

// Predict returns the raw model price for a record.
func (a *Adapter) Predict(ctx context.Context, rec *features.Record) (float64, error) {
	values := make([]any, len(a.names))
	var missing []string
	for i, n := range a.names {
		v, ok := rec.Get(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		values[i] = v
	}
	if len(missing) > 0 {
		return 0, &domain.PredictionError{Missing: missing}
	}

	price, err := a.model.Predict(ctx, a.names, values)
	if err != nil {
		return 0, &domain.PredictionError{Err: err}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &domain.PredictionError{Err: fmt.Errorf("model returned non-finite price %v", price)}
	}
	if price < 0 {
		return 0, &domain.PredictionError{Err: fmt.Errorf("model returned negative price %v", price)}
	}
	return price, nil
}
