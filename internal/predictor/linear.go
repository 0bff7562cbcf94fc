package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// NumericTerm is a standardized linear term: coef * (x - mean) / std.
type NumericTerm struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Coef float64 `json:"coef"`
}

// LinearArtifact is the serialized form of a linear price model over standardized
// numeric features and one-hot categoricals.
type LinearArtifact struct {
	Name        string                        `json:"name"`
	Features    []string                      `json:"features"`
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]NumericTerm        `json:"numeric"`
	Categorical map[string]map[string]float64 `json:"categorical"`
	LogTarget   bool                          `json:"log_target"`
}

// LinearModel implements port.PriceModel from a LinearArtifact.
type LinearModel struct {
	art LinearArtifact
}

// LoadLinear decodes a linear artifact and checks that its feature order matches
// the expected one exactly.
func LoadLinear(data []byte, expected []string) (*LinearModel, error) {
	var art LinearArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decoding linear artifact: %w", err)
	}
	if !slices.Equal(art.Features, expected) {
		return nil, fmt.Errorf("artifact feature order %v does not match schema %v", art.Features, expected)
	}
	for _, name := range art.Features {
		_, isNum := art.Numeric[name]
		_, isCat := art.Categorical[name]
		if isNum == isCat {
			return nil, fmt.Errorf("artifact feature %q must be exactly one of numeric or categorical", name)
		}
	}
	if art.Name == "" {
		art.Name = "linear"
	}
	return &LinearModel{art: art}, nil
}

func (m *LinearModel) Name() string {
	return m.art.Name
}

func (m *LinearModel) Predict(_ context.Context, names []string, values []any) (float64, error) {
	if len(names) != len(values) {
		return 0, fmt.Errorf("got %d names and %d values", len(names), len(values))
	}
	if !slices.Equal(names, m.art.Features) {
		return 0, fmt.Errorf("feature order does not match artifact")
	}

	sum := m.art.Intercept
	for i, name := range names {
		if term, ok := m.art.Numeric[name]; ok {
			x, ok := numeric(values[i])
			if !ok {
				return 0, fmt.Errorf("feature %s: expected number, got %T", name, values[i])
			}
			if term.Std != 0 {
				sum += term.Coef * (x - term.Mean) / term.Std
			}
			continue
		}
		level, ok := values[i].(string)
		if !ok {
			return 0, fmt.Errorf("feature %s: expected string, got %T", name, values[i])
		}
		// Levels absent from the artifact were the reference level during training.
		sum += m.art.Categorical[name][level]
	}

	if m.art.LogTarget {
		return math.Exp(sum), nil
	}
	return sum, nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
