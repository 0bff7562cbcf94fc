package reconcile

import (
	"math"
	"strconv"
	"strings"

	"autoprice/internal/features"
	"autoprice/internal/schema"
)

const (
	featureYear     = "year"
	featureMPG      = "mpg"
	featureFuelType = "fuel_type"
)

// Backfill completes a partial feature map so that every schema feature has a value.
//
// Steps run in a fixed order: auto-filled features are overwritten with their
// defaults, unset numerics take their defaults, categoricals are resolved, unset
// binaries become 0, and finally an unset mpg is estimated from the resolved fuel
// type and year. Values that are present are passed through untouched; range and
// type checks belong to validation.
func Backfill(s *schema.Schema, p features.Partial) (*features.Record, error) {
	values := make(map[string]any, len(s.Features))
	for k, v := range p {
		if v != nil && s.Has(k) {
			values[k] = v
		}
	}

	for _, name := range s.AutoFilled {
		f, _ := s.Feature(name)
		values[name] = f.DefaultValue()
	}

	for _, f := range s.ByKind(schema.KindNumeric) {
		if _, set := values[f.Name]; !set && f.HasDefault() {
			values[f.Name] = f.DefaultValue()
		}
	}

	for _, f := range s.ByKind(schema.KindCategorical) {
		values[f.Name] = s.ResolveCategorical(f.Name, values[f.Name])
	}

	for _, f := range s.ByKind(schema.KindBinary) {
		if _, set := values[f.Name]; !set {
			values[f.Name] = f.DefaultValue()
		}
	}

	if _, set := values[featureMPG]; !set && s.Has(featureMPG) {
		fuel, _ := values[featureFuelType].(string)
		values[featureMPG] = s.EstimateMPG(fuel, estimationYear(s, values[featureYear]))
	}

	return features.NewRecord(s.Names(), values)
}

// estimationYear coerces the year used for the MPG heuristic. Values that cannot be
// read as a number fall back to the default year; validation rejects them afterwards.
func estimationYear(s *schema.Schema, v any) int {
	switch y := v.(type) {
	case int:
		return y
	case float64:
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			return int(y)
		}
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(y), 64); err == nil {
			return int(n)
		}
	}
	f, ok := s.Feature(featureYear)
	if !ok || !f.HasDefault() {
		return 0
	}
	return f.DefaultValue().(int)
}
