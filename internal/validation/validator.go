package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"autoprice/internal/domain"
	"autoprice/internal/features"
	"autoprice/internal/schema"
)

// Result is a record that passed validation, with canonical Go types
// (int, float64, string), plus the warnings raised while checking it.
type Result struct {
	Record   *features.Record
	Warnings []string
}

// Validator checks backfilled records against the schema's type and range rules.
type Validator struct {
	schema   *schema.Schema
	validate *validator.Validate
	tags     map[string]string
}

// New builds a validator whose bound checks are derived from the schema.
func New(s *schema.Schema) *Validator {
	tags := make(map[string]string, len(s.Features))
	for _, f := range s.Features {
		tags[f.Name] = boundTag(&f)
	}
	return &Validator{
		schema:   s,
		validate: validator.New(),
		tags:     tags,
	}
}

// Validate coerces every feature to its schema type and checks its bounds. All
// violations are collected; if any exist a *domain.SchemaViolationError is returned.
func (v *Validator) Validate(rec *features.Record) (*Result, error) {
	warnings := v.Warnings(rec)

	canonical := make(map[string]any, len(v.schema.Features))
	var violations []domain.Violation
	for i := range v.schema.Features {
		f := &v.schema.Features[i]
		raw, ok := rec.Get(f.Name)
		if !ok || raw == nil {
			violations = append(violations, domain.Violation{Feature: f.Name, Value: raw, Rule: "required"})
			continue
		}

		val, rule := v.check(f, raw)
		if rule != "" {
			violations = append(violations, domain.Violation{Feature: f.Name, Value: raw, Rule: rule})
			continue
		}
		canonical[f.Name] = val
	}

	if len(violations) > 0 {
		return nil, &domain.SchemaViolationError{Violations: violations, Warnings: warnings}
	}

	out, err := features.NewRecord(v.schema.Names(), canonical)
	if err != nil {
		return nil, fmt.Errorf("building validated record: %w", err)
	}
	return &Result{Record: out, Warnings: warnings}, nil
}

// check returns the canonical value, or the name of the violated rule.
func (v *Validator) check(f *schema.Feature, raw any) (any, string) {
	switch f.Type {
	case schema.TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, "type=string"
		}
		if f.Kind == schema.KindCategorical && !f.Accepts(s) {
			return nil, "oneof"
		}
		return s, ""

	case schema.TypeInt:
		n, ok := toInt(raw)
		if !ok {
			return nil, "type=int"
		}
		if tag := v.tags[f.Name]; tag != "" {
			if err := v.validate.Var(n, tag); err != nil {
				return nil, tag
			}
		}
		return n, ""

	case schema.TypeFloat:
		n, ok := toFloat(raw)
		if !ok {
			return nil, "type=float"
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, "finite"
		}
		if tag := v.tags[f.Name]; tag != "" {
			if err := v.validate.Var(n, tag); err != nil {
				return nil, tag
			}
		}
		return n, ""
	}
	return nil, "type=" + f.Type
}

// Warnings lists the approximations present in a record: auto-filled features at their
// defaults, categoricals that fell back to the generic category, and an mpg that
// matches the heuristic estimate for the default fuel type.
func (v *Validator) Warnings(rec *features.Record) []string {
	s := v.schema
	warnings := []string{}

	for _, name := range s.AutoFilled {
		f, _ := s.Feature(name)
		val, _ := rec.Get(name)
		got, ok := toFloat(val)
		def, _ := toFloat(f.DefaultValue())
		if ok && got == def {
			warnings = append(warnings, f.Warning)
		}
	}

	for _, f := range s.ByKind(schema.KindCategorical) {
		if val, _ := rec.Get(f.Name); val == s.Fallback {
			warnings = append(warnings, s.CategoricalWarningFor(f))
		}
	}

	fuel, _ := rec.Get("fuel_type")
	mpgRaw, _ := rec.Get("mpg")
	if mpg, ok := toFloat(mpgRaw); ok && fuel == s.DefaultFuelType() {
		for _, est := range s.MPGEstimates(s.DefaultFuelType()) {
			if math.Abs(mpg-est) < 1e-9 {
				warnings = append(warnings, s.MPG.Warning)
				break
			}
		}
	}

	return warnings
}

func boundTag(f *schema.Feature) string {
	if f.Kind == schema.KindBinary {
		return "oneof=0 1"
	}
	var parts []string
	if f.Min != nil {
		parts = append(parts, "gte="+strconv.FormatFloat(*f.Min, 'f', -1, 64))
	}
	if f.Max != nil {
		parts = append(parts, "lte="+strconv.FormatFloat(*f.Max, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// toInt accepts integers, integral floats, booleans and integral numeric strings.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return toInt(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return toInt(f)
	}
	return 0, false
}

// toFloat accepts any numeric value or numeric string.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
