package schema

import (
	_ "embed"
	"fmt"
	"math"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var embedded []byte

// Kind classifies how a feature is encoded for the model.
type Kind string

const (
	KindBinary      Kind = "binary"
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
)

// Value types a feature can carry once canonicalized.
const (
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
)

// Feature describes one model input.
type Feature struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Type    string   `yaml:"type" json:"type"`
	Min     *float64 `yaml:"min" json:"min,omitempty"`
	Max     *float64 `yaml:"max" json:"max,omitempty"`
	Default any      `yaml:"default" json:"default,omitempty"`
	Values  []string `yaml:"values" json:"values,omitempty"`
	Display string   `yaml:"display" json:"display,omitempty"`
	Warning string   `yaml:"warning" json:"-"`
}

// HasDefault reports whether the feature carries a configured default.
func (f *Feature) HasDefault() bool {
	return f.Default != nil
}

// DefaultValue returns the configured default converted to the feature's value type.
func (f *Feature) DefaultValue() any {
	if f.Default == nil {
		return nil
	}
	switch f.Type {
	case TypeInt:
		n, _ := toFloat(f.Default)
		return int(n)
	case TypeFloat:
		n, _ := toFloat(f.Default)
		return n
	default:
		return fmt.Sprint(f.Default)
	}
}

// Accepts reports whether v is one of the categorical values.
func (f *Feature) Accepts(v string) bool {
	return slices.Contains(f.Values, v)
}

// MPGTable holds the fuel-economy heuristic used when the description gives no MPG.
type MPGTable struct {
	Base         map[string]float64 `yaml:"base"`
	Fallback     float64            `yaml:"fallback"`
	Warning      string             `yaml:"warning"`
	NewerFrom    int                `yaml:"newer_from"`
	NewerFactor  float64            `yaml:"newer_factor"`
	OlderThrough int                `yaml:"older_through"`
	OlderFactor  float64            `yaml:"older_factor"`
}

// Schema is the immutable feature contract shared by every pipeline stage.
type Schema struct {
	Version            string    `yaml:"version"`
	Fallback           string    `yaml:"fallback"`
	Features           []Feature `yaml:"features"`
	AutoFilled         []string  `yaml:"auto_filled"`
	CategoricalWarning string    `yaml:"categorical_warning"`
	MPG                MPGTable  `yaml:"mpg"`

	index map[string]int
}

// Load parses the embedded schema document.
func Load() (*Schema, error) {
	return Parse(embedded)
}

// Parse decodes and validates a schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) init() error {
	if len(s.Features) == 0 {
		return fmt.Errorf("schema has no features")
	}
	if s.Fallback == "" {
		return fmt.Errorf("schema fallback value is required")
	}
	s.index = make(map[string]int, len(s.Features))
	for i := range s.Features {
		f := &s.Features[i]
		if _, dup := s.index[f.Name]; dup {
			return fmt.Errorf("duplicate feature %q", f.Name)
		}
		s.index[f.Name] = i

		switch f.Kind {
		case KindBinary:
			if f.Type != TypeInt {
				return fmt.Errorf("binary feature %q must be of type int", f.Name)
			}
		case KindCategorical:
			if !f.Accepts(s.Fallback) {
				return fmt.Errorf("categorical feature %q does not accept fallback %q", f.Name, s.Fallback)
			}
			if f.HasDefault() && !f.Accepts(fmt.Sprint(f.Default)) {
				return fmt.Errorf("categorical feature %q default %v is not an accepted value", f.Name, f.Default)
			}
			if f.Display == "" {
				f.Display = f.Name
			}
		case KindNumeric:
			if f.Type != TypeInt && f.Type != TypeFloat {
				return fmt.Errorf("numeric feature %q has invalid type %q", f.Name, f.Type)
			}
			if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
				return fmt.Errorf("numeric feature %q has min greater than max", f.Name)
			}
			if f.HasDefault() {
				if _, ok := toFloat(f.Default); !ok {
					return fmt.Errorf("numeric feature %q has non-numeric default %v", f.Name, f.Default)
				}
			}
		default:
			return fmt.Errorf("feature %q has unknown kind %q", f.Name, f.Kind)
		}
	}
	for _, name := range s.AutoFilled {
		f, ok := s.Feature(name)
		if !ok {
			return fmt.Errorf("auto-filled feature %q is not in the schema", name)
		}
		if f.Kind != KindNumeric || !f.HasDefault() {
			return fmt.Errorf("auto-filled feature %q must be numeric with a default", name)
		}
	}
	return nil
}

// Names returns the feature names in model order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

// Feature looks up a feature by name.
func (s *Schema) Feature(name string) (*Feature, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return &s.Features[i], true
}

// Has reports whether name is a schema feature.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// ByKind returns the features of the given kind in model order.
func (s *Schema) ByKind(kind Kind) []*Feature {
	var out []*Feature
	for i := range s.Features {
		if s.Features[i].Kind == kind {
			out = append(out, &s.Features[i])
		}
	}
	return out
}

// IsAutoFilled reports whether the feature is always replaced with its default.
func (s *Schema) IsAutoFilled(name string) bool {
	return slices.Contains(s.AutoFilled, name)
}

// ResolveCategorical maps a raw extracted value onto an accepted categorical value.
// A nil value resolves to the feature default; anything unrecognized, including
// non-string values, resolves to the fallback sentinel.
func (s *Schema) ResolveCategorical(name string, value any) string {
	f, ok := s.Feature(name)
	if !ok || f.Kind != KindCategorical {
		return s.Fallback
	}
	if value == nil {
		if f.HasDefault() {
			return f.DefaultValue().(string)
		}
		return s.Fallback
	}
	str, ok := value.(string)
	if !ok || !f.Accepts(str) {
		return s.Fallback
	}
	return str
}

// DefaultFuelType returns the configured fuel_type default.
func (s *Schema) DefaultFuelType() string {
	if f, ok := s.Feature("fuel_type"); ok && f.HasDefault() {
		return f.DefaultValue().(string)
	}
	return s.Fallback
}

// EstimateMPG approximates fuel economy from the fuel type and model year,
// rounded to one decimal place.
func (s *Schema) EstimateMPG(fuelType string, year int) float64 {
	base, ok := s.MPG.Base[fuelType]
	if !ok {
		base = s.MPG.Fallback
	}
	factor := 1.0
	switch {
	case year >= s.MPG.NewerFrom:
		factor = s.MPG.NewerFactor
	case year <= s.MPG.OlderThrough:
		factor = s.MPG.OlderFactor
	}
	return math.Round(base*factor*10) / 10
}

// MPGEstimates returns every value EstimateMPG can produce for the fuel type:
// older band, base and newer band.
func (s *Schema) MPGEstimates(fuelType string) []float64 {
	return []float64{
		s.EstimateMPG(fuelType, s.MPG.OlderThrough),
		s.EstimateMPG(fuelType, s.MPG.OlderThrough+1),
		s.EstimateMPG(fuelType, s.MPG.NewerFrom),
	}
}

// CategoricalWarningFor formats the generic-category warning for a feature.
func (s *Schema) CategoricalWarningFor(f *Feature) string {
	return fmt.Sprintf(s.CategoricalWarning, f.Display)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
