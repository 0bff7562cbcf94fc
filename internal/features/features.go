package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Partial is a sparse feature map as produced by the generator. A missing key
// or a nil value both mean the feature was not mentioned.
type Partial map[string]any

// IsSet reports whether name carries a non-nil value.
func (p Partial) IsSet(name string) bool {
	v, ok := p[name]
	return ok && v != nil
}

// MissingFeaturesError is returned when a record is built without every required feature.
type MissingFeaturesError struct {
	Missing []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("missing required features: [%s]", strings.Join(e.Missing, ", "))
}

// Record holds a value for every feature in a fixed order. It is never mutated
// after construction.
type Record struct {
	names  []string
	values map[string]any
}

// NewRecord builds a record in the given feature order. Every name must be present in values.
func NewRecord(names []string, values map[string]any) (*Record, error) {
	var missing []string
	for _, n := range names {
		if _, ok := values[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFeaturesError{Missing: missing}
	}

	r := &Record{
		names:  append([]string(nil), names...),
		values: make(map[string]any, len(names)),
	}
	for _, n := range names {
		r.values[n] = values[n]
	}
	return r, nil
}

// Names returns the feature names in record order.
func (r *Record) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the value of a feature.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Len returns the number of features.
func (r *Record) Len() int {
	return len(r.names)
}

// Values returns the values in record order.
func (r *Record) Values() []any {
	out := make([]any, len(r.names))
	for i, n := range r.names {
		out[i] = r.values[n]
	}
	return out
}

// Map returns a copy of the record as a plain map.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the features as an object with keys in record order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[n])
		if err != nil {
			return nil, fmt.Errorf("encoding feature %s: %w", n, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
