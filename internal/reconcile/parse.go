package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"autoprice/internal/features"
	"autoprice/internal/schema"
)

// ErrNoJSONObject is returned when the model output contains no braces to delimit an object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ParseError reports model output that could not be turned into a feature map.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing model output: %v (raw: %s)", e.Err, truncate(e.Raw, 200))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser turns raw generator text into a partial feature map.
type Parser struct {
	schema  *schema.Schema
	lenient bool
}

// NewParser creates a parser. With lenient set, malformed JSON between the braces is
// passed through jsonrepair before the parse is declared failed.
func NewParser(s *schema.Schema, lenient bool) *Parser {
	return &Parser{schema: s, lenient: lenient}
}

// Parse extracts the JSON object embedded in raw. Markdown fences and surrounding
// prose are tolerated. Keys outside the schema are dropped.
func (p *Parser) Parse(raw string) (features.Partial, error) {
	payload, err := delimit(raw)
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	obj, err := decodeObject(payload)
	if err != nil && p.lenient {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr == nil {
			obj, err = decodeObject(repaired)
		}
	}
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	out := make(features.Partial, len(obj))
	for k, v := range obj {
		if p.schema.Has(k) {
			out[k] = v
		}
	}
	return out, nil
}

// delimit strips a leading code fence and returns the text between the first '{'
// and the last '}'.
func delimit(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")[1:]
		if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
			lines = lines[:n-1]
		}
		text = strings.Join(lines, "\n")
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

func decodeObject(payload string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("invalid JSON: not an object")
	}
	return obj, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
