package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"autoprice/internal/domain"
)

// estimateColumns precede one column per schema feature.
var estimateColumns = []string{
	"ID",
	"Created At",
	"Description",
	"Price",
	"Price Min",
	"Price Max",
	"Confidence",
	"Model",
	"Extraction Attempts",
	"Warnings",
}

// Writer streams predictions in one export format.
type Writer interface {
	WriteHeader() error
	WritePredictions(preds []domain.Prediction) error
	// Finish flushes buffered output to the destination.
	Finish() error
}

// New creates a writer for format that writes to w.
func New(format domain.ExportFormat, w io.Writer, featureNames []string) (Writer, error) {
	switch format {
	case domain.ExportFormatCSV:
		return NewCSVWriter(w, featureNames), nil
	case domain.ExportFormatXLSX:
		return NewXLSXWriter(w, featureNames)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}

// Columns returns the header row for the given feature order.
func Columns(featureNames []string) []string {
	cols := make([]string, 0, len(estimateColumns)+len(featureNames))
	cols = append(cols, estimateColumns...)
	return append(cols, featureNames...)
}

// Row converts a prediction into cells matching Columns. Features missing from
// the stored JSON, or unreadable JSON, leave their cells empty.
func Row(p *domain.Prediction, featureNames []string) []any {
	row := make([]any, 0, len(estimateColumns)+len(featureNames))
	row = append(row,
		p.ID.String(),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.Description,
		p.Price,
		p.PriceMin,
		p.PriceMax,
		p.Confidence,
		p.ModelUsed,
		p.Attempts,
		strings.Join(p.Warnings, "; "),
	)

	var values map[string]any
	_ = json.Unmarshal(p.Features, &values)
	for _, name := range featureNames {
		v, ok := values[name]
		if !ok || v == nil {
			row = append(row, "")
			continue
		}
		row = append(row, v)
	}
	return row
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// Filename returns the attachment name for an export taken at now.
// Format: predictions_{YYYY-MM-DD}.{ext}
func Filename(format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("predictions_%s.%s", now.Format("2006-01-02"), format)
}
