package export

import (
	"encoding/csv"
	"io"

	"autoprice/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first so Excel on Windows detects the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter wraps csv.Writer for exporting predictions.
type CSVWriter struct {
	out      io.Writer
	csv      *csv.Writer
	features []string
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer, featureNames []string) *CSVWriter {
	return &CSVWriter{out: w, csv: csv.NewWriter(w), features: featureNames}
}

// WriteHeader writes the BOM and the header row.
func (w *CSVWriter) WriteHeader() error {
	if _, err := w.out.Write(BOM); err != nil {
		return err
	}
	return w.csv.Write(Columns(w.features))
}

// WritePredictions converts a batch of predictions to CSV rows and writes them.
func (w *CSVWriter) WritePredictions(preds []domain.Prediction) error {
	for i := range preds {
		cells := Row(&preds[i], w.features)
		record := make([]string, len(cells))
		for j, c := range cells {
			record[j] = cellString(c)
		}
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Finish() error {
	w.csv.Flush()
	return w.csv.Error()
}
