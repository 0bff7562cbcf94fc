package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"autoprice/internal/domain"
)

// SheetName is the worksheet holding exported predictions.
const SheetName = "Predictions"

// XLSXWriter streams predictions into a single-sheet workbook. The workbook is
// written to the destination on Finish.
type XLSXWriter struct {
	out      io.Writer
	file     *excelize.File
	stream   *excelize.StreamWriter
	features []string
	next     int
}

// NewXLSXWriter creates an XLSXWriter that writes to w.
func NewXLSXWriter(w io.Writer, featureNames []string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating stream writer: %w", err)
	}
	return &XLSXWriter{out: w, file: f, stream: sw, features: featureNames, next: 1}, nil
}

func (w *XLSXWriter) WriteHeader() error {
	cols := Columns(w.features)
	cells := make([]any, len(cols))
	for i, c := range cols {
		cells[i] = c
	}
	return w.writeRow(cells)
}

func (w *XLSXWriter) WritePredictions(preds []domain.Prediction) error {
	for i := range preds {
		if err := w.writeRow(Row(&preds[i], w.features)); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeRow(cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		return err
	}
	if err := w.stream.SetRow(cell, cells); err != nil {
		return fmt.Errorf("writing row %d: %w", w.next, err)
	}
	w.next++
	return nil
}

func (w *XLSXWriter) Finish() error {
	defer func() { _ = w.file.Close() }()
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if _, err := w.file.WriteTo(w.out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
