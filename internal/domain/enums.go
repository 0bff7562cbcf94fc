package domain

// ExportFormat is the file format of a history export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseExportFormat maps a query value onto a known format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch s {
	case "", string(ExportFormatCSV):
		return ExportFormatCSV, nil
	case string(ExportFormatXLSX):
		return ExportFormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}
