// Package writer exports parsed transactions as CSV, XLSX or JSON.
package writer

import (
	"fmt"
	"io"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// Writer serialises transactions to a stream or a file.
type Writer interface {
	Write(out io.Writer, txns []models.Transaction) error
	WriteToFile(path string, txns []models.Transaction) error
}

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ForFormat returns the writer for a format name.
func ForFormat(format string) (Writer, error) {
	switch format {
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatXLSX:
		return &XLSXWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json, csv or xlsx)", format)
	}
}
