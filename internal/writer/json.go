package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// JSONWriter writes transactions as an indented JSON array. An empty
// result is written as [] rather than null.
type JSONWriter struct{}

// WriteToFile writes the JSON array to path.
func (w *JSONWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, txns); err != nil {
		return err
	}
	return f.Close()
}

func (w *JSONWriter) Write(out io.Writer, txns []models.Transaction) error {
	if txns == nil {
		txns = []models.Transaction{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(txns); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
