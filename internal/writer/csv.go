package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// csvRow is one exported transaction. Amounts are pre-formatted so an
// absent role stays an empty cell instead of becoming 0.00.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	AmountOut   string `csv:"amount_out"`
	AmountIn    string `csv:"amount_in"`
	Balance     string `csv:"balance"`
}

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	// OmitHeader drops the column-name row.
	OmitHeader bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
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

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	rows := make([]*csvRow, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, &csvRow{
			Date:        txn.Date,
			Description: txn.Description,
			AmountOut:   formatAmount(txn.AmountOut),
			AmountIn:    formatAmount(txn.AmountIn),
			Balance:     formatAmount(txn.Balance),
		})
	}

	var err error
	if w.OmitHeader {
		err = gocsv.MarshalWithoutHeaders(rows, out)
	} else {
		err = gocsv.Marshal(rows, out)
	}
	if err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func formatAmount(amount *float64) string {
	if amount == nil {
		return ""
	}
	return decimal.NewFromFloat(*amount).StringFixed(2)
}
