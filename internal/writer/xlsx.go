package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// SheetName is the worksheet holding the transactions.
const SheetName = "Transactions"

var xlsxHeader = []interface{}{"Date", "Description", "Amount Out", "Amount In", "Balance"}

var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 12},
	{"B", "B", 40},
	{"C", "E", 14},
}

// XLSXWriter writes transactions to an Excel workbook. Present amounts are
// numeric cells with two decimals; absent ones are left empty.
type XLSXWriter struct{}

// WriteToFile saves the workbook at path.
func (w *XLSXWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := w.build(txns)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	return nil
}

// Write streams the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, txns []models.Transaction) error {
	f, err := w.build(txns)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(txns []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, txn := range txns {
		row := i + 2
		values := []interface{}{txn.Date, txn.Description}
		for _, amount := range []*float64{txn.AmountOut, txn.AmountIn, txn.Balance} {
			if amount == nil {
				values = append(values, nil)
				continue
			}
			values = append(values, *amount)
		}

		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	if len(txns) > 0 {
		last, err := excelize.CoordinatesToCellName(5, len(txns)+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(SheetName, "C2", last, money); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	for _, cw := range columnWidths {
		if err := f.SetColWidth(SheetName, cw.from, cw.to, cw.width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set width of %s: %w", cw.from, err)
		}
	}

	return f, nil
}
