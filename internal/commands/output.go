package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-ocr/internal/models"
	"github.com/insightdelivered/statement-ocr/internal/writer"
)

type outputOptions struct {
	format string
	path   string
	year   int
	debug  bool
}

func (o *outputOptions) validate() error {
	if _, err := writer.ForFormat(o.format); err != nil {
		return err
	}
	if o.format == writer.FormatXLSX && o.path == "" {
		return errors.New("xlsx output needs --output")
	}
	if o.year < 0 {
		return fmt.Errorf("invalid --year %d", o.year)
	}
	return nil
}

// write sends txns to o.path, or to stdout when no path is set.
func (o *outputOptions) write(stdout io.Writer, txns []models.Transaction) error {
	w, err := writer.ForFormat(o.format)
	if err != nil {
		return err
	}
	if o.path == "" {
		return w.Write(stdout, txns)
	}
	return w.WriteToFile(o.path, txns)
}

// printSkipped lists lines that carried a date or an amount but produced
// no transaction. Those are the rows worth a second look.
func printSkipped(out io.Writer, name string, info *models.StatementInfo) {
	fmt.Fprintf(out, "%s: year %d (%s), %d transaction(s)\n", name, info.Year, info.YearSource, len(info.Transactions))
	for _, dl := range info.Skipped() {
		if !dl.HasDate && !dl.HasAmount {
			continue
		}
		fmt.Fprintf(out, "  line %d skipped (%s): %s\n", dl.LineNum, dl.Reason, dl.Text)
	}
}
