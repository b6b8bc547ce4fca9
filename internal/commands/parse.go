package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

func newParseCommand(e *env) *cobra.Command {
	var out outputOptions
	var source string

	cmd := &cobra.Command{
		Use:   "parse <file.pdf>...",
		Short: "Extract transactions from PDF statements",
		Long: `Extract transactions from one or more PDF statements.

Transactions from all files are merged and sorted by date. Use --source to
choose between OCR of rendered pages (ocr), the PDF text layer (text) or
the text layer with OCR fallback (auto).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			for _, path := range args {
				if !strings.EqualFold(filepath.Ext(path), ".pdf") {
					return fmt.Errorf("expected .pdf file, got %q", path)
				}
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("input file not found: %s", path)
				}
			}

			src, err := e.source(source)
			if err != nil {
				return err
			}
			p, err := e.parser()
			if err != nil {
				return err
			}

			var all []models.Transaction
			for _, path := range args {
				lines, err := src.Lines(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				info := p.Analyze(lines, out.year)
				e.log.Info().Str("file", path).Int("lines", len(lines)).Int("transactions", len(info.Transactions)).Msg("parsed statement")
				if out.debug {
					printSkipped(cmd.ErrOrStderr(), path, info)
				}
				all = append(all, info.Transactions...)
			}

			if len(args) > 1 {
				sort.SliceStable(all, func(a, b int) bool { return all[a].Date < all[b].Date })
			}
			return out.write(cmd.OutOrStdout(), all)
		},
	}

	addOutputFlags(cmd, &out)
	cmd.Flags().StringVar(&source, "source", "", "line source: ocr, text or auto (default from config)")

	return cmd
}

func addOutputFlags(cmd *cobra.Command, out *outputOptions) {
	cmd.Flags().StringVarP(&out.format, "format", "f", "json", "output format: json, csv or xlsx")
	cmd.Flags().StringVarP(&out.path, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&out.year, "year", 0, "year for dates without one, when the statement header has none")
	cmd.Flags().BoolVar(&out.debug, "debug", false, "print skipped lines to stderr")
}
