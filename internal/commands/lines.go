package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ocr/internal/extractor"
)

func newLinesCommand(e *env) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "lines [file|-]",
		Short: "Parse statement lines from a text file or stdin",
		Long: `Parse text that was already extracted from a statement, one line per
row. Reads stdin when the argument is "-" or missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}

			name := "-"
			if len(args) > 0 {
				name = args[0]
			}
			lines, err := readLines(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			p, err := e.parser()
			if err != nil {
				return err
			}
			info := p.Analyze(lines, out.year)
			if out.debug {
				printSkipped(cmd.ErrOrStderr(), name, info)
			}
			return out.write(cmd.OutOrStdout(), info.Transactions)
		},
	}

	addOutputFlags(cmd, &out)
	return cmd
}

// readLines returns the trimmed, non-blank lines of name, or of stdin for "-".
func readLines(stdin io.Reader, name string) ([]string, error) {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return extractor.SplitLines([]string{string(data)}), nil
}
