// Package commands implements the statement-ocr command line.
package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ocr/internal/config"
	"github.com/insightdelivered/statement-ocr/internal/extractor"
	"github.com/insightdelivered/statement-ocr/internal/logger"
	"github.com/insightdelivered/statement-ocr/internal/parser"
)

// env is the state shared by all subcommands once flags are parsed.
type env struct {
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(version string) *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:     "statement-ocr",
		Short:   "Extract transactions from French bank statement PDFs",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&e.cfgFile, "config", "c", "", "config file (yaml, toml or json)")

	rootCmd.AddCommand(newParseCommand(e))
	rootCmd.AddCommand(newLinesCommand(e))
	rootCmd.AddCommand(newServeCommand(e))

	return rootCmd
}

func (e *env) load(cmd *cobra.Command) error {
	cfg, err := config.Load(e.cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: logger.Format(cfg.Log.Format),
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.log = log
	return nil
}

func (e *env) parser() (*parser.Parser, error) {
	var (
		locale *parser.Locale
		err    error
	)
	if e.cfg.Parser.LocaleFile != "" {
		locale, err = parser.LoadLocaleFile(e.cfg.Parser.LocaleFile)
	} else {
		locale, err = parser.LoadLocale(e.cfg.Parser.Locale)
	}
	if err != nil {
		return nil, err
	}
	return parser.New(parser.WithLocale(locale), parser.WithLogger(e.log)), nil
}

// source builds the line source; an empty mode uses the configured one.
func (e *env) source(mode string) (extractor.LineSource, error) {
	if mode == "" {
		mode = e.cfg.Extract.Mode
	}
	src, err := extractor.NewSource(mode, extractor.OCROptions{
		Language: e.cfg.OCR.Language,
		DPI:      e.cfg.OCR.DPI,
		Window: extractor.PageWindow{
			First: e.cfg.OCR.FirstPage,
			Last:  e.cfg.OCR.LastPage,
		},
		PSM:       e.cfg.OCR.PSM,
		Whitelist: e.cfg.OCR.Whitelist,
		Workers:   e.cfg.OCR.Workers,
		Logger:    e.log,
	})
	if err != nil {
		return nil, fmt.Errorf("--source: %w", err)
	}
	return src, nil
}
