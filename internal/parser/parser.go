// Package parser turns OCR text lines from French bank statements into
// transactions.
//
// The work is split the same way for every line: a cheap classifier rejects
// headers and noise, an extractor pulls out the date, description and
// amount tokens, and the normalizer converts them into an ISO date and
// amount roles. The document assembler runs that over all lines, drops the
// lines that fail and sorts the rest by date.
package parser

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-ocr/internal/models"
)

// yearScanLines is how many leading lines are searched for the statement year.
const yearScanLines = 10

// maxDebugText truncates long lines in debug records.
const maxDebugText = 120

// Parser parses statement lines. It holds no per-document state and is
// safe for concurrent use.
type Parser struct {
	locale *Locale
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLocale sets the month-name table. The default is French.
func WithLocale(l *Locale) Option {
	return func(p *Parser) { p.locale = l }
}

// WithClock sets the source of the current year used when a document
// carries no year at all.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithLogger sets the logger for per-line diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New returns a Parser. It panics if an option leaves it without a locale
// or clock.
func New(opts ...Option) *Parser {
	p := &Parser{
		locale: French(),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.locale == nil {
		panic("parser: nil locale")
	}
	if p.now == nil {
		panic("parser: nil clock")
	}
	return p
}

// Locale returns the month table in use.
func (p *Parser) Locale() *Locale {
	return p.locale
}

// ParseDocument parses every line and returns the transactions sorted by
// date. Lines that are not transactions are dropped.
func (p *Parser) ParseDocument(lines []string) []models.Transaction {
	return p.Analyze(lines, 0).Transactions
}

// Analyze parses a document and records what happened to each line.
//
// declaredYear, when positive, is used for yearless dates if none of the
// first lines carries a year. Transactions is never nil.
func (p *Parser) Analyze(lines []string, declaredYear int) *models.StatementInfo {
	year, source := p.resolveYear(lines, declaredYear)
	p.logger.Debug().Int("year", year).Str("source", string(source)).Msg("using year")

	info := &models.StatementInfo{
		Year:         year,
		YearSource:   source,
		Transactions: []models.Transaction{},
		DebugLines:   make([]models.DebugLine, 0, len(lines)),
	}

	for i, line := range lines {
		norm := normalizeLine(line)
		dl := models.DebugLine{
			LineNum:   i + 1,
			Text:      truncate(norm),
			HasDate:   hasDateToken(norm),
			HasAmount: hasAmountToken(norm),
		}

		txn, err := p.ParseLine(line, year)
		if err != nil {
			dl.Result = models.ResultSkipped
			dl.Reason = skipReason(err)
			info.DebugLines = append(info.DebugLines, dl)
			if dl.HasDate && dl.HasAmount {
				p.logger.Debug().Int("line", dl.LineNum).Str("reason", dl.Reason).Str("text", dl.Text).Msg("skipped line")
			}
			continue
		}

		dl.Result = models.ResultParsed
		info.DebugLines = append(info.DebugLines, dl)
		info.Transactions = append(info.Transactions, txn)
	}

	sort.SliceStable(info.Transactions, func(a, b int) bool {
		return info.Transactions[a].Date < info.Transactions[b].Date
	})

	p.logger.Info().Int("transactions", len(info.Transactions)).Int("lines", len(lines)).Msg("parsed document")
	return info
}

// DetectYear returns the first year found in the first lines of a document.
func DetectYear(lines []string) (int, bool) {
	for i, line := range lines {
		if i >= yearScanLines {
			break
		}
		if year, ok := FindYearToken(line); ok {
			return year, true
		}
	}
	return 0, false
}

func (p *Parser) resolveYear(lines []string, declaredYear int) (int, models.YearSource) {
	if year, ok := DetectYear(lines); ok {
		return year, models.YearFromDocument
	}
	if declaredYear > 0 {
		return declaredYear, models.YearDeclared
	}
	return p.now().Year(), models.YearFromClock
}

func truncate(s string) string {
	if len(s) <= maxDebugText {
		return s
	}
	// keep rune boundaries intact
	r := []rune(s)
	if len(r) <= maxDebugText {
		return s
	}
	return string(r[:maxDebugText]) + "..."
}
