package extractor

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// TextLayer reads lines from the embedded text of a PDF. It is much faster
// than OCR but only works for statements generated digitally.
type TextLayer struct {
	Window PageWindow
	Logger zerolog.Logger
}

// NewTextLayer returns a text-layer source over the given page window.
func NewTextLayer(window PageWindow, logger zerolog.Logger) *TextLayer {
	if window == (PageWindow{}) {
		window = DefaultWindow
	}
	return &TextLayer{Window: window, Logger: logger}
}

// Lines extracts the text layer with the PDF library and falls back to
// pdftotext (poppler-utils). Text that does not look like a statement is
// rejected with ErrNoText rather than returned as garbage.
func (t *TextLayer) Lines(ctx context.Context, pdfPath string) ([]string, error) {
	pages, libErr := t.extractWithLibrary(pdfPath)
	if libErr == nil && isReadableText(pages) {
		return SplitLines(pages), nil
	}
	if libErr != nil {
		t.Logger.Debug().Err(libErr).Msg("PDF library extraction failed")
	}

	popplerPages, popplerErr := t.extractWithPdftotext(ctx, pdfPath)
	if popplerErr == nil && isReadableText(popplerPages) {
		return SplitLines(popplerPages), nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: text layer unreadable: %v", ErrNoText, libErr)
	}
	return nil, fmt.Errorf("%w: no readable text layer; the file is probably scanned", ErrNoText)
}

// textQuality returns the share of characters that are letters, digits,
// whitespace or common statement punctuation, from 0 to 1.
//
// Letters are limited to ASCII and the French accented set. unicode.IsLetter
// is too broad and accepts the symbols identity-encoded fonts decode into.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if isReadableRune(r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func isReadableRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case unicode.IsSpace(r):
		return true
	case strings.ContainsRune("àâäéèêëïîôöùûüÿçÀÂÄÉÈÊËÏÎÔÖÙÛÜŸÇ", r):
		return true
	case strings.ContainsRune(".,-/:;()'\"€$%&@#!?+=*", r):
		return true
	}
	return false
}

// commonWords appear in virtually every French bank statement.
var commonWords = []string{
	"solde", "relevé", "releve", "compte", "date", "opération", "operation",
	"débit", "debit", "crédit", "credit", "virement", "prélèvement",
	"paiement", "carte", "total", "banque", "page", "période", "€",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% readable
// characters and at least one statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func (t *TextLayer) extractWithPdftotext(ctx context.Context, pdfPath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("%w: pdftotext", ErrToolMissing)
	}

	first, last := t.Window.First, t.Window.Last
	if n := pageCount(ctx, pdfPath); n > 0 {
		first, last = t.Window.clamp(n)
	}

	// one call per page keeps page boundaries
	var pages []string
	for i := first; i <= last; i++ {
		page := strconv.Itoa(i)
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", "-f", page, "-l", page, pdfPath, "-").Output()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: pdftotext produced no output", ErrNoText)
	}
	return pages, nil
}

func (t *TextLayer) extractWithLibrary(pdfPath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	first, last := t.Window.clamp(numPages)

	// rows keep the layout best; positioned content copes with PDFs whose
	// rows come back fragmented
	pages = extractByRow(r, first, last)
	if isReadableText(pages) {
		return pages, nil
	}
	return extractByContent(r, first, last), nil
}

func extractByRow(r *pdf.Reader, first, last int) []string {
	var pages []string
	for i := first; i <= last; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent groups positioned text by Y to rebuild rows, then sorts
// each row by X. Wide gaps become a double space, like a column break.
func extractByContent(r *pdf.Reader, first, last int) []string {
	type textItem struct {
		x float64
		s string
	}

	var pages []string
	for i := first; i <= last; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rowMap[y] = append(rowMap[y], textItem{x: t.X, s: t.S})
		}

		// PDF Y grows upwards
		ys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var sb strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					sb.WriteString("  ")
				}
				sb.WriteString(item.s)
				prevX = item.x
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
