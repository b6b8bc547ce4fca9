// Package extractor turns a PDF statement into text lines for the parser,
// either by OCR of rendered pages or from the PDF text layer.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoText means no page produced any usable text.
	ErrNoText = errors.New("no text extracted")
	// ErrToolMissing means a required external program is not installed.
	ErrToolMissing = errors.New("required tool not installed")
)

// LineSource produces the text lines of a PDF in reading order.
type LineSource interface {
	Lines(ctx context.Context, pdfPath string) ([]string, error)
}

// PageWindow bounds extraction to pages First..Last, 1-based and inclusive.
type PageWindow struct {
	First int
	Last  int
}

// DefaultWindow covers the first five pages.
var DefaultWindow = PageWindow{First: 1, Last: 5}

func (w PageWindow) clamp(numPages int) (int, int) {
	first, last := w.First, w.Last
	if first < 1 {
		first = 1
	}
	if last < 1 || last > numPages {
		last = numPages
	}
	return first, last
}

// SplitLines splits page texts into trimmed, non-blank lines, keeping page
// order.
func SplitLines(pages []string) []string {
	var lines []string
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// NewSource builds the line source for an extraction mode: "ocr", "text"
// or "auto".
func NewSource(mode string, opts OCROptions) (LineSource, error) {
	switch mode {
	case "ocr":
		return NewOCR(opts), nil
	case "text":
		return NewTextLayer(opts.Window, opts.Logger), nil
	case "auto":
		return &Auto{
			Text:   NewTextLayer(opts.Window, opts.Logger),
			OCR:    NewOCR(opts),
			Logger: opts.Logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", mode)
	}
}
