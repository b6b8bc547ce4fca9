package extractor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Auto tries the text layer first and falls back to OCR when the PDF has
// no readable text layer.
type Auto struct {
	Text   LineSource
	OCR    LineSource
	Logger zerolog.Logger
}

func (a *Auto) Lines(ctx context.Context, pdfPath string) ([]string, error) {
	lines, err := a.Text.Lines(ctx, pdfPath)
	if err == nil && len(lines) > 0 {
		return lines, nil
	}
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, err
	}

	a.Logger.Debug().AnErr("text_err", err).Msg("text layer unusable, falling back to OCR")
	return a.OCR.Lines(ctx, pdfPath)
}
