package extractor

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	lines []string
	err   error
	calls int
}

func (f *fakeSource) Lines(context.Context, string) ([]string, error) {
	f.calls++
	return f.lines, f.err
}

func TestSplitLines(t *testing.T) {
	pages := []string{
		"Relevé de compte\r\n\n  1 avr. 2025 Cigusto Orleans €5.90 €30.61  \n",
		"   \n",
		"Page 2\n3 avr. 2025 Payment €590.00 €593.94",
	}

	lines := SplitLines(pages)
	assert.Equal(t, []string{
		"Relevé de compte",
		"1 avr. 2025 Cigusto Orleans €5.90 €30.61",
		"Page 2",
		"3 avr. 2025 Payment €590.00 €593.94",
	}, lines)

	assert.Empty(t, SplitLines(nil))
}

func TestPageWindowClamp(t *testing.T) {
	first, last := DefaultWindow.clamp(3)
	assert.Equal(t, 1, first)
	assert.Equal(t, 3, last)

	first, last = PageWindow{First: 2, Last: 4}.clamp(10)
	assert.Equal(t, 2, first)
	assert.Equal(t, 4, last)

	first, last = PageWindow{}.clamp(7)
	assert.Equal(t, 1, first)
	assert.Equal(t, 7, last)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("ocr", OCROptions{})
	require.NoError(t, err)
	assert.IsType(t, &OCR{}, src)

	src, err = NewSource("text", OCROptions{})
	require.NoError(t, err)
	assert.IsType(t, &TextLayer{}, src)

	src, err = NewSource("auto", OCROptions{})
	require.NoError(t, err)
	assert.IsType(t, &Auto{}, src)

	_, err = NewSource("magic", OCROptions{})
	assert.Error(t, err)
}

func TestAuto(t *testing.T) {
	ctx := context.Background()

	t.Run("text layer wins", func(t *testing.T) {
		text := &fakeSource{lines: []string{"a"}}
		ocr := &fakeSource{lines: []string{"b"}}
		lines, err := (&Auto{Text: text, OCR: ocr, Logger: zerolog.Nop()}).Lines(ctx, "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, lines)
		assert.Zero(t, ocr.calls)
	})

	t.Run("falls back on error", func(t *testing.T) {
		text := &fakeSource{err: ErrNoText}
		ocr := &fakeSource{lines: []string{"b"}}
		lines, err := (&Auto{Text: text, OCR: ocr}).Lines(ctx, "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, lines)
	})

	t.Run("falls back on empty text", func(t *testing.T) {
		ocr := &fakeSource{lines: []string{"b"}}
		_, err := (&Auto{Text: &fakeSource{}, OCR: ocr}).Lines(ctx, "x.pdf")
		require.NoError(t, err)
		assert.Equal(t, 1, ocr.calls)
	})

	t.Run("cancellation is not retried", func(t *testing.T) {
		ocr := &fakeSource{}
		_, err := (&Auto{Text: &fakeSource{err: context.Canceled}, OCR: ocr}).Lines(ctx, "x.pdf")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, ocr.calls)
	})
}

func TestIsOCRAvailable(t *testing.T) {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	assert.Equal(t, err1 == nil && err2 == nil, IsOCRAvailable())
}

func TestOCR_Defaults(t *testing.T) {
	o := NewOCR(OCROptions{Whitelist: "0123456789€"})
	assert.Equal(t, "fra", o.opts.Language)
	assert.Equal(t, 200, o.opts.DPI)
	assert.Equal(t, DefaultWindow, o.opts.Window)
	assert.Equal(t, 2, o.opts.Workers)

	args := o.tesseractArgs("/tmp/page-1.png")
	assert.Equal(t, []string{
		"/tmp/page-1.png", "stdout",
		"-l", "fra",
		"--oem", "3",
		"--psm", "6",
		"-c", "tessedit_char_whitelist=0123456789€",
	}, args)
}

func TestOCR_MissingToolsOrFile(t *testing.T) {
	_, err := NewOCR(OCROptions{}).Lines(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	if !IsOCRAvailable() {
		assert.ErrorIs(t, err, ErrToolMissing)
	}
}

func TestPageCount_MissingFile(t *testing.T) {
	assert.Zero(t, pageCount(context.Background(), "/tmp/nonexistent-file-12345.pdf"))
}

func TestTextLayer_MissingFile(t *testing.T) {
	_, err := NewTextLayer(PageWindow{}, zerolog.Nop()).Lines(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoText))
}

func TestIsReadableText(t *testing.T) {
	statement := []string{
		"Relevé de compte courant\n" +
			"1 avr. 2025 Cigusto Orleans €5.90 €30.61\n" +
			"1 avr. 2025 Carrefour €2.54 €28.07",
	}
	assert.True(t, isReadableText(statement))

	assert.False(t, isReadableText([]string{"solde €"}), "too short")
	assert.False(t, isReadableText([]string{strings.Repeat("\x01\x02\x03ÞßØ", 30)}), "binary garbage")
	assert.False(t, isReadableText([]string{strings.Repeat("lorem ipsum dolor sit amet ", 5)}), "no statement words")
}

func TestTextQuality(t *testing.T) {
	assert.Zero(t, textQuality(nil))
	assert.InDelta(t, 1.0, textQuality([]string{"Prélèvement €12,00"}), 1e-9)
	assert.InDelta(t, 0.5, textQuality([]string{"ab\x00\x01"}), 1e-9)
}
