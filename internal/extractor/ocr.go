package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// OCROptions configure the OCR line source.
type OCROptions struct {
	Language  string // tesseract language pack, e.g. "fra"
	DPI       int
	Window    PageWindow
	PSM       int
	Whitelist string
	Workers   int // pages recognised concurrently
	Logger    zerolog.Logger
}

// OCR renders PDF pages with pdftoppm (poppler-utils) and recognises them
// with tesseract. It handles scanned statements with no text layer.
type OCR struct {
	opts OCROptions
}

// NewOCR returns an OCR source. Zero options fall back to French, 200 dpi,
// pages 1-5, page segmentation mode 6 and two workers.
func NewOCR(opts OCROptions) *OCR {
	if opts.Language == "" {
		opts.Language = "fra"
	}
	if opts.DPI == 0 {
		opts.DPI = 200
	}
	if opts.Window == (PageWindow{}) {
		opts.Window = DefaultWindow
	}
	if opts.PSM == 0 {
		opts.PSM = 6
	}
	if opts.Workers < 1 {
		opts.Workers = 2
	}
	return &OCR{opts: opts}
}

// IsOCRAvailable reports whether pdftoppm and tesseract are on PATH.
func IsOCRAvailable() bool {
	return checkTools() == nil
}

func checkTools() error {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return fmt.Errorf("%w: pdftoppm (install poppler-utils)", ErrToolMissing)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return fmt.Errorf("%w: tesseract (install tesseract-ocr)", ErrToolMissing)
	}
	return nil
}

// Lines returns the recognised lines of every page in the window. Pages
// that fail to recognise are logged and skipped.
func (o *OCR) Lines(ctx context.Context, pdfPath string) ([]string, error) {
	pages, err := o.pages(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return SplitLines(pages), nil
}

func (o *OCR) pages(ctx context.Context, pdfPath string) ([]string, error) {
	if err := checkTools(); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	images, err := o.render(ctx, pdfPath, tmpDir)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			text, err := o.recognise(gctx, img)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				o.opts.Logger.Warn().Err(err).Str("image", filepath.Base(img)).Msg("OCR failed for page")
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pages []string
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: tesseract read nothing from %d page images", ErrNoText, len(images))
	}

	o.opts.Logger.Debug().Int("pages", len(pages)).Str("file", filepath.Base(pdfPath)).Msg("OCR complete")
	return pages, nil
}

// render writes one PNG per page into dir and returns them in page order.
func (o *OCR) render(ctx context.Context, pdfPath, dir string) ([]string, error) {
	first, last := o.opts.Window.First, o.opts.Window.Last
	if n := pageCount(ctx, pdfPath); n > 0 {
		first, last = o.opts.Window.clamp(n)
		if first > last {
			return nil, fmt.Errorf("%w: document has %d pages, window starts at %d", ErrNoText, n, first)
		}
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-r", strconv.Itoa(o.opts.DPI),
		"-f", strconv.Itoa(first),
		"-l", strconv.Itoa(last),
		"-png", pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	// pdftoppm zero-pads page numbers, so name order is page order
	sort.Strings(images)

	if len(images) == 0 {
		return nil, fmt.Errorf("%w: pdftoppm produced no page images", ErrNoText)
	}
	return images, nil
}

func (o *OCR) recognise(ctx context.Context, image string) (string, error) {
	out, err := exec.CommandContext(ctx, "tesseract", o.tesseractArgs(image)...).Output()
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w", filepath.Base(image), err)
	}
	return string(out), nil
}

func (o *OCR) tesseractArgs(image string) []string {
	args := []string{image, "stdout",
		"-l", o.opts.Language,
		"--oem", "3",
		"--psm", strconv.Itoa(o.opts.PSM),
	}
	if o.opts.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+o.opts.Whitelist)
	}
	return args
}

// pageCount returns the number of pages in a PDF using pdfinfo, or 0 when
// it cannot tell.
func pageCount(ctx context.Context, pdfPath string) int {
	out, err := exec.CommandContext(ctx, "pdfinfo", pdfPath).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil {
				return n
			}
		}
	}
	return 0
}
