package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-ocr/internal/extractor"
	"github.com/insightdelivered/statement-ocr/internal/logger"
	"github.com/insightdelivered/statement-ocr/internal/models"
	"github.com/insightdelivered/statement-ocr/internal/parser"
)

// ServiceName is reported by the health check.
const ServiceName = "OCR Bank Extractor"

const (
	msgNoFile           = `No file provided. Please upload a PDF file using the "file" field.`
	msgNoSelection      = "No file selected. Please choose a PDF file to upload."
	msgInvalidType      = "Invalid file type. Please upload a PDF file."
	msgNoText           = "No text could be extracted from the PDF. Please ensure it contains readable text."
	msgBadPDF           = "Failed to process PDF file. Please ensure it is a valid PDF: %v"
	msgNotFound         = "Endpoint not found. Use POST /ocr to extract transactions from PDF."
	msgMethodNotAllowed = "Method not allowed. Use POST method for /ocr endpoint."
	msgUnexpected       = "An unexpected error occurred while processing your request: %v"
)

// DefaultMaxUpload is the upload limit when none is configured.
const DefaultMaxUpload = 16 << 20

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Parser    *parser.Parser
	Source    extractor.LineSource
	Logger    zerolog.Logger
	MaxUpload int64 // bytes
	Metrics   *Metrics
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	Lines []string `json:"lines"`
	Year  int      `json:"year,omitempty"`
}

// TestParserResponse is the body of GET /test-parser.
type TestParserResponse struct {
	Message           string               `json:"message"`
	TransactionsFound int                  `json:"transactions_found"`
	Transactions      []models.Transaction `json:"transactions"`
}

func (h *Handler) maxUpload() int64 {
	if h.MaxUpload > 0 {
		return h.MaxUpload
	}
	return DefaultMaxUpload
}

func (h *Handler) tooLargeMessage() string {
	limit := h.maxUpload()
	if limit%(1<<20) != 0 {
		return fmt.Sprintf("File too large. Maximum file size is %dKB.", limit>>10)
	}
	return fmt.Sprintf("File too large. Maximum file size is %dMB.", limit>>20)
}

// HandleOCR extracts transactions from an uploaded PDF statement.
//
// Form fields: file (required, .pdf) and year (optional, used for dates
// without a year when the statement header carries none).
func (h *Handler) HandleOCR(c *fiber.Ctx) error {
	log := logger.FromContext(c.UserContext())

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgNoFile)
	}
	files := form.File["file"]
	if len(files) == 0 {
		if _, ok := form.Value["file"]; ok {
			return fiber.NewError(fiber.StatusBadRequest, msgNoSelection)
		}
		return fiber.NewError(fiber.StatusBadRequest, msgNoFile)
	}
	fh := files[0]
	if fh.Filename == "" {
		return fiber.NewError(fiber.StatusBadRequest, msgNoSelection)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidType)
	}
	if fh.Size > h.maxUpload() {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, h.tooLargeMessage())
	}

	year, ok := formYear(c.FormValue("year"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid year. Use a four-digit year such as 2025.")
	}

	tmpDir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// the client's file name never touches the filesystem
	path := filepath.Join(tmpDir, uuid.NewString()+".pdf")
	if err := c.SaveFile(fh, path); err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}
	log.Debug().Str("file", fh.Filename).Int64("size", fh.Size).Msg("processing PDF file")

	lines, err := h.Source.Lines(c.UserContext(), path)
	switch {
	case errors.Is(err, extractor.ErrNoText):
		return fiber.NewError(fiber.StatusBadRequest, msgNoText)
	case errors.Is(err, extractor.ErrToolMissing):
		return err
	case err != nil:
		log.Error().Err(err).Msg("error converting PDF")
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(msgBadPDF, err))
	case len(lines) == 0:
		return fiber.NewError(fiber.StatusBadRequest, msgNoText)
	}

	info := h.Parser.Analyze(lines, year)
	if h.Metrics != nil {
		h.Metrics.observeDocument("pdf", info)
	}
	log.Debug().Int("lines", len(lines)).Int("transactions", len(info.Transactions)).Msg("extracted transactions")

	return c.JSON(info.Transactions)
}

// HandleParse runs the line parser on text lines that were already
// extracted, skipping OCR. Lines are trimmed and blank ones dropped, as
// for an uploaded PDF.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	var req ParseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body. Send JSON like {\"lines\": [\"...\"]}.")
	}
	if req.Year < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid year.")
	}

	info := h.Parser.Analyze(extractor.SplitLines(req.Lines), req.Year)
	if h.Metrics != nil {
		h.Metrics.observeDocument("lines", info)
	}
	return c.JSON(info.Transactions)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// HandleTestParser parses a fixed set of statement rows.
func (h *Handler) HandleTestParser(c *fiber.Ctx) error {
	txns := h.Parser.ParseDocument(sampleLines)
	return c.JSON(TestParserResponse{
		Message:           "Parser test with sample transactions from a statement",
		TransactionsFound: len(txns),
		Transactions:      txns,
	})
}

// ErrorHandler renders every error as {"error": "..."} with the status the
// client should see.
func (h *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := fmt.Sprintf(msgUnexpected, err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	switch code {
	case fiber.StatusNotFound:
		msg = msgNotFound
	case fiber.StatusMethodNotAllowed:
		msg = msgMethodNotAllowed
	case fiber.StatusRequestEntityTooLarge:
		msg = h.tooLargeMessage()
	case fiber.StatusInternalServerError:
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Msg("unexpected error")
	}

	return c.Status(code).JSON(ErrorResponse{Error: msg})
}

// formYear parses the optional year field; empty means none.
func formYear(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, true
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		return 0, false
	}
	return year, true
}
