package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 10 * time.Second

// NewApp builds the fiber app with all routes and middleware.
func NewApp(h *Handler) *fiber.App {
	if h.Metrics == nil {
		h.Metrics = NewMetrics()
	}

	app := fiber.New(fiber.Config{
		AppName:               "statement-ocr",
		DisableStartupMessage: true,
		// headroom for the multipart envelope; the file itself is checked
		// against MaxUpload in the handler
		BodyLimit:    int(h.maxUpload()) + 1<<20,
		ErrorHandler: h.ErrorHandler,
	})

	app.Use(requestID(h.Logger))
	app.Use(accessLog(h.Logger, h.Metrics))
	app.Use(recover.New())

	app.Post("/ocr", h.HandleOCR)
	app.Post("/parse", h.HandleParse)
	app.Get("/health", h.HandleHealth)
	app.Get("/test-parser", h.HandleTestParser)
	app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))

	return app
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}
