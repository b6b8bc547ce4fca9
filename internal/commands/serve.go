package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ocr/internal/api"
)

func newServeCommand(e *env) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				e.cfg.Server.Port = port
			}

			src, err := e.source("")
			if err != nil {
				return err
			}
			p, err := e.parser()
			if err != nil {
				return err
			}

			app := api.NewApp(&api.Handler{
				Parser:    p,
				Source:    src,
				Logger:    e.log,
				MaxUpload: int64(e.cfg.Server.MaxUploadBytes()),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := e.cfg.Server.Addr()
			e.log.Info().Str("addr", addr).Str("extract_mode", e.cfg.Extract.Mode).Msg("starting server")
			if err := api.Serve(ctx, app, addr); err != nil {
				return err
			}
			e.log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
