package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/fiscal-fox/internal/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(s *session) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := s.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			h := api.NewHandler(cfg, s.cache, s.log, version)
			app := api.NewApp(h, cfg.Server, s.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				s.log.Info().Str("addr", cfg.Server.Addr()).Str("version", version).Msg("Fiscal Fox API listening")
				errc <- app.Listen(cfg.Server.Addr())
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			s.log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides server.port)")
	return cmd
}
