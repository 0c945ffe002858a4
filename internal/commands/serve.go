package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-scanner/internal/api"
	"github.com/insightdelivered/statement-scanner/internal/logging"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(true)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			server := api.NewApp(api.NewHandler(svc, a.logger), a.cfg.Server.BodyLimitMB)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.logger.Info("listening",
					logging.F(logging.FieldPath, addr),
					logging.F(logging.FieldProvider, svc.Providers()))
				errc <- server.Listen(addr)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.ShutdownWithContext(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
