package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"intentional/internal/gateway/app"
)

func newServeCmd() *cobra.Command {
	var shutdownTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			errc := make(chan error, 1)
			go func() { errc <- a.Start() }()

			select {
			case err = <-errc:
				if err != nil {
					logger.Error("server error", zap.Error(err))
				}
			case <-cmd.Context().Done():
				logger.Info("shutting down server")
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if serr := a.Shutdown(ctx); serr != nil {
				logger.Error("forced shutdown", zap.Error(serr))
				if err == nil {
					err = serr
				}
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "grace period for in-flight requests")
	return cmd
}
