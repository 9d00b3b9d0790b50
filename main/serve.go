package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"racebot/config"
	"racebot/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Every resource kind is served at /api/f1/<kind> and
accepts the query filters as URL parameters. /health, /version and /metrics
are served alongside.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	if err := a.v.BindPFlag(config.KeyServerAddress, cmd.Flags().Lookup("address")); err != nil {
		panic(fmt.Sprintf("failed to bind address flag: %v", err))
	}
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	defer a.close()

	gateway, err := a.gateway()
	if err != nil {
		return err
	}

	srv := server.New(a.cfg.Server.Address, gateway, a.registry, a.logger, server.WithTracerProvider(a.tracer))
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("http api: %w", err)
	}
	a.logger.InfoContext(ctx, "Server shutdown complete")
	return nil
}
