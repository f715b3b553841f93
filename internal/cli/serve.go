package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ziplock/pkg/config"
	"github.com/matzehuels/ziplock/pkg/observability"
	"github.com/matzehuels/ziplock/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, store string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for building trees and storing locks.

Manifests are posted as JSON, so file: dependencies cannot be resolved and
are reported as UNSUPPORTED. Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("store") {
				cfg.Lock.Store = store
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			locks, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer locks.Close(context.WithoutCancel(ctx))

			b, responses, err := c.newBuilder(cfg, "", false)
			if err != nil {
				return err
			}
			defer responses.Close()

			metrics := observability.NewPrometheus(prometheus.DefaultRegisterer)
			observability.SetResolveHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			srv := server.New(server.Options{
				Builder: b,
				Store:   locks,
				Logger:  c.Logger,
			})
			printInfo("Serving on %s", cfg.Server.Addr)
			printDetail("cache: %s, locks: %s", cfg.Cache.Backend, cfg.Lock.Store)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&store, "store", config.StoreFile, "lock store: file or mongo")

	return cmd
}
