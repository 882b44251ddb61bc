package main

import (
	"os"

	"github.com/Sternrassler/character-gallery/internal/server"
	"github.com/Sternrassler/character-gallery/pkg/controller"
	"github.com/Sternrassler/character-gallery/pkg/logging"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery as a JSON API",
		Long: `Serve the gallery controller over HTTP.

Endpoints:
  GET  /health       liveness
  GET  /ready        readiness (pings Redis when configured)
  GET  /metrics      Prometheus metrics
  GET  /api/view     current gallery view
  POST /api/search   {"text": "..."}
  POST /api/page     {"page": n}
  POST /api/prev     previous page
  POST /api/next     next page
  POST /api/refresh  reload the current query`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			setupLogging(cfg, os.Stderr)
			logger := logging.NewLogger("gallery")

			ctx := cmd.Context()
			deps, err := buildDeps(ctx, cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctrl := controller.New(deps.Client, controllerConfig(cfg))
			if err := ctrl.FetchResults(ctx); err != nil {
				logger.Warn().Err(err).Msg("Initial fetch failed")
			}

			logger.Info().
				Str("user_agent", cfg.API.UserAgent).
				Bool("revalidation", deps.Redis != nil).
				Msg("Gallery ready")

			return server.New(ctrl, deps.Client).ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
