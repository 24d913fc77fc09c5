package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dreamscape/internal/api"
	derrors "github.com/matzehuels/dreamscape/pkg/errors"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		port    int
		baseURL string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

The server generates pieces, serves the gallery and its artifacts under
/gallery/, and shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return derrors.New(derrors.ErrCodeInvalidInput, "port must be between 1 and 65535")
				}
				cfg.Server.Port = port
			}
			if baseURL != "" {
				if err := derrors.ValidateURL(baseURL); err != nil {
					return err
				}
				cfg.Server.BaseURL = baseURL
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner, err := c.newRunner(ctx, runnerOpts{ledger: true, gallery: true, noCache: noCache})
			if err != nil {
				return err
			}
			defer c.closeRunner(runner)

			logger.Info("config",
				"env", cfg.Env,
				"rpc", cfg.Solana.RPCURL,
				"database", cfg.Database.Driver,
				"cache", cfg.Cache.Backend,
				"gallery", cfg.Gallery.Path)
			if runner.Rasterizer == nil {
				logger.Warn("rsvg-convert not found, pieces are stored without png")
			}
			return api.New(runner, logger).Run(ctx, cfg.Server.Addr())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config and PORT)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public origin used in artifact URLs")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render and ledger caches")

	return cmd
}
