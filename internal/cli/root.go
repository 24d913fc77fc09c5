package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dreamscape/pkg/buildinfo"
	"github.com/matzehuels/dreamscape/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run attaches the logger to the command context and, at
// debug level, routes pipeline, cache and RPC hooks to the log. A log level
// from the config file only lowers the threshold; --verbose always wins.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Dreamscape turns Solana ledger data into generative art",
		Long: `Dreamscape reads blocks and wallet activity from a Solana RPC node and
composes them into deterministic SVG artworks: the same ledger data always
yields the same picture.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg, err := c.config(); err == nil {
				if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && lvl < c.Logger.GetLevel() {
					c.SetLogLevel(lvl)
				}
			}
			if c.Logger.GetLevel() <= log.DebugLevel {
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dreamscape/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.galleryCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
