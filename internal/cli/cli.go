// Package cli implements the dreamscape command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dreamscape/pkg/artifact"
	"github.com/matzehuels/dreamscape/pkg/cache"
	"github.com/matzehuels/dreamscape/pkg/config"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/httputil"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
	"github.com/matzehuels/dreamscape/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dreamscape"

	// rpcCacheDir is the subdirectory of the cache dir holding ledger responses.
	rpcCacheDir = "rpc"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config returns the loaded configuration, loading it on first use.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects the collaborators a command needs.
type runnerOpts struct {
	ledger  bool // needs the RPC client
	gallery bool // needs the gallery and artifact stores
	noCache bool
}

// newRunner assembles a pipeline runner from the configuration. The caller
// closes it.
func (c *CLI) newRunner(ctx context.Context, opts runnerOpts) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	artifactCache, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}

	var reader pipeline.Reader
	if opts.ledger {
		client, err := c.newLedgerClient(cfg, opts.noCache)
		if err != nil {
			artifactCache.Close()
			return nil, err
		}
		reader = client
	}

	var store gallery.Store
	var artifacts *artifact.Store
	if opts.gallery {
		if store, err = gallery.Open(ctx, cfg.Database.Driver, cfg.Database.URL); err != nil {
			artifactCache.Close()
			return nil, err
		}
		if artifacts, err = artifact.NewStore(cfg.Gallery.Path, cfg.Server.BaseURL); err != nil {
			artifactCache.Close()
			store.Close()
			return nil, err
		}
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}

	r := pipeline.NewRunner(reader, store, artifacts, artifactCache, keyer, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		r.TTL = cfg.Cache.TTL.Duration
	}
	if conv := (render.Converter{}); conv.Available() {
		r.Rasterizer = conv
	} else {
		c.Logger.Debug("rsvg-convert not found, png and pdf output disabled")
	}
	return r, nil
}

// newLedgerClient builds the RPC client. Block responses are cached on disk
// unless noCache is set.
func (c *CLI) newLedgerClient(cfg *config.Config, noCache bool) (*ledger.Client, error) {
	opts := []ledger.Option{
		ledger.WithCommitment(cfg.Solana.Commitment),
		ledger.WithBatchSize(cfg.Solana.BatchSize),
		ledger.WithWalletLimit(cfg.Solana.WalletLimit),
		ledger.WithTimeout(cfg.Solana.Timeout.Duration),
		ledger.WithLogger(c.Logger),
	}
	if !noCache {
		dir, err := cfg.CacheDir()
		if err == nil {
			rpc, err := httputil.NewCache(filepath.Join(dir, rpcCacheDir), 0)
			if err != nil {
				return nil, fmt.Errorf("open rpc cache: %w", err)
			}
			opts = append(opts, ledger.WithCache(rpc))
		}
	}
	return ledger.NewClient(cfg.Solana.RPCURL, opts...), nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cfg.CacheDir()
	if err != nil && cfg.Cache.Backend == cache.BackendFile {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.Cache.Backend, dir, cfg.Cache.RedisURL)
}

// closeRunner closes r and logs failures.
func (c *CLI) closeRunner(r *pipeline.Runner) {
	if err := r.Close(); err != nil && !errors.Is(err, context.Canceled) {
		c.Logger.Warn("close", "err", err)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// outputPath returns the file for format. base is the -o value: empty means
// "artwork" in the current directory, and an extension is replaced.
func outputPath(base, format string) string {
	if base == "" {
		base = "artwork"
	}
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + format
}
