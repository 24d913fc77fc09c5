package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dreamscape/pkg/cache"
	"github.com/matzehuels/dreamscape/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render and ledger response cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached renders and ledger responses",
		Long: `Remove cached renders and ledger responses from the local cache directory.
A redis render cache is left alone; entries there expire on their own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			renders, responses, err := clearCache(dir)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d renders and %d ledger responses", renders, responses)
			printDetail("Directory: %s", dir)
			if cfg.Cache.Backend == config.CacheRedis {
				printWarning("Render cache backend is redis; only local entries were removed")
			}
			return nil
		},
	}
}

// clearCache empties the file render cache in dir and the ledger response
// cache below it.
func clearCache(dir string) (renders, responses int, err error) {
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, 0, err
	}
	if renders, err = fc.Clear(); err != nil {
		return renders, 0, err
	}

	rpc := filepath.Join(dir, rpcCacheDir)
	entries, err := os.ReadDir(rpc)
	if err != nil && !os.IsNotExist(err) {
		return renders, 0, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(rpc, e.Name())); err == nil {
			responses++
		}
	}
	return renders, responses, nil
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dir, err := cfg.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
