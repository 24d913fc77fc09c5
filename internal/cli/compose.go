package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
)

func (c *CLI) composeCommand() *cobra.Command {
	var (
		flags   artFlags
		formats string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "compose <snapshot.json>",
		Short: "Compose artwork from a ledger snapshot without touching the network",
		Long: `Compose artwork from a snapshot file written by "dreamscape snapshot".

Nothing is read from the ledger and nothing is added to the gallery, so the
same snapshot and flags always produce byte-identical output.

Formats: svg, png, pdf (png and pdf need rsvg-convert) and json, the visual
descriptor with its metadata.`,
		Example: `  dreamscape compose snapshot.json
  dreamscape compose snapshot.json --style wave --format svg,png,json -o out/wave`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			style, width, height, err := flags.resolve()
			if err != nil {
				return err
			}
			opts := pipeline.ComposeOptions{
				Style:   style,
				Width:   width,
				Height:  height,
				Title:   flags.title,
				Formats: parseFormats(formats),
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			data, err := ledger.LoadSnapshot(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, runnerOpts{noCache: noCache})
			if err != nil {
				return err
			}
			defer c.closeRunner(runner)

			res, err := runner.Compose(ctx, data, opts)
			if err != nil {
				return err
			}

			if dir := filepath.Dir(outputPath(output, "svg")); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			printSuccess("Composed %s artwork", style)
			fmt.Println(statsLine(len(data.Blocks), len(data.Transactions), allCached(res.CacheHits)))
			for _, format := range opts.Formats {
				path := outputPath(output, format)
				if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
					return derrors.Wrap(derrors.ErrCodeInternal, err, "write %s", path)
				}
				printFile(path)
			}
			if res.Parameters.NonDeterministic {
				printWarning("The snapshot is empty; the artwork is seeded from the clock")
			}
			return nil
		},
	}

	flags.register(cmd, pipeline.DefaultStyle)
	cmd.Flags().StringVarP(&formats, "format", "f", "", "comma-separated output formats (default svg)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path without extension (default ./artwork)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	return cmd
}

// allCached reports whether every rendered format came from the cache.
func allCached(hits map[string]bool) bool {
	if len(hits) == 0 {
		return false
	}
	for _, hit := range hits {
		if !hit {
			return false
		}
	}
	return true
}
