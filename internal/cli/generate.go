package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// artFlags are the visual options shared by generate, compose and snapshot.
type artFlags struct {
	style  string
	width  int
	height int
	title  string
}

func (f *artFlags) register(cmd *cobra.Command, defaultStyle shapes.Style) {
	cmd.Flags().StringVarP(&f.style, "style", "s", defaultStyle.String(), "art style: "+strings.Join(shapes.StyleNames(), ", "))
	cmd.Flags().IntVar(&f.width, "width", pipeline.DefaultWidth, "output width in pixels")
	cmd.Flags().IntVar(&f.height, "height", pipeline.DefaultHeight, "output height in pixels")
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "artwork title")

	_ = cmd.RegisterFlagCompletionFunc("style", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return shapes.StyleNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolve validates the flags.
func (f *artFlags) resolve() (shapes.Style, int, int, error) {
	style, err := derrors.ValidateStyle(f.style)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := derrors.ValidateDimension("width", f.width); err != nil {
		return 0, 0, 0, err
	}
	if err := derrors.ValidateDimension("height", f.height); err != nil {
		return 0, 0, 0, err
	}
	return style, f.width, f.height, nil
}

func (c *CLI) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a piece from ledger data and add it to the gallery",
	}
	cmd.AddCommand(c.generateBlockCommand())
	cmd.AddCommand(c.generateWalletCommand())
	return cmd
}

func (c *CLI) generateBlockCommand() *cobra.Command {
	var (
		flags   artFlags
		n       int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "block <slot>",
		Short: "Generate a piece from a run of blocks",
		Example: `  dreamscape generate block 250000000
  dreamscape generate block 250000000 --range 12 --style fractal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return derrors.New(derrors.ErrCodeInvalidInput, "invalid slot number %q", args[0])
			}
			if err := derrors.ValidateBlockRange(n); err != nil {
				return err
			}
			style, width, height, err := flags.resolve()
			if err != nil {
				return err
			}
			req := pipeline.BlockRequest(slot, n, style, width, height)
			if flags.title != "" {
				req.Title = flags.title
			}
			return c.runGenerate(cmd.Context(), req, noCache)
		},
	}

	flags.register(cmd, pipeline.DefaultStyle)
	cmd.Flags().IntVarP(&n, "range", "r", pipeline.DefaultBlockRange, fmt.Sprintf("number of blocks (%d-%d)", derrors.MinBlockRange, derrors.MaxBlockRange))
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render and ledger caches")
	return cmd
}

func (c *CLI) generateWalletCommand() *cobra.Command {
	var (
		flags   artFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:     "wallet <address>",
		Short:   "Generate a piece from a wallet's recent transactions",
		Example: `  dreamscape generate wallet 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := derrors.ValidateSolanaAddress(args[0]); err != nil {
				return err
			}
			style, width, height, err := flags.resolve()
			if err != nil {
				return err
			}
			req := pipeline.WalletRequest(args[0], style, width, height)
			if flags.title != "" {
				req.Title = flags.title
			}
			return c.runGenerate(cmd.Context(), req, noCache)
		},
	}

	flags.register(cmd, pipeline.DefaultWalletStyle)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render and ledger caches")
	return cmd
}

// runGenerate runs the full pipeline for req and prints the stored piece.
func (c *CLI) runGenerate(ctx context.Context, req pipeline.Request, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, runnerOpts{ledger: true, gallery: true, noCache: noCache})
	if err != nil {
		return err
	}
	defer c.closeRunner(runner)

	prog := newProgress(logger)
	res, err := spin(ctx, "Generating "+req.Title+"...", func() (*pipeline.Result, error) {
		return runner.Generate(ctx, req)
	})
	if err != nil {
		return err
	}
	prog.done("Generated " + res.Piece.ID)

	printSuccess("Stored %s", StyleTitle.Render(res.Piece.Title))
	fmt.Println(statsLine(res.Metadata.SourceBlockCount, res.Metadata.SourceTransactionCount, res.CacheHits[pipeline.FormatSVG]))
	for _, format := range []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON} {
		if _, ok := res.Artifacts[format]; ok {
			printFile(runner.Artifacts.Path(res.Piece.ID, format))
		}
	}
	if res.Parameters.NonDeterministic {
		printWarning("No ledger data was usable; the piece is seeded from the clock")
	}
	printNextStep("Show it", "dreamscape gallery show "+res.Piece.ID)
	return nil
}
