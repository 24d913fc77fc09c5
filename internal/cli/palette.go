package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dreamscape/pkg/palette"
)

func (c *CLI) paletteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "palette <hash>",
		Short: "Show the palette a block hash produces",
		Long: `Show the colors and gradients derived from a hash string.

Any string is accepted; pieces use the first block hash (or transaction
signature) of their source data.`,
		Example: `  dreamscape palette GHtXQBsoZHVnNFa9YevAzFr17DJjgHXk3ycTKD5xD3Zi`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := palette.FromHash(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render("Palette")+" "+StyleDim.Render(args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), formatPalette(p))
			return nil
		},
	}
}
