package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/pipeline"
)

func (c *CLI) snapshotCommand() *cobra.Command {
	var (
		block   uint64
		n       int
		wallet  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save ledger data to a file for offline composition",
		Long: `Read blocks and/or wallet transactions and save them as a JSON snapshot.

Without --block or --wallet the latest slots are read. Feed the file to
"dreamscape compose" to render it any number of times offline.`,
		Example: `  dreamscape snapshot --block 250000000 --range 8 -o blocks.json
  dreamscape snapshot --wallet 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var src ledger.Source
			if cmd.Flags().Changed("block") {
				if err := derrors.ValidateBlockRange(n); err != nil {
					return err
				}
				src.BlockRange = &ledger.BlockRange{Start: block, End: block + uint64(n) - 1}
			}
			if wallet != "" {
				src.Wallet = wallet
			}
			if err := pipeline.ValidateSource(src); err != nil {
				return err
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			client, err := c.newLedgerClient(cfg, noCache)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))
			data, err := spin(ctx, fmt.Sprintf("Reading %s data...", src.Kind()), func() (ledger.Data, error) {
				return client.ReadChainData(ctx, src)
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Read %d blocks and %d transactions", len(data.Blocks), len(data.Transactions)))

			if err := ledger.SaveSnapshot(output, data); err != nil {
				return derrors.Wrap(derrors.ErrCodeInternal, err, "write snapshot %s", output)
			}
			printSuccess("Saved snapshot")
			fmt.Println(statsLine(len(data.Blocks), len(data.Transactions), false))
			printFile(output)
			printNextStep("Compose it", "dreamscape compose "+output)
			return nil
		},
	}

	cmd.Flags().Uint64VarP(&block, "block", "b", 0, "first slot to read")
	cmd.Flags().IntVarP(&n, "range", "r", pipeline.DefaultBlockRange, "number of blocks to read from --block")
	cmd.Flags().StringVarP(&wallet, "wallet", "w", "", "wallet address to read transactions for")
	cmd.Flags().StringVarP(&output, "output", "o", "snapshot.json", "snapshot file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not cache ledger responses")
	return cmd
}
