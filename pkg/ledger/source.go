package ledger

import (
	"context"
	"time"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/observability"
	"github.com/matzehuels/dreamscape/pkg/scene"
)

// BlockRange is an inclusive slot range.
type BlockRange struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// TimeRange bounds a source in time. It is recorded with a piece but not
// used to read the chain.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Source describes what to read. Zero fields are ignored.
type Source struct {
	Wallet     string      `json:"wallet_address,omitempty"`
	BlockRange *BlockRange `json:"block_range,omitempty"`
	TokenMint  string      `json:"token_mint,omitempty"`
	Signatures []string    `json:"transaction_signatures,omitempty"`
	TimeRange  *TimeRange  `json:"time_range,omitempty"`
}

// Kind names the source for logs and hooks.
func (s Source) Kind() string {
	switch {
	case s.BlockRange != nil && s.Wallet != "":
		return "mixed"
	case s.BlockRange != nil:
		return "block"
	case s.Wallet != "":
		return "wallet"
	default:
		return "latest"
	}
}

// Data is the ledger input of one artwork.
type Data struct {
	Blocks       []scene.Block       `json:"blocks"`
	Transactions []scene.Transaction `json:"transactions"`
}

// Empty reports whether d holds neither blocks nor transactions.
func (d Data) Empty() bool { return len(d.Blocks) == 0 && len(d.Transactions) == 0 }

// ReadChainData reads the block range and the wallet of src. When both come
// back empty it reads the current slot and the five before it instead.
func (c *Client) ReadChainData(ctx context.Context, src Source) (Data, error) {
	hooks := observability.Pipeline()
	kind := src.Kind()
	hooks.OnFetchStart(ctx, kind)
	start := time.Now()

	data, err := c.readChainData(ctx, src)
	hooks.OnFetchComplete(ctx, kind, len(data.Blocks), len(data.Transactions), time.Since(start), err)
	return data, err
}

func (c *Client) readChainData(ctx context.Context, src Source) (Data, error) {
	var data Data
	var err error

	if r := src.BlockRange; r != nil {
		if data.Blocks, err = c.ReadBlockRange(ctx, r.Start, r.End); err != nil {
			return Data{}, err
		}
	}
	if src.Wallet != "" {
		if data.Transactions, err = c.ReadWalletTransactions(ctx, src.Wallet, c.walletLimit); err != nil {
			return Data{}, err
		}
	}

	if data.Empty() {
		slot, err := c.Slot(ctx)
		if err != nil {
			return Data{}, err
		}
		from := uint64(0)
		if slot > defaultWindow {
			from = slot - defaultWindow
		}
		if data.Blocks, err = c.ReadBlockRange(ctx, from, slot); err != nil {
			return Data{}, err
		}
	}

	if data.Empty() {
		return Data{}, derrors.New(derrors.ErrCodeChainRead, "no ledger data could be read")
	}
	return data, nil
}
