package ledger

import (
	"context"
	"encoding/json"
	"errors"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/scene"
)

type rpcSignature struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	Err       json.RawMessage `json:"err"`
	BlockTime *int64          `json:"blockTime"`
}

func (s rpcSignature) failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

// ReadWalletTransactions returns up to limit of the most recent transactions
// that touched address, newest first. Signature listings carry neither fees
// nor account lists, so Fee is 0 and Accounts is empty.
func (c *Client) ReadWalletTransactions(ctx context.Context, address string, limit int) ([]scene.Transaction, error) {
	if err := derrors.ValidateSolanaAddress(address); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = c.walletLimit
	}

	params := []any{address, map[string]any{
		"limit":      limit,
		"commitment": c.commitment,
	}}

	var sigs []rpcSignature
	if err := c.call(ctx, "getSignaturesForAddress", params, &sigs); err != nil && !errors.Is(err, errNullResult) {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == -32602 {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidAddress, err, "invalid address %s", address)
		}
		return nil, derrors.Wrap(derrors.ErrCodeChainRead, err, "read wallet %s", address)
	}

	txs := make([]scene.Transaction, 0, len(sigs))
	for _, s := range sigs {
		txs = append(txs, scene.Transaction{
			Signature: s.Signature,
			Slot:      s.Slot,
			Accounts:  []string{},
			Success:   !s.failed(),
		})
	}
	return txs, nil
}
