package ledger

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/errgroup"

	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/httputil"
	"github.com/matzehuels/dreamscape/pkg/scene"
)

// rpcBlock is the subset of a getBlock result the client reads.
type rpcBlock struct {
	Blockhash  string   `json:"blockhash"`
	ParentSlot uint64   `json:"parentSlot"`
	BlockTime  *int64   `json:"blockTime"`
	Signatures []string `json:"signatures"`
}

// ReadBlock returns the summary of the block at slot. Skipped or missing
// slots yield a CHAIN_READ error.
func (c *Client) ReadBlock(ctx context.Context, slot uint64) (scene.Block, error) {
	key := strconv.FormatUint(slot, 10)
	if c.cache != nil {
		var b scene.Block
		ok, err := c.cache.Namespace("block:").Get(key, &b)
		if ok {
			return b, nil
		}
		if err != nil && !errors.Is(err, httputil.ErrExpired) {
			c.logger.Debug("ignoring cached block", "slot", slot, "err", err)
		}
	}

	params := []any{slot, map[string]any{
		"commitment":                     c.commitment,
		"encoding":                       "json",
		"transactionDetails":             "signatures",
		"rewards":                        false,
		"maxSupportedTransactionVersion": 0,
	}}

	var rb rpcBlock
	if err := c.call(ctx, "getBlock", params, &rb); err != nil {
		if errors.Is(err, errNullResult) {
			return scene.Block{}, derrors.New(derrors.ErrCodeChainRead, "block %d not found", slot)
		}
		if rpcErr := new(RPCError); errors.As(err, &rpcErr) && rpcErr.Skipped() {
			return scene.Block{}, derrors.Wrap(derrors.ErrCodeChainRead, err, "slot %d holds no block", slot)
		}
		return scene.Block{}, derrors.Wrap(derrors.ErrCodeChainRead, err, "read block %d", slot)
	}

	b := scene.Block{
		Slot:             slot,
		Blockhash:        rb.Blockhash,
		ParentSlot:       rb.ParentSlot,
		TransactionCount: len(rb.Signatures),
		Timestamp:        rb.BlockTime,
	}
	if c.cache != nil {
		_ = c.cache.Namespace("block:").Set(key, b)
	}
	return b, nil
}

// ReadBlockRange reads the blocks of the inclusive range [start, end] with at
// most the configured batch size of calls in flight. Slots without a block
// are skipped quietly; other failures are logged as warnings and skipped.
// The result is ordered by slot.
func (c *Client) ReadBlockRange(ctx context.Context, start, end uint64) ([]scene.Block, error) {
	if end < start {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "block range end %d is before start %d", end, start)
	}

	n := end - start + 1
	results := make([]*scene.Block, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.batchSize)
	for i := range n {
		slot := start + i
		g.Go(func() error {
			b, err := c.ReadBlock(gctx, slot)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if rpcErr := new(RPCError); errors.As(err, &rpcErr) && rpcErr.Skipped() {
					c.logger.Debug("skipping empty slot", "slot", slot)
					return nil
				}
				c.logger.Warn("skipping unreadable block", "slot", slot, "err", derrors.UserMessage(err))
				return nil
			}
			results[i] = &b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	blocks := make([]scene.Block, 0, n)
	for _, b := range results {
		if b != nil {
			blocks = append(blocks, *b)
		}
	}
	return blocks, nil
}
