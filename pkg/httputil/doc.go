// Package httputil provides the HTTP plumbing of the ledger RPC client.
//
//   - [Cache]: file-based cache of decoded RPC results
//   - [Retry]: retry with exponential backoff for transient failures
//
// # Caching
//
// Finalized blocks never change, so the RPC client stores decoded getBlock
// results in a [Cache] under ~/.cache/dreamscape/rpc and skips the network
// on later runs. Keys should be namespaced by call:
//
//	c, err := httputil.NewCache("", 0)
//	blocks := c.Namespace("block:")
//	var b rpcBlock
//	if ok, _ := blocks.Get("250000000", &b); !ok {
//	    b = fetch()
//	    blocks.Set("250000000", b)
//	}
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError].
// The RPC client wraps network errors, 5xx and 429 responses this way:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.call(ctx, "getSlot", nil, &slot)
//	})
package httputil
