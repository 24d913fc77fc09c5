// Package ledger reads block and transaction summaries from a Solana RPC
// node.
//
// [Client] speaks JSON-RPC 2.0 over HTTP. It retries transient failures
// (network errors, 429 and 5xx responses) with exponential backoff and can
// keep decoded blocks in an [httputil.Cache], since a confirmed block's hash,
// parent and transaction count do not change.
//
//	c := ledger.NewClient("https://api.mainnet-beta.solana.com",
//	    ledger.WithBatchSize(10),
//	    ledger.WithLogger(logger),
//	)
//	data, err := c.ReadChainData(ctx, ledger.Source{Wallet: addr})
//
// # Reading
//
//   - [Client.ReadBlock]: one block; fails when the slot was skipped
//   - [Client.ReadBlockRange]: an inclusive slot range, fetched concurrently
//     in batches; unreadable slots are skipped
//   - [Client.ReadWalletTransactions]: the most recent signatures of an address
//   - [Client.ReadChainData]: the union of a block range and a wallet, falling
//     back to the latest slots when both come back empty
//
// # Snapshots
//
// [SaveSnapshot] and [LoadSnapshot] store [Data] as JSON, so an artwork can be
// regenerated offline from exactly the same input.
package ledger
