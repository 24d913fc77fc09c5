// Package pkg provides the libraries behind Dreamscape, which turns Solana
// ledger data into deterministic generative artwork.
//
// # Overview
//
// The same blocks and transactions always produce the same picture: every
// visual decision is derived from the source data, and the only fallback to
// the clock (an empty source) is flagged on the result.
//
//	Solana RPC node
//	         ↓
//	    [ledger] package (blocks, wallet signatures, snapshots)
//	         ↓
//	    [scene] package (palette + shapes + composition → VisualParameters)
//	         ↓
//	    [render] package (SVG, PNG/PDF via rsvg-convert, JSON descriptor)
//	         ↓
//	    [artifact] + [gallery] (files on disk, piece records in a database)
//
// # Quick Start
//
// Compose and render a snapshot without any network access:
//
//	data, _ := ledger.LoadSnapshot("snapshot.json")
//	p := scene.Compose(data.Blocks, data.Transactions, shapes.Fractal, 1920, 1080)
//	svg := render.SVG(p, render.WithTitle("Block #250000000"))
//
// # Main Packages
//
// ## Composition
//
// [palette] - Colors and gradients derived from a hash string.
//
// [shapes] - Shape types, art styles and the per-style shape presets.
//
// [composition] - Layout types and the layout parameters of a piece.
//
// [scene] - Combines the three into [scene.VisualParameters], the complete
// description of an artwork.
//
// ## Output
//
// [render] - SVG emission, raster conversion and the JSON descriptor.
//
// [artifact] - Artifact files under the gallery directory and their URLs.
//
// ## Data
//
// [ledger] - Solana JSON-RPC client with batching, retries and a response
// cache, plus offline snapshots.
//
// [gallery] - Piece persistence on SQLite, PostgreSQL or MongoDB.
//
// [cache] - Render cache (file, Redis or none) keyed by descriptor hash.
//
// ## Orchestration
//
// [pipeline] - Read → compose → render → store, shared by the CLI and the
// HTTP API.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Error codes, validation helpers and their HTTP status mapping.
//
// [observability] - Hooks for pipeline, cache and RPC events.
//
// [palette]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/palette
// [shapes]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/shapes
// [composition]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/composition
// [scene]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/scene
// [scene.VisualParameters]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/scene#VisualParameters
// [render]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/render
// [artifact]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/artifact
// [ledger]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/ledger
// [gallery]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/gallery
// [cache]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/dreamscape/pkg/observability
package pkg
