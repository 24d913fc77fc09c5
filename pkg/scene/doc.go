// Package scene composes the complete artwork descriptor from ledger data.
//
// [Compose] is the single entry point of the generative core. It derives a
// [Seed], builds the palette, shape configurations and layout, and returns
// an immutable [VisualParameters] that the SVG renderer consumes:
//
//	params := scene.Compose(blocks, txs, shapes.Geometric, 1920, 1080)
//	svg := render.SVG(params)
//
// # Determinism
//
// For a fixed (blocks, transactions, style, width, height) every field of the
// result is reproducible. The one exception is the seed fallback: with no
// blocks and no transactions the seed is the current Unix time in
// milliseconds, hex encoded. Such descriptors carry
// NonDeterministic = true so callers can tell them apart. A [Composer] with a
// fixed clock makes the fallback reproducible in tests.
//
// # Derived Scalars
//
//   - shape density: min(1, (Σ block tx counts + len(txs)) / 500)
//   - composition density: min(1, (len(blocks) + len(txs)) / 100)
//   - symmetry: successful / total transactions, or 0.5 without transactions
package scene
