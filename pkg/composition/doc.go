// Package composition places shape instances on the canvas.
//
// A [Layout] names one of six placement algorithms and carries the
// parameters they read: density, symmetry, margin and focal point.
// [Positions] is a pure function of the layout, an instance count and the
// canvas size; positions are never stored, the SVG renderer recomputes them
// for every shape configuration.
//
// # Algorithms
//
//   - [Radial]: concentric rings around the focal point, at least six items
//     per ring.
//   - [Grid]: row-major cell centers of a grid whose aspect follows the
//     canvas.
//   - [Flow]: evenly spaced x with y on a sine wave.
//   - [Spiral]: Archimedean spiral around the focal point.
//   - [Scatter]: pseudo-random points from [ScatterHash].
//   - [Layered]: horizontal bands with evenly spaced items.
//
// # Reproducibility
//
// [ScatterHash] evaluates frac(sin(v*12.9898 + v*78.233) * 43758.5453) in
// float64 with exactly that operation order. Single precision, fused
// multiply-add or a reordered sum change the result, so the expression is
// written out term by term.
//
// The dispatch tables are fixed-size arrays indexed by [Type] with their
// length asserted against the enumeration; a Type outside the vocabulary
// panics instead of falling back to a default algorithm.
package composition
