// Package render turns artwork descriptors into documents.
//
// # SVG
//
// [SVG] emits the vector document for a [scene.VisualParameters]. The output
// has a fixed structure:
//
//   - a <defs> block with one linearGradient per palette gradient, with ids
//     gradient-0, gradient-1 and so on
//   - the background rectangle (id "background")
//   - a translucent overlay rectangle (id "overlay") filled with gradient-0,
//     present only when the palette has gradients
//   - the shape instances of every shape configuration, in order
//
// Instance i of n in a configuration interpolates with t = i/n: its size
// goes from min to max size, its colour cycles through primary, secondary
// and accent and is blended toward secondary by 0.3*t, and its opacity is
// scaled by 0.5+0.5*t. Rotation is applied about the instance's own centre.
//
// Emission is deterministic: coordinates are rounded to two decimals and
// opacities to three, so the same descriptor always yields the same bytes.
//
//	params := scene.Compose(blocks, txs, shapes.Geometric, 1920, 1080)
//	svg := render.SVG(params, render.WithTitle("Block #250000000"))
//
// # Raster and PDF output
//
// [Converter.ToPNG] and [Converter.ToPDF] convert SVG bytes with the
// external rsvg-convert tool (from librsvg). The zero Converter finds it on
// PATH; its Binary field points at a different one.
package render
