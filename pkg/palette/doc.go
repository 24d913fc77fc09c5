// Package palette derives deterministic color palettes from hash strings.
//
// # Overview
//
// [FromHash] turns any string into a [Palette]: four base colors (primary,
// secondary, accent, background) plus two to four three-stop gradients. The
// string is reduced to 32 bytes by reading its hexadecimal digits in pairs;
// missing bytes are padded with 128, so every input, including empty or
// non-hex strings, yields a valid palette.
//
// The first three bytes fix the base hue, saturation and lightness:
//
//	hue        = b[0]/255 * 360
//	saturation = 40 + b[1]/255 * 40
//	lightness  = 30 + b[2]/255 * 30
//
// Secondary and accent colors sit at +120° and +240° on the hue wheel. The
// fourth byte picks the gradient count and the following byte pairs shift
// each gradient's hue and lightness.
//
// # Color Math
//
// [HSL] converts with the sector method and normalizes hue into [0, 360)
// first, so a hue of exactly 360° lands in the red sector. Channel values are
// rounded half-up and clamped to [0, 255].
//
// [Blend] and [WithOpacity] are the helpers used by the SVG emitter to shift
// shape colors toward the secondary color and to build #rrggbbaa strings.
package palette
