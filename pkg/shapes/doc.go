// Package shapes maps an art style and an activity density to the ordered
// list of shape configurations an artwork draws.
//
// Both vocabularies are closed: [Type] has seven members and [Style] has
// five. Their per-member tables are fixed-size arrays whose lengths are
// checked against the enumeration at compile time, so a new member without a
// table entry does not build.
//
// [Configure] looks up the style's [Preset] and emits one [Config] per shape
// type, in preset order:
//
//	count    = max(3, round(base_count * density / len(types)))
//	opacity  = lerp(opacity_range, density)
//	rotation = 0 for circle and dot, 360 otherwise
package shapes
