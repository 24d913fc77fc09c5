package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/dreamscape/internal/numeric"
)

// Color is a 24-bit RGB color stored as 0xRRGGBB.
type Color uint32

// RGB builds a Color from its channels.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Channels returns the red, green and blue components.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

func (c Color) String() string { return c.Hex() }

// MarshalText encodes the color as "#rrggbb".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes "#rrggbb" (the leading '#' is optional).
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// HSL converts hue (degrees), saturation and lightness (percent) to RGB.
//
// The hue is normalized into [0, 360) and saturation and lightness are
// clamped to [0, 100] before conversion.
func HSL(h, s, l float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	sn := numeric.Clamp(s, 0, 100) / 100
	ln := numeric.Clamp(l, 0, 100) / 100

	c := (1 - math.Abs(2*ln-1)) * sn
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := ln - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return RGB(channel((r+m)*255), channel((g+m)*255), channel((b+m)*255))
}

// Blend mixes a toward b by ratio (0 = a, 1 = b), per channel.
func Blend(a, b Color, ratio float64) Color {
	ar, ag, ab := a.Channels()
	br, bg, bb := b.Channels()
	mix := func(x, y uint8) uint8 {
		return channel(numeric.Lerp(float64(x), float64(y), ratio))
	}
	return RGB(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// WithOpacity returns c as "#rrggbbaa" with alpha round(opacity*255).
func WithOpacity(c Color, opacity float64) string {
	alpha := channel(opacity * 255)
	return fmt.Sprintf("%s%02x", c.Hex(), alpha)
}

// channel rounds v half-up and clamps it to a byte.
func channel(v float64) uint8 {
	return uint8(numeric.Clamp(numeric.Round(v), 0, 255))
}
