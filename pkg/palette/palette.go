package palette

const (
	// ByteCount is the number of bytes extracted from a hash.
	ByteCount = 32

	// PadByte fills byte slots the hash does not provide.
	PadByte = 128
)

// Stop is one color stop of a linear gradient. Offset is in [0, 1].
type Stop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// Palette is the color scheme of one artwork. It is never mutated after
// [FromHash] returns it.
type Palette struct {
	Primary    Color    `json:"primary"`
	Secondary  Color    `json:"secondary"`
	Accent     Color    `json:"accent"`
	Background Color    `json:"background"`
	Gradients  [][]Stop `json:"gradients"`
	SourceHash string   `json:"source_hash"`
}

// Colors returns the three shape colors in the order shapes cycle through them.
func (p Palette) Colors() []Color {
	return []Color{p.Primary, p.Secondary, p.Accent}
}

// FromHash derives a palette from hash. It accepts any string.
func FromHash(hash string) Palette {
	b := HashBytes(hash)

	hue := float64(b[0]) / 255 * 360
	sat := 40 + float64(b[1])/255*40
	light := 30 + float64(b[2])/255*30

	return Palette{
		Primary:    HSL(hue, sat, light),
		Secondary:  HSL(wrapHue(hue+120), sat*0.8, light+10),
		Accent:     HSL(wrapHue(hue+240), sat+10, light-5),
		Background: HSL(hue, sat*0.15, 8),
		Gradients:  gradients(hue, sat, light, b),
		SourceHash: hash,
	}
}

// HashBytes reads the hexadecimal digits of hash in pairs into a fixed
// 32-byte array. Non-hex characters are ignored, a trailing odd digit is
// dropped and unused slots hold [PadByte].
func HashBytes(hash string) [ByteCount]byte {
	var out [ByteCount]byte
	n := 0

	var hi byte
	half := false
	for i := 0; i < len(hash) && n < ByteCount; i++ {
		v, ok := hexValue(hash[i])
		if !ok {
			continue
		}
		if !half {
			hi, half = v, true
			continue
		}
		out[n] = hi<<4 | v
		n++
		half = false
	}
	for ; n < ByteCount; n++ {
		out[n] = PadByte
	}
	return out
}

func gradients(hue, sat, light float64, b [ByteCount]byte) [][]Stop {
	count := 2 + int(b[3])%3
	out := make([][]Stop, 0, count)

	for i := range count {
		off := 4 + 2*i
		hueShift := float64(b[off])/255*60 - 30
		lightShift := float64(b[off+1])/255*20 - 10
		base := hue + hueShift

		out = append(out, []Stop{
			{Offset: 0, Color: HSL(base, sat, light+lightShift)},
			{Offset: 0.5, Color: HSL(base+30, sat*0.9, light)},
			{Offset: 1, Color: HSL(base+60, sat*0.7, light-10)},
		})
	}
	return out
}

// wrapHue maps h into [0, 360).
func wrapHue(h float64) float64 {
	for h >= 360 {
		h -= 360
	}
	for h < 0 {
		h += 360
	}
	return h
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
