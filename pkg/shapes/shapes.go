package shapes

import (
	"math"

	"github.com/matzehuels/dreamscape/internal/numeric"
)

// MinCount is the lowest instance count a configuration can have.
const MinCount = 3

// Config describes how many instances of one shape type to draw and how
// their size and opacity vary.
type Config struct {
	Type          Type    `json:"type"`
	Count         int     `json:"count"`
	MinSize       float64 `json:"min_size"`
	MaxSize       float64 `json:"max_size"`
	Opacity       float64 `json:"opacity"`
	RotationRange float64 `json:"rotation_range"`
}

// Preset is the per-style table entry Configure expands.
type Preset struct {
	Types        []Type
	BaseCount    int
	SizeRange    [2]float64
	OpacityRange [2]float64
}

var presets = [...]Preset{
	Geometric: {
		Types:        []Type{Triangle, Square, Hexagon},
		BaseCount:    30,
		SizeRange:    [2]float64{20, 120},
		OpacityRange: [2]float64{0.3, 0.9},
	},
	Organic: {
		Types:        []Type{Circle, Arc, Dot},
		BaseCount:    50,
		SizeRange:    [2]float64{10, 80},
		OpacityRange: [2]float64{0.2, 0.7},
	},
	Network: {
		Types:        []Type{Dot, Line, Circle},
		BaseCount:    80,
		SizeRange:    [2]float64{3, 30},
		OpacityRange: [2]float64{0.3, 0.8},
	},
	Fractal: {
		Types:        []Type{Triangle, Circle, Hexagon},
		BaseCount:    60,
		SizeRange:    [2]float64{5, 100},
		OpacityRange: [2]float64{0.1, 0.6},
	},
	Wave: {
		Types:        []Type{Arc, Line, Circle},
		BaseCount:    40,
		SizeRange:    [2]float64{15, 150},
		OpacityRange: [2]float64{0.2, 0.8},
	},
}

var (
	_ [len(presets) - int(numStyles)]struct{}
	_ [int(numStyles) - len(presets)]struct{}
)

// PresetFor returns the preset of style s. It panics for an invalid style.
func PresetFor(s Style) Preset {
	p := presets[s]
	p.Types = append([]Type(nil), p.Types...)
	return p
}

// Configure returns one Config per shape type of the style's preset.
// density is expected in [0, 1].
func Configure(s Style, density float64) []Config {
	p := presets[s]
	n := float64(len(p.Types))
	opacity := numeric.Lerp(p.OpacityRange[0], p.OpacityRange[1], density)

	configs := make([]Config, 0, len(p.Types))
	for _, t := range p.Types {
		count := int(math.Max(MinCount, numeric.Round(float64(p.BaseCount)*density/n)))
		rotation := 360.0
		if t.RotationInvariant() {
			rotation = 0
		}
		configs = append(configs, Config{
			Type:          t,
			Count:         count,
			MinSize:       p.SizeRange[0],
			MaxSize:       p.SizeRange[1],
			Opacity:       opacity,
			RotationRange: rotation,
		})
	}
	return configs
}
