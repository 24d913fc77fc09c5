package composition

import (
	"fmt"
	"math"

	"github.com/matzehuels/dreamscape/internal/numeric"
)

// Type is one member of the closed layout vocabulary.
type Type uint8

const (
	Radial Type = iota
	Grid
	Flow
	Spiral
	Scatter
	Layered

	numTypes
)

var typeNames = [...]string{
	Radial:  "radial",
	Grid:    "grid",
	Flow:    "flow",
	Spiral:  "spiral",
	Scatter: "scatter",
	Layered: "layered",
}

var (
	_ [len(typeNames) - int(numTypes)]struct{}
	_ [int(numTypes) - len(typeNames)]struct{}
)

// Types returns every layout type in declaration order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

func (t Type) String() string { return typeNames[t] }

// Valid reports whether t is a member of the vocabulary.
func (t Type) Valid() bool { return t < numTypes }

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid layout type %d", t)
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType returns the layout type with the given name.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layout type %q", s)
}

// Position is a point on the canvas in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout holds the placement parameters of one artwork.
type Layout struct {
	Type       Type     `json:"type"`
	Density    float64  `json:"density"`
	Symmetry   float64  `json:"symmetry"`
	Margin     int      `json:"margin"`
	FocalPoint Position `json:"focal_point"`
}

// New builds the layout of type t for a width×height canvas.
func New(t Type, density, symmetry float64, width, height int) Layout {
	return Layout{
		Type:       t,
		Density:    density,
		Symmetry:   symmetry,
		Margin:     Margin(width, height),
		FocalPoint: FocalPoint(t, width, height),
	}
}

// Margin returns round(0.05 * min(width, height)).
func Margin(width, height int) int {
	return int(numeric.Round(0.05 * float64(min(width, height))))
}

var focalPoints = [...]func(w, h float64) Position{
	Radial:  center,
	Grid:    center,
	Flow:    func(w, h float64) Position { return Position{X: w * 0.3, Y: h * 0.5} },
	Spiral:  center,
	Scatter: func(w, h float64) Position { return Position{X: w * 0.5, Y: h * 0.4} },
	Layered: center,
}

var (
	_ [len(focalPoints) - int(numTypes)]struct{}
	_ [int(numTypes) - len(focalPoints)]struct{}
)

func center(w, h float64) Position { return Position{X: w / 2, Y: h / 2} }

// FocalPoint returns the reference point of layout type t.
func FocalPoint(t Type, width, height int) Position {
	return focalPoints[t](float64(width), float64(height))
}

// maxRadius is the largest ring or spiral radius that respects the margin.
func maxRadius(l Layout, w, h float64) float64 {
	return math.Min(w, h)/2 - float64(l.Margin)
}
