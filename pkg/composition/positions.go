package composition

import (
	"math"

	"github.com/matzehuels/dreamscape/internal/numeric"
)

// placer computes count positions for a w×h canvas.
type placer func(l Layout, count int, w, h float64) []Position

var placers = [...]placer{
	Radial:  radialPositions,
	Grid:    gridPositions,
	Flow:    flowPositions,
	Spiral:  spiralPositions,
	Scatter: scatterPositions,
	Layered: layeredPositions,
}

var (
	_ [len(placers) - int(numTypes)]struct{}
	_ [int(numTypes) - len(placers)]struct{}
)

// Positions returns exactly count positions for the layout on a
// width×height canvas, in emission order. A non-positive count yields nil.
// It panics if l.Type is not a member of the vocabulary.
func Positions(l Layout, count, width, height int) []Position {
	place := placers[l.Type]
	if count <= 0 {
		return nil
	}
	return place(l, count, float64(width), float64(height))
}

// GridSize returns the column and row count the grid layout uses.
func GridSize(count, width, height int) (cols, rows int) {
	if count <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(count) * (float64(width) / float64(height)))))
	cols = max(cols, 1)
	rows = int(math.Ceil(float64(count) / float64(cols)))
	return cols, rows
}

// ScatterHash is the deterministic pseudo-random draw of the scatter
// layout: frac(sin(v*12.9898 + v*78.233) * 43758.5453), in float64.
//
// The explicit float64 conversions force rounding after every product so
// the compiler cannot fuse them into multiply-add instructions.
func ScatterHash(v float64) float64 {
	a := float64(v * 12.9898)
	b := float64(v * 78.233)
	s := math.Sin(a + b)
	return numeric.Frac(float64(s * 43758.5453))
}

func radialPositions(l Layout, count int, w, h float64) []Position {
	out := make([]Position, 0, count)
	cx, cy := l.FocalPoint.X, l.FocalPoint.Y
	r := maxRadius(l, w, h)
	rings := int(math.Ceil(math.Sqrt(float64(count))))

	for ring := 0; ring < rings && len(out) < count; ring++ {
		radius := r * float64(ring+1) / float64(rings)
		items := min(count-len(out), max(6, ring*6))
		for i := 0; i < items; i++ {
			angle := 2 * math.Pi * float64(i) / float64(items)
			out = append(out, Position{
				X: cx + radius*math.Cos(angle),
				Y: cy + radius*math.Sin(angle),
			})
		}
	}
	return out
}

func gridPositions(l Layout, count int, w, h float64) []Position {
	out := make([]Position, 0, count)
	cols, rows := GridSize(count, int(w), int(h))
	m := float64(l.Margin)
	cellW := (w - 2*m) / float64(cols)
	cellH := (h - 2*m) / float64(rows)

	for row := 0; row < rows && len(out) < count; row++ {
		for col := 0; col < cols && len(out) < count; col++ {
			out = append(out, Position{
				X: m + float64(col)*cellW + cellW/2,
				Y: m + float64(row)*cellH + cellH/2,
			})
		}
	}
	return out
}

func flowPositions(l Layout, count int, w, h float64) []Position {
	out := make([]Position, 0, count)
	m := float64(l.Margin)
	amplitude := (h - 2*m) * 0.3
	frequency := 2 * math.Pi / w

	for i := 0; i < count; i++ {
		t := float64(i) / float64(count)
		x := m + t*(w-2*m)
		y := h/2 + amplitude*math.Sin(frequency*x*2+float64(i)*0.3)
		out = append(out, Position{X: x, Y: y})
	}
	return out
}

func spiralPositions(l Layout, count int, w, h float64) []Position {
	out := make([]Position, 0, count)
	cx, cy := l.FocalPoint.X, l.FocalPoint.Y
	r := maxRadius(l, w, h)
	rotations := 3 + float64(count)/20

	for i := 0; i < count; i++ {
		t := float64(i) / float64(count)
		angle := rotations * 2 * math.Pi * t
		radius := r * t
		out = append(out, Position{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return out
}

func scatterPositions(l Layout, count int, w, h float64) []Position {
	out := make([]Position, 0, count)
	m := float64(l.Margin)
	seed := l.Density * 1000

	for i := 0; i < count; i++ {
		hx := ScatterHash(seed + float64(i))
		hy := ScatterHash(seed + float64(i) + float64(count))
		out = append(out, Position{
			X: m + hx*(w-2*m),
			Y: m + hy*(h-2*m),
		})
	}
	return out
}

func layeredPositions(l Layout, count int, w, h float64) []Position {
	out := make([]Position, 0, count)
	m := float64(l.Margin)
	layers := max(3, int(math.Ceil(float64(count)/10)))
	band := (h - 2*m) / float64(layers)
	perLayer := int(math.Ceil(float64(count) / float64(layers)))

	for layer := 0; layer < layers && len(out) < count; layer++ {
		y := m + float64(layer)*band + band/2
		for i := 0; i < perLayer && len(out) < count; i++ {
			t := (float64(i) + 0.5) / float64(perLayer)
			out = append(out, Position{X: m + t*(w-2*m), Y: y})
		}
	}
	return out
}
