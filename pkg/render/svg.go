package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/dreamscape/internal/numeric"
	"github.com/matzehuels/dreamscape/pkg/composition"
	"github.com/matzehuels/dreamscape/pkg/palette"
	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

const (
	overlayOpacity = 0.3
	blendRatio     = 0.3
	strokeWidth    = 2
)

// SVGOption configures SVG emission.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title string
}

// WithTitle adds a <title> element to the document.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// SVG emits the vector document for p.
func SVG(p scene.VisualParameters, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	w, h := p.Resolution.Width, p.Resolution.Height

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	if r.title != "" {
		buf.WriteString("<title>")
		xml.EscapeText(&buf, []byte(r.title))
		buf.WriteString("</title>\n")
	}

	renderDefs(&buf, p.Palette.Gradients)

	fmt.Fprintf(&buf, `<rect id="background" width="%d" height="%d" fill="%s"/>`+"\n", w, h, p.Palette.Background)
	if len(p.Palette.Gradients) > 0 {
		fmt.Fprintf(&buf, `<rect id="overlay" width="%d" height="%d" fill="url(#gradient-0)" opacity="%s"/>`+"\n",
			w, h, ratio(overlayOpacity))
	}

	for _, cfg := range p.Shapes {
		renderShapes(&buf, p, cfg)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, gradients [][]palette.Stop) {
	buf.WriteString("<defs>\n")
	for i, stops := range gradients {
		fmt.Fprintf(buf, `<linearGradient id="gradient-%d" x1="0%%" y1="0%%" x2="100%%" y2="100%%">`+"\n", i)
		for _, s := range stops {
			fmt.Fprintf(buf, `<stop offset="%s%%" stop-color="%s"/>`+"\n", num(s.Offset*100), s.Color)
		}
		buf.WriteString("</linearGradient>\n")
	}
	buf.WriteString("</defs>\n")
}

// instance is one resolved shape occurrence.
type instance struct {
	X, Y     float64
	Size     float64
	Rotation float64
	Color    palette.Color
	Opacity  float64
}

func renderShapes(buf *bytes.Buffer, p scene.VisualParameters, cfg shapes.Config) {
	draw := shapeMarkup[cfg.Type]

	positions := composition.Positions(p.Composition, cfg.Count, p.Resolution.Width, p.Resolution.Height)
	colors := p.Palette.Colors()
	n := float64(len(positions))

	for i, pos := range positions {
		if !finite(pos.X) || !finite(pos.Y) {
			continue
		}
		t := float64(i) / n

		var rotation float64
		if cfg.RotationRange > 0 {
			rotation = math.Mod(t*cfg.RotationRange, 360)
		}

		in := instance{
			X:        pos.X,
			Y:        pos.Y,
			Size:     numeric.Lerp(cfg.MinSize, cfg.MaxSize, t),
			Rotation: rotation,
			Color:    palette.Blend(colors[i%len(colors)], p.Palette.Secondary, blendRatio*t),
			Opacity:  cfg.Opacity * (0.5 + 0.5*t),
		}
		if !finite(in.Size) || !finite(in.Opacity) {
			continue
		}
		draw(buf, in)
		buf.WriteByte('\n')
	}
}

var shapeMarkup = [...]func(*bytes.Buffer, instance){
	shapes.Circle:   circle,
	shapes.Triangle: triangle,
	shapes.Square:   square,
	shapes.Hexagon:  hexagon,
	shapes.Line:     line,
	shapes.Arc:      arc,
	shapes.Dot:      dot,
}

var (
	_ [len(shapeMarkup) - shapes.TypeCount]struct{}
	_ [shapes.TypeCount - len(shapeMarkup)]struct{}
)

func circle(buf *bytes.Buffer, in instance) {
	fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="%s"%s/>`,
		num(in.X), num(in.Y), num(in.Size/2), in.Color, ratio(in.Opacity), rotate(in))
}

func dot(buf *bytes.Buffer, in instance) {
	fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s" fill="%s" opacity="%s"/>`,
		num(in.X), num(in.Y), num(math.Max(1, in.Size/6)), in.Color, ratio(in.Opacity))
}

func square(buf *bytes.Buffer, in instance) {
	half := in.Size / 2
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" opacity="%s"%s/>`,
		num(in.X-half), num(in.Y-half), num(in.Size), num(in.Size), in.Color, ratio(in.Opacity), rotate(in))
}

func triangle(buf *bytes.Buffer, in instance) {
	h := in.Size * 0.866
	half := in.Size / 2
	fmt.Fprintf(buf, `<polygon points="%s,%s %s,%s %s,%s" fill="%s" opacity="%s"%s/>`,
		num(in.X), num(in.Y-h/2),
		num(in.X-half), num(in.Y+h/2),
		num(in.X+half), num(in.Y+h/2),
		in.Color, ratio(in.Opacity), rotate(in))
}

func hexagon(buf *bytes.Buffer, in instance) {
	r := in.Size / 2
	buf.WriteString(`<polygon points="`)
	for i := range 6 {
		if i > 0 {
			buf.WriteByte(' ')
		}
		angle := math.Pi/3*float64(i) - math.Pi/6
		buf.WriteString(num(in.X + r*math.Cos(angle)))
		buf.WriteByte(',')
		buf.WriteString(num(in.Y + r*math.Sin(angle)))
	}
	fmt.Fprintf(buf, `" fill="%s" opacity="%s"%s/>`, in.Color, ratio(in.Opacity), rotate(in))
}

func line(buf *bytes.Buffer, in instance) {
	half := in.Size / 2
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d" opacity="%s"%s/>`,
		num(in.X-half), num(in.Y), num(in.X+half), num(in.Y), in.Color, strokeWidth, ratio(in.Opacity), rotate(in))
}

func arc(buf *bytes.Buffer, in instance) {
	r := num(in.Size / 2)
	fmt.Fprintf(buf, `<path d="M %s %s A %s %s 0 0 1 %s %s" fill="none" stroke="%s" stroke-width="%d" opacity="%s"%s/>`,
		num(in.X-in.Size/2), num(in.Y), r, r, num(in.X+in.Size/2), num(in.Y),
		in.Color, strokeWidth, ratio(in.Opacity), rotate(in))
}

// rotate returns the transform attribute turning the instance about its own
// centre, or "" when there is no rotation.
func rotate(in instance) string {
	deg := round(in.Rotation, 100)
	if deg == 0 {
		return ""
	}
	return fmt.Sprintf(` transform="rotate(%s %s %s)"`, format(deg), num(in.X), num(in.Y))
}

// num formats a coordinate with at most two decimals.
func num(v float64) string { return format(round(v, 100)) }

// ratio formats an opacity with at most three decimals.
func ratio(v float64) string { return format(round(v, 1000)) }

func round(v, scale float64) float64 {
	r := numeric.Round(v*scale) / scale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func format(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
