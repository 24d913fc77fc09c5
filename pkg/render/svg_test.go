package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

type svgStats struct {
	elements    map[string]int
	ids         map[string]int
	transforms  []xml.StartElement
	gradientIDs []string
}

func parseSVG(t *testing.T, data []byte) svgStats {
	t.Helper()
	st := svgStats{elements: map[string]int{}, ids: map[string]int{}}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, data)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		st.elements[se.Name.Local]++
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "id":
				st.ids[a.Value]++
				if se.Name.Local == "linearGradient" {
					st.gradientIDs = append(st.gradientIDs, a.Value)
				}
			case "transform":
				st.transforms = append(st.transforms, se)
			}
		}
	}
	return st
}

func testParams(style shapes.Style) scene.VisualParameters {
	ts := int64(1700000000)
	blocks := []scene.Block{
		{Slot: 250000000, Blockhash: "ff12ab9034cd56ef7812ab9034cd56ef7812ab9034cd56ef7812ab9034cd56ef", TransactionCount: 1200, Timestamp: &ts},
		{Slot: 250000001, Blockhash: "0a0b0c0d0e0f", TransactionCount: 900},
	}
	txs := []scene.Transaction{
		{Signature: "sig1", Success: true},
		{Signature: "sig2", Success: false},
	}
	return scene.Compose(blocks, txs, style, 1024, 768)
}

func TestSVGWellFormed(t *testing.T) {
	for _, style := range shapes.Styles() {
		t.Run(style.String(), func(t *testing.T) {
			p := testParams(style)
			st := parseSVG(t, SVG(p))

			if st.elements["svg"] != 1 {
				t.Errorf("svg elements = %d, want 1", st.elements["svg"])
			}
			if st.elements["linearGradient"] != len(p.Palette.Gradients) {
				t.Errorf("gradients = %d, want %d", st.elements["linearGradient"], len(p.Palette.Gradients))
			}
			for i, id := range st.gradientIDs {
				if want := "gradient-" + strconv.Itoa(i); id != want {
					t.Errorf("gradient %d id = %q, want %q", i, id, want)
				}
			}
			if st.ids["background"] != 1 {
				t.Errorf("background rectangles = %d, want 1", st.ids["background"])
			}
			if st.ids["overlay"] != 1 {
				t.Errorf("overlay rectangles = %d, want 1", st.ids["overlay"])
			}
		})
	}
}

func TestSVGShapeInstances(t *testing.T) {
	p := testParams(shapes.Geometric)
	st := parseSVG(t, SVG(p))

	want := 0
	for _, cfg := range p.Shapes {
		want += cfg.Count
	}
	// Geometric draws triangles, squares and hexagons; rect also holds the
	// background and overlay.
	got := st.elements["polygon"] + st.elements["rect"] - 2
	if got != want {
		t.Errorf("shape instances = %d, want %d", got, want)
	}
}

func TestSVGNoGradients(t *testing.T) {
	p := testParams(shapes.Organic)
	p.Palette.Gradients = nil

	st := parseSVG(t, SVG(p))
	if st.ids["overlay"] != 0 {
		t.Error("overlay should be omitted without gradients")
	}
	if st.elements["linearGradient"] != 0 {
		t.Errorf("gradients = %d, want 0", st.elements["linearGradient"])
	}
	if st.ids["background"] != 1 {
		t.Errorf("background rectangles = %d, want 1", st.ids["background"])
	}
}

func TestSVGDeterministic(t *testing.T) {
	for _, style := range shapes.Styles() {
		a := SVG(testParams(style))
		b := SVG(testParams(style))
		if !bytes.Equal(a, b) {
			t.Errorf("%s: SVG output differs between runs", style)
		}
	}
}

func TestSVGRotationAboutInstanceCentre(t *testing.T) {
	p := testParams(shapes.Fractal)
	st := parseSVG(t, SVG(p))
	if len(st.transforms) == 0 {
		t.Fatal("expected rotated instances")
	}

	for _, se := range st.transforms {
		attrs := map[string]string{}
		for _, a := range se.Attr {
			attrs[a.Name.Local] = a.Value
		}
		tr := attrs["transform"]
		if se.Name.Local != "polygon" {
			continue
		}
		var cx, cy float64
		if _, err := fmt.Sscanf(tr, "rotate(%g %g %g)", new(float64), &cx, &cy); err != nil {
			t.Fatalf("transform %q: %v", tr, err)
		}
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, pt := range strings.Fields(attrs["points"]) {
			var x, y float64
			if _, err := fmt.Sscanf(pt, "%g,%g", &x, &y); err != nil {
				t.Fatalf("point %q: %v", pt, err)
			}
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		if cx < minX || cx > maxX || cy < minY || cy > maxY {
			t.Errorf("rotation centre (%v, %v) outside its polygon %q", cx, cy, attrs["points"])
		}
		if strings.Contains(tr, "rotate(0 ") {
			t.Errorf("zero rotation emitted: %q", tr)
		}
	}
}

func TestSVGDotsNeverRotated(t *testing.T) {
	p := scene.VisualParameters{
		Palette:     testParams(shapes.Network).Palette,
		Shapes:      []shapes.Config{{Type: shapes.Dot, Count: 5, MinSize: 6, MaxSize: 30, Opacity: 1, RotationRange: 360}},
		Composition: testParams(shapes.Network).Composition,
		Style:       shapes.Network,
		Resolution:  scene.Resolution{Width: 1024, Height: 768},
	}
	st := parseSVG(t, SVG(p))
	if len(st.transforms) != 0 {
		t.Errorf("dots were rotated %d times", len(st.transforms))
	}
	if st.elements["circle"] != 5 {
		t.Errorf("circles = %d, want 5", st.elements["circle"])
	}
}

func TestSVGSkipsUnresolvableInstances(t *testing.T) {
	p := testParams(shapes.Geometric)
	p.Shapes = []shapes.Config{
		{Type: shapes.Circle, Count: 4, MinSize: math.NaN(), MaxSize: 10, Opacity: 0.5},
		{Type: shapes.Square, Count: 3, MinSize: 10, MaxSize: 20, Opacity: 0.5},
	}
	st := parseSVG(t, SVG(p))
	if st.elements["circle"] != 0 {
		t.Errorf("circles = %d, want 0", st.elements["circle"])
	}
	if got := st.elements["rect"] - 2; got != 3 {
		t.Errorf("squares = %d, want 3", got)
	}
}

func TestSVGTitleEscaped(t *testing.T) {
	out := SVG(testParams(shapes.Wave), WithTitle(`Block <1> & "2"`))
	parseSVG(t, out)
	if !bytes.Contains(out, []byte("<title>Block &lt;1&gt; &amp; &#34;2&#34;</title>")) {
		t.Errorf("title not escaped:\n%s", out[:200])
	}
}

func TestNumberFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{12.5, "12.5"},
		{12.346, "12.35"},
		{-0.001, "0"},
		{-3.14159, "-3.14"},
		{960, "960"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := ratio(0.12345); got != "0.123" {
		t.Errorf("ratio(0.12345) = %q, want 0.123", got)
	}
}
