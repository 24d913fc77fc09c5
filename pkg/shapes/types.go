package shapes

import "fmt"

// Type is one member of the closed shape vocabulary.
type Type uint8

const (
	Circle Type = iota
	Triangle
	Square
	Hexagon
	Line
	Arc
	Dot

	numTypes
)

// TypeCount is the size of the shape vocabulary.
const TypeCount = int(numTypes)

var typeNames = [...]string{
	Circle:   "circle",
	Triangle: "triangle",
	Square:   "square",
	Hexagon:  "hexagon",
	Line:     "line",
	Arc:      "arc",
	Dot:      "dot",
}

var (
	_ [len(typeNames) - int(numTypes)]struct{}
	_ [int(numTypes) - len(typeNames)]struct{}
)

// Types returns every shape type in declaration order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// String returns the lower-case name. It panics for values outside the
// vocabulary.
func (t Type) String() string { return typeNames[t] }

// Valid reports whether t is a member of the vocabulary.
func (t Type) Valid() bool { return t < numTypes }

// RotationInvariant reports whether rotating the shape about its center
// leaves it unchanged.
func (t Type) RotationInvariant() bool { return t == Circle || t == Dot }

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid shape type %d", t)
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

// ParseType returns the shape type with the given name.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape type %q", s)
}

// Style is one member of the closed art-style vocabulary.
type Style uint8

const (
	Geometric Style = iota
	Organic
	Network
	Fractal
	Wave

	numStyles
)

// StyleCount is the size of the style vocabulary.
const StyleCount = int(numStyles)

var styleNames = [...]string{
	Geometric: "geometric",
	Organic:   "organic",
	Network:   "network",
	Fractal:   "fractal",
	Wave:      "wave",
}

var (
	_ [len(styleNames) - int(numStyles)]struct{}
	_ [int(numStyles) - len(styleNames)]struct{}
)

// Styles returns every style in declaration order.
func Styles() []Style {
	out := make([]Style, numStyles)
	for i := range out {
		out[i] = Style(i)
	}
	return out
}

// StyleNames returns the names of all styles, for help text and validation
// messages.
func StyleNames() []string {
	return append([]string(nil), styleNames[:]...)
}

func (s Style) String() string { return styleNames[s] }

// Valid reports whether s is a member of the vocabulary.
func (s Style) Valid() bool { return s < numStyles }

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid style %d", s)
	}
	return []byte(styleNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(text []byte) error {
	v, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStyle returns the style with the given name.
func ParseStyle(s string) (Style, error) {
	for i, name := range styleNames {
		if name == s {
			return Style(i), nil
		}
	}
	return 0, fmt.Errorf("unknown style %q", s)
}
