package gallery

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// SourceType names what a piece was generated from.
type SourceType uint8

const (
	SourceWallet SourceType = iota
	SourceBlock
	SourceToken
	SourceTransaction
	SourceCustom

	numSourceTypes
)

var sourceTypeNames = [...]string{
	SourceWallet:      "wallet",
	SourceBlock:       "block",
	SourceToken:       "token",
	SourceTransaction: "transaction",
	SourceCustom:      "custom",
}

var (
	_ [len(sourceTypeNames) - int(numSourceTypes)]struct{}
	_ [int(numSourceTypes) - len(sourceTypeNames)]struct{}
)

// SourceTypeNames returns every source type name in declaration order.
func SourceTypeNames() []string {
	return append([]string(nil), sourceTypeNames[:]...)
}

func (s SourceType) String() string { return sourceTypeNames[s] }

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool { return s < numSourceTypes }

// MarshalText implements encoding.TextMarshaler.
func (s SourceType) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid source type %d", s)
	}
	return []byte(sourceTypeNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SourceType) UnmarshalText(text []byte) error {
	v, err := ParseSourceType(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSourceType returns the source type with the given name.
func ParseSourceType(name string) (SourceType, error) {
	for i, n := range sourceTypeNames {
		if n == name {
			return SourceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown source type %q", name)
}

// Metadata records how a piece was produced.
type Metadata struct {
	GenerationTimeMS       int64  `json:"generation_time_ms"`
	SourceBlockCount       int    `json:"source_block_count"`
	SourceTransactionCount int    `json:"source_transaction_count"`
	AlgorithmVersion       string `json:"algorithm_version"`
	Seed                   string `json:"seed"`
}

// Piece is a persisted artwork.
type Piece struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	SourceType  SourceType             `json:"source_type"`
	SourceData  ledger.Source          `json:"source_data"`
	Parameters  scene.VisualParameters `json:"parameters"`
	SVGURL      string                 `json:"svg_url"`
	PNGURL      string                 `json:"png_url"`
	Metadata    Metadata               `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Listing is the summary of a piece returned by List.
type Listing struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	SourceType SourceType   `json:"source_type"`
	Style      shapes.Style `json:"style"`
	SVGURL     string       `json:"svg_url"`
	PNGURL     string       `json:"png_url"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Listing returns the summary of p.
func (p *Piece) Listing() Listing {
	return Listing{
		ID:         p.ID,
		Title:      p.Title,
		SourceType: p.SourceType,
		Style:      p.Parameters.Style,
		SVGURL:     p.SVGURL,
		PNGURL:     p.PNGURL,
		CreatedAt:  p.CreatedAt,
	}
}

// NewID returns a random piece ID.
func NewID() string { return uuid.NewString() }
