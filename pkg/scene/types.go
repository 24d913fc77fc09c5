package scene

import (
	"github.com/matzehuels/dreamscape/pkg/composition"
	"github.com/matzehuels/dreamscape/pkg/palette"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// Block is the block summary read from the ledger.
type Block struct {
	Slot             uint64 `json:"slot"`
	Blockhash        string `json:"blockhash"`
	ParentSlot       uint64 `json:"parent_slot"`
	TransactionCount int    `json:"transaction_count"`
	Timestamp        *int64 `json:"timestamp"` // Unix seconds, nil when unknown
}

// Transaction is the transaction summary read from the ledger.
type Transaction struct {
	Signature string   `json:"signature"`
	Slot      uint64   `json:"slot"`
	Fee       uint64   `json:"fee"`
	Accounts  []string `json:"accounts"`
	Success   bool     `json:"success"`
}

// Resolution is the canvas size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// VisualParameters is the complete, immutable artwork descriptor.
type VisualParameters struct {
	Palette     palette.Palette    `json:"palette"`
	Shapes      []shapes.Config    `json:"shapes"`
	Composition composition.Layout `json:"composition"`
	Style       shapes.Style       `json:"style"`
	Resolution  Resolution         `json:"resolution"`

	// NonDeterministic is set when the seed came from the wall clock.
	NonDeterministic bool `json:"non_deterministic,omitempty"`
}

// Seed is the token that drives palette generation.
type Seed struct {
	Value string `json:"value"`

	// Fallback is true when neither blocks nor transactions were available
	// and Value was derived from the current time.
	Fallback bool `json:"fallback,omitempty"`
}
