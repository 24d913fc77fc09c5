package scene

import (
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/dreamscape/pkg/composition"
	"github.com/matzehuels/dreamscape/pkg/palette"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// AlgorithmVersion identifies the generation rules recorded with every piece.
const AlgorithmVersion = "1.0.0"

const (
	shapeDensityScale       = 500
	compositionDensityScale = 100

	// DefaultSymmetry is used when there are no transactions.
	DefaultSymmetry = 0.5
)

var styleLayouts = [...]composition.Type{
	shapes.Geometric: composition.Grid,
	shapes.Organic:   composition.Flow,
	shapes.Network:   composition.Scatter,
	shapes.Fractal:   composition.Spiral,
	shapes.Wave:      composition.Layered,
}

var (
	_ [len(styleLayouts) - shapes.StyleCount]struct{}
	_ [shapes.StyleCount - len(styleLayouts)]struct{}
)

// LayoutFor returns the layout type a style uses. It panics for an invalid
// style.
func LayoutFor(s shapes.Style) composition.Type {
	return styleLayouts[s]
}

// Composer derives artwork descriptors. The zero value uses the system
// clock for the seed fallback.
type Composer struct {
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Compose builds the descriptor with the system clock.
func Compose(blocks []Block, txs []Transaction, style shapes.Style, width, height int) VisualParameters {
	return Composer{}.Compose(blocks, txs, style, width, height)
}

// Compose builds the descriptor for the given ledger data and request.
func (c Composer) Compose(blocks []Block, txs []Transaction, style shapes.Style, width, height int) VisualParameters {
	seed := c.DeriveSeed(blocks, txs)

	hash := seed.Value
	if len(blocks) > 0 {
		hash = blocks[0].Blockhash
	}

	layout := composition.New(
		LayoutFor(style),
		CompositionDensity(blocks, txs),
		Symmetry(txs),
		width, height,
	)

	return VisualParameters{
		Palette:          palette.FromHash(hash),
		Shapes:           shapes.Configure(style, ShapeDensity(blocks, txs)),
		Composition:      layout,
		Style:            style,
		Resolution:       Resolution{Width: width, Height: height},
		NonDeterministic: seed.Fallback,
	}
}

// DeriveSeed returns the first block hash, else the first transaction
// signature, else the current Unix time in milliseconds as lower-case hex.
func (c Composer) DeriveSeed(blocks []Block, txs []Transaction) Seed {
	if len(blocks) > 0 {
		return Seed{Value: blocks[0].Blockhash}
	}
	if len(txs) > 0 {
		return Seed{Value: txs[0].Signature}
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return Seed{Value: strconv.FormatInt(now().UnixMilli(), 16), Fallback: true}
}

// DeriveSeed is Composer.DeriveSeed with the system clock.
func DeriveSeed(blocks []Block, txs []Transaction) Seed {
	return Composer{}.DeriveSeed(blocks, txs)
}

// TotalTransactions sums per-block transaction counts and the length of the
// transaction list.
func TotalTransactions(blocks []Block, txs []Transaction) int {
	total := len(txs)
	for _, b := range blocks {
		total += b.TransactionCount
	}
	return total
}

// ShapeDensity scales shape counts: min(1, total transactions / 500).
func ShapeDensity(blocks []Block, txs []Transaction) float64 {
	return math.Min(1, float64(TotalTransactions(blocks, txs))/shapeDensityScale)
}

// CompositionDensity is min(1, (blocks + transactions) / 100).
func CompositionDensity(blocks []Block, txs []Transaction) float64 {
	return math.Min(1, float64(len(blocks)+len(txs))/compositionDensityScale)
}

// Symmetry is the share of successful transactions, or DefaultSymmetry
// without transactions.
func Symmetry(txs []Transaction) float64 {
	if len(txs) == 0 {
		return DefaultSymmetry
	}
	ok := 0
	for _, tx := range txs {
		if tx.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(txs))
}
