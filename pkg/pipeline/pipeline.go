// Package pipeline turns ledger data into persisted artwork.
//
// A generation runs four stages:
//
//  1. Read: fetch blocks and wallet transactions from the ledger
//  2. Compose: derive the artwork descriptor (palette, shapes, layout)
//  3. Render: produce SVG and PNG, each through the render cache
//  4. Save: write the artifacts and store the piece in the gallery
//
// CLI and API both drive a [Runner], so defaults and validation live here.
//
// # Usage
//
//	runner := pipeline.NewRunner(reader, store, artifacts, c, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.BlockRequest(slot, 5, shapes.Geometric, 0, 0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Piece.SVGURL)
//
// [Runner.Compose] runs the compose and render stages on data already in
// hand, for example a snapshot file, without touching the ledger or the
// gallery.
package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/matzehuels/dreamscape/pkg/artifact"
	derrors "github.com/matzehuels/dreamscape/pkg/errors"
	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/ledger"
	"github.com/matzehuels/dreamscape/pkg/scene"
	"github.com/matzehuels/dreamscape/pkg/shapes"
)

// =============================================================================
// Default Values - shared by CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1920

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 1080

	// DefaultBlockRange is the number of blocks read for a block request.
	DefaultBlockRange = 5

	// DefaultTitle names pieces created without a title.
	DefaultTitle = "Untitled"

	// MaxTitleLength and MaxDescriptionLength bound piece text, in characters.
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// DefaultStyle is the style of block and custom requests.
const DefaultStyle = shapes.Geometric

// DefaultWalletStyle is the style of wallet requests.
const DefaultWalletStyle = shapes.Network

// Output formats.
const (
	FormatSVG  = artifact.FormatSVG
	FormatPNG  = artifact.FormatPNG
	FormatPDF  = artifact.FormatPDF
	FormatJSON = artifact.FormatJSON
)

// ValidFormats is the set of formats Compose can produce.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Request describes one generation.
type Request struct {
	Title       string
	Description string
	SourceType  gallery.SourceType
	Source      ledger.Source
	Style       shapes.Style
	Width       int
	Height      int
}

// BlockRequest reads n blocks starting at slot. Zero n, width or height take
// the defaults.
func BlockRequest(slot uint64, n int, style shapes.Style, width, height int) Request {
	if n <= 0 {
		n = DefaultBlockRange
	}
	end := slot + uint64(n) - 1
	title := fmt.Sprintf("Block #%d", slot)
	if n > 1 {
		title = fmt.Sprintf("Block #%d-%d", slot, end)
	}
	return Request{
		Title:       title,
		Description: fmt.Sprintf("Generated from Solana blocks %d to %d", slot, end),
		SourceType:  gallery.SourceBlock,
		Source:      ledger.Source{BlockRange: &ledger.BlockRange{Start: slot, End: end}},
		Style:       style,
		Width:       width,
		Height:      height,
	}
}

// WalletRequest reads the recent transactions of address.
func WalletRequest(address string, style shapes.Style, width, height int) Request {
	short := address
	if len(short) > 8 {
		short = short[:8]
	}
	return Request{
		Title:       fmt.Sprintf("Wallet: %s...", short),
		Description: "Generated from on-chain activity of " + address,
		SourceType:  gallery.SourceWallet,
		Source:      ledger.Source{Wallet: address},
		Style:       style,
		Width:       width,
		Height:      height,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and checks the rest.
func (r *Request) ValidateAndSetDefaults() error {
	if r.Title == "" {
		r.Title = DefaultTitle
	}
	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	return r.Validate()
}

// Validate checks the request without changing it.
func (r *Request) Validate() error {
	if n := utf8.RuneCountInString(r.Title); n == 0 || n > MaxTitleLength {
		return derrors.New(derrors.ErrCodeInvalidInput, "title must be 1 to %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(r.Description) > MaxDescriptionLength {
		return derrors.New(derrors.ErrCodeInvalidInput, "description must be at most %d characters", MaxDescriptionLength)
	}
	if !r.SourceType.Valid() {
		return derrors.New(derrors.ErrCodeInvalidInput, "invalid source type %d", r.SourceType)
	}
	if !r.Style.Valid() {
		return derrors.New(derrors.ErrCodeInvalidStyle, "invalid style %d", r.Style)
	}
	if err := derrors.ValidateDimension("width", r.Width); err != nil {
		return err
	}
	if err := derrors.ValidateDimension("height", r.Height); err != nil {
		return err
	}
	return ValidateSource(r.Source)
}

// ValidateSource checks the addresses and block range of src.
func ValidateSource(src ledger.Source) error {
	if src.Wallet != "" {
		if err := derrors.ValidateSolanaAddress(src.Wallet); err != nil {
			return err
		}
	}
	if src.TokenMint != "" {
		if err := derrors.ValidateSolanaAddress(src.TokenMint); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidAddress, err, "invalid token mint")
		}
	}
	if br := src.BlockRange; br != nil {
		if br.End < br.Start {
			return derrors.New(derrors.ErrCodeInvalidInput, "block end %d is before start %d", br.End, br.Start)
		}
		if br.End-br.Start >= derrors.MaxBlockRange {
			return derrors.New(derrors.ErrCodeInvalidInput, "block range must span at most %d blocks", derrors.MaxBlockRange)
		}
	}
	return nil
}

// ComposeOptions controls an offline composition.
type ComposeOptions struct {
	Style   shapes.Style
	Width   int
	Height  int
	Title   string   // embedded as the SVG <title>
	Formats []string // default: svg
}

// ValidateAndSetDefaults fills zero fields with defaults and checks the rest.
func (o *ComposeOptions) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if !o.Style.Valid() {
		return derrors.New(derrors.ErrCodeInvalidStyle, "invalid style %d", o.Style)
	}
	if err := derrors.ValidateDimension("width", o.Width); err != nil {
		return err
	}
	if err := derrors.ValidateDimension("height", o.Height); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ValidateFormat checks that format is one of ValidFormats. Names are
// case-sensitive.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return derrors.New(derrors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}

// ValidateFormats checks every format. An empty list is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result is the outcome of a generation.
type Result struct {
	Piece      *gallery.Piece         // nil for Compose
	Parameters scene.VisualParameters
	Metadata   gallery.Metadata
	Artifacts  map[string][]byte
	CacheHits  map[string]bool
}

func newMetadata(data ledger.Data, p scene.VisualParameters, elapsedMS int64) gallery.Metadata {
	return gallery.Metadata{
		GenerationTimeMS:       elapsedMS,
		SourceBlockCount:       len(data.Blocks),
		SourceTransactionCount: len(data.Transactions),
		AlgorithmVersion:       scene.AlgorithmVersion,
		Seed:                   p.Palette.SourceHash,
	}
}
