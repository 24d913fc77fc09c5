package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dreamscape/pkg/gallery"
	"github.com/matzehuels/dreamscape/pkg/palette"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Piece Display
// =============================================================================

// statsLine joins source counts and the cache status into one dim line.
func statsLine(blocks, txs int, cached bool) string {
	var parts []string
	if blocks > 0 {
		parts = append(parts, fmt.Sprintf("%d blocks", blocks))
	}
	if txs > 0 {
		parts = append(parts, fmt.Sprintf("%d transactions", txs))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	if len(parts) > 0 {
		line += StyleDim.Render(" · ")
	}
	return line + statusStyle.Render(status)
}

// printPiece prints the stored fields of p.
func printPiece(p *gallery.Piece) {
	fmt.Println(StyleTitle.Render(p.Title))
	if p.Description != "" {
		fmt.Println(StyleDim.Render(p.Description))
	}
	fmt.Println()
	printKeyValue("ID", p.ID)
	printKeyValue("Source", p.SourceType.String())
	printKeyValue("Style", p.Parameters.Style.String())
	printKeyValue("Size", fmt.Sprintf("%d×%d", p.Parameters.Resolution.Width, p.Parameters.Resolution.Height))
	printKeyValue("Seed", p.Metadata.Seed)
	printKeyValue("Blocks", fmt.Sprint(p.Metadata.SourceBlockCount))
	printKeyValue("Txs", fmt.Sprint(p.Metadata.SourceTransactionCount))
	printKeyValue("Created", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue("SVG", StyleLink.Render(p.SVGURL))
	if p.PNGURL != "" {
		printKeyValue("PNG", StyleLink.Render(p.PNGURL))
	}
}

// =============================================================================
// Swatches
// =============================================================================

// swatch renders a block of terminal cells filled with col, followed by its
// label and hex value.
func swatch(label string, col palette.Color) string {
	block := lipgloss.NewStyle().Background(lipgloss.Color(col.Hex())).Render("      ")
	return block + " " + styleKey.Render(label) + " " + StyleValue.Render(col.Hex())
}

// gradientBar renders the stops of a gradient as adjacent colored cells.
func gradientBar(stops []palette.Stop) string {
	var b strings.Builder
	for _, s := range stops {
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(s.Color.Hex())).Render("   "))
	}
	return b.String()
}

// formatPalette renders every palette color and gradient, one per line.
func formatPalette(p palette.Palette) string {
	lines := []string{
		swatch("primary", p.Primary),
		swatch("secondary", p.Secondary),
		swatch("accent", p.Accent),
		swatch("background", p.Background),
	}
	for i, g := range p.Gradients {
		lines = append(lines, gradientBar(g)+" "+StyleDim.Render(fmt.Sprintf("gradient %d", i)))
	}
	return strings.Join(lines, "\n")
}
