package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/dreamscape/pkg/gallery"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GalleryListModel - Interactive piece selection
// =============================================================================

// GalleryListModel is the bubbletea model for browsing gallery listings.
type GalleryListModel struct {
	Pieces   []gallery.Listing
	Total    int
	Cursor   int
	Offset   int
	Height   int
	Selected *gallery.Listing

	now func() time.Time
}

// NewGalleryListModel creates a model over pieces; total is the gallery
// size, which may exceed len(pieces).
func NewGalleryListModel(pieces []gallery.Listing, total int) GalleryListModel {
	return GalleryListModel{
		Pieces: pieces,
		Total:  total,
		Height: 15,
		now:    time.Now,
	}
}

func (m GalleryListModel) Init() tea.Cmd {
	return nil
}

func (m GalleryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Pieces)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Pieces); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		case "enter":
			if len(m.Pieces) == 0 {
				return m, nil
			}
			piece := m.Pieces[m.Cursor]
			m.Selected = &piece
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-6)
	}
	return m, nil
}

func (m GalleryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Gallery"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show  q quit"))
	b.WriteString("\n\n")

	if len(m.Pieces) == 0 {
		b.WriteString(listDimStyle.Render("  The gallery is empty."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Pieces))
	now := time.Now
	if m.now != nil {
		now = m.now
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Pieces[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, p.Title, p.SourceType.String(), p.Style.String(), formatRelativeTime(p.CreatedAt, now())})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Title", "Source", "Style", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			}
			if m.Offset+row == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	status := fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Pieces))
	if m.Total > len(m.Pieces) {
		status += fmt.Sprintf(" of %d", m.Total)
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
