package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/galvo/pkg/ilda"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listValueStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// previewPoints is the number of points listed for the selected frame.
const previewPoints = 8

// =============================================================================
// FrameBrowserModel - Interactive frame browsing
// =============================================================================

// FrameBrowserModel is the bubbletea model for browsing decoded frames.
type FrameBrowserModel struct {
	Name    string
	Frames  []*ilda.Frame
	Cursor  int
	Height  int
	Offset  int
	Details bool
}

// newFrameBrowser creates a browser over frames decoded from name.
func newFrameBrowser(name string, frames []*ilda.Frame) FrameBrowserModel {
	return FrameBrowserModel{
		Name:   name,
		Frames: frames,
		Height: 15,
	}
}

func (m FrameBrowserModel) Init() tea.Cmd {
	return nil
}

func (m FrameBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Frames)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if len(m.Frames) > 0 {
				m.Cursor = len(m.Frames) - 1
				m.Offset = max(0, m.Cursor-m.Height+1)
			}
		case "enter", " ":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m FrameBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Frames) == 0 {
		b.WriteString(listDimStyle.Render("  no frames"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(frameTable(m.Frames, m.Offset, m.Height, m.Cursor))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Frames))))
	b.WriteString("\n")

	if m.Details {
		b.WriteString("\n")
		b.WriteString(frameDetails(m.Frames[m.Cursor]))
	}

	return b.String()
}

// frameDetails lists the first points of f.
func frameDetails(f *ilda.Frame) string {
	var b strings.Builder
	on := f.CountOn()
	fmt.Fprintf(&b, "  %s %s\n",
		StyleHighlight.Render(fmt.Sprintf("frame %d", f.Header.Index)),
		listDimStyle.Render(fmt.Sprintf("%d on · %d blanked", on, len(f.Points)-on)))

	n := min(previewPoints, len(f.Points))
	for _, p := range f.Points[:n] {
		state := "off"
		if p.On() {
			state = "on"
		}
		line := fmt.Sprintf("  %6d %6d  %s", p.X, p.Y, state)
		if p.Last() {
			line += " last"
		}
		b.WriteString(listValueStyle.Render(line))
		b.WriteString("\n")
	}
	if rest := len(f.Points) - n; rest > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  … %d more", rest)))
		b.WriteString("\n")
	}
	return b.String()
}
