package fstree

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

const (
	markerCollapsed = "▸ "
	markerExpanded  = "▾ "
	markerFile      = "  "
	indentUnit      = "  "
	ellipsis        = "…"
)

// Styles are the row styles for the tree. The zero value renders plain text.
type Styles struct {
	Dir      lipgloss.Style
	File     lipgloss.Style
	Selected lipgloss.Style
	// Blurred styles the selected row while the tree does not have focus.
	Blurred lipgloss.Style
	Empty   lipgloss.Style
	NoColor bool
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		Dir:      lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		File:     lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("24")),
		Blurred:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238")),
		Empty:    lipgloss.NewStyle().Faint(true),
	}
}

// View renders the visible window of rows, one line per entry, each truncated
// to the model width.
func (m *Model) View() string {
	if len(m.rows) == 0 {
		msg := "(empty)"
		if m.rootErr != nil {
			msg = "(unreadable)"
		}
		return m.style(m.styles.Empty, msg)
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(i int) string {
	n := m.rows[i]
	marker := markerFile
	if n.entry.IsDir() {
		marker = markerCollapsed
		if n.expanded {
			marker = markerExpanded
		}
	}
	name := n.entry.Name
	if n.entry.IsDir() {
		name += "/"
	}
	line := strings.Repeat(indentUnit, n.depth) + marker + name
	if m.width > 0 {
		line = runewidth.Truncate(line, m.width, ellipsis)
	}

	if i == m.cursor {
		if m.width > 0 {
			line = runewidth.FillRight(line, m.width)
		}
		if m.focused {
			return m.style(m.styles.Selected, line)
		}
		return m.style(m.styles.Blurred, line)
	}
	if n.entry.IsDir() {
		return m.style(m.styles.Dir, line)
	}
	return m.style(m.styles.File, line)
}

func (m *Model) style(s lipgloss.Style, text string) string {
	if m.styles.NoColor {
		return text
	}
	return s.Render(text)
}
