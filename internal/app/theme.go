package app

import (
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/nvtree/internal/config"
	"github.com/oakwood-commons/nvtree/internal/fstree"
	"github.com/oakwood-commons/nvtree/internal/panel"
)

// Theme is the resolved palette for every component.
type Theme struct {
	Tree    fstree.Styles
	Panel   panel.Styles
	Details DetailsStyles
	Status  lipgloss.Style
	Error   lipgloss.Style
	NoColor bool
}

// DetailsStyles style the details pane.
type DetailsStyles struct {
	Border        lipgloss.Style
	BorderFocused lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
}

// NewTheme builds the palette from theme colors. With noColor every style is
// plain.
func NewTheme(tc config.ThemeConfig, noColor bool) Theme {
	if noColor {
		return Theme{
			Tree:    fstree.Styles{NoColor: true},
			Panel:   panel.Styles{NoColor: true},
			NoColor: true,
		}
	}
	color := func(token string) lipgloss.Style {
		if token == "" {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(token))
	}
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	selected := color(tc.SelectedFG)
	if tc.SelectedBG != "" {
		selected = selected.Background(lipgloss.Color(tc.SelectedBG))
	}
	blurred := color(tc.SelectedFG)
	if tc.Border != "" {
		blurred = blurred.Background(lipgloss.Color(tc.Border))
	}

	return Theme{
		Tree: fstree.Styles{
			Dir:      color(tc.Directory).Bold(true),
			File:     color(tc.File),
			Selected: selected,
			Blurred:  blurred,
			Empty:    color(tc.Muted).Italic(true),
		},
		Panel: panel.Styles{
			Border:        border.BorderForeground(lipgloss.Color(tc.Border)),
			BorderFocused: border.BorderForeground(lipgloss.Color(tc.BorderFocused)),
			Title:         color(tc.Title).Bold(true),
		},
		Details: DetailsStyles{
			Border:        border.BorderForeground(lipgloss.Color(tc.Border)),
			BorderFocused: border.BorderForeground(lipgloss.Color(tc.BorderFocused)),
			Label:         color(tc.Muted),
			Value:         color(tc.File),
		},
		Status: color(tc.Muted),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
