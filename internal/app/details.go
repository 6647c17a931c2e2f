package app

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/oakwood-commons/nvtree/internal/fstree"
)

const timeLayout = "2006-01-02 15:04:05"

// Details shows the metadata of the selected entry in a scrollable pane.
type Details struct {
	vp      viewport.Model
	styles  DetailsStyles
	noColor bool
	focused bool
	width   int
	height  int
	entry   fstree.Entry
	has     bool
}

// NewDetails returns an empty pane.
func NewDetails(styles DetailsStyles, noColor bool) *Details {
	return &Details{
		vp:      viewport.New(),
		styles:  styles,
		noColor: noColor,
	}
}

// SetEntry replaces the shown entry. ok false clears the pane.
func (d *Details) SetEntry(e fstree.Entry, ok bool) {
	if ok == d.has && e == d.entry {
		return
	}
	d.entry, d.has = e, ok
	d.vp.SetContent(d.content())
	d.vp.GotoTop()
}

// SetSize sets the outer size, border included.
func (d *Details) SetSize(width, height int) {
	d.width, d.height = width, height
	d.vp.SetWidth(max(width-2, 0))
	d.vp.SetHeight(max(height-2, 0))
	d.vp.SetContent(d.content())
}

func (d *Details) Focus()        { d.focused = true }
func (d *Details) Blur()         { d.focused = false }
func (d *Details) Focused() bool { return d.focused }

// Update scrolls the pane.
func (d *Details) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.vp, cmd = d.vp.Update(msg)
	return cmd
}

func (d *Details) content() string {
	if !d.has {
		return d.label("nothing selected")
	}
	e := d.entry
	kind := "other"
	switch {
	case e.IsDir():
		kind = "directory"
	case e.IsFile():
		kind = "file"
	}
	if e.Symlink {
		kind = "symlink to " + kind
	}

	rows := [][2]string{
		{"Name", e.Name},
		{"Path", e.Path},
		{"Kind", kind},
	}
	if !e.IsDir() {
		rows = append(rows, [2]string{"Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(max(e.Size, 0))), e.Size)})
	}
	rows = append(rows,
		[2]string{"Mode", e.Mode.String()},
		[2]string{"Modified", e.ModTime.Format(timeLayout)},
	)

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.label(fmt.Sprintf("%-9s", r[0])))
		b.WriteString(d.value(r[1]))
	}
	return b.String()
}

func (d *Details) label(s string) string {
	if d.noColor {
		return s
	}
	return d.styles.Label.Render(s)
}

func (d *Details) value(s string) string {
	if d.noColor {
		return s
	}
	return d.styles.Value.Render(s)
}

// View renders the framed pane.
func (d *Details) View() string {
	if d.width <= 0 || d.height <= 0 {
		return ""
	}
	frame := d.styles.Border
	if d.focused {
		frame = d.styles.BorderFocused
	}
	if d.noColor {
		frame = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
	}
	return frame.Width(max(d.width-2, 0)).Height(max(d.height-2, 0)).Render(d.vp.View())
}
