// Package panel is the directory-tree panel: it keeps one current directory in
// step with the editor, maps key chords onto panel actions, and routes the
// editor's Dir and Gui notifications.
package panel

import (
	"path/filepath"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/nvtree/internal/fstree"
	"github.com/oakwood-commons/nvtree/internal/keymap"
	"github.com/oakwood-commons/nvtree/internal/rpc"
	"github.com/oakwood-commons/nvtree/pkg/logger"
)

// Name is the panel name the editor addresses in Gui notifications.
const Name = "TreeView"

// DoubleClickInterval is the longest gap between two clicks on the same row
// that still counts as a double-click.
const DoubleClickInterval = 400 * time.Millisecond

// State is the panel lifecycle state.
type State int

const (
	Uninitialized State = iota
	AwaitingConnection
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingConnection:
		return "awaiting-connection"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Styles style the panel frame.
type Styles struct {
	Border        lipgloss.Style
	BorderFocused lipgloss.Style
	Title         lipgloss.Style
	NoColor       bool
}

// DefaultStyles returns the built-in frame palette.
func DefaultStyles() Styles {
	base := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	return Styles{
		Border:        base.BorderForeground(lipgloss.Color("238")),
		BorderFocused: base.BorderForeground(lipgloss.Color("81")),
		Title:         lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
	}
}

// Options configures a Panel. Remote is required; everything else has a
// default.
type Options struct {
	// Root is the initial directory; empty means the process working
	// directory.
	Root    string
	Remote  rpc.Remote
	Host    Host
	Workdir Workdir
	Tree    *fstree.Model
	// Watcher, when set, refreshes the tree as the filesystem changes.
	Watcher *fstree.Watcher
	Keys    *keymap.Table
	Logger  logr.Logger
	Styles  Styles
	Hidden  bool
	// Now is the clock used for double-click detection; nil means time.Now.
	Now func() time.Time
}

type click struct {
	row int
	at  time.Time
	ok  bool
}

// Panel is the directory-tree panel. All methods must be called from the
// Bubble Tea update loop.
type Panel struct {
	state   State
	remote  rpc.Remote
	host    Host
	workdir Workdir
	tree    *fstree.Model
	watcher *fstree.Watcher
	keys    *keymap.Table
	dir     dirState
	log     logr.Logger
	styles  Styles
	now     func() time.Time

	visible bool
	focused bool
	width   int
	height  int

	lastClick click
}

// New builds a panel rooted at opts.Root. The panel starts awaiting the
// connection and activates immediately if the remote is already ready.
func New(opts Options) *Panel {
	p := &Panel{
		state:   Uninitialized,
		remote:  opts.Remote,
		host:    opts.Host,
		workdir: opts.Workdir,
		tree:    opts.Tree,
		watcher: opts.Watcher,
		keys:    opts.Keys,
		log:     logger.Component(&opts.Logger, "panel"),
		styles:  opts.Styles,
		now:     opts.Now,
		visible: !opts.Hidden,
	}
	if p.host == nil {
		p.host = noopHost{}
	}
	if p.workdir == nil {
		p.workdir = OSWorkdir{}
	}
	if p.tree == nil {
		p.tree = fstree.New(fstree.Options{})
	}
	if p.keys == nil {
		p.keys = keymap.Defaults()
	}
	if p.now == nil {
		p.now = time.Now
	}

	root := opts.Root
	if root == "" {
		if wd, err := p.workdir.Getwd(); err == nil {
			root = wd
		}
	}
	if !p.setDirectory(root, false) {
		p.log.Info("initial directory unusable", "path", root)
	}

	p.state = AwaitingConnection
	if p.remote.Ready() {
		p.activate()
	}
	return p
}

// activate subscribes to the editor topics. It runs at most once.
func (p *Panel) activate() {
	if p.state != AwaitingConnection {
		return
	}
	p.remote.Subscribe(rpc.TopicDir)
	p.remote.Subscribe(rpc.TopicGui)
	p.state = Active
	p.log.V(1).Info("activated")
}

// Init starts the filesystem watcher, if any.
func (p *Panel) Init() tea.Cmd {
	if p.watcher == nil {
		return nil
	}
	return p.watcher.Listen()
}

// Update handles one message.
func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case rpc.ReadyMsg:
		p.activate()
	case rpc.Notification:
		if p.state != Active {
			p.log.V(1).Info("dropping notification before activation", "topic", msg.Topic)
			return nil
		}
		p.route(msg)
	case fstree.RefreshMsg:
		p.tree.Update(msg)
		p.syncWatch()
	case tea.KeyPressMsg:
		if !p.visible || !p.focused {
			return nil
		}
		p.dispatch(msg)
	case tea.MouseClickMsg:
		if !p.visible {
			return nil
		}
		p.handleClick(msg.Mouse())
	default:
		if p.watcher != nil {
			return p.watcher.Update(msg)
		}
	}
	return nil
}

func (p *Panel) syncWatch() {
	if p.watcher != nil {
		p.watcher.Sync(p.tree.ExpandedDirs())
	}
}

// handleClick treats x, y as panel-local cells. A single click selects the
// row; a second click on the same row within DoubleClickInterval opens it
// once the panel is active.
func (p *Panel) handleClick(m tea.Mouse) {
	if m.Button != tea.MouseLeft {
		return
	}
	if !p.focused {
		p.host.FocusPanel()
	}
	row, ok := p.tree.RowAt(m.Y - p.chromeTop())
	if !ok {
		return
	}
	p.tree.Select(row)

	now := p.now()
	double := p.lastClick.ok && p.lastClick.row == row && now.Sub(p.lastClick.at) <= DoubleClickInterval
	if double {
		p.lastClick = click{}
		if p.state == Active {
			if entry, ok := p.tree.Selected(); ok {
				p.activateEntry(entry)
			}
		}
		return
	}
	p.lastClick = click{row: row, at: now, ok: true}
}

// Show makes the panel visible.
func (p *Panel) Show() { p.visible = true }

// Hide hides the panel, handing focus on first.
func (p *Panel) Hide() {
	if p.focused {
		p.host.FocusNext()
	}
	p.visible = false
}

// Toggle hides a visible panel, or shows a hidden one and focuses it.
func (p *Panel) Toggle() {
	if p.visible {
		p.Hide()
		return
	}
	p.Show()
	p.host.FocusPanel()
}

func (p *Panel) Visible() bool { return p.visible }

func (p *Panel) Focus() {
	p.focused = true
	p.tree.Focus()
}

func (p *Panel) Blur() {
	p.focused = false
	p.tree.Blur()
}

func (p *Panel) Focused() bool { return p.focused }

// Dir returns the current directory.
func (p *Panel) Dir() string { return p.dir.current }

// Bindings returns a copy of the key table.
func (p *Panel) Bindings() *keymap.Table { return p.keys.Clone() }

// State returns the lifecycle state.
func (p *Panel) State() State { return p.state }

// Selected returns the entry under the cursor.
func (p *Panel) Selected() (fstree.Entry, bool) { return p.tree.Selected() }

// SetSize sets the outer size, frame included.
func (p *Panel) SetSize(width, height int) {
	p.width, p.height = width, height
	p.tree.SetSize(max(width-2, 0), max(height-p.chromeTop()-1, 0))
}

// chromeTop is the number of lines above the first tree row: the border and
// the title.
func (p *Panel) chromeTop() int { return 2 }

// View renders the framed panel, or nothing when hidden.
func (p *Panel) View() string {
	if !p.visible {
		return ""
	}
	inner := max(p.width-2, 0)
	title := filepath.Base(p.dir.current)
	if p.dir.current == "" {
		title = "-"
	} else if title != string(filepath.Separator) {
		title += string(filepath.Separator)
	}
	if inner > 0 {
		title = runewidth.Truncate(title, inner, "…")
	}

	if p.styles.NoColor {
		return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Width(inner).Height(max(p.height-2, 0)).
			Render(title + "\n" + p.tree.View())
	}
	frame := p.styles.Border
	if p.focused {
		frame = p.styles.BorderFocused
	}
	return frame.Width(inner).Height(max(p.height-2, 0)).
		Render(p.styles.Title.Render(title) + "\n" + p.tree.View())
}

// ShortHelp lists the live bindings for the help footer.
func (p *Panel) ShortHelp() []key.Binding {
	bindings := make([]key.Binding, 0, len(keymap.Actions()))
	seen := map[string]bool{}
	for _, a := range keymap.Actions() {
		c := p.keys.Chord(a).String()
		label := a.Help()
		if seen[label] {
			continue
		}
		seen[label] = true
		bindings = append(bindings, key.NewBinding(key.WithKeys(c), key.WithHelp(c, label)))
	}
	return bindings
}

// FullHelp lists every binding, one column per action.
func (p *Panel) FullHelp() [][]key.Binding {
	out := make([][]key.Binding, 0, len(keymap.Actions()))
	for _, a := range keymap.Actions() {
		c := p.keys.Chord(a).String()
		out = append(out, []key.Binding{key.NewBinding(key.WithKeys(c), key.WithHelp(c, a.Help()))})
	}
	return out
}
