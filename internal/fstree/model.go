package fstree

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/sahilm/fuzzy"
)

// TypeAheadInterval is how long type-ahead keeps accumulating characters.
const TypeAheadInterval = time.Second

type node struct {
	entry    Entry
	depth    int
	expanded bool
	loaded   bool
	err      error
	children []*node
}

// Options configures a Model.
type Options struct {
	ShowHidden bool
	Styles     Styles
	// Now is the clock used by type-ahead; nil means time.Now.
	Now func() time.Time
}

// Model is the tree of entries under a root directory. The root itself is not
// shown; its children are the top-level rows.
type Model struct {
	root    string
	rootErr error
	top     []*node
	rows    []*node

	cursor int
	offset int
	width  int
	height int

	showHidden bool
	focused    bool
	styles     Styles
	now        func() time.Time

	typeAhead   string
	typeAheadAt time.Time
}

// New returns an empty model; call SetRoot to populate it.
func New(opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Model{
		showHidden: opts.ShowHidden,
		styles:     opts.Styles,
		now:        now,
		width:      30,
		height:     20,
	}
}

// SetRoot re-roots the model at dir and makes it the visible root. Expansion
// state and selection reset.
func (m *Model) SetRoot(dir string) {
	m.root = filepath.Clean(dir)
	m.cursor, m.offset = 0, 0
	m.typeAhead = ""
	m.reloadTop(nil)
}

// Root returns the current root directory.
func (m *Model) Root() string { return m.root }

// Err returns the error from listing the root, if any.
func (m *Model) Err() error { return m.rootErr }

func (m *Model) reloadTop(previous []*node) {
	entries, err := readEntries(m.root, m.showHidden)
	m.rootErr = err
	m.top = m.buildNodes(entries, 0, previous)
	m.flatten()
}

// buildNodes wraps entries, carrying over expansion from previous nodes with
// the same path.
func (m *Model) buildNodes(entries []Entry, depth int, previous []*node) []*node {
	old := make(map[string]*node, len(previous))
	for _, n := range previous {
		old[n.entry.Path] = n
	}
	out := make([]*node, 0, len(entries))
	for _, e := range entries {
		n := &node{entry: e, depth: depth}
		if prev, ok := old[e.Path]; ok && prev.expanded && e.IsDir() {
			n.expanded = true
			m.load(n, prev.children)
		}
		out = append(out, n)
	}
	return out
}

func (m *Model) load(n *node, previous []*node) {
	entries, err := readEntries(n.entry.Path, m.showHidden)
	n.err = err
	n.loaded = true
	n.children = m.buildNodes(entries, n.depth+1, previous)
}

func (m *Model) flatten() {
	selected := ""
	if n := m.selectedNode(); n != nil {
		selected = n.entry.Path
	}
	m.rows = m.rows[:0]
	var walk func([]*node)
	walk = func(ns []*node) {
		for _, n := range ns {
			m.rows = append(m.rows, n)
			if n.expanded {
				walk(n.children)
			}
		}
	}
	walk(m.top)
	if selected != "" {
		m.selectPath(selected)
	}
	m.clamp()
}

func (m *Model) selectPath(path string) bool {
	for i, n := range m.rows {
		if n.entry.Path == path {
			m.cursor = i
			return true
		}
	}
	return false
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.height
	if h < 1 {
		h = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if maxOffset := len(m.rows) - h; m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) selectedNode() *node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// Selected returns the entry under the cursor. ok is false when the tree has
// no rows.
func (m *Model) Selected() (Entry, bool) {
	n := m.selectedNode()
	if n == nil {
		return Entry{}, false
	}
	return n.entry, true
}

// Cursor returns the selected row index.
func (m *Model) Cursor() int { return m.cursor }

// Len returns the number of visible rows.
func (m *Model) Len() int { return len(m.rows) }

// Select moves the cursor to row i, if it exists.
func (m *Model) Select(i int) bool {
	if i < 0 || i >= len(m.rows) {
		return false
	}
	m.cursor = i
	m.clamp()
	return true
}

// RowAt maps a line offset within the rendered tree to a row index.
func (m *Model) RowAt(line int) (int, bool) {
	i := m.offset + line
	if line < 0 || line >= m.height || i >= len(m.rows) {
		return 0, false
	}
	return i, true
}

// Expanded reports whether the selected entry is an expanded directory.
func (m *Model) Expanded() bool {
	n := m.selectedNode()
	return n != nil && n.expanded
}

// Expand opens the selected directory. It is a no-op for files and for
// directories that are already expanded.
func (m *Model) Expand() {
	n := m.selectedNode()
	if n == nil || !n.entry.IsDir() || n.expanded {
		return
	}
	if !n.loaded {
		m.load(n, nil)
	}
	n.expanded = true
	m.flatten()
}

// Collapse closes the selected directory. Loaded children are kept so
// re-expanding restores sub-expansion.
func (m *Model) Collapse() {
	n := m.selectedNode()
	if n == nil || !n.expanded {
		return
	}
	n.expanded = false
	m.flatten()
}

// ExpandedDirs returns the root plus every expanded directory, which is the
// set of directories whose contents are on screen.
func (m *Model) ExpandedDirs() []string {
	if m.root == "" {
		return nil
	}
	out := []string{m.root}
	var walk func([]*node)
	walk = func(ns []*node) {
		for _, n := range ns {
			if n.expanded {
				out = append(out, n.entry.Path)
				walk(n.children)
			}
		}
	}
	walk(m.top)
	return out
}

// Refresh re-reads the given directories, keeping expansion and selection.
// Directories that are not part of the tree are ignored.
func (m *Model) Refresh(dirs ...string) {
	changed := false
	for _, d := range dirs {
		d = filepath.Clean(d)
		if d == m.root {
			m.reloadTopKeep()
			changed = true
			continue
		}
		if n := m.findDir(m.top, d); n != nil && n.loaded {
			m.load(n, n.children)
			changed = true
		}
	}
	if changed {
		m.flatten()
	}
}

func (m *Model) reloadTopKeep() {
	entries, err := readEntries(m.root, m.showHidden)
	m.rootErr = err
	m.top = m.buildNodes(entries, 0, m.top)
}

func (m *Model) findDir(ns []*node, path string) *node {
	for _, n := range ns {
		if n.entry.Path == path {
			return n
		}
		if n.loaded && strings.HasPrefix(path, n.entry.Path+string(filepath.Separator)) {
			return m.findDir(n.children, path)
		}
	}
	return nil
}

// SetShowHidden toggles dot-file visibility and reloads.
func (m *Model) SetShowHidden(show bool) {
	if m.showHidden == show {
		return
	}
	m.showHidden = show
	if m.root != "" {
		m.reloadTopKeep()
		m.flatten()
	}
}

// SetSize sets the render area in cells.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.clamp()
}

func (m *Model) Focus()        { m.focused = true }
func (m *Model) Blur()         { m.focused = false }
func (m *Model) Focused() bool { return m.focused }

// Update applies default tree navigation for key presses and refreshes for
// RefreshMsg. Other messages are ignored.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case RefreshMsg:
		m.Refresh(msg.Dirs...)
	case tea.KeyPressMsg:
		m.handleKey(msg)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) {
	switch msg.String() {
	case "up":
		m.Select(m.cursor - 1)
	case "down":
		m.Select(m.cursor + 1)
	case "home":
		m.Select(0)
	case "end":
		m.Select(len(m.rows) - 1)
	case "pgup":
		m.cursor -= m.pageSize()
		m.clamp()
	case "pgdown":
		m.cursor += m.pageSize()
		m.clamp()
	case "left":
		m.left()
	case "right":
		m.right()
	default:
		k := msg.Key()
		if k.Text != "" && !k.Mod.Contains(tea.ModCtrl) && !k.Mod.Contains(tea.ModAlt) {
			m.typeAheadSearch(k.Text)
		}
	}
}

func (m *Model) pageSize() int {
	if m.height > 1 {
		return m.height - 1
	}
	return 1
}

// left collapses an expanded directory, otherwise moves to the parent row.
func (m *Model) left() {
	n := m.selectedNode()
	if n == nil {
		return
	}
	if n.expanded {
		m.Collapse()
		return
	}
	if n.depth == 0 {
		return
	}
	parent := filepath.Dir(n.entry.Path)
	m.selectPath(parent)
	m.clamp()
}

// right expands a collapsed directory, otherwise moves to its first child.
func (m *Model) right() {
	n := m.selectedNode()
	if n == nil || !n.entry.IsDir() {
		return
	}
	if !n.expanded {
		m.Expand()
		return
	}
	if len(n.children) > 0 {
		m.Select(m.cursor + 1)
	}
}

// typeAheadSearch appends text to the search buffer and selects the best
// fuzzy match among visible rows. The buffer resets after TypeAheadInterval.
func (m *Model) typeAheadSearch(text string) {
	now := m.now()
	if now.Sub(m.typeAheadAt) > TypeAheadInterval {
		m.typeAhead = ""
	}
	m.typeAheadAt = now
	m.typeAhead += text

	names := make([]string, len(m.rows))
	for i, n := range m.rows {
		names[i] = n.entry.Name
	}
	matches := fuzzy.Find(m.typeAhead, names)
	if len(matches) == 0 {
		return
	}
	// Prefer prefix matches, then fuzzy score; fuzzy.Find already orders by score.
	best := matches[0]
	prefix := strings.ToLower(m.typeAhead)
	candidates := make([]fuzzy.Match, 0, len(matches))
	for _, mt := range matches {
		if strings.HasPrefix(strings.ToLower(mt.Str), prefix) {
			candidates = append(candidates, mt)
		}
	}
	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Index < candidates[j].Index })
		best = candidates[0]
	}
	m.Select(best.Index)
}

// TypeAhead returns the pending search text.
func (m *Model) TypeAhead() string {
	if m.now().Sub(m.typeAheadAt) > TypeAheadInterval {
		return ""
	}
	return m.typeAhead
}
