package fstree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture lays out:
//
//	root/
//	  Beta/
//	    inner.txt
//	  alpha/
//	    deep/
//	  .hidden
//	  README.md
//	  apple.go
//	  banana.go
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"Beta", "alpha/deep"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	for _, f := range []string{"Beta/inner.txt", ".hidden", "README.md", "apple.go", "banana.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte("x"), 0o644))
	}
	return root
}

func names(m *Model) []string {
	out := make([]string, 0, len(m.rows))
	for _, n := range m.rows {
		out = append(out, n.entry.Name)
	}
	return out
}

func key(code rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: code} }

func text(s string) tea.KeyPressMsg {
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestSortDirectoriesFirstCaseInsensitive(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	assert.Equal(t, []string{"alpha", "Beta", "apple.go", "banana.go", "README.md"}, names(m))
}

func TestShowHidden(t *testing.T) {
	m := New(Options{ShowHidden: true})
	m.SetRoot(fixture(t))
	assert.Contains(t, names(m), ".hidden")

	m.SetShowHidden(false)
	assert.NotContains(t, names(m), ".hidden")
}

func TestExpandCollapseIdempotent(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	require.True(t, m.Select(1)) // Beta

	m.Expand()
	m.Expand()
	assert.True(t, m.Expanded())
	assert.Equal(t, []string{"alpha", "Beta", "inner.txt", "apple.go", "banana.go", "README.md"}, names(m))

	m.Collapse()
	m.Collapse()
	assert.False(t, m.Expanded())
	assert.Len(t, m.rows, 5)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Beta", sel.Name)
}

func TestExpandFileIsNoop(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	require.True(t, m.Select(2))
	m.Expand()
	assert.False(t, m.Expanded())
	assert.Len(t, m.rows, 5)
}

func TestCollapseKeepsSubExpansion(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	m.Expand() // alpha
	m.Update(key(tea.KeyDown))
	m.Expand() // deep
	require.Equal(t, []string{"alpha", "deep"}, names(m)[:2])

	m.Select(0)
	m.Collapse()
	m.Expand()
	assert.Contains(t, m.ExpandedDirs(), filepath.Join(m.Root(), "alpha", "deep"))
}

func TestNavigationKeys(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	m.SetSize(40, 3)

	m.Update(key(tea.KeyDown))
	m.Update(key(tea.KeyDown))
	assert.Equal(t, 2, m.Cursor())
	m.Update(key(tea.KeyUp))
	assert.Equal(t, 1, m.Cursor())
	m.Update(key(tea.KeyEnd))
	assert.Equal(t, 4, m.Cursor())
	m.Update(key(tea.KeyHome))
	assert.Equal(t, 0, m.Cursor())
	m.Update(key(tea.KeyPgDown))
	assert.Equal(t, 2, m.Cursor())
	m.Update(key(tea.KeyPgUp))
	assert.Equal(t, 0, m.Cursor())

	m.Update(key(tea.KeyUp))
	assert.Equal(t, 0, m.Cursor(), "cursor stays at the top")
}

func TestLeftRight(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	m.Select(1) // Beta

	m.Update(key(tea.KeyRight))
	assert.True(t, m.Expanded())
	m.Update(key(tea.KeyRight))
	sel, _ := m.Selected()
	assert.Equal(t, "inner.txt", sel.Name)

	m.Update(key(tea.KeyLeft))
	sel, _ = m.Selected()
	assert.Equal(t, "Beta", sel.Name)
	m.Update(key(tea.KeyLeft))
	assert.False(t, m.Expanded())
}

func TestTypeAhead(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := New(Options{Now: func() time.Time { return now }})
	m.SetRoot(fixture(t))

	m.Update(text("b"))
	sel, _ := m.Selected()
	assert.Equal(t, "Beta", sel.Name)

	m.Update(text("a"))
	sel, _ = m.Selected()
	assert.Equal(t, "banana.go", sel.Name)
	assert.Equal(t, "ba", m.TypeAhead())

	now = now.Add(2 * TypeAheadInterval)
	assert.Empty(t, m.TypeAhead())
	m.Update(text("r"))
	sel, _ = m.Selected()
	assert.Equal(t, "README.md", sel.Name)
}

func TestTypeAheadFuzzyFallback(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	m.Update(text("r"))
	m.Update(text("m"))
	sel, _ := m.Selected()
	assert.Equal(t, "README.md", sel.Name)

	m.Update(text("z"))
	sel, _ = m.Selected()
	assert.Equal(t, "README.md", sel.Name, "no match keeps the selection")
}

func TestRefreshKeepsExpansionAndSelection(t *testing.T) {
	root := fixture(t)
	m := New(Options{})
	m.SetRoot(root)
	m.Select(1)
	m.Expand()
	m.Update(key(tea.KeyDown)) // inner.txt

	require.NoError(t, os.WriteFile(filepath.Join(root, "Beta", "added.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "aaa.txt"), nil, 0o644))
	m.Update(RefreshMsg{Dirs: []string{filepath.Join(root, "Beta"), root}})

	assert.Equal(t, []string{"alpha", "Beta", "added.txt", "inner.txt", "aaa.txt", "apple.go", "banana.go", "README.md"}, names(m))
	sel, _ := m.Selected()
	assert.Equal(t, "inner.txt", sel.Name)
}

func TestRefreshSelectionRemoved(t *testing.T) {
	root := fixture(t)
	m := New(Options{})
	m.SetRoot(root)
	m.Update(key(tea.KeyEnd))
	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))
	m.Refresh(root, filepath.Join(root, "not-in-tree"))
	assert.Equal(t, 3, m.Cursor())
}

func TestEmptyRoot(t *testing.T) {
	m := New(Options{Styles: Styles{NoColor: true}})
	m.SetRoot(t.TempDir())
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Equal(t, "(empty)", m.View())

	m.SetRoot(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, m.Err())
	assert.Equal(t, "(unreadable)", m.View())
}

func TestViewTruncatesAndMarks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a-very-long-file-name.txt"), nil, 0o644))
	m := New(Options{Styles: Styles{NoColor: true}})
	m.SetRoot(root)
	m.SetSize(12, 10)

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "▸ dir/      ", lines[0])
	assert.Equal(t, "  a-very-lo…", lines[1])

	m.Expand()
	assert.True(t, strings.HasPrefix(m.View(), "▾ dir/"))
}

func TestRowAt(t *testing.T) {
	m := New(Options{})
	m.SetRoot(fixture(t))
	m.SetSize(20, 2)
	m.Update(key(tea.KeyEnd))

	i, ok := m.RowAt(0)
	require.True(t, ok)
	assert.Equal(t, 3, i)
	_, ok = m.RowAt(2)
	assert.False(t, ok)
	_, ok = m.RowAt(-1)
	assert.False(t, ok)
}

func TestStatFollowsSymlink(t *testing.T) {
	root := fixture(t)
	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(filepath.Join(root, "alpha"), link))
	e, err := Stat(link)
	require.NoError(t, err)
	assert.True(t, e.Symlink)
	assert.True(t, e.IsDir())
	assert.True(t, IsDirectory(link))
	assert.False(t, IsDirectory(filepath.Join(root, "apple.go")))
}

func TestReadable(t *testing.T) {
	root := fixture(t)
	e, err := Stat(filepath.Join(root, "apple.go"))
	require.NoError(t, err)
	assert.True(t, e.IsFile())
	assert.True(t, e.Readable())

	require.NoError(t, os.Remove(e.Path))
	assert.False(t, e.Readable())
}

func TestWatcherCoalescesPerDirectory(t *testing.T) {
	w, err := NewWatcher(logr.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	cmd := w.Update(changeMsg{w: w, path: "/a/one", op: fsnotify.Create})
	require.NotNil(t, cmd)
	require.True(t, w.debouncing)
	w.Update(changeMsg{w: w, path: "/a/two", op: fsnotify.Write})
	w.Update(changeMsg{w: w, path: "/b/three", op: fsnotify.Remove})
	w.Update(changeMsg{w: w, path: "/b/mode", op: fsnotify.Chmod})

	refresh := w.Update(flushMsg{w: w})
	require.NotNil(t, refresh)
	assert.Equal(t, RefreshMsg{Dirs: []string{"/a", "/b"}}, refresh())
	assert.False(t, w.debouncing)

	assert.Nil(t, w.Update(flushMsg{w: w}), "nothing pending")
	assert.Nil(t, w.Update(flushMsg{w: &Watcher{}}), "other watcher")
}

func TestWatcherSyncAndListen(t *testing.T) {
	root := fixture(t)
	w, err := NewWatcher(logr.Discard())
	require.NoError(t, err)

	w.Sync([]string{root, filepath.Join(root, "Beta"), filepath.Join(root, "missing")})
	assert.Equal(t, []string{root, filepath.Join(root, "Beta")}, w.Watched())
	w.Sync([]string{root})
	assert.Equal(t, []string{root}, w.Watched())

	got := make(chan tea.Msg, 1)
	go func() { got <- w.Listen()() }()
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), nil, 0o644))

	select {
	case msg := <-got:
		ch, ok := msg.(changeMsg)
		require.True(t, ok, "got %T", msg)
		assert.Equal(t, root, filepath.Dir(ch.path))
	case <-time.After(5 * time.Second):
		t.Fatal("no fsnotify event")
	}

	require.NoError(t, w.Close())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for w.Listen()() != nil {
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not stop after Close")
	}
}
