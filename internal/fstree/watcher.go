package fstree

import (
	"path/filepath"
	"sort"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// DebounceInterval is how long the watcher collects events before asking the
// tree to refresh.
const DebounceInterval = 150 * time.Millisecond

// RefreshMsg asks a Model to re-read Dirs.
type RefreshMsg struct {
	Dirs []string
}

type changeMsg struct {
	w    *Watcher
	path string
	op   fsnotify.Op
}

type watchErrMsg struct {
	w   *Watcher
	err error
}

type flushMsg struct{ w *Watcher }

// Watcher turns fsnotify events for the directories on screen into
// RefreshMsg values, coalescing bursts per directory. All of its state is
// touched only from the Bubble Tea update loop; Listen is the only blocking
// part and runs as a tea.Cmd.
type Watcher struct {
	fsw      *fsnotify.Watcher
	log      logr.Logger
	interval time.Duration

	watched    map[string]struct{}
	pending    map[string]struct{}
	debouncing bool
}

// NewWatcher starts an fsnotify watcher with no directories.
func NewWatcher(log logr.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		log:      log,
		interval: DebounceInterval,
		watched:  map[string]struct{}{},
		pending:  map[string]struct{}{},
	}, nil
}

// Sync makes the watched set equal to dirs.
func (w *Watcher) Sync(dirs []string) {
	want := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		want[filepath.Clean(d)] = struct{}{}
	}
	for d := range w.watched {
		if _, ok := want[d]; ok {
			continue
		}
		if err := w.fsw.Remove(d); err != nil {
			w.log.V(1).Info("unwatch failed", "dir", d, "error", err.Error())
		}
		delete(w.watched, d)
	}
	for d := range want {
		if _, ok := w.watched[d]; ok {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			w.log.V(1).Info("watch failed", "dir", d, "error", err.Error())
			continue
		}
		w.watched[d] = struct{}{}
	}
}

// Watched returns the watched directories, sorted.
func (w *Watcher) Watched() []string {
	out := make([]string, 0, len(w.watched))
	for d := range w.watched {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Listen waits for the next fsnotify event. It returns nil once the watcher
// is closed, which ends the re-arm cycle.
func (w *Watcher) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			return changeMsg{w: w, path: ev.Name, op: ev.Op}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{w: w, err: err}
		}
	}
}

// Update consumes the watcher's own messages and returns the follow-up
// command. Messages from other watchers, and everything else, yield nil.
func (w *Watcher) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case changeMsg:
		if msg.w != w {
			return nil
		}
		if msg.op == fsnotify.Chmod {
			return w.Listen()
		}
		w.pending[filepath.Dir(msg.path)] = struct{}{}
		if _, ok := w.watched[filepath.Clean(msg.path)]; ok && msg.op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			w.pending[filepath.Clean(msg.path)] = struct{}{}
		}
		return tea.Batch(w.Listen(), w.scheduleFlush())
	case watchErrMsg:
		if msg.w != w {
			return nil
		}
		w.log.Error(msg.err, "filesystem watcher")
		return w.Listen()
	case flushMsg:
		if msg.w != w {
			return nil
		}
		w.debouncing = false
		dirs := make([]string, 0, len(w.pending))
		for d := range w.pending {
			dirs = append(dirs, d)
		}
		w.pending = map[string]struct{}{}
		if len(dirs) == 0 {
			return nil
		}
		sort.Strings(dirs)
		return func() tea.Msg { return RefreshMsg{Dirs: dirs} }
	}
	return nil
}

func (w *Watcher) scheduleFlush() tea.Cmd {
	if w.debouncing {
		return nil
	}
	w.debouncing = true
	return tea.Tick(w.interval, func(time.Time) tea.Msg { return flushMsg{w: w} })
}

// Close stops the watcher; a pending Listen returns nil.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
