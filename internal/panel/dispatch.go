package panel

import (
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/nvtree/internal/fstree"
	"github.com/oakwood-commons/nvtree/internal/keymap"
)

// dispatch resolves a key press against the binding table. Bound chords run
// their action; everything else falls through to the tree's own navigation.
func (p *Panel) dispatch(msg tea.KeyPressMsg) {
	chord := keymap.FromKey(msg.Key())
	action, bound := p.keys.Resolve(chord)
	if !bound {
		p.tree.Update(msg)
		p.syncWatch()
		return
	}

	entry, selected := p.tree.Selected()
	if !selected {
		p.log.V(1).Info("no selection, ignoring action", "action", action.String())
		return
	}
	p.log.V(1).Info("key action", "chord", chord.String(), "action", action.String())

	switch action {
	case keymap.OpenEntry, keymap.OpenRawEnter:
		p.activateEntry(entry)
	case keymap.SwitchFocus:
		p.host.FocusNext()
	case keymap.ClosePanel:
		p.host.FocusNext()
		p.Hide()
	case keymap.OpenCommandLine:
		p.host.FocusNext()
		p.remote.FeedKeys(":", "n", true)
	case keymap.SetRootHere:
		// A file selection is rejected by setDirectory.
		p.setDirectory(entry.Path, true)
	case keymap.GoToParent:
		// The process directory lags the panel after a failed Chdir.
		wd, err := p.workdir.Getwd()
		switch {
		case err != nil:
			p.log.V(1).Info("getwd failed, using current directory", "error", err.Error())
			wd = p.dir.current
		case wd != p.dir.current:
			p.log.V(1).Info("working directory differs, using current directory", "wd", wd, "current", p.dir.current)
			wd = p.dir.current
		}
		p.setDirectory(filepath.Dir(wd), true)
	}
}

// activateEntry opens a readable file or toggles a directory.
func (p *Panel) activateEntry(entry fstree.Entry) {
	if entry.IsDir() {
		if p.tree.Expanded() {
			p.tree.Collapse()
		} else {
			p.tree.Expand()
		}
		p.syncWatch()
		return
	}
	p.open(entry)
}

// open sends a readable regular file to the editor. Anything else is a no-op.
func (p *Panel) open(entry fstree.Entry) {
	if !entry.IsFile() || !entry.Readable() {
		p.log.V(1).Info("not opening", "path", entry.Path)
		return
	}
	p.remote.DropFile(entry.Path)
}
