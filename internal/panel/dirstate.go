package panel

import (
	"path/filepath"

	"github.com/oakwood-commons/nvtree/internal/fstree"
)

// dirState is the panel's single authoritative directory. current is always
// absolute and named an existing directory when it was set.
type dirState struct {
	current string
}

// setDirectory moves the panel to path. A path that is not an existing
// directory is rejected without any effect. Otherwise it changes the process
// working directory, records path, re-roots the tree, and when notifyRemote
// is set tells the editor exactly once. It reports whether the change was
// applied.
func (p *Panel) setDirectory(path string, notifyRemote bool) bool {
	abs, err := filepath.Abs(path)
	if err != nil || !fstree.IsDirectory(abs) {
		p.log.V(1).Info("rejecting directory", "path", path)
		return false
	}

	if err := p.workdir.Chdir(abs); err != nil {
		p.log.Error(err, "changing working directory", "path", abs)
	}
	p.dir.current = abs
	p.tree.SetRoot(abs)
	p.syncWatch()

	if notifyRemote {
		p.remote.ChangeDirectory([]byte(abs))
	}
	p.log.V(1).Info("directory changed", "path", abs, "notify", notifyRemote)
	return true
}
