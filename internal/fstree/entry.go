// Package fstree is the filesystem model behind the panel: a lazily expanded,
// sorted tree of directory entries with a selection cursor, default keyboard
// navigation, type-ahead search, and fsnotify-driven refresh.
package fstree

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one filesystem object. Classification follows symlinks; a
// dangling link is neither a file nor a directory.
type Entry struct {
	Path    string
	Name    string
	Mode    fs.FileMode
	Size    int64
	ModTime time.Time
	Symlink bool
}

// IsDir reports whether the entry resolves to a directory.
func (e Entry) IsDir() bool { return e.Mode.IsDir() }

// IsFile reports whether the entry resolves to a regular file.
func (e Entry) IsFile() bool { return e.Mode.IsRegular() }

// Readable reports whether the process can currently open the entry for
// reading. It is checked on demand, never cached.
func (e Entry) Readable() bool {
	f, err := os.Open(e.Path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// Stat builds the Entry for path.
func Stat(path string) (Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, err
	}
	lfi, err := os.Lstat(abs)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Path:    abs,
		Name:    filepath.Base(abs),
		Mode:    lfi.Mode(),
		Size:    lfi.Size(),
		ModTime: lfi.ModTime(),
	}
	if lfi.Mode()&fs.ModeSymlink != 0 {
		e.Symlink = true
		if fi, err := os.Stat(abs); err == nil {
			e.Mode = fi.Mode()
			e.Size = fi.Size()
			e.ModTime = fi.ModTime()
		}
	}
	return e, nil
}

// IsDirectory reports whether path names an existing directory.
func IsDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// readEntries lists dir, sorted directories first and then by name
// case-insensitively. Entries that vanish between listing and stat are
// skipped.
func readEntries(dir string, showHidden bool) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		e, err := Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}
