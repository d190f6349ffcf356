package watcher

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

// fsnotifyWatcher is the interface for fsnotify operations, allowing mocking in tests.
type fsnotifyWatcher interface {
	Add(name string) error
	Remove(name string) error
}

// WatchedDirs keeps one fsnotify watch per directory a walk of the watched
// trees would descend into. Excluded directories are never watched.
type WatchedDirs struct {
	fs afero.Fs

	// fsWatcher is the underlying fsnotify watcher.
	// fsnotify auto-removes watches on delete but not on rename on every
	// platform, so removals are mirrored explicitly.
	fsWatcher fsnotifyWatcher

	trees []*srctree.Tree

	// entries maps a watched directory to the tree it belongs to.
	entries map[string]*srctree.Tree
}

// NewWatchedDirs creates a new WatchedDirs manager.
func NewWatchedDirs(afs afero.Fs, fsWatcher fsnotifyWatcher) *WatchedDirs {
	return &WatchedDirs{
		fs:        afs,
		fsWatcher: fsWatcher,
		entries:   make(map[string]*srctree.Tree),
	}
}

// AddTree watches every directory of tree. A tree rooted at a file watches
// the file's parent directory.
func (w *WatchedDirs) AddTree(tree *srctree.Tree) error {
	w.trees = append(w.trees, tree)

	info, err := w.fs.Stat(tree.Root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.add(filepath.Dir(tree.Root), tree)
	}
	return w.addRecursive(tree.Root, tree)
}

// addRecursive watches dir and every directory below it the tree would visit.
func (w *WatchedDirs) addRecursive(dir string, tree *srctree.Tree) error {
	return afero.Walk(w.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			slog.Warn("cannot watch directory", "path", path, "error", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != tree.Root {
			if _, ok, _ := tree.Lookup(path); !ok {
				return filepath.SkipDir
			}
		}
		if err := w.add(path, tree); err != nil {
			slog.Warn("cannot watch directory", "path", path, "error", err)
			return filepath.SkipDir
		}
		return nil
	})
}

func (w *WatchedDirs) add(path string, tree *srctree.Tree) error {
	if _, ok := w.entries[path]; ok {
		return nil
	}
	if err := w.fsWatcher.Add(path); err != nil {
		return err
	}
	slog.Debug("watching directory", "path", path)
	w.entries[path] = tree
	return nil
}

// remove drops the watch on path and on every watched directory below it.
func (w *WatchedDirs) remove(path string) {
	prefix := path + string(filepath.Separator)
	for dir := range w.entries {
		if dir == path || strings.HasPrefix(dir, prefix) {
			if err := w.fsWatcher.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
				slog.Debug("failed to remove watch", "path", dir, "error", err)
			}
			delete(w.entries, dir)
			slog.Debug("stopped watching directory", "path", dir)
		}
	}
}

// ProcessEvent keeps the watch set in line with directory creation and removal.
func (w *WatchedDirs) ProcessEvent(event fsnotify.Event) {
	path := event.Name

	if _, watched := w.entries[path]; watched && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.remove(path)
		return
	}

	if event.Op&fsnotify.Create == 0 {
		return
	}
	tree := w.TreeFor(path)
	if tree == nil {
		return
	}
	info, err := w.fs.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("cannot stat created path", "path", path, "error", err)
		}
		return
	}
	if !info.IsDir() {
		return
	}
	if _, ok, _ := tree.Lookup(path); !ok {
		return
	}
	if err := w.addRecursive(path, tree); err != nil {
		slog.Warn("cannot watch new directory", "path", path, "error", err)
	}
}

// TreeFor returns the first watched tree containing path, or nil.
func (w *WatchedDirs) TreeFor(path string) *srctree.Tree {
	for _, t := range w.trees {
		if t.Contains(path) {
			return t
		}
	}
	return nil
}

// IsWatched reports whether a watch is registered for dir.
func (w *WatchedDirs) IsWatched(dir string) bool {
	_, ok := w.entries[dir]
	return ok
}

// WatchCount returns the number of directories currently being watched.
func (w *WatchedDirs) WatchCount() int {
	return len(w.entries)
}
