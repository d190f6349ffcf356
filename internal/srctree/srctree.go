// Package srctree walks a source tree lazily, consulting a match.Matcher to
// decide which directories are descended into and which files are yielded.
package srctree

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prettymuchbryce/fmtcheck/internal/match"

	"github.com/spf13/afero"
)

// Kind tells files and directories apart.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// Entry is a single step of a walk. It carries the metadata from the
// directory listing so callers never need a second lookup.
type Entry struct {
	Path    string // path as reachable from the walk root
	RelPath string // slash-separated path relative to the root
	Kind    Kind
	Mode    fs.FileMode
	Size    int64
	ModTime time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDir }

// IsFile reports whether the entry is a regular file.
func (e Entry) IsFile() bool { return e.Kind == KindFile }

// Tree is a walkable source tree rooted at Root.
type Tree struct {
	Fs      afero.Fs
	Root    string
	Matcher *match.Matcher
}

// New creates a Tree.
func New(afs afero.Fs, root string, m *match.Matcher) *Tree {
	return &Tree{Fs: afs, Root: root, Matcher: m}
}

// Walk returns a depth-first sequence of entries. Directories are yielded
// before their children. Each call starts a fresh traversal.
//
// A directory that cannot be read yields a non-nil error for that path and
// the walk moves on to its siblings. Excluded directories are never read.
func (t *Tree) Walk() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		info, err := t.Fs.Stat(t.Root)
		if err != nil {
			yield(Entry{Path: t.Root}, fmt.Errorf("failed to stat root: %w", err))
			return
		}

		if !info.IsDir() {
			rel := filepath.Base(t.Root)
			if t.Matcher.ShouldVisit(rel, false) {
				yield(newEntry(t.Root, rel, info), nil)
			}
			return
		}

		t.walkDir(t.Root, "", yield)
	}
}

// walkDir returns false when the consumer stopped the iteration.
func (t *Tree) walkDir(dir, rel string, yield func(Entry, error) bool) bool {
	slog.Debug("scanning", "path", dir)

	infos, err := afero.ReadDir(t.Fs, dir)
	if err != nil {
		return yield(Entry{Path: dir, RelPath: rel, Kind: KindDir}, err)
	}

	for _, info := range infos {
		childPath := filepath.Join(dir, info.Name())
		childRel := info.Name()
		if rel != "" {
			childRel = rel + "/" + info.Name()
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := t.Fs.Stat(childPath)
			if err != nil {
				if !yield(Entry{Path: childPath, RelPath: childRel}, err) {
					return false
				}
				continue
			}
			info = resolved
		}

		isDir := info.IsDir()
		if !isDir && !info.Mode().IsRegular() {
			slog.Debug("skipping special file", "path", childPath)
			continue
		}

		if !t.Matcher.ShouldVisit(childRel, isDir) {
			continue
		}

		if !yield(newEntry(childPath, childRel, info), nil) {
			return false
		}

		if isDir {
			if !t.walkDir(childPath, childRel, yield) {
				return false
			}
		}
	}

	return true
}

func newEntry(path, rel string, info fs.FileInfo) Entry {
	kind := KindFile
	if info.IsDir() {
		kind = KindDir
	}
	return Entry{
		Path:    path,
		RelPath: rel,
		Kind:    kind,
		Mode:    info.Mode(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// Files filters a walk down to regular files, passing errors through.
func Files(seq iter.Seq2[Entry, error]) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for e, err := range seq {
			if err == nil && !e.IsFile() {
				continue
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

// Contains reports whether path lies inside the tree root.
func (t *Tree) Contains(path string) bool {
	_, ok := t.relPath(path)
	return ok
}

func (t *Tree) relPath(path string) (string, bool) {
	rel, err := filepath.Rel(t.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Lookup returns the entry for a single path inside the tree, applying the
// same decisions a full walk would: the file must be included and none of
// its ancestor directories excluded. ok is false when the walk would not
// yield the path.
func (t *Tree) Lookup(path string) (e Entry, ok bool, err error) {
	rel, inside := t.relPath(path)
	if !inside {
		return Entry{}, false, nil
	}
	if rel == "." {
		rel = filepath.Base(t.Root)
	} else {
		dirs := strings.Split(rel, "/")
		for i := 1; i < len(dirs); i++ {
			if t.Matcher.Excluded(strings.Join(dirs[:i], "/")) {
				return Entry{}, false, nil
			}
		}
	}

	info, err := t.Fs.Stat(path)
	if err != nil {
		return Entry{Path: path, RelPath: rel}, false, err
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		return Entry{}, false, nil
	}
	if !t.Matcher.ShouldVisit(rel, info.IsDir()) {
		return Entry{}, false, nil
	}
	return newEntry(path, rel, info), true, nil
}

// WalkAll chains the walks of several trees into one sequence.
func WalkAll(trees ...*Tree) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for _, t := range trees {
			for e, err := range t.Walk() {
				if !yield(e, err) {
					return
				}
			}
		}
	}
}
