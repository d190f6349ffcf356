package watcher

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	_ "github.com/prettymuchbryce/fmtcheck/internal/rules/checks"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
	"github.com/prettymuchbryce/fmtcheck/internal/testutil"
)

func newTestWatcher(t *testing.T, fs afero.Fs, root string) *Watcher {
	t.Helper()

	opts := rules.DefaultOptions()
	opts.SkipBinary = false
	runner, err := rules.NewCheckRunner(fs, opts, nil)
	if err != nil {
		t.Fatalf("NewCheckRunner: %v", err)
	}

	tree := srctree.New(fs, root, testMatcher())
	dirs := NewWatchedDirs(fs, newMockFsWatcher())
	if err := dirs.AddTree(tree); err != nil {
		t.Fatalf("AddTree: %v", err)
	}

	// Long enough that the timer never fires during a test
	w := newWatcher(dirs, []*srctree.Tree{tree}, runner, time.Hour)
	t.Cleanup(func() {
		w.timer.Stop()
		close(w.done)
	})
	return w
}

func TestWatcher_RechecksChangedFiles(t *testing.T) {
	fs, root := buildTree(t)
	w := newTestWatcher(t, fs, root)

	changed := testutil.Path("/", "src", "lib", "b.h")
	afero.WriteFile(fs, changed, []byte("\tint b;\n"), 0644)

	w.handleEvent(fsnotify.Event{Name: changed, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: changed, Op: fsnotify.Write})

	rep := w.flush()
	if rep == nil {
		t.Fatal("expected a re-check")
	}
	if rep.Files != 1 {
		t.Errorf("files = %d, want 1", rep.Files)
	}
	if rep.Counts["tabs"] != 1 {
		t.Errorf("tabs count = %d, want 1", rep.Counts["tabs"])
	}
	if len(w.pending) != 0 {
		t.Errorf("pending not cleared: %v", w.pending)
	}
}

func TestWatcher_IgnoresUnselectedPaths(t *testing.T) {
	fs, root := buildTree(t)
	w := newTestWatcher(t, fs, root)

	notes := testutil.Path("/", "src", "notes.md")
	afero.WriteFile(fs, notes, []byte("\tx\n"), 0644)
	gone := testutil.Path("/", "src", "gone.c")
	excluded := testutil.Path("/", "src", "build", "out.c")

	w.handleEvent(fsnotify.Event{Name: notes, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: gone, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: excluded, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: testutil.Path("/", "outside", "x.c"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: testutil.Path("/", "src", "a.c"), Op: fsnotify.Remove})

	if _, ok := w.pending[testutil.Path("/", "outside", "x.c")]; ok {
		t.Error("paths outside the trees should not be queued")
	}
	if _, ok := w.pending[testutil.Path("/", "src", "a.c")]; ok {
		t.Error("removals should not be queued")
	}

	if rep := w.flush(); rep != nil {
		t.Errorf("expected no re-check, got %+v", rep)
	}
}

func TestWatcher_NewDirectoryContents(t *testing.T) {
	fs, root := buildTree(t)
	w := newTestWatcher(t, fs, root)

	dir := testutil.Path("/", "src", "added")
	file := testutil.Path("/", "src", "added", "d.c")
	fs.MkdirAll(dir, 0755)
	afero.WriteFile(fs, file, []byte("int d;  \n"), 0644)

	w.handleEvent(fsnotify.Event{Name: dir, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Create})

	if !w.dirs.IsWatched(dir) {
		t.Error("new directory should be watched")
	}

	rep := w.flush()
	if rep == nil || rep.Files != 1 || rep.Counts["trailing"] != 1 {
		t.Errorf("report = %+v", rep)
	}
}
