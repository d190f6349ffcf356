// Package watcher re-runs checks on files as they change.
package watcher

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

// Watcher monitors the watched trees and checks changed files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      *WatchedDirs
	runner    *rules.CheckRunner
	trees     []*srctree.Tree

	// Debounce delay between the last event and the re-check
	debounceDelay time.Duration

	// Paths changed since the last re-check
	pending map[string]struct{}

	timer     *time.Timer
	flushChan chan struct{}

	// Closed when the watcher is stopping to unblock goroutines
	done chan struct{}
}

// New creates a Watcher over trees. Every check run, the initial one
// included, goes through runner.
func New(afs afero.Fs, trees []*srctree.Tree, runner *rules.CheckRunner, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := newWatcher(NewWatchedDirs(afs, fsw), trees, runner, debounce)
	w.fsWatcher = fsw

	for _, t := range trees {
		if err := w.dirs.AddTree(t); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

func newWatcher(dirs *WatchedDirs, trees []*srctree.Tree, runner *rules.CheckRunner, debounce time.Duration) *Watcher {
	w := &Watcher{
		dirs:          dirs,
		runner:        runner,
		trees:         trees,
		debounceDelay: debounce,
		pending:       make(map[string]struct{}),
		flushChan:     make(chan struct{}),
		done:          make(chan struct{}),
	}

	// Created stopped; every event resets it
	w.timer = time.AfterFunc(time.Hour, func() {
		select {
		case w.flushChan <- struct{}{}:
		case <-w.done:
		}
	})
	w.timer.Stop()

	return w
}

// Run checks every tree once, then re-checks changed files until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	rep := w.runner.Run(srctree.WalkAll(w.trees...))
	logReport("initial check finished", rep)

	slog.Info("watcher started", "debounce", w.debounceDelay, "directories", w.dirs.WatchCount())

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopping")
			close(w.done)
			w.timer.Stop()
			return w.fsWatcher.Close()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)

		case <-w.flushChan:
			if rep := w.flush(); rep != nil {
				logReport("re-check finished", rep)
			}
		}
	}
}

// handleEvent records a changed path and restarts the debounce timer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	slog.Debug("event", "path", event.Name, "op", event.Op)
	w.dirs.ProcessEvent(event)

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Chmod) == 0 {
		return
	}
	if w.dirs.TreeFor(event.Name) == nil {
		return
	}

	w.pending[event.Name] = struct{}{}
	w.timer.Reset(w.debounceDelay)
}

// flush checks the pending paths. It returns nil when none of them is a
// file the trees select.
func (w *Watcher) flush() *rules.Report {
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	slices.Sort(paths)

	var entries []srctree.Entry
	for _, p := range paths {
		tree := w.dirs.TreeFor(p)
		if tree == nil {
			continue
		}
		e, ok, err := tree.Lookup(p)
		if err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("cannot stat changed path", "path", p, "error", err)
			}
			continue
		}
		if ok && e.IsFile() {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil
	}

	return w.runner.Run(sequence(entries))
}

func sequence(entries []srctree.Entry) iter.Seq2[srctree.Entry, error] {
	return func(yield func(srctree.Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func logReport(msg string, rep *rules.Report) {
	if rep.Failed() {
		slog.Warn(msg, "files", rep.Files, "failures", failures(rep), "errors", rep.Errors)
		return
	}
	slog.Info(msg, "files", rep.Files)
}

func failures(rep *rules.Report) int {
	n := 0
	for _, c := range rep.Counts {
		n += c
	}
	return n
}

// WatchCount returns the number of directories currently being watched.
func (w *Watcher) WatchCount() int {
	return w.dirs.WatchCount()
}
