// Package daemon runs the watch loop as a long-lived process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
	"github.com/prettymuchbryce/fmtcheck/internal/watcher"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/afero"
)

// Controller manages the watcher lifecycle.
type Controller struct {
	fs       afero.Fs
	trees    []*srctree.Tree
	runner   *rules.CheckRunner
	debounce time.Duration

	watcher            *watcher.Watcher
	stopWatcher        context.CancelFunc
	chanWatcherStopped chan struct{}
}

// NewController creates a new daemon controller.
func NewController(fs afero.Fs, trees []*srctree.Tree, runner *rules.CheckRunner, debounce time.Duration) *Controller {
	return &Controller{
		fs:       fs,
		trees:    trees,
		runner:   runner,
		debounce: debounce,
	}
}

// StartWatcher creates and starts a new watcher.
func (c *Controller) StartWatcher() error {
	w, err := watcher.New(c.fs, c.trees, c.runner, c.debounce)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.watcher = w
	c.stopWatcher = cancel
	c.chanWatcherStopped = done

	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			slog.Error("watcher error", "error", err)
		}
	}()

	return nil
}

// StopWatcher stops the current watcher and waits for it to finish.
func (c *Controller) StopWatcher() {
	if c.watcher == nil {
		return
	}

	c.stopWatcher()
	<-c.chanWatcherStopped

	c.watcher = nil
	c.stopWatcher = nil
	c.chanWatcherStopped = nil
}

// Stopped is closed when the running watcher exits on its own.
func (c *Controller) Stopped() <-chan struct{} {
	return c.chanWatcherStopped
}

// Run watches trees until ctx is cancelled.
func Run(ctx context.Context, fs afero.Fs, trees []*srctree.Tree, runner *rules.CheckRunner, debounce time.Duration) error {
	controller := NewController(fs, trees, runner, debounce)

	if err := controller.StartWatcher(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Notify systemd that we're ready (no-op on non-systemd systems)
	daemon.SdNotify(false, daemon.SdNotifyReady)
	slog.Info("daemon ready", "roots", len(trees))

	select {
	case <-ctx.Done():
	case <-controller.Stopped():
		slog.Warn("watcher exited")
	}

	// Notify systemd that we're stopping (no-op on non-systemd systems)
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	controller.StopWatcher()

	return nil
}
