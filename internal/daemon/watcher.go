package daemon

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

var errNoWatchableRoots = errors.New("no watchable roots")

// debounceWindow coalesces bursts of log writes into one refresh trigger.
// Claude Code appends many lines per turn; refreshing once per burst is
// plenty.
const debounceWindow = 2 * time.Second

// watchRoots watches the log roots recursively and emits a debounced
// trigger whenever a log file changes. The watcher shuts down with ctx.
func watchRoots(ctx context.Context, roots []string) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, root := range roots {
		if err := addRecursive(w, root); err == nil {
			watched++
		}
	}
	if watched == 0 {
		_ = w.Close()
		return nil, errNoWatchableRoots
	}

	triggers := make(chan struct{}, 1)

	go func() {
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		fire := func() {
			select {
			case triggers <- struct{}{}:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// New project directories appear as sessions start.
				if ev.Op.Has(fsnotify.Create) {
					_ = addRecursive(w, ev.Name)
				}
				if !strings.HasSuffix(ev.Name, ".jsonl") {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(debounceWindow, fire)
				} else {
					timer.Reset(debounceWindow)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("ccgauge daemon: watch error: %v", err)
			}
		}
	}()

	return triggers, nil
}

// addRecursive registers path and every directory beneath it. Non-dirs
// and unreadable entries are ignored.
func addRecursive(w *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != path {
			return filepath.SkipDir
		}
		_ = w.Add(p)
		return nil
	})
}
