// Package watcher re-runs a callback when datafiles under a project change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/loader"
)

// DefaultDebounce collapses bursts of events (editors, git checkouts) into
// one callback.
const DefaultDebounce = 300 * time.Millisecond

type Watcher struct {
	root     string
	skip     []string
	debounce time.Duration
}

// New watches root recursively, ignoring directories named in skip.
func New(root string, skip []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{root: root, skip: skip, debounce: debounce}
}

// Run blocks until ctx is done, calling onChange after each debounced burst
// of datafile events. onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	if _, err := os.Stat(w.root); err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addRecursive(fw, w.root); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.skipped(ev.Name) {
					if err := w.addRecursive(fw, ev.Name); err != nil {
						slog.Warn("watch: could not add directory", "path", ev.Name, "error", err)
					}
				}
			}
			if !w.relevant(ev.Name) {
				continue
			}
			slog.Debug("watch: change", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case <-timer.C:
			onChange()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch: error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipped(path) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func (w *Watcher) skipped(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(path)
	return name == ".git" || slices.Contains(w.skip, name) || slices.Contains(w.skip, rel)
}

func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	if w.skipped(filepath.Dir(path)) {
		return false
	}
	if filepath.Base(path) == loader.VendorDir {
		return true
	}
	_, ok := loader.Classify(filepath.ToSlash(rel))
	return ok
}
