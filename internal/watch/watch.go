// Package watch re-triggers indexing when transcripts change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the bursts of writes the assistant produces
// while streaming into a single reindex pass.
const DefaultDebounce = 2 * time.Second

// Run watches root (and its project directories) and calls reindex
// after events settle. It blocks until ctx is cancelled.
func Run(ctx context.Context, root string, debounce time.Duration, reindex func() error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, root); err != nil {
		return err
	}

	// fsnotify timers never fire before being reset by a real event
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// transcripts appear under freshly created project dirs
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.Add(ev.Name)
				}
			}
			if filepath.Ext(ev.Name) == ".jsonl" || ev.Op.Has(fsnotify.Create) {
				timer.Reset(debounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

		case <-timer.C:
			if err := reindex(); err != nil {
				fmt.Fprintf(os.Stderr, "reindex error: %v\n", err)
			}
		}
	}
}

// addTree watches root plus every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && path != root {
			w.Add(path)
		}
		return nil
	})
}
