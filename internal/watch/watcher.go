// Package watch re-runs a check whenever content files change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/sitekit/internal/checksum"
	"github.com/starford/sitekit/internal/storage"
)

// DefaultDebounce collapses bursts of editor writes into one run.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc is called after a debounced batch of content changes.
// changed lists the relative paths touched in the batch.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher observes a content root.
type Watcher struct {
	root     string
	exts     []string
	debounce time.Duration
	logger   *slog.Logger
	seen     checksum.Set // digests as of the last delivered batch
}

// New creates a watcher for files with the given extensions below root.
func New(root string, exts []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     root,
		exts:     exts,
		debounce: debounce,
		logger:   logger,
		seen:     checksum.Set{},
	}
}

// Prime records the current checksums so that saving a file without changes
// does not trigger a run.
func (w *Watcher) Prime(store storage.Provider) error {
	metas, err := store.List("", w.exts)
	if err != nil {
		return err
	}
	for _, m := range metas {
		w.seen.Update(m.Path, m.Checksum)
	}
	return nil
}

// Run processes file events until ctx is cancelled, calling fn after each
// debounced batch of real content changes.
//
// Events only mark paths as pending. Checksums are compared when the debounce
// timer fires, so a truncate-then-rewrite that restores the original bytes
// produces no run. New directories created at runtime are added to the watch
// list.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.root); err != nil {
		return err
	}

	w.logger.Info("watcher: started", slog.String("root", w.root))

	var timer *time.Timer
	var timerCh <-chan time.Time
	pending := make(map[string]struct{})

	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := w.settle(pending)
			clear(pending)
			timer, timerCh = nil, nil
			if len(changed) > 0 {
				fn(ctx, changed)
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			// New directories are watched and scanned for content.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					w.scanNewDir(ev.Name, schedule)
					continue
				}
			}

			if !storage.HasExtension(ev.Name, w.exts) {
				continue
			}
			rel, ok := w.relative(ev.Name)
			if !ok {
				continue
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule(rel)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// settle compares each pending path with the digest delivered last and
// returns the sorted paths whose content actually changed or disappeared.
func (w *Watcher) settle(pending map[string]struct{}) []string {
	var changed []string
	for rel := range pending {
		data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(rel)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if w.seen.Forget(rel) {
				w.logger.Debug("watcher: removed", slog.String("path", rel))
				changed = append(changed, rel)
			}
		case err != nil:
			w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		default:
			if w.seen.Update(rel, checksum.Sum(data)) {
				w.logger.Debug("watcher: changed", slog.String("path", rel))
				changed = append(changed, rel)
			}
		}
	}
	slices.Sort(changed)
	return changed
}

// scanNewDir marks content files found in a newly created directory as pending.
func (w *Watcher) scanNewDir(dir string, schedule func(string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.HasExtension(path, w.exts) {
			return nil
		}
		if rel, ok := w.relative(path); ok {
			schedule(rel)
		}
		return nil
	})
}

// relative returns abs as a slash-separated path under the root, matching
// the keys storage.Provider.List reports.
func (w *Watcher) relative(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
