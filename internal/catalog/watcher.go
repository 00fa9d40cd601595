package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay debounces editor write patterns (truncate+write, atomic rename)
// so a save produces one reload, not several.
const settleDelay = 500 * time.Millisecond

// Watcher reloads the catalog when its source file changes on disk and hands
// the fresh catalog to the OnReload callback. The callback owns swapping the
// new catalog into the dependent components (filter engine, search index).
type Watcher struct {
	opts     Options
	onReload func(*Catalog)
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the catalog file in opts.Path.
func NewWatcher(opts Options, onReload func(*Catalog)) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{opts: opts, onReload: onReload, logger: logger}
}

// Run blocks watching the catalog file until the context is canceled.
// Watching the parent directory survives atomic-rename saves.
func (w *Watcher) Run(ctx context.Context) error {
	if w.opts.Path == "" {
		// Embedded seed never changes; nothing to watch.
		<-ctx.Done()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	dir := filepath.Dir(w.opts.Path)
	if err := fsw.Add(dir); err != nil {
		return err
	}

	var settle *time.Timer
	settleC := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.opts.Path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if settle != nil {
				settle.Stop()
			}
			settle = time.AfterFunc(settleDelay, func() {
				select {
				case settleC <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)

		case <-settleC:
			fresh, err := Load(w.opts)
			if err != nil {
				w.logger.Error("catalog reload failed, keeping previous catalog",
					"path", w.opts.Path,
					"error", err,
				)
				continue
			}
			w.logger.Info("catalog reloaded", "path", w.opts.Path, "books", fresh.Len())
			w.onReload(fresh)
		}
	}
}
