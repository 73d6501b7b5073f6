// Package watch implements dev mode: integration sources are watched and
// the running routes are replaced whenever a source changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/kamelrun/internal/config"
	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/dsl"
)

// DefaultDebounce is how long changes must settle before a reload.
const DefaultDebounce = 300 * time.Millisecond

// LoadFunc loads a fresh model from the watched sources.
type LoadFunc func(ctx context.Context) (*config.Model, error)

// RunFunc runs a model until ctx is done.
type RunFunc func(ctx context.Context, model *config.Model) error

// Stats counts watcher activity.
type Stats struct {
	Events        int
	Reloads       int
	FailedReloads int
}

// Watcher reloads and restarts integrations when their sources change.
type Watcher struct {
	paths    []string
	debounce time.Duration
	load     LoadFunc
	run      RunFunc

	mu      sync.Mutex
	pending map[string]time.Time
	stats   Stats
}

// New creates a Watcher over paths, which may be files or directories.
func New(paths []string, debounce time.Duration, load LoadFunc, run RunFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		paths:    paths,
		debounce: debounce,
		load:     load,
		run:      run,
		pending:  make(map[string]time.Time),
	}
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// execution is one running generation of routes.
type execution struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (w *Watcher) start(ctx context.Context, model *config.Model) *execution {
	runCtx, cancel := context.WithCancel(ctx)
	ex := &execution{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(ex.done)
		if err := w.run(runCtx, model); err != nil {
			ctxlog.FromContext(ctx).Error("Integration run failed; waiting for the next change.", "error", err)
		}
	}()
	return ex
}

func (ex *execution) stop() {
	ex.cancel()
	<-ex.done
}

// Run starts initial and blocks until ctx is done, swapping in a freshly
// loaded model after every settled change. A change that fails to load
// leaves the current routes running.
func (w *Watcher) Run(ctx context.Context, initial *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	files, err := w.addPaths(fsw)
	if err != nil {
		return err
	}
	logger.Info("👀 Watching sources for changes.", "paths", w.paths)

	current := w.start(ctx, initial)
	defer func() { current.stop() }()

	tick := time.NewTicker(w.debounce / 3)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			w.handleEvent(event, files)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			logger.Warn("File watcher error.", "error", err)

		case <-tick.C:
			changed := w.settled()
			if len(changed) == 0 {
				continue
			}
			logger.Info("Sources changed, reloading.", "files", changed)
			model, err := w.load(ctx)
			if err != nil {
				w.mu.Lock()
				w.stats.FailedReloads++
				w.mu.Unlock()
				logger.Error("Reload failed; keeping the running routes.", "error", err)
				continue
			}
			current.stop()
			current = w.start(ctx, model)
			w.mu.Lock()
			w.stats.Reloads++
			w.mu.Unlock()
			logger.Info("Reload complete.", "integrations", len(model.Integrations), "routes", model.Routes())
		}
	}
}

// addPaths watches every directory involved. For file paths the parent
// directory is watched and events are filtered to that file, so editors
// that replace files on save are still seen.
func (w *Watcher) addPaths(fsw *fsnotify.Watcher) (map[string]struct{}, error) {
	files := make(map[string]struct{})
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
		if !info.IsDir() {
			files[abs] = struct{}{}
			if err := fsw.Add(filepath.Dir(abs)); err != nil {
				return nil, fmt.Errorf("watching %s: %w", p, err)
			}
			continue
		}
		err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return fsw.Add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
	}
	return files, nil
}

func (w *Watcher) handleEvent(event fsnotify.Event, files map[string]struct{}) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
		return
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, explicit := files[name]; !explicit && !dsl.IsSource(name) && filepath.Ext(name) != ".properties" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.pending[name] = time.Now()
}

// settled returns and clears the changes older than the debounce window.
func (w *Watcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	return out
}
