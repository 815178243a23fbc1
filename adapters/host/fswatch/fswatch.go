// Package fswatch notifies the host when the configuration file or the
// template directory changes. Bursts of events are coalesced per target.
package fswatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kompox/tmpcluster/internal/logging"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

type target struct {
	path     string
	dir      bool
	onChange func(ctx context.Context)
	timer    *time.Timer
}

// matches reports whether an event on name concerns the target.
func (t *target) matches(name string) bool {
	name = filepath.Clean(name)
	if t.dir {
		return filepath.Dir(name) == t.path || name == t.path
	}
	return name == t.path
}

// Watcher is created with New, configured with Add and started with Run.
type Watcher struct {
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	targets []*target
	watched map[string]bool
}

// New creates a watcher with the given debounce interval.
func New(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{debounce: debounce, fsw: fsw, watched: map[string]bool{}}, nil
}

// Add registers onChange for path. A file is watched through its parent
// directory so that editors replacing the file by rename are noticed.
func (w *Watcher) Add(path string, onChange func(ctx context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	t := &target{path: abs, dir: fi.IsDir(), onChange: onChange}
	watchDir := abs
	if !t.dir {
		watchDir = filepath.Dir(abs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[watchDir] {
		if err := w.fsw.Add(watchDir); err != nil {
			return fmt.Errorf("watch %s: %w", watchDir, err)
		}
		w.watched[watchDir] = true
	}
	w.targets = append(w.targets, t)
	return nil
}

// Run dispatches debounced callbacks until ctx ends, then closes the watcher.
// Callbacks run one at a time on the Run goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	logger := logging.FromContext(ctx)
	fire := make(chan *target)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug(ctx, "file event", "name", ev.Name, "op", ev.Op.String())
			w.schedule(ctx, ev.Name, fire)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn(ctx, "file watcher error", "err", err)
		case t := <-fire:
			t.onChange(ctx)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, name string, fire chan<- *target) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.targets {
		if !t.matches(name) {
			continue
		}
		if t.timer != nil {
			t.timer.Stop()
		}
		t.timer = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- t:
			case <-ctx.Done():
			}
		})
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.targets {
		if t.timer != nil {
			t.timer.Stop()
		}
	}
}
