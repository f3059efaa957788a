package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last file event before
// a change callback fires. Editors and sync tools write in bursts.
const defaultDebounce = 500 * time.Millisecond

// Watcher triggers a callback when chart configuration files change. It
// watches the configuration directory rather than the file itself so
// atomic replace-by-rename and edits to base documents are both seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	log      *slog.Logger
	dir      string
	debounce time.Duration

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher builds a watcher for the directory holding the chart
// configuration. debounce <= 0 selects the default.
func NewWatcher(dir string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if log == nil {
		log = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fsw,
		log:      log,
		dir:      dir,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called. Each burst of relevant events yields one onChange
// call after the debounce interval; callback errors are logged, not
// propagated, so a broken edit does not stop the watch.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("chart configuration watcher started",
		"dir", w.dir,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("chart configuration watcher stopped")
			return nil
		case <-w.stopCh:
			w.log.Info("chart configuration watcher stopped")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !relevantEvent(event) {
				continue
			}
			w.log.Debug("chart configuration event", "path", event.Name, "op", event.Op.String())
			w.trigger(onChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("chart configuration watcher error", "error", err)
		}
	}
}

// trigger arms the debounce timer, replacing any pending one.
func (w *Watcher) trigger(onChange func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		w.log.Info("chart configuration changed, triggering rebuild")
		if err := onChange(); err != nil {
			w.log.Error("rebuild after configuration change failed", "error", err)
		}
	})
}

// Stop ends the watch and closes the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

// relevantEvent filters to yaml writes. Chmod-only events and editor
// artifacts like hidden swap files never warrant a rebuild; the
// effective pair's mode suffixes keep the supervisor's own writes from
// retriggering it.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == event.Op {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
