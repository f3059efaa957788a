package chartsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/portolan-hq/tilegate/pkg/telemetry/metrics"
)

const defaultPollInterval = time.Minute

// ChangeCallback is invoked when chart files changed in the repository.
// It receives the chart directory holding the synced configuration files.
// Returning an error counts the poll as a failed sync; the watcher keeps
// polling and the next commit gets another chance.
type ChangeCallback func(chartDir string) error

// Watcher polls the chart repository and triggers a callback when chart
// files change. Commits touching only non-chart files are skipped.
type Watcher struct {
	repo     *Repository
	interval time.Duration
	onChange ChangeCallback

	logger    *slog.Logger
	collector *metrics.Collector

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	lastSHA string
	metrics WatcherMetrics
}

// NewWatcher creates a poll watcher for the repository. The interval
// defaults to one minute when zero or negative.
func NewWatcher(repo *Repository, interval time.Duration, onChange ChangeCallback) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Watcher{
		repo:     repo,
		interval: interval,
		onChange: onChange,
		logger:   slog.Default(),
	}
}

// SetLogger replaces the default logger. Call before Start.
func (w *Watcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// SetCollector wires poll outcomes into the metrics collector.
// Call before Start.
func (w *Watcher) SetCollector(c *metrics.Collector) {
	w.collector = c
}

// Start records the current commit and begins polling. It fails when the
// repository has not been cloned yet.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	commit, err := w.repo.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to read current commit: %w", err)
	}

	w.lastSHA = commit.SHA
	w.stopCh = make(chan struct{})
	w.running = true

	go w.pollLoop(ctx)

	w.logger.Info("chart sync watcher started",
		"interval", w.interval,
		"commit", shortSHA(commit.SHA))
	return nil
}

// Stop halts polling. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// IsRunning reports whether the poll loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// LastSHA returns the commit the watcher last synced to.
func (w *Watcher) LastSHA() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSHA
}

// Metrics returns a snapshot of poll activity.
func (w *Watcher) Metrics() WatcherMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// ForceCheck runs a single poll immediately, outside the regular
// interval. Usable without Start for one-shot syncs.
func (w *Watcher) ForceCheck(ctx context.Context) error {
	return w.checkForChanges(ctx)
}

func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.checkForChanges(ctx); err != nil {
				w.logger.Error("chart sync failed", "error", err)
			}
		}
	}
}

// checkForChanges pulls the repository and invokes the callback when
// chart files changed. Pull timeouts are owned by the repository.
func (w *Watcher) checkForChanges(ctx context.Context) error {
	w.mu.Lock()
	w.metrics.PollCount++
	w.mu.Unlock()

	start := time.Now()
	result, err := w.repo.Pull(ctx)
	if err != nil {
		w.recordResult("failure", time.Since(start))
		return fmt.Errorf("pull failed: %w", err)
	}

	if !result.HadChanges {
		w.recordResult("unchanged", time.Since(start))
		return nil
	}

	w.logger.Info("chart repository moved",
		"from", shortSHA(result.FromSHA),
		"to", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles))

	// An empty change list on a moved HEAD means the diff was unavailable;
	// rescan rather than risk serving stale charts.
	if len(result.ChangedFiles) > 0 && !w.hasChartFileChanges(result.ChangedFiles) {
		w.mu.Lock()
		w.metrics.SkippedPolls++
		w.lastSHA = result.ToSHA
		w.mu.Unlock()
		w.recordResult("unchanged", time.Since(start))
		w.logger.Debug("no chart files changed, skipping rescan")
		return nil
	}

	if w.onChange != nil {
		if err := w.onChange(w.repo.ChartDir()); err != nil {
			w.mu.Lock()
			w.metrics.FailedSyncs++
			w.lastSHA = result.ToSHA
			w.mu.Unlock()
			w.recordResult("failure", time.Since(start))
			return fmt.Errorf("chart rescan failed: %w", err)
		}
	}

	w.mu.Lock()
	w.metrics.Updates++
	w.metrics.LastSyncTime = time.Now()
	w.lastSHA = result.ToSHA
	w.mu.Unlock()
	w.recordResult("updated", time.Since(start))
	return nil
}

// hasChartFileChanges reports whether any changed file is a chart file
// under the configured repository path.
func (w *Watcher) hasChartFileChanges(files []string) bool {
	prefix := strings.Trim(w.repo.config.Path, "/")
	if prefix != "" {
		prefix += "/"
	}
	for _, f := range files {
		if prefix != "" && !strings.HasPrefix(f, prefix) {
			continue
		}
		if isChartFile(f) {
			return true
		}
	}
	return false
}

func (w *Watcher) recordResult(result string, duration time.Duration) {
	if w.collector != nil {
		w.collector.RecordSync(result, duration)
	}
}

// shortSHA truncates a commit SHA for log output.
func shortSHA(sha string) string {
	if len(sha) <= 8 {
		return sha
	}
	return sha[:8]
}
