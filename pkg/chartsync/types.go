package chartsync

import "time"

// CommitInfo describes a single commit in the chart repository.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// PullResult describes the outcome of a pull operation.
type PullResult struct {
	FromSHA      string   `json:"from_sha"`
	ToSHA        string   `json:"to_sha"`
	ChangedFiles []string `json:"changed_files"`
	HadChanges   bool     `json:"had_changes"`
}

// RepositoryMetrics tracks clone and pull activity.
type RepositoryMetrics struct {
	CloneDuration   time.Duration `json:"clone_duration"`
	PullDuration    time.Duration `json:"pull_duration"`
	LastCommitSHA   string        `json:"last_commit_sha"`
	LastPullTime    time.Time     `json:"last_pull_time"`
	FailedPulls     int64         `json:"failed_pulls"`
	SuccessfulPulls int64         `json:"successful_pulls"`
}

// WatcherMetrics tracks poll outcomes.
type WatcherMetrics struct {
	PollCount    int64     `json:"poll_count"`
	Updates      int64     `json:"updates"`
	SkippedPolls int64     `json:"skipped_polls"`
	FailedSyncs  int64     `json:"failed_syncs"`
	LastSyncTime time.Time `json:"last_sync_time"`
}
