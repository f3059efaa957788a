package chartsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/portolan-hq/tilegate/pkg/config"
)

const defaultOpTimeout = 30 * time.Second

// Repository manages a local clone of the chart configuration repository.
// All Git operations are serialized; Pull and Clone never run concurrently.
type Repository struct {
	config    *config.SyncConfig
	localPath string
	auth      AuthProvider

	mu      sync.Mutex
	repo    *gogit.Repository
	metrics RepositoryMetrics
}

// NewRepository creates a repository manager from the sync configuration.
// The repository is not cloned until Clone is called.
func NewRepository(cfg *config.SyncConfig) (*Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sync configuration is nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "tilegate-charts")
	}

	return &Repository{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
	}, nil
}

// Clone fetches the repository into the local path. An existing clone is
// opened in place unless CleanOnStart is set.
func (r *Repository) Clone(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Clone.CleanOnStart {
		if err := os.RemoveAll(r.localPath); err != nil {
			return fmt.Errorf("failed to clean local path: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(r.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.localPath)
		if err == nil {
			r.repo = repo
			r.recordHead()
			return nil
		}
		// Unusable clone, start over.
		if err := os.RemoveAll(r.localPath); err != nil {
			return fmt.Errorf("failed to remove corrupt clone: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.localPath), 0755); err != nil {
		return fmt.Errorf("failed to create clone directory: %w", err)
	}

	authMethod, err := r.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to prepare authentication: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:           r.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  r.config.Clone.Depth > 0,
		Depth:         r.config.Clone.Depth,
	}
	if authMethod != nil {
		opts.Auth = authMethod
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	start := time.Now()
	repo, err := gogit.PlainCloneContext(opCtx, r.localPath, false, opts)
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", r.config.Repository, err)
	}

	r.repo = repo
	r.metrics.CloneDuration = time.Since(start)
	r.recordHead()
	return nil
}

// Pull fetches new commits from origin and reports whether HEAD moved.
func (r *Repository) Pull(ctx context.Context) (*PullResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not cloned")
	}

	headBefore, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	authMethod, err := r.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare authentication: %w", err)
	}

	opts := &gogit.PullOptions{
		RemoteName: "origin",
		Force:      false,
	}
	if authMethod != nil {
		opts.Auth = authMethod
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	start := time.Now()
	err = worktree.PullContext(opCtx, opts)
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		r.metrics.FailedPulls++
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	headAfter, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD after pull: %w", err)
	}

	result := &PullResult{
		FromSHA:    headBefore.Hash().String(),
		ToSHA:      headAfter.Hash().String(),
		HadChanges: headBefore.Hash() != headAfter.Hash(),
	}
	if result.HadChanges {
		// Diff failure leaves ChangedFiles empty; callers treat that as
		// an unknown change set.
		if files, err := r.changedFiles(headBefore.Hash(), headAfter.Hash()); err == nil {
			result.ChangedFiles = files
		}
	}

	r.metrics.PullDuration = time.Since(start)
	r.metrics.LastPullTime = time.Now()
	r.metrics.LastCommitSHA = result.ToSHA
	r.metrics.SuccessfulPulls++
	return result, nil
}

// CurrentCommit returns details of the commit the clone is at.
func (r *Repository) CurrentCommit() (*CommitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, fmt.Errorf("repository not cloned")
	}

	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read commit: %w", err)
	}

	return &CommitInfo{
		SHA:        commit.Hash.String(),
		Author:     commit.Author.Name,
		Email:      commit.Author.Email,
		Timestamp:  commit.Author.When,
		Message:    strings.TrimSpace(commit.Message),
		Branch:     r.config.Branch,
		Repository: r.config.Repository,
	}, nil
}

// ListChartFiles returns the chart configuration files in the chart
// directory. Dot-files and dot-directories are skipped.
func (r *Repository) ListChartFiles() ([]string, error) {
	dir := r.ChartDir()

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if info.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if isChartFile(name) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chart files: %w", err)
	}
	return files, nil
}

// LocalPath returns the directory the repository is cloned into.
func (r *Repository) LocalPath() string {
	return r.localPath
}

// ChartDir returns the directory holding the chart configuration files,
// the configured path joined onto the clone root.
func (r *Repository) ChartDir() string {
	if r.config.Path == "" {
		return r.localPath
	}
	return filepath.Join(r.localPath, r.config.Path)
}

// Metrics returns a snapshot of clone and pull activity.
func (r *Repository) Metrics() RepositoryMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics
}

// changedFiles lists the paths touched between two commits.
// Caller holds r.mu.
func (r *Repository) changedFiles(from, to plumbing.Hash) ([]string, error) {
	fromCommit, err := r.repo.CommitObject(from)
	if err != nil {
		return nil, err
	}
	toCommit, err := r.repo.CommitObject(to)
	if err != nil {
		return nil, err
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, err
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		if name != "" {
			files = append(files, name)
		}
	}
	return files, nil
}

// recordHead updates LastCommitSHA from the current HEAD.
// Caller holds r.mu.
func (r *Repository) recordHead() {
	if head, err := r.repo.Head(); err == nil {
		r.metrics.LastCommitSHA = head.Hash().String()
	}
}

// opContext bounds a Git operation with the configured poll timeout.
func (r *Repository) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := r.config.Poll.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// isChartFile reports whether name is a chart configuration file.
func isChartFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
