// Package chartsync provides Git-backed chart configuration distribution.
//
// This package enables GitOps workflows for chart configurations by cloning
// a chart repository, polling it for new commits, and triggering an engine
// rescan when chart files change. It supports HTTPS and SSH authentication
// and shallow clones for large repositories.
//
// # Basic Usage
//
//	cfg := &config.SyncConfig{
//		Enabled:    true,
//		Repository: "https://github.com/company/charts.git",
//		Branch:     "main",
//		Path:       "charts/",
//	}
//
//	repo, err := chartsync.NewRepository(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := repo.Clone(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// # Change Detection
//
// The watcher polls the repository and invokes the callback when chart
// files change. Commits touching only non-chart files advance the synced
// commit without a rescan:
//
//	watcher := chartsync.NewWatcher(repo, time.Minute, func(chartDir string) error {
//		_, err := sup.Rebuild(false, offline)
//		return err
//	})
//	watcher.Start(context.Background())
//	defer watcher.Stop()
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - SSH key-based: Public key authentication
//   - None: Public repositories
//
// Token and passphrase values expand ${VAR} environment references, so
// secrets stay out of the configuration file.
//
// # Failure Handling
//
// A failed rescan does not roll the repository back. The engine keeps
// serving from the last good configuration, and the next pushed commit is
// picked up by the following poll.
package chartsync
