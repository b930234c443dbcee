package git

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/gitday/gitday/internal/errors"
)

// FindRepos walks root and returns every git repository root found,
// bounded by maxDepth directory levels. The walk does not descend into
// a repository once found, so a repo nested inside another is never
// counted twice. Unreadable subdirectories are skipped with a warning;
// only an unusable root is fatal.
func FindRepos(root string, maxDepth int) ([]string, error) {
	logger := slog.Default().With("component", "locator")

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, apperrors.AccessError(err, "cannot resolve scan root")
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, apperrors.AccessError(err, "scan root does not exist").WithContext("root", abs)
	}
	if !info.IsDir() {
		return nil, apperrors.AccessErrorf("scan root is not a directory: %s", abs)
	}

	var repos []string
	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if isRepoRoot(dir) {
			repos = append(repos, dir)
			return
		}
		if depth >= maxDepth {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("skipping unreadable directory", "dir", dir, "error", err)
			return
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if name == ".git" || name == "node_modules" {
				continue
			}
			walk(filepath.Join(dir, name), depth+1)
		}
	}
	walk(abs, 0)

	// The root itself may be unreadable even though Stat succeeded
	if len(repos) == 0 && !isRepoRoot(abs) {
		if _, err := os.ReadDir(abs); err != nil {
			return nil, apperrors.AccessError(err, "scan root is not readable").WithContext("root", abs)
		}
	}

	sort.Strings(repos)
	logger.Debug("repository scan complete", "root", abs, "found", len(repos))
	return repos, nil
}

// isRepoRoot reports whether dir contains a .git entry. A plain file
// counts too: worktrees and submodules keep a .git file pointer.
func isRepoRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
