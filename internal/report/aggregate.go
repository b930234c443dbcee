// Package report builds the day-level aggregate that the renderer and
// the value analyzer consume.
package report

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitday/gitday/internal/category"
	"github.com/gitday/gitday/internal/git"
	"github.com/gitday/gitday/internal/models"
)

// extractParallelism bounds concurrent git subprocesses. Extraction is
// per-repository and shares no state, so repos fan out independently
// and results are merged deterministically afterwards.
const extractParallelism = 4

// Build extracts and categorizes every repository's commits for the
// given day and merges them into one DayAggregate. A repository whose
// extraction fails is recorded in the aggregate's failure list and the
// run continues; Build itself only fails on context cancellation.
func Build(ctx context.Context, repos []string, date time.Time, author string) (*models.DayAggregate, error) {
	logger := slog.Default().With("component", "aggregator")

	type repoResult struct {
		commits []models.CommitRecord
		err     error
	}
	results := make([]repoResult, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractParallelism)
	for i, repo := range repos {
		g.Go(func() error {
			commits, err := git.Extract(gctx, repo, date, author)
			results[i] = repoResult{commits: commits, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg := &models.DayAggregate{
		Date:           date,
		CategoryCounts: make(map[models.Category]int),
	}

	touched := make(map[string]struct{})
	for i, repo := range repos {
		res := results[i]
		if res.err != nil {
			logger.Warn("repository skipped", "repo", repo, "error", res.err)
			agg.Failures = append(agg.Failures, models.RepoFailure{
				Path:   repo,
				Reason: res.err.Error(),
			})
			continue
		}
		if len(res.commits) == 0 {
			logger.Debug("no commits for date", "repo", repo)
			continue
		}

		for j := range res.commits {
			c := &res.commits[j]
			category.CategorizeRecord(c)
			agg.Commits = append(agg.Commits, *c)
			agg.CategoryCounts[c.Category]++
			agg.TotalAdditions += c.Additions
			agg.TotalDeletions += c.Deletions
			for _, f := range c.Files {
				touched[repo+"\x00"+f.Path] = struct{}{}
			}
		}

		sort.SliceStable(res.commits, func(a, b int) bool {
			if !res.commits[a].Timestamp.Equal(res.commits[b].Timestamp) {
				return res.commits[a].Timestamp.Before(res.commits[b].Timestamp)
			}
			return res.commits[a].Hash < res.commits[b].Hash
		})
		agg.Repos = append(agg.Repos, models.RepoActivity{
			Path:      repo,
			Name:      filepath.Base(repo),
			RemoteURL: git.RemoteURL(ctx, repo),
			Commits:   res.commits,
		})
	}
	agg.FilesTouched = len(touched)

	// Chronological regardless of repo scan order, with deterministic
	// tie-breaking so parallel extraction cannot reorder the result.
	sort.SliceStable(agg.Commits, func(i, j int) bool {
		a, b := agg.Commits[i], agg.Commits[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.RepoPath != b.RepoPath {
			return a.RepoPath < b.RepoPath
		}
		return a.Hash < b.Hash
	})

	logger.Info("aggregate built",
		"date", date.Format("2006-01-02"),
		"repos", len(agg.Repos),
		"commits", len(agg.Commits),
		"skipped", len(agg.Failures),
	)
	return agg, nil
}
