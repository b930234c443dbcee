package report

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitday/gitday/internal/models"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()
	if err := runGit(dir, "init"); err != nil {
		t.Skip("git not available")
	}
	require.NoError(t, runGit(dir, "config", "user.email", "test@example.com"))
	require.NoError(t, runGit(dir, "config", "user.name", "Test User"))
}

func commitFile(t *testing.T, dir, file, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	require.NoError(t, runGit(dir, "add", file))
	require.NoError(t, runGit(dir, "commit", "-m", message))
}

func runGit(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Run()
}

// commitFileAt commits with an explicit timestamp so tests can place
// commits inside or outside the reporting window
func commitFileAt(t *testing.T, dir, file, content, message string, at time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	require.NoError(t, runGit(dir, "add", file))

	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = dir
	stamp := at.Format(time.RFC3339)
	cmd.Env = append(os.Environ(), "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	require.NoError(t, cmd.Run())
}

func lines(prefix string, n int) string {
	var b []byte
	for i := 1; i <= n; i++ {
		b = append(b, []byte(prefix)...)
		b = append(b, byte('0'+i%10), '\n')
	}
	return string(b)
}

// TestBuild_DayTotals pins the exact cross-repo accounting: two repos,
// three commits on the day, earlier history excluded by the window.
func TestBuild_DayTotals(t *testing.T) {
	base := t.TempDir()
	repoA := filepath.Join(base, "repo-a")
	repoB := filepath.Join(base, "repo-b")
	require.NoError(t, os.MkdirAll(repoA, 0755))
	require.NoError(t, os.MkdirAll(repoB, 0755))
	initRepo(t, repoA)
	initRepo(t, repoB)

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	dayBefore := day.AddDate(0, 0, -1).Add(12 * time.Hour)

	// History from the previous day, outside the window
	commitFileAt(t, repoA, "parser.txt", lines("old", 3), "initial parser", dayBefore)
	commitFileAt(t, repoB, "README.md", "legacy readme\n", "initial readme", dayBefore)

	// The day under report: +10/-3, +50/-0 across two files, +5/-1
	commitFileAt(t, repoA, "parser.txt", lines("patched", 10), "fix null pointer in parser", day.Add(9*time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(repoA, "export_a.txt"), []byte(lines("exp", 25)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repoA, "export_b.txt"), []byte(lines("exp", 25)), 0644))
	require.NoError(t, runGit(repoA, "add", "export_a.txt", "export_b.txt"))
	exportCommit := exec.Command("git", "commit", "-m", "add new export feature")
	exportCommit.Dir = repoA
	exportStamp := day.Add(11 * time.Hour).Format(time.RFC3339)
	exportCommit.Env = append(os.Environ(), "GIT_AUTHOR_DATE="+exportStamp, "GIT_COMMITTER_DATE="+exportStamp)
	require.NoError(t, exportCommit.Run())
	commitFileAt(t, repoB, "README.md", lines("fresh", 5), "update README", day.Add(15*time.Hour))

	agg, err := Build(context.Background(), []string{repoA, repoB}, day, "")
	require.NoError(t, err)

	assert.Len(t, agg.Commits, 3)
	assert.Equal(t, 1, agg.CategoryCounts[models.CategoryBugfix])
	assert.Equal(t, 1, agg.CategoryCounts[models.CategoryFeature])
	assert.Equal(t, 1, agg.CategoryCounts[models.CategoryDocs])
	assert.Equal(t, 65, agg.TotalAdditions)
	assert.Equal(t, 4, agg.TotalDeletions)
	assert.Equal(t, 4, agg.FilesTouched)
	assert.Empty(t, agg.Failures)

	// Commit totals equal the sum of their file changes
	for _, c := range agg.Commits {
		var adds, dels int
		for _, f := range c.Files {
			adds += f.Additions
			dels += f.Deletions
		}
		assert.Equal(t, adds, c.Additions, "commit %s", c.Message)
		assert.Equal(t, dels, c.Deletions, "commit %s", c.Message)
	}
}

func TestBuild(t *testing.T) {
	base := t.TempDir()
	repoA := filepath.Join(base, "alpha")
	repoB := filepath.Join(base, "beta")
	require.NoError(t, os.MkdirAll(repoA, 0755))
	require.NoError(t, os.MkdirAll(repoB, 0755))
	initRepo(t, repoA)
	initRepo(t, repoB)

	commitFile(t, repoA, "export.go", "package alpha\n\nfunc Export() {}\n", "add export feature")
	commitFile(t, repoA, "export.go", "package alpha\n\nfunc Export() error { return nil }\n", "fix export error handling")
	commitFile(t, repoB, "README.md", "# beta\n", "update README")

	agg, err := Build(context.Background(), []string{repoA, repoB}, time.Now(), "")
	require.NoError(t, err)

	assert.Len(t, agg.Commits, 3)
	assert.Len(t, agg.Repos, 2)
	assert.Empty(t, agg.Failures)

	assert.Equal(t, 1, agg.CategoryCounts[models.CategoryFeature])
	assert.Equal(t, 1, agg.CategoryCounts[models.CategoryBugfix])
	assert.Equal(t, 1, agg.CategoryCounts[models.CategoryDocs])

	// export.go in alpha plus README.md in beta
	assert.Equal(t, 2, agg.FilesTouched)
	assert.Greater(t, agg.TotalAdditions, 0)

	// Chronological with deterministic tie-breaks
	for i := 1; i < len(agg.Commits); i++ {
		prev, cur := agg.Commits[i-1], agg.Commits[i]
		if prev.Timestamp.Equal(cur.Timestamp) {
			if prev.RepoPath == cur.RepoPath {
				assert.Less(t, prev.Hash, cur.Hash)
			} else {
				assert.Less(t, prev.RepoPath, cur.RepoPath)
			}
		} else {
			assert.True(t, prev.Timestamp.Before(cur.Timestamp))
		}
	}

	for _, c := range agg.Commits {
		assert.NotEmpty(t, c.Category, "every commit gets exactly one category")
	}

	sum := 0
	for _, count := range agg.CategoryCounts {
		sum += count
	}
	assert.Equal(t, len(agg.Commits), sum, "category counts sum to the commit count")
}

func TestBuild_FailedRepoIsRecorded(t *testing.T) {
	base := t.TempDir()
	good := filepath.Join(base, "good")
	bad := filepath.Join(base, "bad")
	require.NoError(t, os.MkdirAll(good, 0755))
	require.NoError(t, os.MkdirAll(bad, 0755))
	initRepo(t, good)
	commitFile(t, good, "a.txt", "hello\n", "add a")
	// bad is a plain directory, git log will fail there

	agg, err := Build(context.Background(), []string{good, bad}, time.Now(), "")
	require.NoError(t, err, "one failed repo must not abort the run")

	assert.Len(t, agg.Commits, 1)
	require.Len(t, agg.Failures, 1)
	assert.Equal(t, bad, agg.Failures[0].Path)
	assert.NotEmpty(t, agg.Failures[0].Reason)
}

func TestBuild_EmptyDay(t *testing.T) {
	base := t.TempDir()
	repo := filepath.Join(base, "quiet")
	require.NoError(t, os.MkdirAll(repo, 0755))
	initRepo(t, repo)
	commitFile(t, repo, "a.txt", "hello\n", "add a")

	// Two days ago: the repo exists but nothing falls in the window
	agg, err := Build(context.Background(), []string{repo}, time.Now().AddDate(0, 0, -2), "")
	require.NoError(t, err)

	assert.True(t, agg.Empty())
	assert.Empty(t, agg.Repos)
	assert.Empty(t, agg.Failures)
	assert.Equal(t, 0, agg.FilesTouched)
}

func TestBuild_NoRepos(t *testing.T) {
	agg, err := Build(context.Background(), nil, time.Now(), "")
	require.NoError(t, err)
	assert.True(t, agg.Empty())
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	base := t.TempDir()
	repo := filepath.Join(base, "r")
	require.NoError(t, os.MkdirAll(repo, 0755))
	initRepo(t, repo)

	_, err := Build(ctx, []string{repo}, time.Now(), "")
	assert.Error(t, err)
}
