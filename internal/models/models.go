package models

import (
	"strings"
	"time"
)

// ChangeKind classifies how a file was touched in a commit
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// Category is the closed set of work classifications assigned to commits
type Category string

const (
	CategoryFeature  Category = "feature"
	CategoryBugfix   Category = "bugfix"
	CategoryRefactor Category = "refactor"
	CategoryDocs     Category = "docs"
	CategoryTest     Category = "test"
	CategoryChore    Category = "chore"
	CategoryOther    Category = "other"
)

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryFeature,
	CategoryBugfix,
	CategoryRefactor,
	CategoryDocs,
	CategoryTest,
	CategoryChore,
	CategoryOther,
}

// FileChange represents one file touched by a commit, with diff stats
type FileChange struct {
	Path      string     `json:"path"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Kind      ChangeKind `json:"kind"`
}

// CommitRecord represents a git commit scoped to one repository.
// Immutable after extraction except for Category, which is set exactly
// once by the categorizer.
type CommitRecord struct {
	Hash      string       `json:"hash"`
	RepoPath  string       `json:"repo_path"`
	Author    string       `json:"author"`
	Email     string       `json:"email"`
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message"`
	Files     []FileChange `json:"files"`
	Additions int          `json:"additions"`
	Deletions int          `json:"deletions"`
	Category  Category     `json:"category,omitempty"`
}

// Subject returns the first line of the commit message
func (c *CommitRecord) Subject() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// RepoActivity groups one repository's commits for the report
type RepoActivity struct {
	Path      string         `json:"path"`
	Name      string         `json:"name"`
	RemoteURL string         `json:"remote_url,omitempty"`
	Commits   []CommitRecord `json:"commits"`
}

// RepoFailure records a repository that could not be extracted.
// Kept separate from commit data so the report can disclose partial
// coverage.
type RepoFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// DayAggregate merges all repositories' commits for one calendar day.
// Commits are ordered by timestamp ascending, ties broken by repo path
// then hash. Built once per run and immutable thereafter.
type DayAggregate struct {
	Date           time.Time        `json:"date"`
	Repos          []RepoActivity   `json:"repos"`
	Commits        []CommitRecord   `json:"commits"`
	CategoryCounts map[Category]int `json:"category_counts"`
	TotalAdditions int              `json:"total_additions"`
	TotalDeletions int              `json:"total_deletions"`
	FilesTouched   int              `json:"files_touched"`
	Failures       []RepoFailure    `json:"failures,omitempty"`
}

// Empty reports whether the day had no extractable activity
func (a *DayAggregate) Empty() bool {
	return len(a.Commits) == 0
}

// Provenance indicates which path produced a ValueNarrative
type Provenance string

const (
	ProvenanceAI       Provenance = "ai"
	ProvenanceFallback Provenance = "fallback"
)

// ValueNarrative is the higher-level characterization of the day's work.
// Constructed exactly once per run after the aggregate is finalized.
type ValueNarrative struct {
	Summary      string     `json:"summary"`
	KeyValues    []string   `json:"key_values"`
	Achievements []string   `json:"achievements"`
	NextSteps    string     `json:"next_steps,omitempty"`
	Provenance   Provenance `json:"provenance"`
	Provider     string     `json:"provider,omitempty"`
	AnalysisErr  string     `json:"analysis_error,omitempty"`
}
