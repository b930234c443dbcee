package category

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitday/gitday/internal/models"
)

func TestCategorize_MessageRules(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    models.Category
	}{
		{"fix keyword", "fix null pointer in parser", models.CategoryBugfix},
		{"hotfix before fix", "hotfix: rollback deploy config", models.CategoryBugfix},
		{"revert", `Revert "add telemetry"`, models.CategoryBugfix},
		{"feature", "add new export feature", models.CategoryFeature},
		{"implement", "implement retry backoff", models.CategoryFeature},
		{"readme before update", "update README", models.CategoryDocs},
		{"changelog", "changelog for 2.3", models.CategoryDocs},
		{"tests", "write tests for scanner", models.CategoryTest},
		{"refactor", "refactor session handling", models.CategoryRefactor},
		{"rename", "rename user service package", models.CategoryRefactor},
		{"bump", "bump version to 1.4.2", models.CategoryChore},
		{"lint", "lint: gofmt everything", models.CategoryChore},
		{"case insensitive", "FIX: race in worker pool", models.CategoryBugfix},
		{"no match", "weekly sync", models.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.message, nil))
		})
	}
}

func TestCategorize_MergeCommits(t *testing.T) {
	// Branch names inside merge subjects must not trip keyword rules
	assert.Equal(t, models.CategoryChore, Categorize("Merge branch 'fix/login'", nil))
	assert.Equal(t, models.CategoryChore, Categorize("Merge pull request #42 from org/feat-export", nil))
}

func TestCategorize_SubjectLineOnly(t *testing.T) {
	// Keywords in the body must not affect the category
	msg := "weekly sync\n\nfix for the thing discussed in standup"
	assert.Equal(t, models.CategoryOther, Categorize(msg, nil))
}

func TestCategorize_FilePathRules(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  models.Category
	}{
		{"all docs by extension", []string{"README.md", "docs/usage.rst"}, models.CategoryDocs},
		{"all docs by directory", []string{"docs/api.html"}, models.CategoryDocs},
		{"all go tests", []string{"internal/git/extract_test.go"}, models.CategoryTest},
		{"all js tests", []string{"src/app.test.ts", "tests/fixtures.js"}, models.CategoryTest},
		{"mixed files", []string{"README.md", "main.go"}, models.CategoryOther},
		{"no files", nil, models.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize("misc", tt.files))
		})
	}
}

func TestCategorize_MessageBeatsPaths(t *testing.T) {
	// A matching subject keyword wins even when every file is a doc
	got := Categorize("fix broken links", []string{"README.md"})
	assert.Equal(t, models.CategoryBugfix, got)
}

func TestCategorizeRecord(t *testing.T) {
	c := &models.CommitRecord{
		Message: "misc",
		Files: []models.FileChange{
			{Path: "docs/guide.md"},
		},
	}
	CategorizeRecord(c)
	assert.Equal(t, models.CategoryDocs, c.Category)

	// Already categorized records are left alone
	c.Message = "fix typo"
	CategorizeRecord(c)
	assert.Equal(t, models.CategoryDocs, c.Category)
}

func TestCategorize_Deterministic(t *testing.T) {
	files := []string{"a_test.go", "b_test.go"}
	first := Categorize("misc", files)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Categorize("misc", files))
	}
}
