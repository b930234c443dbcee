// Package category assigns each commit a single work category using
// ordered keyword rules over the commit subject, with file-path
// patterns as a second pass. The function is pure and total: the same
// message and file list always yield the same category, and anything
// unmatched is "other". That determinism is what makes it a safe
// fallback signal when AI analysis is unavailable.
package category

import (
	"strings"

	"github.com/gitday/gitday/internal/models"
)

// messageRule maps a subject-line keyword to a category. Rules are
// tested in order and the first match wins, so specific keywords must
// come before generic ones ("hotfix" before "fix", "fix" before
// "update").
type messageRule struct {
	keyword  string
	category models.Category
}

var messageRules = []messageRule{
	{"revert", models.CategoryBugfix},
	{"hotfix", models.CategoryBugfix},
	{"bugfix", models.CategoryBugfix},
	{"fix", models.CategoryBugfix},
	{"bug", models.CategoryBugfix},
	{"patch", models.CategoryBugfix},
	{"test", models.CategoryTest},
	{"spec", models.CategoryTest},
	{"coverage", models.CategoryTest},
	{"docs", models.CategoryDocs},
	{"document", models.CategoryDocs},
	{"readme", models.CategoryDocs},
	{"comment", models.CategoryDocs},
	{"changelog", models.CategoryDocs},
	{"refactor", models.CategoryRefactor},
	{"restructure", models.CategoryRefactor},
	{"cleanup", models.CategoryRefactor},
	{"clean up", models.CategoryRefactor},
	{"rename", models.CategoryRefactor},
	{"simplify", models.CategoryRefactor},
	{"merge", models.CategoryChore},
	{"chore", models.CategoryChore},
	{"bump", models.CategoryChore},
	{"upgrade", models.CategoryChore},
	{"dependency", models.CategoryChore},
	{"deps", models.CategoryChore},
	{"ci", models.CategoryChore},
	{"build", models.CategoryChore},
	{"release", models.CategoryChore},
	{"version", models.CategoryChore},
	{"format", models.CategoryChore},
	{"lint", models.CategoryChore},
	{"feat", models.CategoryFeature},
	{"add", models.CategoryFeature},
	{"implement", models.CategoryFeature},
	{"introduce", models.CategoryFeature},
	{"support", models.CategoryFeature},
	{"new", models.CategoryFeature},
	{"create", models.CategoryFeature},
	{"update", models.CategoryFeature},
	{"improve", models.CategoryFeature},
	{"enhance", models.CategoryFeature},
}

var docExtensions = []string{".md", ".rst", ".adoc", ".txt"}

var docDirs = []string{"docs/", "doc/", "documentation/"}

// Categorize maps a commit subject and its file paths to exactly one
// category. Message rules run first; if none matches, file-path
// patterns are tried; otherwise the result is CategoryOther.
func Categorize(message string, files []string) models.Category {
	subject := message
	if i := strings.IndexByte(subject, '\n'); i >= 0 {
		subject = subject[:i]
	}
	subject = strings.ToLower(subject)

	// Merge subjects embed branch names ("Merge branch 'fix/login'")
	// that would trip the keyword rules, so they are classified before
	// the table runs.
	if strings.HasPrefix(subject, "merge ") {
		return models.CategoryChore
	}

	for _, rule := range messageRules {
		if strings.Contains(subject, rule.keyword) {
			return rule.category
		}
	}

	if cat, ok := categorizeByPaths(files); ok {
		return cat
	}
	return models.CategoryOther
}

// CategorizeRecord assigns the record's category in place. The field
// transitions from unset to exactly one value and is never reassigned.
func CategorizeRecord(c *models.CommitRecord) {
	if c.Category != "" {
		return
	}
	paths := make([]string, len(c.Files))
	for i, f := range c.Files {
		paths[i] = f.Path
	}
	c.Category = Categorize(c.Message, paths)
}

// categorizeByPaths classifies a commit by what it touched when the
// message said nothing useful. Only fires when every file agrees.
func categorizeByPaths(files []string) (models.Category, bool) {
	if len(files) == 0 {
		return "", false
	}

	allDocs := true
	allTests := true
	for _, f := range files {
		lower := strings.ToLower(f)
		if !isDocPath(lower) {
			allDocs = false
		}
		if !isTestPath(lower) {
			allTests = false
		}
	}
	if allDocs {
		return models.CategoryDocs, true
	}
	if allTests {
		return models.CategoryTest, true
	}
	return "", false
}

func isDocPath(path string) bool {
	for _, dir := range docDirs {
		if strings.HasPrefix(path, dir) || strings.Contains(path, "/"+dir) {
			return true
		}
	}
	for _, ext := range docExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func isTestPath(path string) bool {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if strings.HasSuffix(base, "_test.go") || strings.HasSuffix(base, ".test.ts") ||
		strings.HasSuffix(base, ".test.js") || strings.HasSuffix(base, "_spec.rb") {
		return true
	}
	return strings.HasPrefix(path, "test/") || strings.HasPrefix(path, "tests/") ||
		strings.Contains(path, "/test/") || strings.Contains(path, "/tests/")
}
