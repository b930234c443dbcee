package git

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/gitday/gitday/internal/errors"
	"github.com/gitday/gitday/internal/models"
)

// DayWindow returns the half-open interval [date 00:00, date+1 00:00)
// in the local timezone
func DayWindow(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}

// Extract returns the commits in repoPath whose author timestamp falls
// on the given calendar day, optionally filtered by author. Two git
// subprocesses per repository, independent of commit count: a numstat
// pass for per-file line counts and a name-status pass for change
// kinds. git treats --numstat and --name-status as competing diff
// formats and emits only one of them when both are requested, so the
// passes must be separate; results are merged by hash and path.
//
// The author filter is a git regex matched case-insensitively against
// the author line, so plain substrings and alternations ("kim\|lee")
// both work.
func Extract(ctx context.Context, repoPath string, date time.Time, author string) ([]models.CommitRecord, error) {
	start, end := DayWindow(date)

	base := []string{
		"log",
		"--since=" + start.Format("2006-01-02 15:04:05"),
		"--until=" + end.Format("2006-01-02 15:04:05"),
		"--date=iso-strict",
		"--pretty=format:%H|%an|%ae|%ad|%s",
		"--all",
	}
	if author != "" {
		base = append(base, "--author="+author, "--regexp-ignore-case")
	}

	statOut, err := runLog(ctx, repoPath, append(append([]string{}, base...), "--numstat"))
	if err != nil {
		return nil, err
	}
	commits, err := parseLogOutput(statOut, repoPath)
	if err != nil {
		return nil, apperrors.ExtractionError(err, "failed to parse git log output").WithContext("repo", repoPath)
	}

	kindOut, err := runLog(ctx, repoPath, append(append([]string{}, base...), "--name-status"))
	if err != nil {
		return nil, err
	}
	applyChangeKinds(commits, parseChangeKinds(kindOut))

	// git's own --since/--until comparison is advisory; the half-open
	// window is enforced here so the bound is exact regardless of git
	// version or commit timezone.
	filtered := commits[:0]
	for _, c := range commits {
		if !c.Timestamp.Before(start) && c.Timestamp.Before(end) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// runLog executes one git log invocation in repoPath
func runLog(ctx context.Context, repoPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", apperrors.ExtractionError(err, "git log failed").
				WithContext("repo", repoPath).
				WithContext("stderr", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", apperrors.ExtractionError(err, "git log failed").WithContext("repo", repoPath)
	}
	return string(output), nil
}

// parseLogOutput turns raw numstat-pass output into CommitRecords. Each
// commit is a pipe-delimited header line followed by numstat rows; file
// kinds default to modified (renames are recognizable from the numstat
// rename syntax) until the name-status pass refines them.
func parseLogOutput(output, repoPath string) ([]models.CommitRecord, error) {
	var commits []models.CommitRecord
	var current *models.CommitRecord

	flush := func() {
		if current == nil {
			return
		}
		for i := range current.Files {
			current.Additions += current.Files[i].Additions
			current.Deletions += current.Files[i].Deletions
		}
		commits = append(commits, *current)
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if hash, author, email, ts, subject, ok := parseHeader(line); ok {
			flush()
			current = &models.CommitRecord{
				Hash:      hash,
				RepoPath:  repoPath,
				Author:    author,
				Email:     email,
				Timestamp: ts,
				Message:   subject,
			}
			continue
		}
		if current == nil {
			continue
		}

		if fc, ok := parseNumstat(line); ok {
			current.Files = append(current.Files, fc)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}
	return commits, nil
}

// parseChangeKinds turns name-status-pass output into a per-commit map
// of path to change kind
func parseChangeKinds(output string) map[string]map[string]models.ChangeKind {
	kinds := make(map[string]map[string]models.ChangeKind)
	var currentHash string

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if hash, _, _, _, _, ok := parseHeader(line); ok {
			currentHash = hash
			continue
		}
		if currentHash == "" {
			continue
		}
		if path, kind, ok := parseNameStatus(line); ok {
			if kinds[currentHash] == nil {
				kinds[currentHash] = make(map[string]models.ChangeKind)
			}
			kinds[currentHash][path] = kind
		}
	}
	return kinds
}

// applyChangeKinds merges the name-status pass into the numstat pass by
// hash and path
func applyChangeKinds(commits []models.CommitRecord, kinds map[string]map[string]models.ChangeKind) {
	for i := range commits {
		byPath := kinds[commits[i].Hash]
		if byPath == nil {
			continue
		}
		for j := range commits[i].Files {
			if kind, ok := byPath[commits[i].Files[j].Path]; ok {
				commits[i].Files[j].Kind = kind
			}
		}
	}
}

// parseHeader parses "hash|author|email|iso-date|subject"
func parseHeader(line string) (hash, author, email string, ts time.Time, subject string, ok bool) {
	parts := strings.SplitN(line, "|", 5)
	if len(parts) != 5 || len(parts[0]) < 7 || !isHex(parts[0]) {
		return "", "", "", time.Time{}, "", false
	}
	ts, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return "", "", "", time.Time{}, "", false
	}
	return parts[0], parts[1], parts[2], ts, parts[4], true
}

// parseNumstat parses "additions\tdeletions\tpath". Binary files
// (marked "-") are skipped by returning ok=false. Rename syntax in the
// path marks the change renamed; everything else starts as modified
// until the name-status pass refines it.
func parseNumstat(line string) (models.FileChange, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return models.FileChange{}, false
	}
	if parts[0] == "-" || parts[1] == "-" {
		return models.FileChange{}, false
	}
	additions, err1 := strconv.Atoi(parts[0])
	deletions, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return models.FileChange{}, false
	}
	kind := models.ChangeModified
	if strings.Contains(parts[2], " => ") {
		kind = models.ChangeRenamed
	}
	return models.FileChange{
		Path:      normalizeRename(parts[2]),
		Additions: additions,
		Deletions: deletions,
		Kind:      kind,
	}, true
}

// parseNameStatus parses "X\tpath" or "R<score>\told\tnew" lines
func parseNameStatus(line string) (path string, kind models.ChangeKind, ok bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 || parts[0] == "" {
		return "", "", false
	}
	switch parts[0][0] {
	case 'A':
		return parts[1], models.ChangeAdded, true
	case 'D':
		return parts[1], models.ChangeDeleted, true
	case 'M', 'T':
		return parts[1], models.ChangeModified, true
	case 'R', 'C':
		if len(parts) < 3 {
			return "", "", false
		}
		// keyed by destination path to match numstat normalization
		return parts[2], models.ChangeRenamed, true
	}
	return "", "", false
}

// normalizeRename collapses numstat rename syntax to the new path:
// "old => new" and "dir/{old => new}/file" both resolve to the
// destination.
func normalizeRename(path string) string {
	open := strings.Index(path, "{")
	arrow := strings.Index(path, " => ")
	if arrow < 0 {
		return path
	}
	if open >= 0 {
		end := strings.Index(path, "}")
		if end > arrow {
			collapsed := path[:open] + path[arrow+4:end] + path[end+1:]
			return strings.ReplaceAll(collapsed, "//", "/")
		}
	}
	return path[arrow+4:]
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// RemoteURL returns the origin remote URL for a repository, or empty
// if none is configured
func RemoteURL(ctx context.Context, repoPath string) string {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// ConfiguredUser returns the git user.name and user.email, used to
// derive a default author filter when none is configured
func ConfiguredUser() (name, email string) {
	if out, err := exec.Command("git", "config", "user.name").Output(); err == nil {
		name = strings.TrimSpace(string(out))
	}
	if out, err := exec.Command("git", "config", "user.email").Output(); err == nil {
		email = strings.TrimSpace(string(out))
	}
	return name, email
}
