package analyze

import (
	"fmt"
	"strings"

	"github.com/gitday/gitday/internal/models"
)

// maxPromptChars caps the serialized commit list so a heavy day cannot
// blow past the provider's context window
const maxPromptChars = 12000

// maxFilesPerCommit limits how many file paths each commit contributes
const maxFilesPerCommit = 5

const systemPrompt = `You summarize a developer's daily git activity for a work journal.
You are given the day's commits grouped by repository, each with a
category label and line-change counts. Respond with a single JSON
object and nothing else, using this schema:
{
  "summary": "one-sentence overview of the day",
  "key_values": ["business or engineering value delivered, one per entry"],
  "achievements": ["concrete accomplishment with brief detail, one per entry"],
  "next_steps": "optional suggestion for tomorrow"
}
Do not copy commit subjects verbatim and do not include conventional
commit prefixes like "feat:" or "fix:". Describe value, not mechanics.`

// BuildPrompt serializes the aggregate into a bounded prompt: subject,
// category, and diff stats per commit, grouped by repository.
func BuildPrompt(agg *models.DayAggregate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Date: %s\n", agg.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Totals: %d commits, +%d/-%d lines, %d files\n",
		len(agg.Commits), agg.TotalAdditions, agg.TotalDeletions, agg.FilesTouched)

	for _, repo := range agg.Repos {
		fmt.Fprintf(&b, "\n[%s]\n", repo.Name)
		for i := range repo.Commits {
			c := &repo.Commits[i]
			fmt.Fprintf(&b, "- %s [%s] (+%d/-%d)\n", c.Subject(), c.Category, c.Additions, c.Deletions)
			if len(c.Files) > 0 {
				fmt.Fprintf(&b, "  files: %s\n", fileList(c.Files))
			}
			if b.Len() > maxPromptChars {
				b.WriteString("... (truncated)\n")
				return b.String()
			}
		}
	}
	return b.String()
}

func fileList(files []models.FileChange) string {
	n := len(files)
	shown := files
	if n > maxFilesPerCommit {
		shown = files[:maxFilesPerCommit]
	}
	paths := make([]string, len(shown))
	for i, f := range shown {
		paths[i] = f.Path
	}
	out := strings.Join(paths, ", ")
	if n > maxFilesPerCommit {
		out += fmt.Sprintf(" and %d more", n-maxFilesPerCommit)
	}
	return out
}
