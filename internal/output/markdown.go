// Package output renders the finalized aggregate and narrative into
// the report document. Pure formatting: no IO, no decisions about
// content.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/gitday/gitday/internal/models"
)

// ReportFileName returns the conventional report file name for a date
func ReportFileName(date time.Time) string {
	return fmt.Sprintf("daily_report_%s.md", date.Format("2006-01-02"))
}

// RenderMarkdown turns the aggregate plus narrative into the final
// Markdown report
func RenderMarkdown(agg *models.DayAggregate, narrative *models.ValueNarrative) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Work Report\n\n")
	fmt.Fprintf(&b, "**%s (%s)**\n\n", agg.Date.Format("2006-01-02"), agg.Date.Weekday())

	b.WriteString("## Summary\n\n")
	b.WriteString(narrative.Summary)
	b.WriteString("\n\n")

	if len(narrative.KeyValues) > 0 {
		b.WriteString("## Key Values\n\n")
		for _, v := range narrative.KeyValues {
			fmt.Fprintf(&b, "- %s\n", v)
		}
		b.WriteString("\n")
	}

	for _, repo := range agg.Repos {
		fmt.Fprintf(&b, "## %s\n\n", repo.Name)
		if repo.RemoteURL != "" {
			fmt.Fprintf(&b, "`%s`\n\n", repo.RemoteURL)
		}
		for i := range repo.Commits {
			c := &repo.Commits[i]
			fmt.Fprintf(&b, "- %s `%s` (+%d/-%d)\n", c.Subject(), c.Category, c.Additions, c.Deletions)
		}
		b.WriteString("\n")
	}

	if len(narrative.Achievements) > 0 {
		b.WriteString("## Achievements\n\n")
		for _, a := range narrative.Achievements {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Statistics\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Repositories | %d |\n", len(agg.Repos))
	fmt.Fprintf(&b, "| Commits | %d |\n", len(agg.Commits))
	fmt.Fprintf(&b, "| Files touched | %d |\n", agg.FilesTouched)
	fmt.Fprintf(&b, "| Lines added | +%d |\n", agg.TotalAdditions)
	fmt.Fprintf(&b, "| Lines deleted | -%d |\n", agg.TotalDeletions)
	b.WriteString("\n")

	if len(agg.Commits) > 0 {
		b.WriteString("### By category\n\n")
		for _, cat := range models.Categories {
			if count := agg.CategoryCounts[cat]; count > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", cat, count)
			}
		}
		b.WriteString("\n")
	}

	if narrative.NextSteps != "" {
		b.WriteString("## Suggested Next Steps\n\n")
		b.WriteString(narrative.NextSteps)
		b.WriteString("\n\n")
	}

	if len(agg.Failures) > 0 {
		b.WriteString("## Skipped Repositories\n\n")
		b.WriteString("These repositories could not be scanned; the report covers the rest.\n\n")
		for _, f := range agg.Failures {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Path, f.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Generated by gitday (%s)*", provenanceLabel(narrative))
	if narrative.AnalysisErr != "" {
		fmt.Fprintf(&b, " | *AI analysis failed: %s*", narrative.AnalysisErr)
	}
	b.WriteString("\n")

	return b.String()
}

func provenanceLabel(n *models.ValueNarrative) string {
	if n.Provenance == models.ProvenanceAI {
		return "ai analysis via " + n.Provider
	}
	return "keyword analysis"
}
