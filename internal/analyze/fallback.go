package analyze

import (
	"fmt"

	"github.com/gitday/gitday/internal/models"
)

// headlines maps the plurality category to the fallback summary. Fixed
// templates keep this path deterministic and total.
var headlines = map[models.Category]string{
	models.CategoryFeature:  "Focused on building new functionality",
	models.CategoryBugfix:   "Focused on stabilizing and fixing defects",
	models.CategoryRefactor: "Focused on restructuring and code health",
	models.CategoryDocs:     "Focused on documentation",
	models.CategoryTest:     "Focused on test coverage",
	models.CategoryChore:    "Focused on maintenance and housekeeping",
	models.CategoryOther:    "Worked across miscellaneous changes",
}

// cleanupDeletionThreshold is the deletion count past which, combined
// with deletions outnumbering additions, the day earns a cleanup bullet
const cleanupDeletionThreshold = 100

// Fallback derives a narrative purely from the category histogram and
// line-delta magnitudes. Deterministic and total: it is the guaranteed
// answer whenever the AI path is disabled, uncredentialed, or failed.
func Fallback(agg *models.DayAggregate) models.ValueNarrative {
	if agg.Empty() {
		n := models.ValueNarrative{
			Summary:    "No commits were recorded for this day.",
			Provenance: models.ProvenanceFallback,
		}
		if len(agg.Failures) > 0 {
			n.KeyValues = []string{fmt.Sprintf("%d repositories could not be scanned", len(agg.Failures))}
		}
		return n
	}

	plurality := pluralityCategory(agg.CategoryCounts)

	var keyValues []string
	keyValues = append(keyValues, fmt.Sprintf("%s: %d commits across %d repositories",
		headlines[plurality], len(agg.Commits), len(agg.Repos)))
	for _, cat := range models.Categories {
		if count := agg.CategoryCounts[cat]; count > 0 {
			keyValues = append(keyValues, fmt.Sprintf("%d %s commit(s)", count, cat))
		}
	}
	keyValues = append(keyValues, fmt.Sprintf("+%d/-%d lines over %d files",
		agg.TotalAdditions, agg.TotalDeletions, agg.FilesTouched))
	if agg.TotalDeletions > agg.TotalAdditions && agg.TotalDeletions >= cleanupDeletionThreshold {
		keyValues = append(keyValues, "Net code removal: significant cleanup or dead-code deletion")
	}

	achievements := make([]string, 0, len(agg.Repos))
	for _, repo := range agg.Repos {
		var adds, dels int
		for i := range repo.Commits {
			adds += repo.Commits[i].Additions
			dels += repo.Commits[i].Deletions
		}
		achievements = append(achievements, fmt.Sprintf("%s: %d commit(s), +%d/-%d lines",
			repo.Name, len(repo.Commits), adds, dels))
	}

	return models.ValueNarrative{
		Summary:      fmt.Sprintf("%s (%d commits).", headlines[plurality], len(agg.Commits)),
		KeyValues:    keyValues,
		Achievements: achievements,
		Provenance:   models.ProvenanceFallback,
	}
}

// pluralityCategory picks the most frequent category; ties resolve in
// fixed display order so the result is deterministic
func pluralityCategory(counts map[models.Category]int) models.Category {
	best := models.CategoryOther
	bestCount := -1
	for _, cat := range models.Categories {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}
