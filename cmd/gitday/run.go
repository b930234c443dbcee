package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gitday/gitday/internal/analyze"
	"github.com/gitday/gitday/internal/config"
	"github.com/gitday/gitday/internal/git"
	"github.com/gitday/gitday/internal/models"
	"github.com/gitday/gitday/internal/output"
	"github.com/gitday/gitday/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan repositories and generate the daily report",
	Long: `Scans every git repository under the target directory, extracts the
commits made on the target date, categorizes them, and writes the
Markdown report. When AI analysis is configured the report includes an
AI-generated narrative; otherwise a deterministic keyword-based
narrative is used, so a report is always produced.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("directory", "d", "", "directory to scan for repositories (default: current directory)")
	runCmd.Flags().String("project", "", "run against a registered project instead of a directory")
	runCmd.Flags().String("date", "", "target date, YYYY-MM-DD (default: today)")
	runCmd.Flags().String("author", "", "author filter (case-insensitive substring or pattern)")
	runCmd.Flags().StringP("output", "o", "", "output file path (default: <output-dir>/daily_report_DATE.md)")
	runCmd.Flags().Bool("no-ai", false, "skip AI analysis, use keyword-based narrative only")
	runCmd.Flags().String("provider", "", "AI provider: openai or gemini (default from config)")
	runCmd.Flags().Int("max-depth", 0, "maximum directory depth when locating repositories")

	runCmd.MarkFlagsMutuallyExclusive("directory", "project")
}

// runOptions carries the resolved parameters of one report run.
type runOptions struct {
	directory string
	author    string
	date      time.Time
	output    string
	maxDepth  int
}

func runRun(cmd *cobra.Command, args []string) error {
	directory, _ := cmd.Flags().GetString("directory")
	projectName, _ := cmd.Flags().GetString("project")
	dateStr, _ := cmd.Flags().GetString("date")
	authorFlag, _ := cmd.Flags().GetString("author")
	outputPath, _ := cmd.Flags().GetString("output")
	noAI, _ := cmd.Flags().GetBool("no-ai")
	provider, _ := cmd.Flags().GetString("provider")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	// Resolve the scan target. A registered project carries its own
	// path and optional author filter.
	var projectAuthor string
	if projectName != "" {
		reg, err := config.LoadProjects("")
		if err != nil {
			return err
		}
		project, ok := reg.Get(projectName)
		if !ok {
			return fmt.Errorf("unknown project %q (see 'gitday projects list')", projectName)
		}
		directory = project.Path
		projectAuthor = project.Author
	}
	if directory == "" {
		directory = cfg.Scan.Directory
	}

	date := time.Now()
	if dateStr != "" {
		parsed, err := parseDate(dateStr)
		if err != nil {
			return err
		}
		date = parsed
	}

	if noAI {
		cfg.AI.Enabled = false
	}
	if provider != "" {
		cfg.AI.Provider = provider
	}
	if maxDepth <= 0 {
		maxDepth = cfg.Scan.MaxDepth
	}

	return generateReport(cmd.Context(), runOptions{
		directory: directory,
		author:    resolveAuthor(authorFlag, projectAuthor),
		date:      date,
		output:    outputPath,
		maxDepth:  maxDepth,
	})
}

// generateReport runs the full pipeline for one day: locate
// repositories, aggregate commits, analyze, render, write.
func generateReport(ctx context.Context, opts runOptions) error {
	runID := uuid.NewString()[:8]
	log := slog.Default().With("component", "run", "run_id", runID)

	if opts.author != "" {
		logger.Infof("Author filter: %s", opts.author)
	}

	log.Info("run started",
		"directory", opts.directory,
		"date", opts.date.Format("2006-01-02"),
		"author", opts.author,
		"ai_enabled", cfg.AI.Enabled,
	)

	repos, err := git.FindRepos(opts.directory, opts.maxDepth)
	if err != nil {
		return err
	}
	logger.Infof("Found %d repositories under %s", len(repos), opts.directory)

	agg, err := report.Build(ctx, repos, opts.date, opts.author)
	if err != nil {
		return err
	}

	analyzer := analyze.New(ctx, cfg)
	narrative := analyzer.Analyze(ctx, agg)

	rendered := output.RenderMarkdown(agg, &narrative)

	outputPath := opts.output
	if outputPath == "" {
		outputPath = filepath.Join(cfg.Report.OutputDir, output.ReportFileName(agg.Date))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Infof("Report written: %s", outputPath)
	logger.Infof("Commits: %d across %d repositories (+%d/-%d lines)",
		len(agg.Commits), len(agg.Repos), agg.TotalAdditions, agg.TotalDeletions)
	for _, f := range agg.Failures {
		logger.Warnf("Skipped %s: %s", f.Path, f.Reason)
	}
	if narrative.Provenance != models.ProvenanceAI && cfg.AI.Enabled && narrative.AnalysisErr != "" {
		logger.Warnf("AI analysis failed, keyword narrative used: %s", narrative.AnalysisErr)
	}

	log.Info("run finished", "output", outputPath, "provenance", narrative.Provenance)
	return nil
}

// parseDate parses a YYYY-MM-DD date in the local time zone.
func parseDate(s string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return parsed, nil
}

// resolveAuthor picks the author filter by precedence: flag, project
// registry entry, global config, then the local git user when enabled.
func resolveAuthor(flagAuthor, projectAuthor string) string {
	if flagAuthor != "" {
		return flagAuthor
	}
	if projectAuthor != "" {
		return projectAuthor
	}
	if cfg.Scan.Author != "" {
		return cfg.Scan.Author
	}
	if cfg.Scan.UseGitUser {
		name, email := git.ConfiguredUser()
		if name != "" {
			return name
		}
		return email
	}
	return ""
}
