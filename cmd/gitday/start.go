package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitday/gitday/internal/config"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Pick a registered project interactively and generate its report",
	Long: `Shows a numbered menu of registered projects, asks for the target date,
and runs the daily report for the chosen project. The last menu entry
scans the configured default directory instead of a registered project.

Register projects first with 'gitday projects add'.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	reg, err := config.LoadProjects("")
	if err != nil {
		return err
	}
	names := reg.Names()

	fmt.Println("📋 gitday")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	if len(names) == 0 {
		fmt.Println("No projects registered yet (see 'gitday projects add').")
	}
	for i, name := range names {
		project, _ := reg.Get(name)
		fmt.Printf("  %d. %s (%s)\n", i+1, name, project.Path)
	}
	fmt.Printf("  %d. Scan default directory (%s)\n", len(names)+1, cfg.Scan.Directory)
	fmt.Println()
	fmt.Printf("Select a project (1-%d): ", len(names)+1)

	choice, err := parseMenuChoice(readLine(reader), len(names)+1)
	if err != nil {
		return err
	}

	directory := cfg.Scan.Directory
	var projectAuthor string
	if choice <= len(names) {
		project, _ := reg.Get(names[choice-1])
		directory = project.Path
		projectAuthor = project.Author
	}

	fmt.Print("Target date (YYYY-MM-DD, Enter for today): ")
	date := time.Now()
	if response := readLine(reader); response != "" {
		date, err = parseDate(response)
		if err != nil {
			return err
		}
	}
	fmt.Println()

	return generateReport(cmd.Context(), runOptions{
		directory: directory,
		author:    resolveAuthor("", projectAuthor),
		date:      date,
		maxDepth:  cfg.Scan.MaxDepth,
	})
}

// parseMenuChoice validates a 1-based menu selection against the number
// of entries shown.
func parseMenuChoice(input string, entries int) (int, error) {
	if input == "" {
		return 0, fmt.Errorf("no selection made")
	}
	choice, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid selection %q: enter a number between 1 and %d", input, entries)
	}
	if choice < 1 || choice > entries {
		return 0, fmt.Errorf("selection %d out of range: enter a number between 1 and %d", choice, entries)
	}
	return choice, nil
}
