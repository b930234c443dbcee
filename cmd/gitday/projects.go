package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitday/gitday/internal/config"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage registered project directories",
	Long: `Registered projects are named shortcuts for repository roots. A
project can carry its own author filter, applied whenever the report is
run against it with --project.`,
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Register a project directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		author, _ := cmd.Flags().GetString("author")

		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("cannot access %s: %w", args[0], err)
		}

		reg, err := config.LoadProjects("")
		if err != nil {
			return err
		}
		stored, err := reg.Add(args[0], name, author)
		if err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("Registered project %q\n", stored)
		return nil
	},
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadProjects("")
		if err != nil {
			return err
		}
		names := reg.Names()
		if len(names) == 0 {
			fmt.Println("No projects registered. Use 'gitday projects add <path>'.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH\tAUTHOR")
		for _, name := range names {
			p, _ := reg.Get(name)
			author := p.Author
			if author == "" {
				author = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, p.Path, author)
		}
		return w.Flush()
	},
}

var projectsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadProjects("")
		if err != nil {
			return err
		}
		if !reg.Remove(args[0]) {
			return fmt.Errorf("unknown project: %s", args[0])
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("Removed project %q\n", args[0])
		return nil
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update a registered project's path, author, or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newPath, _ := cmd.Flags().GetString("path")
		newAuthor, _ := cmd.Flags().GetString("author")
		newName, _ := cmd.Flags().GetString("name")
		if newPath == "" && newAuthor == "" && newName == "" {
			return fmt.Errorf("nothing to update: pass --path, --author, or --name")
		}

		reg, err := config.LoadProjects("")
		if err != nil {
			return err
		}
		if err := reg.Update(args[0], newPath, newAuthor, newName); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Printf("Updated project %q\n", args[0])
		return nil
	},
}

func init() {
	projectsAddCmd.Flags().String("name", "", "project name (default: directory basename)")
	projectsAddCmd.Flags().String("author", "", "author filter applied when running against this project")

	projectsUpdateCmd.Flags().String("path", "", "new directory path")
	projectsUpdateCmd.Flags().String("author", "", "new author filter")
	projectsUpdateCmd.Flags().String("name", "", "new project name")

	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsRemoveCmd)
	projectsCmd.AddCommand(projectsUpdateCmd)
}
