// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/canvas-export/internal/export"
	"github.com/pdiddy/canvas-export/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list <course_id> [token_env]",
	Short: "List the pages an export would write",
	Long: `List walks the course's modules and prints the pages whose category
matches, without fetching page bodies or touching the filesystem. Use --all
to include pages in every category.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "output pages as JSON")
	listCmd.Flags().Bool("yaml", false, "output pages as YAML")
	listCmd.Flags().Bool("all", false, "list every page, not only matching ones")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	courseID, err := export.ParseCourseID(args[0])
	if err != nil {
		return err
	}
	token, err := resolveToken(cmd, tokenEnvName(cmd, args), defaultResolver())
	if err != nil {
		return err
	}

	e, err := export.New(courseID, token, canvasConfig(), exportConfig(), export.WithLogger(log))
	if err != nil {
		return err
	}
	all, matched, err := e.Pages(cmd.Context())
	if err != nil {
		return err
	}

	pages := matched
	if showAll, _ := cmd.Flags().GetBool("all"); showAll {
		pages = all
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOutput && yamlOutput:
		return fmt.Errorf("%w: --json and --yaml are mutually exclusive", types.ErrConfiguration)
	case jsonOutput:
		return writeJSON(cmd.OutOrStdout(), pages)
	case yamlOutput:
		return writeYAML(cmd.OutOrStdout(), pages)
	}
	writeTable(cmd.OutOrStdout(), pages, len(all))
	return nil
}

func writeJSON(w io.Writer, pages []types.PageSummary) error {
	if pages == nil {
		pages = []types.PageSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pages)
}

func writeYAML(w io.Writer, pages []types.PageSummary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, pages []types.PageSummary, listed int) {
	if len(pages) == 0 {
		fmt.Fprintf(w, "No matching pages (%d listed).\n", listed)
		return
	}
	fmt.Fprintf(w, "%-6s  %-14s  %-40s  %s\n", "MODULE", "CATEGORY", "NAME", "SLUG")
	for _, p := range pages {
		fmt.Fprintf(w, "%-6d  %-14s  %-40s  %s\n",
			p.Module, truncate(p.Category, 14), truncate(p.Name, 40), p.Slug)
	}
	fmt.Fprintf(w, "\n%d of %d pages\n", len(pages), listed)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
