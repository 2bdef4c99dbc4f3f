// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/facts-engine/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the local facts index (store, retrieve, export)",
	Long: `Index manages a local SQLite index built from the report files. The
report files stay authoritative; the index is derived from them and can
be rebuilt at any time. Use subcommands to ingest reports, search facts,
or export.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest report files into the facts index",
	Long: `Store re-parses facts_<topic>.txt files from the reports directory and
ingests them into a SQLite database with full-text indexing. Unchanged
reports are skipped on subsequent runs.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d report(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var indexRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search indexed facts with full-text search and filters",
	Long: `Retrieve searches the facts index with FTS5 full-text search over fact
titles and content, optionally filtered by topic.`,
	RunE: runIndexRetrieve,
}

func runIndexRetrieve(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := indexQueryOpts(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query or --topic")
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("%-4s  %-25s  %-40s  %s\n", "Rank", "Title", "Content", "Topic")
	fmt.Println(strings.Repeat("-", 95))

	for i, r := range results {
		title := r.Title
		if len(title) > 25 {
			title = title[:22] + "..."
		}
		content := r.Content
		if len(content) > 40 {
			content = content[:37] + "..."
		}
		fmt.Printf("%-4d  %-25s  %-40s  %s\n", i+1, title, content, r.Topic)
	}

	fmt.Printf("\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the facts index to YAML or JSON",
	Long: `Export writes the full facts index (or a topic-filtered subset) to
export.yaml or export.json in the index directory.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := indexQueryOpts(cmd, args)

	switch format {
	case "yaml", "":
		path, err := store.ExportYAML(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
	case "json":
		path, err := store.ExportJSON(cmd.Context(), opts)
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*index.Store, error) {
	cfg := currentConfig().Index
	if dir, _ := cmd.Flags().GetString("index-dir"); dir != "" {
		cfg.IndexDir = dir
	}
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.MaxResults = maxResults
	}
	return index.NewStore(cfg, reportsDir(cmd))
}

func indexQueryOpts(cmd *cobra.Command, args []string) index.QueryOptions {
	topic, _ := cmd.Flags().GetString("topic")
	return index.QueryOptions{
		Query:     strings.Join(args, " "),
		TopicSlug: topicSlug(topic),
	}
}

// topicSlug accepts either the human-readable topic or the slug form and
// normalizes to the slug.
func topicSlug(topic string) string {
	return strings.ReplaceAll(strings.ToLower(topic), " ", "_")
}

func init() {
	for _, c := range []*cobra.Command{indexStoreCmd, indexRetrieveCmd, indexExportCmd} {
		c.Flags().String("index-dir", "", "directory for the index database (default: index)")
	}
	indexRetrieveCmd.Flags().String("topic", "", "filter by topic")
	indexRetrieveCmd.Flags().Int("max-results", 0, "maximum number of results")
	indexRetrieveCmd.Flags().Bool("json", false, "output results as JSON")
	indexExportCmd.Flags().String("topic", "", "filter by topic")
	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	indexCmd.AddCommand(indexStoreCmd, indexRetrieveCmd, indexExportCmd)
	rootCmd.AddCommand(indexCmd)
}
