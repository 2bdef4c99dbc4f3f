// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/facts-engine/internal/facts"
	"github.com/pdiddy/facts-engine/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize previously generated report files",
	Long: `Stats scans the reports directory for facts_<topic>.txt files and
prints the fact count per topic. Counts come from occurrences of the
"Title:" token in each file, so fact content containing that token
over-counts; use "index retrieve" for exact counts.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := facts.ScanReports(reportsDir(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	printStats(stats)
	return nil
}

func printStats(stats []types.ReportStat) {
	if len(stats) == 0 {
		fmt.Println("No fact files found.")
		return
	}

	fmt.Printf("%-30s%-15s%s\n", "Topic", "Facts Count", "Filename")
	fmt.Println(strings.Repeat("-", 60))

	total := 0
	for _, s := range stats {
		topic := s.Topic
		if len(topic) > 28 {
			topic = topic[:28]
		}
		fmt.Printf("%-30s%-15d%s\n", topic, s.FactCount, s.Filename)
		total += s.FactCount
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Total facts generated: %d\n", total)
}

func init() {
	statsCmd.Flags().Bool("json", false, "output stats as JSON")

	rootCmd.AddCommand(statsCmd)
}
