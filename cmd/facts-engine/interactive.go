// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/facts-engine/internal/facts"
)

const menu = `
=== Facts Engine ===
  [1] Generate facts about a topic
  [2] View previous facts statistics
  [3] Exit
`

// runInteractive drives the menu loop. Any error during a topic run is
// printed and the menu is shown again; the process exits only on option
// 3, EOF, or interrupt.
func runInteractive(cmd *cobra.Command, args []string) error {
	in := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(menu)
		fmt.Print("Enter your choice (1-3): ")
		if !in.Scan() {
			return in.Err()
		}

		switch strings.TrimSpace(in.Text()) {
		case "1":
			if err := topicLoop(cmd, in); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case "2":
			stats, err := facts.ScanReports(reportsDir(cmd))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			printStats(stats)
		case "3":
			fmt.Println("Goodbye.")
			return nil
		default:
			fmt.Println("Invalid choice! Please try again.")
		}
	}
}

// topicLoop reads topics and runs the pipeline for each until the user
// types quit/exit/q or input ends. A failed run is printed and the loop
// continues with the next topic.
func topicLoop(cmd *cobra.Command, in *bufio.Scanner) error {
	p, cleanup, err := buildPipeline(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Type 'quit' to return to the menu.")

	for {
		fmt.Print("\nEnter a topic: ")
		if !in.Scan() {
			return in.Err()
		}

		topic := strings.TrimSpace(in.Text())
		switch strings.ToLower(topic) {
		case "quit", "exit", "q":
			return nil
		case "":
			continue
		}

		if err := runTopic(cmd, p, topic); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// runTopic runs the pipeline step by step so the generated questions can
// be shown before the answer phase starts.
func runTopic(cmd *cobra.Command, p *facts.Pipeline, topic string) error {
	ctx := cmd.Context()

	fmt.Printf("Generating questions for %q...\n", topic)
	questionsJSON, err := p.GenerateQuestions(ctx, topic)
	if err != nil {
		return err
	}

	fmt.Println("Generated questions:")
	fmt.Println(questionsJSON)

	fmt.Println("\nGathering answers...")
	records, err := p.CollectAnswers(ctx, questionsJSON)
	if err != nil {
		return err
	}

	fmt.Println("\nAnalyzing answers...")
	summary := p.ExtractFacts(ctx, records)
	if len(summary.Facts) == 0 {
		fmt.Println("No facts were successfully extracted.")
		return nil
	}

	path, err := facts.SaveReport(p.Config.ReportsDir, topic, summary.Facts)
	if err != nil {
		return err
	}

	fmt.Printf("Saved %d facts to %s\n", len(summary.Facts), path)
	if summary.HasFailures() {
		fmt.Printf("%d answer(s) yielded no parseable facts\n", summary.Failed)
	}
	return nil
}
