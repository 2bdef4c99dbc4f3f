// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>...",
	Short: "Generate and save sourced facts about a topic",
	Long: `Generate runs the full pipeline for one topic: question generation,
answer retrieval with citations, fact extraction, and report persistence.
The report is written to facts_<topic>.txt in the reports directory,
replacing any prior report for the same topic.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")

	p, cleanup, err := buildPipeline(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	path, summary, err := p.Run(cmd.Context(), topic)
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println("No facts were successfully extracted.")
		return nil
	}

	fmt.Printf("Saved %d facts to %s\n", len(summary.Facts), path)
	if summary.HasFailures() {
		fmt.Fprintf(os.Stderr, "%d answer(s) yielded no parseable facts\n", summary.Failed)
	}
	return nil
}

func init() {
	generateCmd.Flags().String("model", "", "answer model identifier")
	generateCmd.Flags().Int("questions", 0, "number of questions to generate per topic")
	generateCmd.Flags().Int("max-retries", 0, "extraction attempts per answer")

	viper.BindPFlag("sonar.model", generateCmd.Flags().Lookup("model"))
	viper.BindPFlag("pipeline.question_count", generateCmd.Flags().Lookup("questions"))
	viper.BindPFlag("pipeline.max_retries", generateCmd.Flags().Lookup("max-retries"))

	rootCmd.AddCommand(generateCmd)
}
