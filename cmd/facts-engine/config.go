// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/facts-engine/internal/facts"
	"github.com/pdiddy/facts-engine/internal/gemini"
	"github.com/pdiddy/facts-engine/internal/sonar"
	"github.com/pdiddy/facts-engine/pkg/types"
)

// currentConfig assembles the stage configuration from viper, which has
// already merged config file, environment, and defaults.
func currentConfig() types.Config {
	cfg := types.Config{}

	cfg.Sonar.Model = viper.GetString("sonar.model")
	cfg.Sonar.APIKey = viper.GetString("sonar.api_key")
	cfg.Sonar.Timeout = viper.GetDuration("sonar.timeout")
	cfg.Sonar.UserAgent = viper.GetString("sonar.user_agent")
	if cfg.Sonar.UserAgent == "" {
		cfg.Sonar.UserAgent = "facts-engine/" + version
	}

	cfg.Gemini.Model = viper.GetString("gemini.model")
	cfg.Gemini.APIKey = viper.GetString("gemini.api_key")

	cfg.Pipeline.QuestionCount = viper.GetInt("pipeline.question_count")
	cfg.Pipeline.MaxRetries = viper.GetInt("pipeline.max_retries")
	cfg.Pipeline.ReportsDir = viper.GetString("pipeline.reports_dir")

	cfg.Index.IndexDir = viper.GetString("index.index_dir")
	cfg.Index.MaxResults = viper.GetInt("index.max_results")

	return cfg
}

// reportsDir resolves the reports directory: flag, then config, then the
// current directory.
func reportsDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("reports-dir"); dir != "" {
		return dir
	}
	if dir := viper.GetString("pipeline.reports_dir"); dir != "" {
		return dir
	}
	return "."
}

// buildPipeline constructs both API clients and the pipeline. The
// returned cleanup function closes the generative client. Missing
// credentials fail here, before any network call.
func buildPipeline(ctx context.Context, cmd *cobra.Command) (*facts.Pipeline, func(), error) {
	cfg := currentConfig()
	cfg.Pipeline.ReportsDir = reportsDir(cmd)

	cfg.Sonar.APIKey = resolveKey("PERPLEXITY_API_KEY", "perplexity-api-key", cfg.Sonar.APIKey)
	cfg.Gemini.APIKey = resolveKey("GEMINI_API_KEY", "gemini-api-key", cfg.Gemini.APIKey)

	answerClient, err := sonar.NewClient(cfg.Sonar)
	if err != nil {
		return nil, nil, err
	}

	textClient, err := gemini.NewClient(ctx, cfg.Gemini)
	if err != nil {
		return nil, nil, err
	}

	p := &facts.Pipeline{
		Answers: answerClient,
		Text:    textClient,
		Config:  cfg.Pipeline,
		Out:     os.Stderr,
	}

	cleanup := func() {
		if err := textClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing genai client: %v\n", err)
		}
	}
	return p, cleanup, nil
}
