// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the facts-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/facts-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// resolveKey picks an API key in priority order: environment variable,
// .secrets/ file, config file value.
func resolveKey(envName, secretName, cfgValue string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if v, ok := loadedSecrets[secretName]; ok {
		return v
	}
	return cfgValue
}

// rootCmd is the base command for the facts-engine CLI. Invoked without a
// subcommand it starts the interactive menu.
var rootCmd = &cobra.Command{
	Use:   "facts-engine",
	Short: "Generate sourced facts about a topic with two LLM services",
	Long: `facts-engine turns a topic into a list of sourced facts. A generative
model proposes questions about the topic, a search-augmented model answers
each question with citations, and the generative model then extracts
{title, content, citation} facts from every answer. Results are saved as a
flat-text report per topic.

Run without arguments for the interactive menu, or use the generate,
stats, and index subcommands directly.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	RunE: runInteractive,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./facts-engine.yaml or ~/.config/facts-engine/config.yaml)")
	rootCmd.PersistentFlags().String("reports-dir", "", "directory for report files (default: current directory)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("facts-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "facts-engine"))
		}
	}

	viper.SetEnvPrefix("FACTS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
