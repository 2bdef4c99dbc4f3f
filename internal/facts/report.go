// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/facts-engine/pkg/types"
)

const (
	reportPrefix = "facts_"
	reportSuffix = ".txt"
	ruleWidth    = 50
)

// TopicFilename derives the report filename from a topic: lowercase,
// spaces replaced by underscores. The same topic always maps to the same
// file, so re-running a topic overwrites the prior report.
func TopicFilename(topic string) string {
	return reportPrefix + strings.ReplaceAll(strings.ToLower(topic), " ", "_") + reportSuffix
}

// TopicFromFilename reverses the filename transform: underscores back to
// spaces, each word title-cased. Case lost by the transform is not
// recoverable exactly.
func TopicFromFilename(name string) string {
	slug := strings.TrimSuffix(strings.TrimPrefix(name, reportPrefix), reportSuffix)
	return titleCase(strings.ReplaceAll(slug, "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RenderReport formats facts as the flat-text report: a topic header and
// rule of equals signs, then one three-line block per fact separated by
// a rule of dashes.
func RenderReport(topic string, facts []types.Fact) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Facts about: %s\n", topic)
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	for _, f := range facts {
		fmt.Fprintf(&sb, "Title: %s\n", f.Title)
		fmt.Fprintf(&sb, "Content: %s\n", f.Content)
		fmt.Fprintf(&sb, "Citation: %s\n", f.Citation)
		sb.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
	}

	return sb.String()
}

// SaveReport writes the report for a topic into dir, replacing any prior
// report for the same topic. It returns the written path.
func SaveReport(dir, topic string, facts []types.Fact) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, TopicFilename(topic))
	if err := os.WriteFile(path, []byte(RenderReport(topic, facts)), 0o644); err != nil {
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	return path, nil
}

// ParseReport reads fact blocks back out of report text. Only lines with
// the block prefixes are considered; rules and headers are skipped.
func ParseReport(content string) []types.Fact {
	var facts []types.Fact
	var current *types.Fact

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "Title: "):
			if current != nil {
				facts = append(facts, *current)
			}
			current = &types.Fact{Title: strings.TrimPrefix(line, "Title: ")}
		case strings.HasPrefix(line, "Content: ") && current != nil:
			current.Content = strings.TrimPrefix(line, "Content: ")
		case strings.HasPrefix(line, "Citation: ") && current != nil:
			current.Citation = strings.TrimPrefix(line, "Citation: ")
		}
	}
	if current != nil {
		facts = append(facts, *current)
	}

	return facts
}

// ScanReports enumerates report files in dir and counts the facts in
// each by counting occurrences of the literal "Title:" token. A fact
// whose content itself contains "Title:" over-counts; the index gives an
// exact count when that matters.
func ScanReports(dir string) ([]types.ReportStat, error) {
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading reports directory %s: %w", dir, err)
	}

	var stats []types.ReportStat
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportSuffix) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading report %s: %w", name, err)
		}

		stats = append(stats, types.ReportStat{
			Topic:     TopicFromFilename(name),
			FactCount: strings.Count(string(data), "Title:"),
			Filename:  name,
		})
	}

	return stats, nil
}
