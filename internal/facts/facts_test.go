// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/facts-engine/pkg/types"
)

// --- mock backends ---

// mockAnswers returns a canned answer and source list per question.
type mockAnswers struct {
	answers map[string]string
	sources map[string][]any
	failOn  string // question that triggers an error
	calls   int
}

func (m *mockAnswers) Query(_ context.Context, prompt, _ string, wantSources bool) (string, []any, error) {
	m.calls++
	if m.failOn != "" && prompt == m.failOn {
		return "", nil, fmt.Errorf("%w: boom", types.ErrRequestFailed)
	}
	var sources []any
	if wantSources {
		sources = m.sources[prompt]
	}
	return m.answers[prompt], sources, nil
}

// mockText returns scripted replies in order, repeating the last one.
type mockText struct {
	replies []string
	err     error
	calls   int
}

func (m *mockText) Ask(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	i := m.calls - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i], nil
}

// --- stripFences ---

func TestStripFences(t *testing.T) {
	clean := `{"questions": ["Q1", "Q2"]}`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", clean, clean},
		{"fenced with language tag", "```json\n" + clean + "\n```", clean + "\n"},
		{"bare fences", "```" + clean + "```", clean},
		{"surrounding backticks", "`" + clean + "`", clean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripFences(tt.in)
			if got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Stripping is idempotent.
			if again := stripFences(got); again != got {
				t.Errorf("second strip changed result: %q -> %q", got, again)
			}
		})
	}
}

// --- ParseQuestions ---

func TestParseQuestions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"two questions", `{"questions": ["Q1", "Q2"]}`, 2, false},
		{"empty array", `{"questions": []}`, 0, false},
		{"malformed json", `{"questions": ["Q1"`, 0, true},
		{"missing key", `{"items": ["Q1"]}`, 0, true},
		{"not an object", `["Q1"]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuestions(tt.in)
			if tt.wantErr {
				if !errors.Is(err, types.ErrInvalidFormat) {
					t.Fatalf("got %v, want ErrInvalidFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuestions: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d questions, want %d", len(got), tt.want)
			}
		})
	}
}

// --- normalizeSource ---

func TestNormalizeSource(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"object with url", map[string]any{"url": "http://x"}, "http://x"},
		{"bare string", "http://y", "http://y"},
		{"empty object", map[string]any{}, "No URL"},
		{"object with non-string url", map[string]any{"url": 42}, "No URL"},
		{"number", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeSource(tt.in); got != tt.want {
				t.Errorf("normalizeSource(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- CollectAnswers ---

func TestCollectAnswers(t *testing.T) {
	answers := &mockAnswers{
		answers: map[string]string{"Q1": "A1", "Q2": "A2"},
		sources: map[string][]any{
			"Q1": {"http://s1", map[string]any{"url": "http://s2"}},
		},
	}
	p := &Pipeline{Answers: answers}

	records, err := p.CollectAnswers(context.Background(), `{"questions": ["Q1", "Q2"]}`)
	if err != nil {
		t.Fatalf("CollectAnswers: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Answer != "A1" {
		t.Errorf("records[0].Answer = %q", records[0].Answer)
	}
	wantSources := []string{"http://s1", "http://s2"}
	if len(records[0].Sources) != 2 || records[0].Sources[0] != wantSources[0] || records[0].Sources[1] != wantSources[1] {
		t.Errorf("records[0].Sources = %v, want %v", records[0].Sources, wantSources)
	}
	if len(records[1].Sources) != 0 {
		t.Errorf("records[1].Sources = %v, want empty", records[1].Sources)
	}
}

func TestCollectAnswersInvalidJSON(t *testing.T) {
	p := &Pipeline{Answers: &mockAnswers{}}

	records, err := p.CollectAnswers(context.Background(), `not json`)
	if !errors.Is(err, types.ErrInvalidFormat) {
		t.Fatalf("got %v, want ErrInvalidFormat", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestCollectAnswersPartialOnFailure(t *testing.T) {
	answers := &mockAnswers{
		answers: map[string]string{"Q1": "A1", "Q3": "A3"},
		failOn:  "Q2",
	}
	var buf strings.Builder
	p := &Pipeline{Answers: answers, Out: &buf}

	records, err := p.CollectAnswers(context.Background(), `{"questions": ["Q1", "Q2", "Q3"]}`)
	if err != nil {
		t.Fatalf("CollectAnswers: %v", err)
	}
	// Partial-result policy: keep what was collected before the failure.
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Question != "Q1" {
		t.Errorf("records[0].Question = %q", records[0].Question)
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("expected a failure line in progress output, got %q", buf.String())
	}
}

// --- repairAndParse ---

func TestRepairAndParse(t *testing.T) {
	factJSON := `[{"title": "T", "content": "C", "citation": "U"}]`

	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"clean array", factJSON, 1, false},
		{"leading prose", "Here are the facts:\n" + factJSON, 1, false},
		{"trailing prose", factJSON + "\nHope this helps!", 1, false},
		{"fenced", "```json\n" + factJSON + "\n```", 1, false},
		{"whitespace", "  \n" + factJSON + "\n  ", 1, false},
		{"empty array", `[]`, 0, true},
		{"malformed interior", `[{"title": }]`, 0, true},
		{"no array at all", "I could not extract any facts.", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repairAndParse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("repairAndParse: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d facts, want %d", len(got), tt.want)
			}
		})
	}
}

// --- ExtractFacts ---

func TestExtractFacts(t *testing.T) {
	factJSON := `[{"title": "T1", "content": "C1", "citation": "http://s1"}]`
	records := []types.AnswerRecord{
		{Question: "Q1", Answer: "A1", Sources: []string{"http://s1"}},
		{Question: "Q2", Answer: "A2"},
	}

	p := &Pipeline{Text: &mockText{replies: []string{factJSON}}}

	summary := p.ExtractFacts(context.Background(), records)
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}
	if len(summary.Facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(summary.Facts))
	}
	if summary.Facts[0].Title != "T1" || summary.Facts[1].Title != "T1" {
		t.Errorf("unexpected titles: %+v", summary.Facts)
	}
}

func TestExtractFactsRetriesThenSucceeds(t *testing.T) {
	factJSON := `[{"title": "T", "content": "C", "citation": "U"}]`
	text := &mockText{replies: []string{"garbage", "still garbage", factJSON}}
	p := &Pipeline{Text: text}

	summary := p.ExtractFacts(context.Background(), []types.AnswerRecord{{Question: "Q", Answer: "A"}})
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}
	if len(summary.Facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(summary.Facts))
	}
	if text.calls != 3 {
		t.Errorf("backend called %d times, want 3", text.calls)
	}
}

func TestExtractFactsExhaustsRetries(t *testing.T) {
	text := &mockText{replies: []string{"never valid"}}
	var buf strings.Builder
	p := &Pipeline{Text: text, Out: &buf}

	summary := p.ExtractFacts(context.Background(), []types.AnswerRecord{{Question: "Q", Answer: "A"}})
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if len(summary.Facts) != 0 {
		t.Errorf("got %d facts, want 0", len(summary.Facts))
	}
	if text.calls != 3 {
		t.Errorf("backend called %d times, want 3", text.calls)
	}
	if !strings.Contains(buf.String(), "could not parse facts") {
		t.Errorf("expected parse warning, got %q", buf.String())
	}
	if !summary.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
}

func TestExtractFactsBackendErrorNeverRaises(t *testing.T) {
	text := &mockText{err: fmt.Errorf("%w: down", types.ErrRequestFailed)}
	p := &Pipeline{Text: text}

	summary := p.ExtractFacts(context.Background(), []types.AnswerRecord{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	})
	if summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2", summary.Failed)
	}
	if len(summary.Facts) != 0 {
		t.Errorf("got %d facts, want 0", len(summary.Facts))
	}
}

// --- end to end ---

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()

	answers := &mockAnswers{
		answers: map[string]string{"Q1": "A1", "Q2": "A2"},
		sources: map[string][]any{"Q1": {"http://s1"}},
	}
	// First reply is the question list, the rest are fact arrays.
	text := &mockText{replies: []string{
		`{"questions": ["Q1", "Q2"]}`,
		`[{"title": "T1", "content": "C1", "citation": "http://s1"}]`,
	}}

	p := &Pipeline{
		Answers: answers,
		Text:    text,
		Config:  types.PipelineConfig{ReportsDir: dir},
	}

	path, summary, err := p.Run(context.Background(), "climate change")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasSuffix(path, "facts_climate_change.txt") {
		t.Errorf("path = %q", path)
	}
	if len(summary.Facts) != 2 {
		t.Errorf("got %d facts, want 2", len(summary.Facts))
	}

	stats, err := ScanReports(dir)
	if err != nil {
		t.Fatalf("ScanReports: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d report files, want 1", len(stats))
	}
	if stats[0].FactCount != 2 {
		t.Errorf("FactCount = %d, want 2", stats[0].FactCount)
	}
	if stats[0].Topic != "Climate Change" {
		t.Errorf("Topic = %q", stats[0].Topic)
	}
}

func TestRunNoFactsWritesNothing(t *testing.T) {
	dir := t.TempDir()

	text := &mockText{replies: []string{
		`{"questions": ["Q1"]}`,
		"no facts here",
	}}
	p := &Pipeline{
		Answers: &mockAnswers{answers: map[string]string{"Q1": "A1"}},
		Text:    text,
		Config:  types.PipelineConfig{ReportsDir: dir},
	}

	path, summary, err := p.Run(context.Background(), "empty topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}

	stats, err := ScanReports(dir)
	if err != nil {
		t.Fatalf("ScanReports: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("got %d report files, want 0", len(stats))
	}
}
