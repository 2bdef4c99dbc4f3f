// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package facts turns a topic into a list of sourced facts: generate
// candidate questions, retrieve cited answers for each, extract
// {title, content, citation} triples from each answer, aggregate, and
// persist a flat-text report.
package facts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/facts-engine/pkg/types"
)

const (
	defaultQuestionCount = 15
	defaultMaxRetries    = 3
)

// AnswerBackend abstracts the search-augmented answer API so tests can
// supply a mock. An empty model selects the backend's default.
type AnswerBackend interface {
	Query(ctx context.Context, prompt, model string, wantSources bool) (string, []any, error)
}

// TextBackend abstracts the generative-text API.
type TextBackend interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Pipeline runs the topic → questions → answers → facts sequence. All
// steps are synchronous; every call blocks until the upstream returns.
type Pipeline struct {
	Answers AnswerBackend
	Text    TextBackend
	Config  types.PipelineConfig

	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

func (p *Pipeline) progress() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

func (p *Pipeline) questionCount() int {
	if p.Config.QuestionCount > 0 {
		return p.Config.QuestionCount
	}
	return defaultQuestionCount
}

func (p *Pipeline) maxRetries() int {
	if p.Config.MaxRetries > 0 {
		return p.Config.MaxRetries
	}
	return defaultMaxRetries
}

// GenerateQuestions asks the text backend for questions about the topic
// and returns the fence-stripped reply as-is. The reply is NOT validated
// as JSON here; the first parse happens in CollectAnswers, so a malformed
// question list only fails there.
func (p *Pipeline) GenerateQuestions(ctx context.Context, topic string) (string, error) {
	prompt, err := renderQuestionsPrompt(topic, p.questionCount())
	if err != nil {
		return "", fmt.Errorf("rendering questions prompt: %w", err)
	}

	reply, err := p.Text.Ask(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating questions: %w", err)
	}

	return stripFences(reply), nil
}

// stripFences removes markdown code-fence artifacts from a model reply:
// surrounding backticks, a leading "json" language tag, and any remaining
// triple-backtick runs. Stripping an already-clean string is a no-op.
func stripFences(s string) string {
	s = strings.Trim(s, "`")
	s = strings.ReplaceAll(s, "json\n", "")
	s = strings.ReplaceAll(s, "```", "")
	return s
}

// questionList is the expected shape of the question-generation reply.
type questionList struct {
	Questions []string `json:"questions"`
}

// ParseQuestions decodes a question list. A decode failure or a missing
// questions array is an ErrInvalidFormat, fatal to the topic run.
func ParseQuestions(questionsJSON string) ([]string, error) {
	var list questionList
	if err := json.Unmarshal([]byte(questionsJSON), &list); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidFormat, err)
	}
	if list.Questions == nil {
		return nil, fmt.Errorf("%w: missing questions array", types.ErrInvalidFormat)
	}
	return list.Questions, nil
}

// CollectAnswers parses the question list and retrieves a cited answer
// for each question in order. A parse failure returns ErrInvalidFormat
// and zero records. A failed query mid-loop logs the error and returns
// whatever was collected so far with a nil error; partial results are
// preferred over a hard failure.
func (p *Pipeline) CollectAnswers(ctx context.Context, questionsJSON string) ([]types.AnswerRecord, error) {
	questions, err := ParseQuestions(questionsJSON)
	if err != nil {
		return nil, err
	}

	w := p.progress()
	var records []types.AnswerRecord

	for i, q := range questions {
		fmt.Fprintf(w, "answering %d/%d\n", i+1, len(questions))

		answer, sources, err := p.Answers.Query(ctx, q, "", true)
		if err != nil {
			fmt.Fprintf(w, "failed  question %d: %v\n", i+1, err)
			return records, nil
		}

		urls := make([]string, 0, len(sources))
		for _, src := range sources {
			urls = append(urls, normalizeSource(src))
		}

		records = append(records, types.AnswerRecord{
			Question: q,
			Answer:   answer,
			Sources:  urls,
		})
	}

	return records, nil
}

// normalizeSource turns one citation entry into a URL string. Objects
// carry the URL in a "url" field, with "No URL" when the field is absent;
// anything else is stringified directly.
func normalizeSource(src any) string {
	if m, ok := src.(map[string]any); ok {
		if url, ok := m["url"].(string); ok {
			return url
		}
		return "No URL"
	}
	if s, ok := src.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", src)
}

// ExtractSummary carries the aggregated facts together with the number
// of answer records whose extraction attempts were exhausted, so callers
// can see both successes and losses in one value.
type ExtractSummary struct {
	Facts  []types.Fact
	Failed int
}

// HasFailures reports whether any answer record yielded no facts.
func (s ExtractSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractFacts asks the text backend to pull facts out of each answer
// record, in order. Each record gets up to MaxRetries attempts; every
// attempt re-asks the model and runs the parsed reply through
// repairAndParse. Exhausted attempts are counted and the pipeline moves
// on — ExtractFacts never fails the run.
func (p *Pipeline) ExtractFacts(ctx context.Context, records []types.AnswerRecord) ExtractSummary {
	w := p.progress()
	maxRetries := p.maxRetries()

	var summary ExtractSummary

	for i, rec := range records {
		fmt.Fprintf(w, "analyzing %d/%d\n", i+1, len(records))

		prompt, err := renderExtractionPrompt(rec)
		if err != nil {
			fmt.Fprintf(w, "failed  answer %d: %v\n", i+1, err)
			summary.Failed++
			continue
		}

		extracted := false
		for attempt := 1; attempt <= maxRetries; attempt++ {
			reply, err := p.Text.Ask(ctx, prompt)
			if err != nil {
				if attempt == maxRetries {
					fmt.Fprintf(w, "failed  answer %d: %v\n", i+1, err)
				}
				continue
			}

			parsed, err := repairAndParse(reply)
			if err != nil {
				if attempt == maxRetries {
					fmt.Fprintf(w, "warning: could not parse facts from answer %d after %d attempts\n", i+1, maxRetries)
				}
				continue
			}

			summary.Facts = append(summary.Facts, parsed...)
			extracted = true
			break
		}

		if !extracted {
			summary.Failed++
		}
	}

	return summary
}

// repairAndParse applies a heuristic repair to a model reply and decodes
// it as a fact array: trim whitespace, discard anything before the first
// "[" and after the last "]", then parse. Malformed interior content
// still fails, and an empty array counts as a failure so the caller
// retries.
func repairAndParse(text string) ([]types.Fact, error) {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "[") {
		if idx := strings.Index(text, "["); idx >= 0 {
			text = text[idx:]
		}
	}
	if !strings.HasSuffix(text, "]") {
		if idx := strings.LastIndex(text, "]"); idx >= 0 {
			text = text[:idx+1]
		}
	}

	var parsed []types.Fact
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing fact array: %w", err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("empty fact array")
	}
	return parsed, nil
}

// Run executes the whole pipeline for one topic and saves the report.
// It returns the report path (empty when no facts were extracted) and
// the extraction summary.
func (p *Pipeline) Run(ctx context.Context, topic string) (string, ExtractSummary, error) {
	questionsJSON, err := p.GenerateQuestions(ctx, topic)
	if err != nil {
		return "", ExtractSummary{}, err
	}

	records, err := p.CollectAnswers(ctx, questionsJSON)
	if err != nil {
		return "", ExtractSummary{}, err
	}

	summary := p.ExtractFacts(ctx, records)
	if len(summary.Facts) == 0 {
		return "", summary, nil
	}

	path, err := SaveReport(p.Config.ReportsDir, topic, summary.Facts)
	if err != nil {
		return "", summary, err
	}
	return path, summary, nil
}
