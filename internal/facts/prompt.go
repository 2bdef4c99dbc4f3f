// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package facts

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/facts-engine/pkg/types"
)

// questionsPromptTmpl asks the generative model for candidate questions
// about a topic, formatted as a single JSON object.
var questionsPromptTmpl = template.Must(template.New("questions").Parse(
	`Generate {{.Count}} questions one might ask about the topic: "{{.Topic}}" when learning about it or preparing for a debate. Output the questions in this json format: { "questions": [ "question1", "question2", ... ] }`))

// extractionPromptTmpl asks the generative model to pull facts out of one
// answer record. It demands a bare JSON array so the response can be
// parsed directly; the model does not always comply, which is what the
// repair-and-parse retries are for.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(
	`You are a fact extractor. Extract as many facts as possible from this answer and its sources.

Question: {{.Question}}
Answer: {{.Answer}}
Sources: {{.Sources}}

Return a JSON array of facts exactly like this example, with no other text:
[
    {
        "title": "Clear Concise Title",
        "content": "Detailed fact statement",
        "citation": "URL from the provided sources, or 'No specific citation' if none"
    }
]`))

// renderQuestionsPrompt fills the question-generation template.
func renderQuestionsPrompt(topic string, count int) (string, error) {
	var buf bytes.Buffer
	err := questionsPromptTmpl.Execute(&buf, struct {
		Topic string
		Count int
	}{Topic: topic, Count: count})
	return buf.String(), err
}

// renderExtractionPrompt fills the fact-extraction template for one
// answer record. Empty source lists become a literal placeholder so the
// model does not invent citations.
func renderExtractionPrompt(rec types.AnswerRecord) (string, error) {
	sources := "No sources available"
	if len(rec.Sources) > 0 {
		sources = strings.Join(rec.Sources, "\n")
	}

	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, struct {
		Question string
		Answer   string
		Sources  string
	}{Question: rec.Question, Answer: rec.Answer, Sources: sources})
	return buf.String(), err
}
