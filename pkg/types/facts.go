// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Fact is one extracted statement with its provenance.
type Fact struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Citation string `json:"citation" yaml:"citation"`
}

// AnswerRecord pairs a question with its retrieved answer and the
// normalized source URLs. Sources may be empty.
type AnswerRecord struct {
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	Sources  []string `json:"sources" yaml:"sources"`
}

// ReportStat summarizes one report file found on disk.
type ReportStat struct {
	// Topic is the human-readable topic recovered from the filename.
	Topic string `json:"topic" yaml:"topic"`

	// FactCount is the number of fact blocks counted in the file.
	FactCount int `json:"fact_count" yaml:"fact_count"`

	// Filename is the report file's base name.
	Filename string `json:"filename" yaml:"filename"`
}
