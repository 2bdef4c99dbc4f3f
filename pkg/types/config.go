// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared configuration and domain types for the
// facts pipeline.
package types

import "time"

// HTTPConfig holds shared HTTP settings for clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout, which
	// matches the tool's historical behavior of blocking until the
	// upstream answers.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "facts-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SonarConfig holds settings for the search-augmented answer client.
type SonarConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the answer model identifier (default "sonar").
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer token for the answer API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// GeminiConfig holds settings for the generative-text client.
type GeminiConfig struct {
	// Model is the generative model identifier (default "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generative API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// PipelineConfig holds settings for the facts pipeline.
type PipelineConfig struct {
	// QuestionCount is how many questions to request per topic (default 15).
	QuestionCount int `json:"question_count" yaml:"question_count"`

	// MaxRetries is the number of attempts at extracting a parseable fact
	// array from one answer (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// ReportsDir is the directory where report files are written and
	// scanned (default ".").
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// IndexConfig holds settings for the facts index.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite database and exports
	// (default "index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all stage configurations.
type Config struct {
	Sonar    SonarConfig    `json:"sonar" yaml:"sonar"`
	Gemini   GeminiConfig   `json:"gemini" yaml:"gemini"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Index    IndexConfig    `json:"index" yaml:"index"`
}
