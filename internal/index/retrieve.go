// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against fact
	// titles and content.
	Query string

	// TopicSlug filters by topic (the filename form, e.g. "climate_change").
	TopicSlug string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.TopicSlug == ""
}

// QueryResult is one indexed fact with its topic.
type QueryResult struct {
	ID        string `json:"id" yaml:"id"`
	TopicSlug string `json:"topic_slug" yaml:"topic_slug"`
	Topic     string `json:"topic" yaml:"topic"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	Citation  string `json:"citation" yaml:"citation"`
}

// Retrieve queries the index with optional full-text search and a topic
// filter. Full-text queries are ranked by relevance; filter-only queries
// are sorted by topic and insertion order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT f.id, f.topic_slug, t.topic, f.title, f.content, f.citation
			FROM facts_fts
			JOIN facts f ON f.rowid = facts_fts.rowid
			LEFT JOIN topics t ON f.topic_slug = t.slug
			WHERE facts_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT f.id, f.topic_slug, t.topic, f.title, f.content, f.citation
			FROM facts f
			LEFT JOIN topics t ON f.topic_slug = t.slug
			WHERE 1=1`)
	}

	if opts.TopicSlug != "" {
		qb.WriteString(` AND f.topic_slug = ?`)
		args = append(args, opts.TopicSlug)
	}

	if useFTS {
		qb.WriteString(` ORDER BY facts_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.topic_slug, f.rowid`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var r QueryResult
		var topic *string
		if err := rows.Scan(&r.ID, &r.TopicSlug, &topic, &r.Title, &r.Content, &r.Citation); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if topic != nil {
			r.Topic = *topic
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
