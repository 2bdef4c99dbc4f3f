// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists generated facts in a local SQLite database with
// full-text search. The flat-text report files remain the authoritative
// artifact; the index is derived from them and can be rebuilt at any time.
package index

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/facts-engine/internal/facts"
	"github.com/pdiddy/facts-engine/pkg/types"
)

const (
	dbFile        = "facts.db"
	defaultMaxRes = 20
)

// Store manages the facts index SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	reportsDir string
	maxResults int
}

// NewStore opens or creates the index database at indexDir/facts.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig, reportsDir string) (*Store, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = "index"
	}
	if reportsDir == "" {
		reportsDir = "."
	}

	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxRes
	}

	s := &Store{
		db:         db,
		indexDir:   indexDir,
		reportsDir: reportsDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			slug TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			report_path TEXT,
			fact_count INTEGER,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			topic_slug TEXT NOT NULL REFERENCES topics(slug),
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			citation TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_topic_slug ON facts(topic_slug)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='facts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE facts_fts USING fts5(title, content, content=facts, content_rowid=rowid)`,
			`CREATE TRIGGER facts_ai AFTER INSERT ON facts BEGIN
				INSERT INTO facts_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END`,
			`CREATE TRIGGER facts_ad AFTER DELETE ON facts BEGIN
				INSERT INTO facts_fts(facts_fts, rowid, title, content) VALUES('delete', old.rowid, old.title, old.content);
			END`,
			`CREATE TRIGGER facts_au AFTER UPDATE ON facts BEGIN
				INSERT INTO facts_fts(facts_fts, rowid, title, content) VALUES('delete', old.rowid, old.title, old.content);
				INSERT INTO facts_fts(rowid, title, content) VALUES (new.rowid, new.title, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of report files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest re-parses the report files in the reports directory and
// populates the database. Files unchanged since the last run are skipped;
// changed files replace their prior facts.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading reports directory %s: %w", s.reportsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "facts_") || !strings.HasSuffix(name, ".txt") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		slug := strings.TrimSuffix(strings.TrimPrefix(name, "facts_"), ".txt")
		path := filepath.Join(s.reportsDir, name)

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", slug, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM topics WHERE slug = ?`, slug,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", slug)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", slug, err)
			summary.Failed++
			continue
		}

		parsed := facts.ParseReport(string(data))

		if err := s.ingestTopic(ctx, slug, name, path, parsed, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", slug, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d facts)\n", slug, len(parsed))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d facts)\n", slug, len(parsed))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestTopic(ctx context.Context, slug, filename, path string, parsed []types.Fact, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM facts WHERE topic_slug = ?`, slug); err != nil {
			return fmt.Errorf("deleting old facts: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO topics (slug, topic, report_path, fact_count, file_mod_time)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			topic=excluded.topic, report_path=excluded.report_path,
			fact_count=excluded.fact_count, file_mod_time=excluded.file_mod_time`,
		slug, facts.TopicFromFilename(filename), path, len(parsed), modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting topic: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO facts (id, topic_slug, title, content, citation)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range parsed {
		_, err := stmt.ExecContext(ctx,
			stableID(slug, f.Title, f.Content), slug, f.Title, f.Content, f.Citation,
		)
		if err != nil {
			return fmt.Errorf("inserting fact: %w", err)
		}
	}

	return tx.Commit()
}

// stableID generates a deterministic fact ID: the first 12 hex characters
// of SHA-256(slug + title + content).
func stableID(slug, title, content string) string {
	h := sha256.New()
	h.Write([]byte(slug))
	h.Write([]byte(title))
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
