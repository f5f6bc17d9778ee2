// Package store keeps a conversion-history index for batch runs. Uses
// SQLite with WAL mode so downstream tooling can read while a batch is
// still writing.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for conversion outcomes.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at the given path. Safe to
// call repeatedly; pragmas and schema are applied idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn during batch runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Entry is one recorded conversion outcome.
type Entry struct {
	Source       string
	Target       string
	OverallScore float64
	Level        string
	Programs     int
	Routines     int
	Rungs        int
	Tags         int
	Modules      int
	Malformed    int
	PartialRungs int
	Degraded     bool
	CreatedAt    string
}

// RecordConversion appends one conversion outcome.
func (s *Store) RecordConversion(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions
			(source, target, overall_score, level, programs, routines,
			 rungs, tags, modules, malformed, partial_rungs, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Source, e.Target, e.OverallScore, e.Level, e.Programs, e.Routines,
		e.Rungs, e.Tags, e.Modules, e.Malformed, e.PartialRungs, boolToInt(e.Degraded))
	if err != nil {
		return fmt.Errorf("record conversion for %s: %w", e.Source, err)
	}
	return nil
}

// History returns the most recent entries, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, overall_score, level, programs, routines,
		       rungs, tags, modules, malformed, partial_rungs, degraded, created_at
		FROM conversions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var degraded int
		if err := rows.Scan(&e.Source, &e.Target, &e.OverallScore, &e.Level,
			&e.Programs, &e.Routines, &e.Rungs, &e.Tags, &e.Modules,
			&e.Malformed, &e.PartialRungs, &degraded, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Degraded = degraded != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
