// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records completed extractions in a SQLite database so the
// number of motion outliers per run can be reviewed across invocations.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/motion-outliers/pkg/types"
)

// Entry is one recorded extraction.
type Entry struct {
	types.Identifiers `yaml:",inline"`

	// ConfoundsPath is the confound table that was read.
	ConfoundsPath string `json:"confounds_path" yaml:"confounds_path"`

	// OutliersPath is the outlier list that was written. It identifies the entry.
	OutliersPath string `json:"outliers_path" yaml:"outliers_path"`

	// Columns are the matched column names in header order.
	Columns []string `json:"columns" yaml:"columns"`

	// Count is len(Columns), stored for querying.
	Count int `json:"count" yaml:"count"`

	// ExtractedAt is when the outlier list was written (UTC).
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// Filter narrows List and Export results. Zero values match everything.
type Filter struct {
	Subject string
	Task    string
}

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS extractions (
			outliers_path TEXT PRIMARY KEY,
			dir TEXT NOT NULL,
			subject TEXT NOT NULL,
			session TEXT NOT NULL DEFAULT '',
			task TEXT NOT NULL DEFAULT '',
			run TEXT NOT NULL DEFAULT '',
			confounds_path TEXT NOT NULL,
			columns TEXT NOT NULL,
			count INTEGER NOT NULL,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_subject ON extractions(subject)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts e, replacing any earlier entry for the same outlier list.
// A zero ExtractedAt is set to the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.OutliersPath == "" {
		return fmt.Errorf("recording extraction: outliers path is empty")
	}
	if e.ExtractedAt.IsZero() {
		e.ExtractedAt = time.Now()
	}
	if e.Columns == nil {
		e.Columns = []string{}
	}
	colsJSON, err := json.Marshal(e.Columns)
	if err != nil {
		return fmt.Errorf("encoding columns: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extractions (outliers_path, dir, subject, session, task, run, confounds_path, columns, count, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(outliers_path) DO UPDATE SET
			dir=excluded.dir, subject=excluded.subject, session=excluded.session,
			task=excluded.task, run=excluded.run, confounds_path=excluded.confounds_path,
			columns=excluded.columns, count=excluded.count, extracted_at=excluded.extracted_at`,
		e.OutliersPath, e.Dir, e.Subject, e.Session, e.Task, e.Run,
		e.ConfoundsPath, string(colsJSON), len(e.Columns),
		e.ExtractedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording extraction: %w", err)
	}
	return nil
}

// List returns recorded extractions ordered by subject, session, task, run.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT outliers_path, dir, subject, session, task, run, confounds_path, columns, count, extracted_at
		FROM extractions WHERE 1=1`)
	if f.Subject != "" {
		qb.WriteString(` AND subject = ?`)
		args = append(args, f.Subject)
	}
	if f.Task != "" {
		qb.WriteString(` AND task = ?`)
		args = append(args, f.Task)
	}
	qb.WriteString(` ORDER BY subject, session, task, run`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			colsJSON string
			ts       string
		)
		if err := rows.Scan(&e.OutliersPath, &e.Dir, &e.Subject, &e.Session, &e.Task, &e.Run,
			&e.ConfoundsPath, &colsJSON, &e.Count, &ts); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if err := json.Unmarshal([]byte(colsJSON), &e.Columns); err != nil {
			return nil, fmt.Errorf("decoding columns for %s: %w", e.OutliersPath, err)
		}
		e.ExtractedAt, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp for %s: %w", e.OutliersPath, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
