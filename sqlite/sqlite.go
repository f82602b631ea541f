// Package sqlite implements [walkplan.ReportStore] on an SQLite database.
//
// Each report is stored as its versioned JSON envelope next to the columns
// needed for listing, so the document format stays owned by package json.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/walkplan"
	planjson "github.com/fwojciec/walkplan/json"
	_ "modernc.org/sqlite"
)

// Interface compliance check.
var _ walkplan.ReportStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	total INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

// Store is a report history backed by a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite: create directories: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveReport stores r.
func (s *Store) SaveReport(ctx context.Context, r walkplan.Report) error {
	if r.ID == "" {
		return fmt.Errorf("sqlite: report has no ID")
	}
	body, err := planjson.MarshalReport(r)
	if err != nil {
		return fmt.Errorf("sqlite: marshal report %s: %w", r.ID, err)
	}
	sum := r.Summary()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, created_at, total, failed, body) VALUES (?, ?, ?, ?, ?)`,
		r.ID, formatTime(r.CreatedAt), sum.Total, sum.Failed, string(body),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save report %s: %w", r.ID, err)
	}
	return nil
}

// Report returns the stored report with the given ID.
func (s *Store) Report(ctx context.Context, id string) (walkplan.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return walkplan.Report{}, fmt.Errorf("sqlite: report %s: %w", id, walkplan.ErrNotFound)
	}
	if err != nil {
		return walkplan.Report{}, fmt.Errorf("sqlite: load report %s: %w", id, err)
	}
	r, err := planjson.UnmarshalReport([]byte(body))
	if err != nil {
		return walkplan.Report{}, fmt.Errorf("sqlite: decode report %s: %w", id, err)
	}
	return r, nil
}

// Reports returns up to limit summaries, newest first. A limit of zero or
// less returns every report.
func (s *Store) Reports(ctx context.Context, limit int) ([]walkplan.ReportSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, total, failed FROM reports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list reports: %w", err)
	}
	defer rows.Close()

	var out []walkplan.ReportSummary
	for rows.Next() {
		var sum walkplan.ReportSummary
		var created string
		if err := rows.Scan(&sum.ID, &created, &sum.Total, &sum.Failed); err != nil {
			return nil, fmt.Errorf("sqlite: scan report: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("sqlite: report %s: created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list reports: %w", err)
	}
	return out, nil
}

// formatTime renders t so that lexical order matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
