// Package store keeps a journal of evaluation reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/valuecompass/internal/model"
)

// ErrNotFound is returned when a report ID is not in the journal
var ErrNotFound = errors.New("report not found")

const (
	defaultRecent = 20
	maxRecent     = 500
)

// Store is the evaluation journal. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Entry is a journal row without the decoded report body
type Entry struct {
	ID          string    `json:"id"`
	ActionID    string    `json:"action_id"`
	Title       string    `json:"title"`
	HintCount   int       `json:"hint_count"`
	Provider    string    `json:"provider,omitempty"`
	Index       int       `json:"index"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// NewStore opens (or creates) the journal at path. ":memory:" gives a
// private in-memory journal.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps :memory: a single database and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		action_id TEXT NOT NULL,
		title TEXT NOT NULL,
		hint_count INTEGER NOT NULL,
		provider TEXT,
		score_index INTEGER NOT NULL,
		evaluated_at INTEGER NOT NULL,
		body TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_evaluated ON reports(evaluated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reports_action ON reports(action_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveReport writes report to the journal, replacing any row with the same ID
func (s *Store) SaveReport(ctx context.Context, report *model.Report) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("save report: report has no ID")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	provider := ""
	if report.LLM != nil {
		provider = report.LLM.Provider
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (
			id, action_id, title, hint_count, provider, score_index, evaluated_at, body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Action.ID,
		report.Action.Title,
		len(report.Hints),
		provider,
		report.Score.Index,
		report.EvaluatedAt.UTC().UnixNano(),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get returns one report by ID
func (s *Store) Get(ctx context.Context, id string) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// Recent lists the newest journal entries first. limit <= 0 means 20;
// limits above 500 are capped.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	if limit > maxRecent {
		limit = maxRecent
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action_id, title, hint_count, COALESCE(provider, ''), score_index, evaluated_at
		FROM reports
		ORDER BY evaluated_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var nanos int64
		if err := rows.Scan(&e.ID, &e.ActionID, &e.Title, &e.HintCount, &e.Provider, &e.Index, &nanos); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.EvaluatedAt = time.Unix(0, nanos).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
