package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistory is a single-file History backend. Zero-setup
// persistence for development and single-process runs; use ":memory:"
// for throwaway databases in tests.
//
// The database runs in WAL mode so readers do not block the writer.
// State values are stored as JSON.
type SQLiteHistory[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteHistory opens (creating if needed) the database at path and
// migrates the schema.
func NewSQLiteHistory[S any](path string) (*SQLiteHistory[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite supports a single writer; keep one connection so the WAL
	// writer and in-memory databases behave predictably.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	h := &SQLiteHistory[S]{db: db}
	if err := h.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return h, nil
}

func (h *SQLiteHistory[S]) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS run_steps (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			step       INTEGER NOT NULL,
			node_id    TEXT NOT NULL,
			state      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, step)
		);
		CREATE INDEX IF NOT EXISTS idx_run_steps_run ON run_steps(run_id, step);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

func (h *SQLiteHistory[S]) AppendStep(ctx context.Context, runID string, step int, nodeID string, state S) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return errors.New("history is closed")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO run_steps (run_id, step, node_id, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, step, nodeID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert step %d for run %q: %w", step, runID, err)
	}
	return nil
}

func (h *SQLiteHistory[S]) Latest(ctx context.Context, runID string) (StepRecord[S], error) {
	var zero StepRecord[S]

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return zero, errors.New("history is closed")
	}

	row := h.db.QueryRowContext(ctx,
		`SELECT run_id, step, node_id, state, created_at FROM run_steps
		 WHERE run_id = ? ORDER BY step DESC LIMIT 1`, runID)
	rec, err := scanStep[S](row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("load latest step for run %q: %w", runID, err)
	}
	return rec, nil
}

func (h *SQLiteHistory[S]) Steps(ctx context.Context, runID string) ([]StepRecord[S], error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, errors.New("history is closed")
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, step, node_id, state, created_at FROM run_steps
		 WHERE run_id = ? ORDER BY step ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("load steps for run %q: %w", runID, err)
	}
	defer rows.Close()

	var records []StepRecord[S]
	for rows.Next() {
		rec, err := scanStep[S](rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan step for run %q: %w", runID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps for run %q: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// Close closes the underlying database. Further calls error.
func (h *SQLiteHistory[S]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.db.Close()
}

// scanStep decodes one row shared by the SQL backends. The scan
// argument order matches the SELECT column order used by both.
func scanStep[S any](scan func(dest ...any) error) (StepRecord[S], error) {
	var (
		rec  StepRecord[S]
		data string
	)
	if err := scan(&rec.RunID, &rec.Step, &rec.NodeID, &data, &rec.CreatedAt); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(data), &rec.State); err != nil {
		return rec, fmt.Errorf("unmarshal state: %w", err)
	}
	return rec, nil
}
