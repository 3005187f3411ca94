package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLHistory is a MySQL/MariaDB History backend for runs that must
// survive process restarts or be visible across workers.
//
// DSN format follows the mysql driver:
//
//	user:password@tcp(localhost:3306)/stategraph?parseTime=true
//
// parseTime=true is required so created_at scans into time.Time. Never
// hardcode credentials; read the DSN from the environment.
type MySQLHistory[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLHistory opens a pooled connection, verifies it, and migrates
// the schema.
func NewMySQLHistory[S any](dsn string) (*MySQLHistory[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	h := &MySQLHistory[S]{db: db}
	if err := h.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return h, nil
}

func (h *MySQLHistory[S]) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS run_steps (
			id         BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id     VARCHAR(255) NOT NULL,
			step       INT NOT NULL,
			node_id    VARCHAR(255) NOT NULL,
			state      JSON NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_run_step (run_id, step),
			KEY idx_run (run_id, step)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

func (h *MySQLHistory[S]) AppendStep(ctx context.Context, runID string, step int, nodeID string, state S) error {
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

func (h *MySQLHistory[S]) Latest(ctx context.Context, runID string) (StepRecord[S], error) {
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

func (h *MySQLHistory[S]) Steps(ctx context.Context, runID string) ([]StepRecord[S], error) {
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

// Close closes the connection pool. Further calls error.
func (h *MySQLHistory[S]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.db.Close()
}
