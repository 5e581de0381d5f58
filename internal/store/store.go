// Package store provides optional PostgreSQL persistence for workflow
// runs and their artifacts. The server degrades gracefully when no
// database is configured; every write here is best-effort from the
// workflow's point of view.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Store persists run snapshots and artifacts for the workflow layer.
var _ workflow.Recorder = (*Store)(nil)

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables this store needs if they are absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_runs (
			id         TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			progress   INT NOT NULL DEFAULT 0,
			message    TEXT NOT NULL DEFAULT '',
			error      TEXT NOT NULL DEFAULT '',
			snapshot   JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS workflow_artifacts (
			workflow_id TEXT NOT NULL REFERENCES workflow_runs(id) ON DELETE CASCADE,
			kind        TEXT NOT NULL,
			payload     JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (workflow_id, kind)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// RecordRun upserts the latest snapshot of a workflow run.
func (s *Store) RecordRun(ctx context.Context, id string, snap workflow.Snapshot) error {
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO workflow_runs (id, state, progress, message, error, snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   state = $2, progress = $3, message = $4, error = $5, snapshot = $6, updated_at = NOW()`,
		id, string(snap.State), snap.Progress, snap.Message, snap.Error, snapJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", id, err)
	}
	return nil
}

// RecordArtifact upserts a named artifact for a run.
func (s *Store) RecordArtifact(ctx context.Context, id, kind string, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO workflow_artifacts (workflow_id, kind, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (workflow_id, kind) DO UPDATE SET payload = $3, created_at = NOW()`,
		id, kind, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to record artifact %s/%s: %w", id, kind, err)
	}
	return nil
}

// GetArtifact retrieves a stored artifact, nil when absent.
func (s *Store) GetArtifact(ctx context.Context, id, kind string) (map[string]any, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM workflow_artifacts WHERE workflow_id = $1 AND kind = $2`,
		id, kind,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s/%s: %w", id, kind, err)
	}

	var result map[string]any
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s/%s: %w", id, kind, err)
	}
	return result, nil
}

// RunRecord is one persisted workflow run.
type RunRecord struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListRuns retrieves the most recent runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, state, progress, message, error, created_at, updated_at
		 FROM workflow_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.State, &r.Progress, &r.Message, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
