// Package store persists import history in PostgreSQL.
//
// Each terminal import result becomes one row in import_history. The
// wizard itself is in-memory; this table is the only durable record of
// what was imported, and old rows are swept on a retention schedule.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arvo-app/importer/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS import_history (
	id            UUID PRIMARY KEY,
	session_id    UUID NOT NULL,
	schema_key    TEXT NOT NULL,
	file_name     TEXT NOT NULL DEFAULT '',
	success_count INT  NOT NULL DEFAULT 0,
	error_count   INT  NOT NULL DEFAULT 0,
	failed        BOOLEAN NOT NULL DEFAULT FALSE,
	summary       TEXT NOT NULL DEFAULT '',
	row_errors    JSONB NOT NULL DEFAULT '[]',
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	completed_at  TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_import_history_created_at ON import_history (created_at);
CREATE INDEX IF NOT EXISTS idx_import_history_schema_key ON import_history (schema_key);
`

// ImportRecord is one persisted import outcome.
type ImportRecord struct {
	ID           string           `json:"id"`
	SessionID    string           `json:"sessionId"`
	SchemaKey    string           `json:"schema"`
	FileName     string           `json:"fileName"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Failed       bool             `json:"failed"`
	Summary      string           `json:"summaryMessage"`
	RowErrors    []core.RowError  `json:"errors,omitempty"`
	DurationMs   int64            `json:"durationMs"`
	CompletedAt  time.Time        `json:"completedAt"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// HistoryStore reads and writes import_history. Satisfies core.Recorder.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// New creates a HistoryStore on top of an existing pool.
func New(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// EnsureSchema creates the history table and indexes if missing.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure import_history schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity, for health checks.
func (s *HistoryStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Record persists one terminal import result.
func (s *HistoryStore) Record(ctx context.Context, res *core.ImportResult) error {
	rowErrors, err := json.Marshal(res.Errors)
	if err != nil {
		return fmt.Errorf("marshal row errors: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_history
			(id, session_id, schema_key, file_name, success_count,
			 error_count, failed, summary, row_errors, duration_ms, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.New(), res.SessionID, res.SchemaKey, res.FileName,
		res.SuccessCount, res.ErrorCount, res.Failed, res.Summary,
		rowErrors, res.Duration.Milliseconds(), res.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import record: %w", err)
	}
	return nil
}

// List returns the most recent import records, newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, schema_key, file_name, success_count,
		       error_count, failed, summary, row_errors, duration_ms,
		       completed_at, created_at
		FROM import_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	defer rows.Close()

	var records []ImportRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns one import record by ID.
func (s *HistoryStore) Get(ctx context.Context, id string) (*ImportRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid import record ID: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, schema_key, file_name, success_count,
		       error_count, failed, summary, row_errors, duration_ms,
		       completed_at, created_at
		FROM import_history
		WHERE id = $1`, uid)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get import record: %w", err)
	}
	return &rec, nil
}

// DeleteOlderThan removes records created before cutoff and returns the
// number deleted.
func (s *HistoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM import_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old import records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StartRetentionSweeper deletes records older than the retention window
// on a fixed interval. Blocks until ctx is cancelled; run in a goroutine.
func (s *HistoryStore) StartRetentionSweeper(ctx context.Context, retentionDays int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			deleted, err := s.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				slog.Warn("history retention sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				slog.Info("history retention sweep", "deleted", deleted)
			}
		}
	}
}

// scanRecord scans one row using a pgx Scan function.
func scanRecord(scan func(dest ...any) error) (ImportRecord, error) {
	var (
		rec       ImportRecord
		id, sess  uuid.UUID
		rowErrors []byte
	)
	if err := scan(&id, &sess, &rec.SchemaKey, &rec.FileName,
		&rec.SuccessCount, &rec.ErrorCount, &rec.Failed, &rec.Summary,
		&rowErrors, &rec.DurationMs, &rec.CompletedAt, &rec.CreatedAt); err != nil {
		return rec, fmt.Errorf("scan import record: %w", err)
	}
	rec.ID = id.String()
	rec.SessionID = sess.String()
	if len(rowErrors) > 0 {
		if err := json.Unmarshal(rowErrors, &rec.RowErrors); err != nil {
			return rec, fmt.Errorf("unmarshal row errors: %w", err)
		}
	}
	return rec, nil
}
