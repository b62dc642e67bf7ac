package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

// PendingStore persists the operation queue. It implements
// sync.PendingStore.
type PendingStore struct {
	db *DB
}

func NewPendingStore(db *DB) *PendingStore {
	return &PendingStore{db: db}
}

// payloadEnvelope is the stored JSON body of one record: the replayable
// ops plus free-form context that is informational only.
type payloadEnvelope struct {
	Ops     []model.SyncOp `json:"ops"`
	Context model.JSONMap  `json:"context,omitempty"`
}

func (s *PendingStore) Insert(ctx context.Context, rec *model.PendingRecord) error {
	payload, err := json.Marshal(payloadEnvelope{Ops: rec.Ops, Context: rec.Context})
	if err != nil {
		return fmt.Errorf("failed to encode pending payload: %w", err)
	}

	query := `
		INSERT INTO pending_operations (
			id, scope, payload, status, retry_count, last_error,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID.String(), rec.Scope, string(payload), string(rec.Status),
		rec.RetryCount, rec.LastError, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pending record: %w", err)
	}
	return nil
}

// ListRunnable loads up to limit records still owed to the remote
// store, oldest updated_at first. Syncing records are included so a
// crash mid-flush does not strand them.
func (s *PendingStore) ListRunnable(ctx context.Context, limit int) ([]*model.PendingRecord, error) {
	query := `
		SELECT id, scope, payload, status, retry_count, last_error,
		       created_at, updated_at
		FROM pending_operations
		WHERE status IN ('pending', 'syncing')
		ORDER BY updated_at ASC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending records: %w", err)
	}
	defer rows.Close()

	var records []*model.PendingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRecent returns the newest records of any status, for the operator
// inspection view.
func (s *PendingStore) ListRecent(ctx context.Context, limit int) ([]*model.PendingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, scope, payload, status, retry_count, last_error,
		       created_at, updated_at
		FROM pending_operations
		ORDER BY updated_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent records: %w", err)
	}
	defer rows.Close()

	var records []*model.PendingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStatus transitions one record. Only the terminal transitions
// (synced, failed) touch updated_at: a requeued or resumed record keeps
// its enqueue timestamp, so replay order stays oldest-first across
// flush invocations even when a network failure sends a record back to
// pending behind younger ones.
func (s *PendingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PendingStatus, retryCount int, lastError *string) error {
	query := `
		UPDATE pending_operations
		SET status = ?, retry_count = ?, last_error = ?,
		    updated_at = CASE WHEN ? IN ('synced', 'failed') THEN ? ELSE updated_at END
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		string(status), retryCount, lastError,
		string(status), time.Now(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update pending record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("pending record %s not found", id)
	}
	return nil
}

func (s *PendingStore) CountPending(ctx context.Context) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM pending_operations WHERE status IN ('pending', 'syncing')`
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	return n, nil
}

// DeleteSyncedBefore garbage-collects replayed records once they are
// old enough that no operator still needs them.
func (s *PendingStore) DeleteSyncedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM pending_operations WHERE status = 'synced' AND updated_at < ?`
	res, err := s.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete synced records: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(rows *sql.Rows) (*model.PendingRecord, error) {
	var (
		rec       model.PendingRecord
		id        string
		payload   string
		status    string
		lastError sql.NullString
	)
	if err := rows.Scan(&id, &rec.Scope, &payload, &status, &rec.RetryCount, &lastError, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan pending record: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt pending record id %q: %w", id, err)
	}
	rec.ID = parsed
	rec.Status = model.PendingStatus(status)
	if lastError.Valid {
		rec.LastError = &lastError.String
	}

	var env payloadEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, fmt.Errorf("corrupt payload in pending record %s: %w", id, err)
	}
	rec.Ops = env.Ops
	rec.Context = env.Context
	return &rec, nil
}
