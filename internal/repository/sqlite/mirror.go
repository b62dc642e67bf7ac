package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

// MirrorStore keeps local copies of rows written while offline, so the
// till's own reads reflect writes that are still waiting in the queue.
// Rows are stored as JSON documents keyed by table name and row id; the
// remote store stays the source of truth once replay catches up.
type MirrorStore struct {
	db *DB
}

func NewMirrorStore(db *DB) *MirrorStore {
	return &MirrorStore{db: db}
}

// Apply mirrors one queued batch. Implements sync.Mirror.
func (m *MirrorStore) Apply(ctx context.Context, ops []model.SyncOp) error {
	for _, op := range ops {
		switch op.Kind {
		case model.SyncOpUpsert, model.SyncOpInsert:
			for _, row := range op.Rows {
				if err := m.putRow(ctx, op.Table, row); err != nil {
					return err
				}
			}
		case model.SyncOpDelete:
			if err := m.deleteRows(ctx, op.Table, op.Filter); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MirrorStore) putRow(ctx context.Context, table string, row map[string]interface{}) error {
	id, ok := row["id"].(string)
	if !ok || id == "" {
		// Rows without a stable id cannot be mirrored individually;
		// they will show up after replay.
		return nil
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode mirror row: %w", err)
	}
	query := `
		INSERT INTO mirror_rows (table_name, row_id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (table_name, row_id) DO UPDATE SET
			data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := m.db.ExecContext(ctx, query, table, id, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to mirror row %s/%s: %w", table, id, err)
	}
	return nil
}

func (m *MirrorStore) deleteRows(ctx context.Context, table string, filter map[string]interface{}) error {
	id, ok := filter["id"].(string)
	if !ok || id == "" {
		return nil
	}
	query := `DELETE FROM mirror_rows WHERE table_name = ? AND row_id = ?`
	if _, err := m.db.ExecContext(ctx, query, table, id); err != nil {
		return fmt.Errorf("failed to delete mirrored row %s/%s: %w", table, id, err)
	}
	return nil
}

// List returns all mirrored rows for a table, decoded.
func (m *MirrorStore) List(ctx context.Context, table string) ([]map[string]interface{}, error) {
	query := `SELECT data FROM mirror_rows WHERE table_name = ? ORDER BY updated_at DESC`
	rows, err := m.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror rows: %w", err)
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mirror row: %w", err)
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(data), &decoded); err != nil {
			return nil, fmt.Errorf("corrupt mirror row in %s: %w", table, err)
		}
		out = append(out, decoded)
	}
	return out, rows.Err()
}
