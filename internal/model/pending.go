package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PendingStatus string

const (
	PendingStatusPending PendingStatus = "pending"
	PendingStatusSyncing PendingStatus = "syncing"
	PendingStatusSynced  PendingStatus = "synced"
	PendingStatusFailed  PendingStatus = "failed"
)

type SyncOpKind string

const (
	SyncOpUpsert SyncOpKind = "upsert"
	SyncOpInsert SyncOpKind = "insert"
	SyncOpDelete SyncOpKind = "delete"
)

// SyncOp is one remote write captured while the primary store was
// unreachable. The kind discriminates which fields apply: Rows (and
// optionally ConflictKey) for upsert/insert, Filter for delete.
type SyncOp struct {
	Kind        SyncOpKind               `json:"kind"`
	Table       string                   `json:"table"`
	Rows        []map[string]interface{} `json:"rows,omitempty"`
	ConflictKey string                   `json:"conflict_key,omitempty"`
	Filter      map[string]interface{}   `json:"filter,omitempty"`
}

// Validate rejects malformed operations at enqueue time so replay never
// sees an op it cannot dispatch.
func (op *SyncOp) Validate() error {
	if op.Table == "" {
		return fmt.Errorf("sync op missing table")
	}
	switch op.Kind {
	case SyncOpUpsert, SyncOpInsert:
		if len(op.Rows) == 0 {
			return fmt.Errorf("%s op on %s has no rows", op.Kind, op.Table)
		}
	case SyncOpDelete:
		if len(op.Filter) == 0 {
			return fmt.Errorf("delete op on %s has no filter", op.Table)
		}
	default:
		return fmt.Errorf("unknown sync op kind %q", op.Kind)
	}
	return nil
}

// PendingRecord is one durably queued batch of remote writes. The ops
// are replayed all-or-nothing in array order; records replay oldest
// updated_at first relative to each other.
type PendingRecord struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	Scope      string        `db:"scope" json:"scope"`
	Ops        []SyncOp      `db:"-" json:"ops"`
	Context    JSONMap       `db:"-" json:"context,omitempty"`
	Status     PendingStatus `db:"status" json:"status"`
	RetryCount int           `db:"retry_count" json:"retry_count"`
	LastError  *string       `db:"last_error" json:"last_error,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}
