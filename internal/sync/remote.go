package sync

import (
	"context"
	"fmt"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

// RemoteStore is the slice of the hosted row-store the replay path
// needs: per-table writes, nothing else. The postgres package provides
// the production implementation; tests substitute fakes.
type RemoteStore interface {
	Insert(ctx context.Context, table string, rows []map[string]interface{}) error
	Upsert(ctx context.Context, table string, rows []map[string]interface{}, conflictKey string) error
	Delete(ctx context.Context, table string, filter map[string]interface{}) error
}

// applyOp dispatches one operation against the remote store. The kind
// switch is exhaustive; Validate at enqueue time guarantees no other
// kinds reach replay, but a malformed row that slipped in still gets a
// hard error rather than a silent skip.
func applyOp(ctx context.Context, remote RemoteStore, op model.SyncOp) error {
	switch op.Kind {
	case model.SyncOpUpsert:
		return remote.Upsert(ctx, op.Table, op.Rows, op.ConflictKey)
	case model.SyncOpInsert:
		return remote.Insert(ctx, op.Table, op.Rows)
	case model.SyncOpDelete:
		return remote.Delete(ctx, op.Table, op.Filter)
	default:
		return fmt.Errorf("unknown sync op kind %q", op.Kind)
	}
}
