package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

func openTestMirror(t *testing.T) *MirrorStore {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMirrorStore(db)
}

func TestMirrorInsertAndUpsert(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()
	id := uuid.New().String()

	require.NoError(t, m.Apply(ctx, []model.SyncOp{{
		Kind:  model.SyncOpInsert,
		Table: "orders",
		Rows:  []map[string]interface{}{{"id": id, "status": "pending"}},
	}}))

	require.NoError(t, m.Apply(ctx, []model.SyncOp{{
		Kind:        model.SyncOpUpsert,
		Table:       "orders",
		Rows:        []map[string]interface{}{{"id": id, "status": "completed"}},
		ConflictKey: "id",
	}}))

	rows, err := m.List(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "completed", rows[0]["status"])
}

func TestMirrorDelete(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()
	id := uuid.New().String()

	require.NoError(t, m.Apply(ctx, []model.SyncOp{{
		Kind:  model.SyncOpInsert,
		Table: "reservations",
		Rows:  []map[string]interface{}{{"id": id, "party_size": float64(4)}},
	}}))
	require.NoError(t, m.Apply(ctx, []model.SyncOp{{
		Kind:   model.SyncOpDelete,
		Table:  "reservations",
		Filter: map[string]interface{}{"id": id},
	}}))

	rows, err := m.List(ctx, "reservations")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMirrorSkipsRowsWithoutID(t *testing.T) {
	m := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, m.Apply(ctx, []model.SyncOp{{
		Kind:  model.SyncOpInsert,
		Table: "orders",
		Rows:  []map[string]interface{}{{"status": "pending"}},
	}}))

	rows, err := m.List(ctx, "orders")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
