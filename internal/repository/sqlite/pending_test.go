package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

func openTestStore(t *testing.T) *PendingStore {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPendingStore(db)
}

func pendingRecord(scope string, updatedAt time.Time) *model.PendingRecord {
	return &model.PendingRecord{
		ID:    uuid.New(),
		Scope: scope,
		Ops: []model.SyncOp{{
			Kind:  model.SyncOpInsert,
			Table: "orders",
			Rows:  []map[string]interface{}{{"id": uuid.New().String(), "total_cents": float64(450)}},
		}},
		Context:   model.JSONMap{"till": "front"},
		Status:    model.PendingStatusPending,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestPendingRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := pendingRecord("orders:insert", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, rec))

	got, err := store.ListRunnable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, "orders:insert", got[0].Scope)
	assert.Equal(t, model.PendingStatusPending, got[0].Status)
	require.Len(t, got[0].Ops, 1)
	assert.Equal(t, model.SyncOpInsert, got[0].Ops[0].Kind)
	assert.Equal(t, "orders", got[0].Ops[0].Table)
	assert.Equal(t, "front", got[0].Context["till"])
}

func TestListRunnableOrdersByUpdatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	newer := pendingRecord("payments:insert", base.Add(10*time.Minute))
	older := pendingRecord("orders:insert", base)
	require.NoError(t, store.Insert(ctx, newer))
	require.NoError(t, store.Insert(ctx, older))

	got, err := store.ListRunnable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)
	assert.Equal(t, newer.ID, got[1].ID)
}

func TestListRunnableRespectsLimitAndStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, pendingRecord("orders:insert", base.Add(time.Duration(i)*time.Minute))))
	}
	failed := pendingRecord("orders:insert", base)
	failed.Status = model.PendingStatusFailed
	require.NoError(t, store.Insert(ctx, failed))
	synced := pendingRecord("orders:insert", base)
	synced.Status = model.PendingStatusSynced
	require.NoError(t, store.Insert(ctx, synced))

	got, err := store.ListRunnable(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := store.ListRunnable(ctx, 10)
	require.NoError(t, err)
	for _, rec := range all {
		assert.Contains(t, []model.PendingStatus{model.PendingStatusPending, model.PendingStatusSyncing}, rec.Status)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := pendingRecord("orders:insert", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, rec))

	errMsg := "dial tcp: connection refused"
	require.NoError(t, store.UpdateStatus(ctx, rec.ID, model.PendingStatusPending, 1, &errMsg))

	got, err := store.ListRunnable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].RetryCount)
	require.NotNil(t, got[0].LastError)
	assert.Equal(t, errMsg, *got[0].LastError)
}

func TestRequeueKeepsReplayOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := pendingRecord("orders:insert", time.Now().UTC().Add(-2*time.Minute))
	younger := pendingRecord("payments:insert", time.Now().UTC().Add(-1*time.Minute))
	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, younger))

	// A flush picks the older record up and the remote connection dies.
	errMsg := "dial tcp: connection refused"
	require.NoError(t, store.UpdateStatus(ctx, older.ID, model.PendingStatusSyncing, 0, nil))
	require.NoError(t, store.UpdateStatus(ctx, older.ID, model.PendingStatusPending, 1, &errMsg))

	got, err := store.ListRunnable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)
	assert.Equal(t, younger.ID, got[1].ID)
}

func TestTerminalTransitionBumpsUpdatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := pendingRecord("orders:insert", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, store.Insert(ctx, rec))
	require.NoError(t, store.UpdateStatus(ctx, rec.ID, model.PendingStatusSynced, 0, nil))

	got, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].UpdatedAt.After(rec.UpdatedAt))
}

func TestUpdateStatusUnknownRecord(t *testing.T) {
	store := openTestStore(t)
	err := store.UpdateStatus(context.Background(), uuid.New(), model.PendingStatusSynced, 0, nil)
	require.Error(t, err)
}

func TestCountPending(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := pendingRecord("orders:insert", time.Now().UTC())
	b := pendingRecord("payments:insert", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, a))
	require.NoError(t, store.Insert(ctx, b))
	require.NoError(t, store.UpdateStatus(ctx, b.ID, model.PendingStatusSynced, 0, nil))

	n, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteSyncedBefore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := pendingRecord("orders:insert", time.Now().UTC())
	keep := pendingRecord("payments:insert", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, old))
	require.NoError(t, store.Insert(ctx, keep))
	require.NoError(t, store.UpdateStatus(ctx, old.ID, model.PendingStatusSynced, 0, nil))

	// Not old enough yet.
	n, err := store.DeleteSyncedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.DeleteSyncedBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Unsynced records are never collected.
	recent, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, keep.ID, recent[0].ID)
}

func TestListRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	older := pendingRecord("orders:insert", base)
	newer := pendingRecord("payments:insert", base.Add(time.Minute))
	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))

	got, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}
