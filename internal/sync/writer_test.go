package sync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

type fakeMirror struct {
	mu      sync.Mutex
	applied [][]model.SyncOp
	err     error
}

func (m *fakeMirror) Apply(_ context.Context, ops []model.SyncOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.applied = append(m.applied, ops)
	return nil
}

func newTestWriter(store *memStore, remote *fakeRemote, mirror Mirror, health *Health) *Writer {
	queue := newTestQueue(store, remote, health)
	return NewWriter(remote, queue, mirror, health, nil)
}

func TestWriterRemoteSuccess(t *testing.T) {
	store := &memStore{}
	remote := &fakeRemote{}
	health := NewHealth()
	w := newTestWriter(store, remote, &fakeMirror{}, health)

	result, err := w.Apply(context.Background(), "orders:insert", []model.SyncOp{insertOp("orders")}, nil)
	require.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, uuid.Nil, result.PendingID)
	assert.Equal(t, []string{"orders"}, remote.calledTables())
	assert.Empty(t, store.recs)
	assert.True(t, health.Healthy())
}

func TestWriterEmptyBatch(t *testing.T) {
	w := newTestWriter(&memStore{}, &fakeRemote{}, &fakeMirror{}, NewHealth())

	result, err := w.Apply(context.Background(), "orders:insert", nil, nil)
	require.NoError(t, err)
	assert.False(t, result.Queued)
}

func TestWriterNetworkFailureQueuesAndMirrors(t *testing.T) {
	store := &memStore{}
	remote := &fakeRemote{failOn: map[string]error{
		"orders": errors.New("dial tcp 10.0.0.1:5432: i/o timeout"),
	}}
	mirror := &fakeMirror{}
	health := NewHealth()
	w := newTestWriter(store, remote, mirror, health)

	ops := []model.SyncOp{insertOp("orders")}
	result, err := w.Apply(context.Background(), "orders:insert", ops, nil)
	require.NoError(t, err)
	assert.True(t, result.Queued)
	require.NotEqual(t, uuid.Nil, result.PendingID)

	rec := store.get(result.PendingID)
	require.NotNil(t, rec)
	assert.Equal(t, model.PendingStatusPending, rec.Status)

	require.Len(t, mirror.applied, 1)
	assert.False(t, health.Healthy())
}

func TestWriterLogicalErrorSurfaces(t *testing.T) {
	store := &memStore{}
	remote := &fakeRemote{failOn: map[string]error{
		"orders": errors.New(`duplicate key value violates unique constraint "orders_pkey"`),
	}}
	health := NewHealth()
	w := newTestWriter(store, remote, &fakeMirror{}, health)

	result, err := w.Apply(context.Background(), "orders:insert", []model.SyncOp{insertOp("orders")}, nil)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, store.recs)
	assert.True(t, health.Healthy())
}

func TestWriterSkipsRemoteWhileBreakerOpen(t *testing.T) {
	store := &memStore{}
	remote := &fakeRemote{}
	health := NewHealth()
	health.MarkFailure(errors.New("connection refused"))
	w := newTestWriter(store, remote, &fakeMirror{}, health)

	result, err := w.Apply(context.Background(), "orders:insert", []model.SyncOp{insertOp("orders")}, nil)
	require.NoError(t, err)
	assert.True(t, result.Queued)
	assert.Empty(t, remote.calledTables())
}

func TestWriterMirrorFailureStillQueues(t *testing.T) {
	store := &memStore{}
	remote := &fakeRemote{failOn: map[string]error{
		"orders": errors.New("network is unreachable"),
	}}
	mirror := &fakeMirror{err: errors.New("disk full")}
	w := newTestWriter(store, remote, mirror, NewHealth())

	result, err := w.Apply(context.Background(), "orders:insert", []model.SyncOp{insertOp("orders")}, nil)
	require.NoError(t, err)
	assert.True(t, result.Queued)
	require.NotNil(t, store.get(result.PendingID))
}
