package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

// memStore is an in-memory PendingStore for exercising the queue
// without sqlite.
type memStore struct {
	mu        sync.Mutex
	recs      []*model.PendingRecord
	listCalls int
}

func (s *memStore) Insert(_ context.Context, rec *model.PendingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.recs = append(s.recs, &clone)
	return nil
}

func (s *memStore) ListRunnable(_ context.Context, limit int) ([]*model.PendingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	var out []*model.PendingRecord
	for _, r := range s.recs {
		if r.Status == model.PendingStatusPending || r.Status == model.PendingStatusSyncing {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.PendingStatus, retryCount int, lastError *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.ID == id {
			r.Status = status
			r.RetryCount = retryCount
			r.LastError = lastError
			if status == model.PendingStatusSynced || status == model.PendingStatusFailed {
				r.UpdatedAt = time.Now()
			}
			return nil
		}
	}
	return fmt.Errorf("record %s not found", id)
}

func (s *memStore) CountPending(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.recs {
		if r.Status == model.PendingStatusPending {
			n++
		}
	}
	return n, nil
}

func (s *memStore) get(id uuid.UUID) *model.PendingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.ID == id {
			clone := *r
			return &clone
		}
	}
	return nil
}

func (s *memStore) seed(scope string, updatedAt time.Time, ops ...model.SyncOp) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &model.PendingRecord{
		ID:        uuid.New(),
		Scope:     scope,
		Ops:       ops,
		Status:    model.PendingStatusPending,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	s.recs = append(s.recs, rec)
	return rec.ID
}

// fakeRemote records every call and can be told to fail per table.
type fakeRemote struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error
	block  chan struct{}
}

func (r *fakeRemote) apply(table string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, table)
	if err, ok := r.failOn[table]; ok {
		return err
	}
	return nil
}

func (r *fakeRemote) Insert(_ context.Context, table string, _ []map[string]interface{}) error {
	return r.apply(table)
}

func (r *fakeRemote) Upsert(_ context.Context, table string, _ []map[string]interface{}, _ string) error {
	return r.apply(table)
}

func (r *fakeRemote) Delete(_ context.Context, table string, _ map[string]interface{}) error {
	return r.apply(table)
}

func (r *fakeRemote) calledTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeRemote) clearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn = nil
}

func insertOp(table string) model.SyncOp {
	return model.SyncOp{
		Kind:  model.SyncOpInsert,
		Table: table,
		Rows:  []map[string]interface{}{{"id": uuid.New().String()}},
	}
}

func newTestQueue(store *memStore, remote *fakeRemote, health *Health) *Queue {
	return NewQueue(store, remote, health, QueueConfig{}, nil, nil)
}

func TestEnqueueEmptyBatchIsNoOp(t *testing.T) {
	store := &memStore{}
	q := newTestQueue(store, &fakeRemote{}, NewHealth())

	id, err := q.Enqueue(context.Background(), "orders:insert", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Empty(t, store.recs)
}

func TestEnqueueRejectsInvalidOp(t *testing.T) {
	store := &memStore{}
	q := newTestQueue(store, &fakeRemote{}, NewHealth())

	_, err := q.Enqueue(context.Background(), "orders:delete", []model.SyncOp{
		{Kind: model.SyncOpDelete, Table: "orders"},
	}, nil)
	require.Error(t, err)
	assert.Empty(t, store.recs)
}

func TestEnqueuePersistsRecord(t *testing.T) {
	store := &memStore{}
	q := newTestQueue(store, &fakeRemote{}, NewHealth())

	id, err := q.Enqueue(context.Background(), "orders:insert", []model.SyncOp{insertOp("orders")}, model.JSONMap{"till": "front"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	rec := store.get(id)
	require.NotNil(t, rec)
	assert.Equal(t, "orders:insert", rec.Scope)
	assert.Equal(t, model.PendingStatusPending, rec.Status)
	assert.Len(t, rec.Ops, 1)
}

func TestFlushSkipsStoreWhileBreakerOpen(t *testing.T) {
	store := &memStore{}
	store.seed("orders:insert", time.Now(), insertOp("orders"))

	health := NewHealth()
	health.MarkFailure(errors.New("connection refused"))

	q := newTestQueue(store, &fakeRemote{}, health)
	require.NoError(t, q.Flush(context.Background()))
	assert.Equal(t, 0, store.listCalls)
}

func TestFlushEmptyQueueMarksHealthy(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	health := NewHealth(WithClock(func() time.Time { return now }))
	health.MarkFailure(errors.New("i/o timeout"))
	now = now.Add(DefaultRetryDelay)

	q := newTestQueue(&memStore{}, &fakeRemote{}, health)
	require.NoError(t, q.Flush(context.Background()))
	assert.True(t, health.Healthy())
}

func TestFlushReplaysOldestFirst(t *testing.T) {
	store := &memStore{}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := store.seed("payments:insert", base.Add(time.Minute), insertOp("payments"))
	first := store.seed("orders:insert", base, insertOp("orders"), insertOp("order_items"))

	remote := &fakeRemote{}
	health := NewHealth()
	q := newTestQueue(store, remote, health)

	require.NoError(t, q.Flush(context.Background()))
	assert.Equal(t, []string{"orders", "order_items", "payments"}, remote.calledTables())
	assert.Equal(t, model.PendingStatusSynced, store.get(first).Status)
	assert.Equal(t, model.PendingStatusSynced, store.get(second).Status)
	assert.True(t, health.Healthy())
}

func TestFlushNetworkFailureHaltsBatch(t *testing.T) {
	store := &memStore{}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := store.seed("orders:insert", base, insertOp("orders"))
	second := store.seed("payments:insert", base.Add(time.Minute), insertOp("payments"))

	remote := &fakeRemote{failOn: map[string]error{
		"orders": errors.New("dial tcp 10.0.0.1:5432: connection refused"),
	}}
	health := NewHealth()
	q := newTestQueue(store, remote, health)

	// Network trouble is reported through health state, not the error.
	require.NoError(t, q.Flush(context.Background()))

	rec := store.get(first)
	assert.Equal(t, model.PendingStatusPending, rec.Status)
	assert.Equal(t, 1, rec.RetryCount)
	require.NotNil(t, rec.LastError)
	assert.Contains(t, *rec.LastError, "connection refused")

	// The rest of the batch was never attempted.
	assert.Equal(t, []string{"orders"}, remote.calledTables())
	assert.Equal(t, model.PendingStatusPending, store.get(second).Status)
	assert.Equal(t, 0, store.get(second).RetryCount)
	assert.False(t, health.Healthy())
}

func TestFlushRetriesRequeuedRecordFirst(t *testing.T) {
	store := &memStore{}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := store.seed("orders:insert", base, insertOp("orders"))
	second := store.seed("payments:insert", base.Add(time.Minute), insertOp("payments"))

	remote := &fakeRemote{failOn: map[string]error{
		"orders": errors.New("dial tcp 10.0.0.1:5432: connection refused"),
	}}
	now := base
	health := NewHealth(WithClock(func() time.Time { return now }))
	q := newTestQueue(store, remote, health)

	// First flush dies on the older record; the requeue must not push
	// it behind the younger one.
	require.NoError(t, q.Flush(context.Background()))
	assert.Equal(t, []string{"orders"}, remote.calledTables())

	remote.clearFailures()
	now = now.Add(DefaultRetryDelay)

	require.NoError(t, q.Flush(context.Background()))
	assert.Equal(t, []string{"orders", "orders", "payments"}, remote.calledTables())
	assert.Equal(t, model.PendingStatusSynced, store.get(first).Status)
	assert.Equal(t, model.PendingStatusSynced, store.get(second).Status)
}

func TestFlushLogicalFailureParksRecordAndContinues(t *testing.T) {
	store := &memStore{}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	bad := store.seed("orders:insert", base, insertOp("orders"))
	good := store.seed("payments:insert", base.Add(time.Minute), insertOp("payments"))

	remote := &fakeRemote{failOn: map[string]error{
		"orders": errors.New(`duplicate key value violates unique constraint "orders_pkey"`),
	}}
	health := NewHealth()
	q := newTestQueue(store, remote, health)

	require.NoError(t, q.Flush(context.Background()))

	rec := store.get(bad)
	assert.Equal(t, model.PendingStatusFailed, rec.Status)
	assert.Equal(t, 1, rec.RetryCount)

	assert.Equal(t, model.PendingStatusSynced, store.get(good).Status)
	assert.True(t, health.Healthy())
}

func TestFlushFailedRecordStaysParked(t *testing.T) {
	store := &memStore{}
	id := store.seed("orders:insert", time.Now(), insertOp("orders"))
	require.NoError(t, store.UpdateStatus(context.Background(), id, model.PendingStatusFailed, 1, nil))

	remote := &fakeRemote{}
	q := newTestQueue(store, remote, NewHealth())

	require.NoError(t, q.Flush(context.Background()))
	assert.Empty(t, remote.calledTables())
	assert.Equal(t, model.PendingStatusFailed, store.get(id).Status)
}

func TestFlushResumesInterruptedSyncing(t *testing.T) {
	store := &memStore{}
	id := store.seed("orders:insert", time.Now(), insertOp("orders"))
	require.NoError(t, store.UpdateStatus(context.Background(), id, model.PendingStatusSyncing, 0, nil))

	remote := &fakeRemote{}
	q := newTestQueue(store, remote, NewHealth())

	require.NoError(t, q.Flush(context.Background()))
	assert.Equal(t, model.PendingStatusSynced, store.get(id).Status)
}

func TestFlushSingleFlight(t *testing.T) {
	store := &memStore{}
	store.seed("orders:insert", time.Now(), insertOp("orders"))

	remote := &fakeRemote{block: make(chan struct{})}
	q := newTestQueue(store, remote, NewHealth())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = q.Flush(context.Background())
		}(i)
	}

	// Let both callers arrive before the single flush proceeds.
	time.Sleep(50 * time.Millisecond)
	close(remote.block)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, store.listCalls)
}

func TestDepthCountsPendingOnly(t *testing.T) {
	store := &memStore{}
	store.seed("orders:insert", time.Now(), insertOp("orders"))
	id := store.seed("payments:insert", time.Now(), insertOp("payments"))
	require.NoError(t, store.UpdateStatus(context.Background(), id, model.PendingStatusSynced, 0, nil))

	q := newTestQueue(store, &fakeRemote{}, NewHealth())
	n, err := q.Depth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
