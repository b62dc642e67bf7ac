package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
	"github.com/driano7/Xoco-POS-sub003/pkg/metrics"
)

const (
	// DefaultBatchSize caps how many pending records one flush loads.
	DefaultBatchSize = 20
	// DefaultOpTimeout bounds each individual remote call during
	// replay, so a hung connection cannot stall the flush forever.
	DefaultOpTimeout = 10 * time.Second
)

// PendingStore is the durable local backing for the queue. The sqlite
// package provides the production implementation.
type PendingStore interface {
	Insert(ctx context.Context, rec *model.PendingRecord) error
	// ListRunnable returns up to limit records with status pending or
	// syncing, oldest updated_at first.
	ListRunnable(ctx context.Context, limit int) ([]*model.PendingRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PendingStatus, retryCount int, lastError *string) error
	CountPending(ctx context.Context) (int, error)
}

type QueueConfig struct {
	BatchSize int
	OpTimeout time.Duration
}

// Queue durably records writes that could not reach the remote store
// and replays them, in order, once connectivity returns. It is the only
// component allowed to mutate Health from remote outcomes.
type Queue struct {
	store   PendingStore
	remote  RemoteStore
	health  *Health
	logger  *logger.Logger
	metrics *metrics.Metrics
	config  QueueConfig

	mu       sync.Mutex
	inflight *flight
}

// flight is one in-progress flush shared by every caller that arrived
// while it was running.
type flight struct {
	done chan struct{}
	err  error
}

func NewQueue(store PendingStore, remote RemoteStore, health *Health, cfg QueueConfig, log *logger.Logger, m *metrics.Metrics) *Queue {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}
	return &Queue{
		store:   store,
		remote:  remote,
		health:  health,
		logger:  log,
		metrics: m,
		config:  cfg,
	}
}

// Enqueue durably records a batch of operations for later replay.
// An empty batch is a no-op and returns uuid.Nil. Only the local store
// is touched, so this succeeds while the remote is completely down.
func (q *Queue) Enqueue(ctx context.Context, scope string, ops []model.SyncOp, meta model.JSONMap) (uuid.UUID, error) {
	if len(ops) == 0 {
		return uuid.Nil, nil
	}
	for i := range ops {
		if err := ops[i].Validate(); err != nil {
			return uuid.Nil, fmt.Errorf("invalid operation %d in scope %s: %w", i, scope, err)
		}
	}

	now := time.Now()
	rec := &model.PendingRecord{
		ID:        uuid.New(),
		Scope:     scope,
		Ops:       ops,
		Context:   meta,
		Status:    model.PendingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.store.Insert(ctx, rec); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue pending record: %w", err)
	}

	if q.metrics != nil {
		q.metrics.SyncRecordsQueued.Inc()
	}
	if q.logger != nil {
		q.logger.Info("queued offline write", "scope", scope, "pending_id", rec.ID.String(), "ops", len(ops))
	}
	return rec.ID, nil
}

// Flush replays queued records against the remote store.
//
// It returns immediately when the breaker says the remote is down
// (without touching the local store), and concurrent callers share a
// single in-flight flush: whoever arrives while one is running waits
// for that same outcome instead of starting another.
//
// Remote network failures are reported through Health state, never as a
// Flush error; only local-store trouble surfaces to the caller.
func (q *Queue) Flush(ctx context.Context) error {
	if !q.health.ShouldPreferRemote() {
		return nil
	}

	q.mu.Lock()
	if f := q.inflight; f != nil {
		q.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	q.inflight = f
	q.mu.Unlock()

	f.err = q.flush(ctx)

	q.mu.Lock()
	q.inflight = nil
	q.mu.Unlock()
	close(f.done)

	return f.err
}

func (q *Queue) flush(ctx context.Context) error {
	start := time.Now()
	defer func() {
		if q.metrics != nil {
			q.metrics.SyncFlushDuration.Observe(time.Since(start).Seconds())
		}
	}()

	records, err := q.store.ListRunnable(ctx, q.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to load pending records: %w", err)
	}

	if len(records) == 0 {
		// An empty successful poll counts as evidence of
		// reachability. Debatable, but preserved from the original
		// behavior.
		q.health.MarkHealthy()
		return nil
	}

	for _, rec := range records {
		if err := q.store.UpdateStatus(ctx, rec.ID, model.PendingStatusSyncing, rec.RetryCount, rec.LastError); err != nil {
			return fmt.Errorf("failed to mark record %s syncing: %w", rec.ID, err)
		}

		replayErr := q.replay(ctx, rec)
		if replayErr == nil {
			if err := q.store.UpdateStatus(ctx, rec.ID, model.PendingStatusSynced, rec.RetryCount, nil); err != nil {
				return fmt.Errorf("failed to mark record %s synced: %w", rec.ID, err)
			}
			q.health.MarkHealthy()
			if q.metrics != nil {
				q.metrics.SyncRecordsSynced.Inc()
			}
			continue
		}

		retries := rec.RetryCount + 1
		errMsg := replayErr.Error()
		if q.metrics != nil {
			q.metrics.SyncRetries.WithLabelValues(rec.Scope).Inc()
		}

		if q.health.IsTransient(replayErr) {
			// The remote is suspected down. Put the record back and
			// stop the whole batch so ordering is preserved across
			// invocations.
			if err := q.store.UpdateStatus(ctx, rec.ID, model.PendingStatusPending, retries, &errMsg); err != nil {
				return fmt.Errorf("failed to requeue record %s: %w", rec.ID, err)
			}
			q.health.MarkFailure(replayErr)
			if q.logger != nil {
				q.logger.Warn("flush halted on network failure", "pending_id", rec.ID.String(), "scope", rec.Scope, "error", errMsg)
			}
			return nil
		}

		// Logical failure: this record is bad, not the connection.
		// Park it for operator inspection and keep going.
		if err := q.store.UpdateStatus(ctx, rec.ID, model.PendingStatusFailed, retries, &errMsg); err != nil {
			return fmt.Errorf("failed to mark record %s failed: %w", rec.ID, err)
		}
		if q.metrics != nil {
			q.metrics.SyncRecordsFailed.Inc()
		}
		if q.logger != nil {
			q.logger.Warn("pending record failed permanently", "pending_id", rec.ID.String(), "scope", rec.Scope, "error", errMsg)
		}
	}

	return nil
}

// replay applies every operation of one record in array order. The
// first error aborts the batch; nothing later in the same record is
// attempted.
func (q *Queue) replay(ctx context.Context, rec *model.PendingRecord) error {
	for i, op := range rec.Ops {
		opCtx, cancel := context.WithTimeout(ctx, q.config.OpTimeout)
		err := applyOp(opCtx, q.remote, op)
		cancel()
		if err != nil {
			return fmt.Errorf("op %d (%s %s): %w", i, op.Kind, op.Table, err)
		}
	}
	return nil
}

// Depth reports the number of pending records, for dashboards.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	n, err := q.store.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	if q.metrics != nil {
		q.metrics.SyncQueueDepth.Set(float64(n))
	}
	return n, nil
}
