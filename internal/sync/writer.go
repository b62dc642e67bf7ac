package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
)

// Mirror applies a queued batch to the local read mirror so offline
// reads stay consistent with what the till just wrote.
type Mirror interface {
	Apply(ctx context.Context, ops []model.SyncOp) error
}

// Result tells the caller what happened to a resilient write. Queued
// writes are user-visible as "saved, will sync", which is different
// from a validation failure.
type Result struct {
	Queued    bool      `json:"queued"`
	PendingID uuid.UUID `json:"pending_id,omitempty"`
}

// Writer is the single write path for collaborators that must survive
// the remote store going away: try the remote first, and on a
// network-classified failure durably queue the batch and mirror it
// locally. Logical failures surface to the caller untouched.
type Writer struct {
	remote RemoteStore
	queue  *Queue
	mirror Mirror
	health *Health
	logger *logger.Logger
}

func NewWriter(remote RemoteStore, queue *Queue, mirror Mirror, health *Health, log *logger.Logger) *Writer {
	return &Writer{
		remote: remote,
		queue:  queue,
		mirror: mirror,
		health: health,
		logger: log,
	}
}

// Apply runs the batch against the remote store, falling back to the
// pending queue on connectivity trouble.
func (w *Writer) Apply(ctx context.Context, scope string, ops []model.SyncOp, meta model.JSONMap) (*Result, error) {
	if len(ops) == 0 {
		return &Result{}, nil
	}

	if w.health.ShouldPreferRemote() {
		err := w.applyRemote(ctx, ops)
		if err == nil {
			w.health.MarkHealthy()
			return &Result{}, nil
		}
		if !w.health.IsTransient(err) {
			return nil, err
		}
		w.health.MarkFailure(err)
		if w.logger != nil {
			w.logger.Warn("remote write failed, falling back to queue", "scope", scope, "error", err.Error())
		}
	}

	id, err := w.queue.Enqueue(ctx, scope, ops, meta)
	if err != nil {
		return nil, err
	}
	if w.mirror != nil {
		if err := w.mirror.Apply(ctx, ops); err != nil {
			// The queue already holds the authoritative copy; a stale
			// mirror only degrades offline reads.
			if w.logger != nil {
				w.logger.Error(err, "failed to mirror queued write", "scope", scope)
			}
		}
	}
	return &Result{Queued: true, PendingID: id}, nil
}

func (w *Writer) applyRemote(ctx context.Context, ops []model.SyncOp) error {
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return err
		}
		if err := applyOp(ctx, w.remote, op); err != nil {
			return fmt.Errorf("op %d (%s %s): %w", i, op.Kind, op.Table, err)
		}
	}
	return nil
}
