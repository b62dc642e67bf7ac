package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/driano7/Xoco-POS-sub003/internal/config"
	"github.com/driano7/Xoco-POS-sub003/internal/email"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository/postgres"
	"github.com/driano7/Xoco-POS-sub003/internal/repository/sqlite"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
	"github.com/driano7/Xoco-POS-sub003/pkg/metrics"
)

// The worker shares the till's local store and keeps draining the
// pending queue even while the API binary is down, so a branch that
// reboots its till overnight still catches up by morning.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    true,
	})

	// Opens without dialing: the worker's whole job is to drain the
	// queue once connectivity returns, so it must boot offline.
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open remote database handle")
	}
	defer db.Close()

	localDB, err := sqlite.Open(cfg.LocalStore.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}
	defer localDB.Close()

	m := metrics.NewMetrics("xoco_pos_worker")

	base := postgres.NewBaseRepository(db)
	rowStore := postgres.NewRowStore(base, m)
	pendingStore := sqlite.NewPendingStore(localDB)

	health := syncpkg.NewHealth(
		syncpkg.WithRetryDelay(cfg.Sync.RetryDelay),
		syncpkg.WithHealthGauge(m.RemoteHealthy),
	)
	if err := db.Ping(); err != nil {
		appLogger.Warn("remote database unreachable, starting offline", "error", err.Error())
		health.MarkFailure(err)
	}
	queue := syncpkg.NewQueue(pendingStore, rowStore, health, syncpkg.QueueConfig{
		BatchSize: cfg.Sync.BatchSize,
		OpTimeout: cfg.Sync.OpTimeout,
	}, appLogger, m)

	emailer := email.NewService(cfg.SMTP, appLogger)

	w := &worker{
		queue:    queue,
		store:    pendingStore,
		emailer:  emailer,
		logger:   appLogger,
		interval: cfg.Sync.FlushInterval,
		retain:   cfg.Sync.SyncedRetention,
		alerted:  make(map[uuid.UUID]struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.run(ctx)
	log.Info().Dur("flush_interval", w.interval).Msg("sync worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}

type worker struct {
	queue    *syncpkg.Queue
	store    *sqlite.PendingStore
	emailer  email.Service
	logger   *logger.Logger
	interval time.Duration
	retain   time.Duration
	alerted  map[uuid.UUID]struct{}
}

func (w *worker) run(ctx context.Context) {
	interval := w.interval
	if interval <= 0 {
		interval = time.Minute
	}
	flushTicker := time.NewTicker(interval)
	gcTicker := time.NewTicker(time.Hour)
	defer flushTicker.Stop()
	defer gcTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-flushTicker.C:
			if err := w.queue.Flush(ctx); err != nil {
				w.logger.Warn("flush failed", "error", err.Error())
			}
			w.alertOnFailures(ctx)
		case <-gcTicker.C:
			w.collectSynced(ctx)
		}
	}
}

// alertOnFailures emails ops once per permanently failed record. Those
// records need a human: replaying them would fail the same way again.
func (w *worker) alertOnFailures(ctx context.Context) {
	records, err := w.store.ListRecent(ctx, 100)
	if err != nil {
		w.logger.Warn("failed to list pending records", "error", err.Error())
		return
	}

	for _, rec := range records {
		if rec.Status != model.PendingStatusFailed {
			continue
		}
		if _, seen := w.alerted[rec.ID]; seen {
			continue
		}

		lastError := ""
		if rec.LastError != nil {
			lastError = *rec.LastError
		}
		if err := w.emailer.SendSyncFailureAlert(ctx, rec.Scope, rec.ID.String(), lastError); err != nil {
			w.logger.Warn("failed to send sync failure alert", "pending_id", rec.ID.String(), "error", err.Error())
			continue
		}
		w.alerted[rec.ID] = struct{}{}
	}
}

func (w *worker) collectSynced(ctx context.Context) {
	retain := w.retain
	if retain <= 0 {
		retain = 7 * 24 * time.Hour
	}

	n, err := w.store.DeleteSyncedBefore(ctx, time.Now().Add(-retain))
	if err != nil {
		w.logger.Warn("failed to prune synced records", "error", err.Error())
		return
	}
	if n > 0 {
		w.logger.Info("pruned synced records", "count", n)
	}
}
