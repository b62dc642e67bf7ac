package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/driano7/Xoco-POS-sub003/internal/config"
	"github.com/driano7/Xoco-POS-sub003/internal/email"
	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	authHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/auth"
	checklistHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/checklist"
	inventoryHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/inventory"
	loyaltyHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/loyalty"
	orderHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/order"
	paymentHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/payment"
	reservationHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/reservation"
	syncHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/sync"
	"github.com/driano7/Xoco-POS-sub003/internal/middleware"
	"github.com/driano7/Xoco-POS-sub003/internal/repository/postgres"
	"github.com/driano7/Xoco-POS-sub003/internal/repository/sqlite"
	"github.com/driano7/Xoco-POS-sub003/internal/router"
	authService "github.com/driano7/Xoco-POS-sub003/internal/service/auth"
	checklistService "github.com/driano7/Xoco-POS-sub003/internal/service/checklist"
	inventoryService "github.com/driano7/Xoco-POS-sub003/internal/service/inventory"
	loyaltyService "github.com/driano7/Xoco-POS-sub003/internal/service/loyalty"
	orderService "github.com/driano7/Xoco-POS-sub003/internal/service/order"
	paymentService "github.com/driano7/Xoco-POS-sub003/internal/service/payment"
	reservationService "github.com/driano7/Xoco-POS-sub003/internal/service/reservation"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
	"github.com/driano7/Xoco-POS-sub003/pkg/auth"
	"github.com/driano7/Xoco-POS-sub003/pkg/cache"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
	"github.com/driano7/Xoco-POS-sub003/pkg/metrics"
	"github.com/driano7/Xoco-POS-sub003/pkg/security"
)

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

	// Remote database. The handle opens without dialing; the till keeps
	// working against the local queue until the network returns.
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

	m := metrics.NewMetrics("xoco_pos")

	// Repositories
	base := postgres.NewBaseRepository(db)
	rowStore := postgres.NewRowStore(base, m)
	orderRepo := postgres.NewOrderRepository(base)
	reservationRepo := postgres.NewReservationRepository(base)
	paymentRepo := postgres.NewPaymentRepository(base)
	checklistRepo := postgres.NewChecklistRepository(base)
	staffRepo := postgres.NewStaffRepository(base)
	inventoryRepo := postgres.NewInventoryRepository(base)
	loyaltyRepo := postgres.NewLoyaltyRepository(base)

	pendingStore := sqlite.NewPendingStore(localDB)
	mirrorStore := sqlite.NewMirrorStore(localDB)

	// Offline resilience layer
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
	writer := syncpkg.NewWriter(rowStore, queue, mirrorStore, health, appLogger)

	redisCache, err := cache.New(cache.Config{URL: cfg.Redis.URL, TTL: cfg.Redis.TTL})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		redisCache = nil
	}

	jwtSvc := auth.NewJWTService(cfg.JWT)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	emailer := email.NewService(cfg.SMTP, appLogger)

	var encryptor security.Encryptor
	if cfg.Security.PIIKey != "" {
		encryptor, err = security.NewSecretKeyedEncryptor(cfg.Security.PIIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize encryption")
		}
	}

	// Services
	authSvc := authService.NewService(staffRepo, jwtSvc, hasher, appLogger)
	orderSvc := orderService.NewService(orderRepo, writer, mirrorStore, health, appLogger)
	reservationSvc := reservationService.NewService(reservationRepo, writer, encryptor, emailer, mirrorStore, health, appLogger)
	paymentSvc := paymentService.NewService(paymentRepo, writer, redisCache, appLogger)
	inventorySvc := inventoryService.NewService(inventoryRepo, appLogger)
	loyaltySvc := loyaltyService.NewService(loyaltyRepo, appLogger)
	checklistSvc := checklistService.NewService(checklistRepo, writer, emailer, appLogger)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	h := handler.NewHandler()

	tillHandlers := []router.Handler{
		orderHandler.NewHandler(orderSvc),
		reservationHandler.NewHandler(reservationSvc),
		paymentHandler.NewHandler(paymentSvc),
		loyaltyHandler.NewHandler(loyaltySvc),
		checklistHandler.NewHandler(checklistSvc),
	}
	adminHandlers := []router.Handler{
		inventoryHandler.NewHandler(inventorySvc),
		syncHandler.NewHandler(queue, health, pendingStore),
	}

	routerCfg := router.Config{
		CORSConfig: middleware.DefaultCORSConfig(),
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		tillHandlers,
		adminHandlers,
		h,
		m,
		routerCfg,
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Background flush keeps draining the queue even when no till is
	// actively writing.
	flushCtx, stopFlush := context.WithCancel(context.Background())
	go flushLoop(flushCtx, queue, cfg.Sync.FlushInterval, appLogger)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopFlush()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func flushLoop(ctx context.Context, queue *syncpkg.Queue, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := queue.Flush(ctx); err != nil {
				log.Warn("background flush failed", "error", err.Error())
			}
		}
	}
}
