package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	authHandler "github.com/driano7/Xoco-POS-sub003/internal/handler/auth"
	"github.com/driano7/Xoco-POS-sub003/internal/middleware"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/pkg/metrics"
)

// Handler registers a group of routes under the API prefix.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	authH  *authHandler.Handler
	tillH  []Handler
	adminH []Handler
	h      *handler.Handler
}

// NewRouter wires the middleware chain. Till handlers are available to
// any authenticated staff; admin handlers require the manager or admin
// role.
func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	tillHandlers []Handler,
	adminHandlers []Handler,
	h *handler.Handler,
	m *metrics.Metrics,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine: engine,
		auth:   auth,
		authH:  authH,
		tillH:  tillHandlers,
		adminH: adminHandlers,
		h:      h,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(middleware.CORS(cfg.CORSConfig))

	if cfg.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  cfg.RateLimit,
			Burst: cfg.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.tillH {
		h.RegisterRoutes(protected)
	}

	admin := protected.Group("")
	admin.Use(r.auth.RequireRole(model.StaffRoleAdmin, model.StaffRoleManager))
	r.authH.RegisterProtectedRoutes(admin)
	for _, h := range r.adminH {
		h.RegisterRoutes(admin)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
