package sync

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	"github.com/driano7/Xoco-POS-sub003/internal/repository/sqlite"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
)

// Handler exposes the offline queue for branch managers: inspecting what
// is still waiting to reach the central database and forcing a flush
// after connectivity returns.
type Handler struct {
	queue  *syncpkg.Queue
	health *syncpkg.Health
	store  *sqlite.PendingStore
}

func NewHandler(queue *syncpkg.Queue, health *syncpkg.Health, store *sqlite.PendingStore) *Handler {
	return &Handler{queue: queue, health: health, store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.GET("/health", h.Health)
		sync.GET("/pending", h.ListPending)
		sync.POST("/flush", h.Flush)
	}
}

func (h *Handler) Health(c *gin.Context) {
	depth, err := h.queue.Depth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	payload := gin.H{
		"remote_healthy": h.health.Healthy(),
		"prefer_remote":  h.health.ShouldPreferRemote(),
		"pending_count":  depth,
	}
	if t := h.health.LastFailureAt(); !t.IsZero() {
		payload["last_failure_at"] = t
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(payload))
}

func (h *Handler) ListPending(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		limit = n
	}

	records, err := h.store.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) Flush(c *gin.Context) {
	if err := h.queue.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, handler.NewErrorResponse(err.Error()))
		return
	}

	depth, err := h.queue.Depth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"remote_healthy": h.health.Healthy(),
		"pending_count":  depth,
	}))
}
