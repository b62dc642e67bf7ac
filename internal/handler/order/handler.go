package order

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	"github.com/driano7/Xoco-POS-sub003/internal/middleware"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	orderService "github.com/driano7/Xoco-POS-sub003/internal/service/order"
)

type Handler struct {
	service *orderService.Service
}

func NewHandler(service *orderService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id", h.UpdateOrder)
	}
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing session"))
		return
	}

	order, result, err := h.service.CreateOrder(c.Request.Context(), claims, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(order))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid order ID"))
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid order ID"))
		return
	}

	var req model.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	order, result, err := h.service.UpdateOrder(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(order))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) ListOrders(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid branch ID"))
		return
	}

	filters := &model.OrderFilters{
		BranchID:      branchID,
		IncludeHidden: c.Query("include_hidden") == "true",
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.OrderStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		if t, err := time.ParseInLocation("2006-01-02", date, time.Local); err == nil {
			filters.StartDate = t
		}
	}
	if date := c.Query("end_date"); date != "" {
		if t, err := time.ParseInLocation("2006-01-02", date, time.Local); err == nil {
			filters.EndDate = t
		}
	}

	orders, err := h.service.ListOrders(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}
