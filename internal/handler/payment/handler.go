package payment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	paymentService "github.com/driano7/Xoco-POS-sub003/internal/service/payment"
)

type Handler struct {
	service *paymentService.Service
}

func NewHandler(service *paymentService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.RecordPayment)
		payments.GET("/summary", h.DailySummary)
	}
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	payment, result, err := h.service.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result != nil && result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(payment))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(payment))
}

func (h *Handler) DailySummary(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid branch ID"))
		return
	}

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
	}

	summary, err := h.service.DailySummary(c.Request.Context(), branchID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}
