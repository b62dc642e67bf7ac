package reservation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	reservationService "github.com/driano7/Xoco-POS-sub003/internal/service/reservation"
)

type Handler struct {
	service *reservationService.Service
}

func NewHandler(service *reservationService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.PATCH("/:id", h.UpdateReservation)
		reservations.POST("/:id/cancel", h.CancelReservation)
	}
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var req model.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	res, result, err := h.service.CreateReservation(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(res))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(res))
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reservation ID"))
		return
	}

	res, err := h.service.GetReservation(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) UpdateReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reservation ID"))
		return
	}

	var req model.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	res, result, err := h.service.UpdateReservation(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(res))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reservation ID"))
		return
	}

	res, result, err := h.service.CancelReservation(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(res))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) ListReservations(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid branch ID"))
		return
	}

	filters := &model.ReservationFilters{
		BranchID:      branchID,
		IncludeHidden: c.Query("include_hidden") == "true",
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.ReservationStatus(status)
	}

	reservations, err := h.service.ListReservations(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(reservations))
}
