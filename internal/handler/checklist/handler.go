package checklist

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/handler"
	"github.com/driano7/Xoco-POS-sub003/internal/middleware"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	checklistService "github.com/driano7/Xoco-POS-sub003/internal/service/checklist"
)

type Handler struct {
	service *checklistService.Service
}

func NewHandler(service *checklistService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	checklists := rg.Group("/checklists")
	{
		checklists.POST("", h.Submit)
		checklists.GET("", h.List)
		checklists.GET("/:id", h.Get)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	var req model.SubmitChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	checklist, result, err := h.service.Submit(c.Request.Context(), claims, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if result != nil && result.Queued {
		c.JSON(http.StatusAccepted, handler.NewPendingResponse(checklist))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(checklist))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid checklist ID"))
		return
	}

	checklist, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(checklist))
}

func (h *Handler) List(c *gin.Context) {
	branchID, err := uuid.Parse(c.Query("branch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid branch ID"))
		return
	}

	kind := model.ChecklistKind(c.Query("kind"))
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
	}

	checklists, err := h.service.List(c.Request.Context(), branchID, kind, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(checklists))
}
