package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkSentinel/internal/application/items"
	"github.com/turtacn/MarkSentinel/internal/application/scheduling"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// ItemHandler serves the monitoring item endpoints.
type ItemHandler struct {
	items     items.Service
	scheduler *scheduling.Scheduler
	logger    logging.Logger
}

// NewItemHandler wires the item endpoints.
func NewItemHandler(svc items.Service, scheduler *scheduling.Scheduler, logger logging.Logger) *ItemHandler {
	return &ItemHandler{items: svc, scheduler: scheduler, logger: logger}
}

// RegisterRoutes mounts the item routes on the given group.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/items", h.Create)
	rg.GET("/items", h.List)
	rg.GET("/items/:id", h.Get)
	rg.PUT("/items/:id", h.Update)
	rg.DELETE("/items/:id", h.Delete)
	rg.POST("/items/:id/check", h.Check)
}

func (h *ItemHandler) Create(c *gin.Context) {
	var input items.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeAppError(c, errors.NewValidation("invalid request body"))
		return
	}

	item, err := h.items.Create(c.Request.Context(), input)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ItemListResponse is the paginated list body.
type ItemListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

func (h *ItemHandler) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	list, total, err := h.items.List(c.Request.Context(), items.ListInput{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemListResponse{Items: list, Total: total})
}

func (h *ItemHandler) Update(c *gin.Context) {
	var input items.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		writeAppError(c, errors.NewValidation("invalid request body"))
		return
	}

	item, err := h.items.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.scheduler.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		writeAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Check triggers an immediate check run for the item.
func (h *ItemHandler) Check(c *gin.Context) {
	id := c.Param("id")
	if err := h.scheduler.RunCheck(c.Request.Context(), id); err != nil {
		writeAppError(c, err)
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
