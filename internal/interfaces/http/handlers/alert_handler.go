package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// AlertHandler serves the conflict alert endpoints.
type AlertHandler struct {
	alerts alert.AlertRepository
	logger logging.Logger
}

// NewAlertHandler wires the alert endpoints.
func NewAlertHandler(alerts alert.AlertRepository, logger logging.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

// RegisterRoutes mounts the alert routes on the given group.
func (h *AlertHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items/:id/alerts", h.ListForItem)
	rg.GET("/alerts", h.List)
	rg.GET("/alerts/:id", h.Get)
	rg.DELETE("/alerts/:id", h.Dismiss)
}

// AlertListResponse is the paginated list body.
type AlertListResponse struct {
	Alerts interface{} `json:"alerts"`
	Total  int64       `json:"total"`
}

func (h *AlertHandler) ListForItem(c *gin.Context) {
	filters, err := listFilters(c)
	if err != nil {
		writeAppError(c, err)
		return
	}
	opts := append([]alert.ListOption{alert.WithItem(c.Param("id"))}, filters...)

	alerts, total, err := h.alerts.List(c.Request.Context(), opts...)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{Alerts: alerts, Total: total})
}

func (h *AlertHandler) List(c *gin.Context) {
	filters, err := listFilters(c)
	if err != nil {
		writeAppError(c, err)
		return
	}
	alerts, total, err := h.alerts.List(c.Request.Context(), filters...)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, AlertListResponse{Alerts: alerts, Total: total})
}

func (h *AlertHandler) Get(c *gin.Context) {
	a, err := h.alerts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Dismiss deletes a single alert.  Alerts are immutable; dismissal is the
// only mutation.
func (h *AlertHandler) Dismiss(c *gin.Context) {
	if err := h.alerts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listFilters(c *gin.Context) ([]alert.ListOption, error) {
	var opts []alert.ListOption
	if v := c.Query("type"); v != "" {
		opts = append(opts, alert.WithType(alert.AlertType(v)))
	}
	if v := c.Query("severity"); v != "" {
		opts = append(opts, alert.WithSeverity(alert.Severity(v)))
	}
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.NewValidation("invalid since timestamp %q", v)
		}
		opts = append(opts, alert.WithSince(t))
	}
	limit, offset := parsePagination(c)
	opts = append(opts, alert.WithPage(limit, offset))
	return opts, nil
}
