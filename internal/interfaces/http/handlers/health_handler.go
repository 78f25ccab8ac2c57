package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// Pinger is a dependency whose liveness can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the probe body.
type HealthResponse struct {
	Status     common.HealthStatus      `json:"status"`
	Version    string                   `json:"version"`
	Timestamp  time.Time                `json:"timestamp"`
	Components []common.ComponentHealth `json:"components,omitempty"`
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version    string
	components map[string]Pinger
}

// NewHealthHandler registers the named components to probe for readiness.
func NewHealthHandler(version string, components map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, components: components}
}

// RegisterRoutes mounts the probes at the engine root.
func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// Liveness always reports healthy while the process serves requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    common.HealthUp,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}

// Readiness pings every registered component; any failure flips the probe.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    common.HealthUp,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	}
	code := http.StatusOK
	for name, p := range h.components {
		start := time.Now()
		err := p.Ping(ctx)
		component := common.ComponentHealth{
			Name:    name,
			Status:  common.HealthUp,
			Latency: time.Since(start),
		}
		if err != nil {
			component.Status = common.HealthDown
			component.Message = err.Error()
			resp.Status = common.HealthDegraded
			code = http.StatusServiceUnavailable
		}
		resp.Components = append(resp.Components, component)
	}
	c.JSON(code, resp)
}
