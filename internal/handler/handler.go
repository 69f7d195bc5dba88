package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checker reports whether a dependency is usable
type Checker func(ctx context.Context) error

// Handler serves health and metrics endpoints
type Handler struct {
	checks   map[string]Checker
	gatherer prometheus.Gatherer
	started  time.Time
}

// NewHandler creates a new handler instance. checks run on readiness probes.
func NewHandler(gatherer prometheus.Gatherer, checks map[string]Checker) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if checks == nil {
		checks = map[string]Checker{}
	}
	return &Handler{
		checks:   checks,
		gatherer: gatherer,
		started:  time.Now(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"status": "alive",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}))
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		resp := NewErrorResponse("not ready")
		resp.Data = failures
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"status": "ready",
		"time":   time.Now(),
	}))
}

func (h *Handler) MetricsHandler() gin.HandlerFunc {
	metrics := promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		metrics.ServeHTTP(c.Writer, c.Request)
	}
}
