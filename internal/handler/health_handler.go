package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invodex/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store   port.InvoiceStore
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store port.InvoiceStore, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

// Liveness handles GET /health
// @Summary Liveness check
// @Description Report that the service process is up
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Router /health [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "invodex",
		"version": h.version,
	})
}

// Readiness handles GET /readyz
// @Summary Readiness check
// @Description Report whether the invoice store's backing files are reachable
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Store reachable"
// @Failure 503 {object} HealthResponse "Store not reachable"
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "invoice store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
