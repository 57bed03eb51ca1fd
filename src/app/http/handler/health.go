// Package handler adapts HTTP requests to the workshop use cases. Handlers
// decode input through the dto package, call a service, and write either a
// projected view or an error envelope from the response package.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop/src/core/usecase"
)

// ServiceName identifies this API in health responses.
const ServiceName = "workshop-merchant"

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	healthService *usecase.HealthService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService *usecase.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health answers as long as the process serves HTTP. Storage is not checked.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}

// DetailedHealth checks every component and answers 503 when one is
// degraded.
// GET /health/detailed
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
