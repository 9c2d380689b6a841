package handler

import (
	"context"
	"net/http"
	"time"

	"bolt-api/internal/container"
	"bolt-api/pkg/errors"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Store   string `json:"store"`
	Redis   string `json:"redis"`
}

// Check handles GET /health. The store is required, Redis is not.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:  "healthy",
		Message: "Backend is running",
		Store:   "up",
		Redis:   "disabled",
	}
	status := http.StatusOK

	if err := h.container.Store.Health(ctx); err != nil {
		appErr := errors.NewUnavailableError("Store unavailable", err)
		logger.WithError(appErr).Error("Store health check failed")
		response.Status = "unhealthy"
		response.Message = appErr.Message
		response.Store = "down"
		status = appErr.StatusCode
	}

	if h.container.HasRedis() {
		response.Redis = "up"
		if err := h.container.GetRedisClient().Health(ctx); err != nil {
			logger.WithError(err).Warn("Redis health check failed")
			response.Redis = "down"
		}
	}

	respondJSON(w, status, response, logger)
}
