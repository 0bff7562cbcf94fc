package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db            Pinger
	modelLoaded   bool
	llmConfigured bool
}

// NewHealthHandler creates a new HealthHandler. db is nil when history is disabled.
func NewHealthHandler(db Pinger, modelLoaded, llmConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, modelLoaded: modelLoaded, llmConfigured: llmConfigured}
}

// HealthResponse reports service availability.
type HealthResponse struct {
	Status        string `json:"status" example:"healthy"`
	ModelLoaded   bool   `json:"model_loaded"`
	LLMConfigured bool   `json:"llm_configured"`
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health handles GET /api/v1/health
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		ModelLoaded:   h.modelLoaded,
		LLMConfigured: h.llmConfigured,
	})
}

// Root handles GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Car Price Prediction API",
		"version": "1.0.0",
		"docs":    "/swagger/index.html",
	})
}
