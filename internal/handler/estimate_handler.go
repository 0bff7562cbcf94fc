package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"autoprice/internal/service"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Description string `json:"description" binding:"required,max=1000" example:"Used Honda Civic 2018, 60k miles, one owner"`
}

// EstimateHandler handles price estimation endpoints.
type EstimateHandler struct {
	svc    service.EstimateService
	logger *zap.Logger
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(svc service.EstimateService, logger *zap.Logger) *EstimateHandler {
	return &EstimateHandler{svc: svc, logger: logger}
}

// Predict handles POST /api/v1/predict
// @Summary Estimate a used car price
// @Description Extract features from a free-text description, predict a price and return a ±10% range with warnings and a short narrative.
// @Tags estimates
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Car description"
// @Success 200 {object} APIResponse{data=domain.Estimate}
// @Failure 400 {object} APIResponse "Invalid input or schema violation"
// @Failure 429 {object} APIResponse "Daily limit exceeded"
// @Failure 500 {object} APIResponse "Extraction or prediction failed"
// @Router /predict [post]
func (h *EstimateHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_INPUT", "description is required and must be at most 1000 characters")
		return
	}

	est, err := h.svc.Estimate(c.Request.Context(), req.Description)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, est)
}

// Usage handles GET /api/v1/usage
// @Summary Daily usage
// @Description Report the daily request limit, requests used and remaining for the current UTC day.
// @Tags estimates
// @Produce json
// @Success 200 {object} APIResponse{data=domain.UsageStatus}
// @Router /usage [get]
func (h *EstimateHandler) Usage(c *gin.Context) {
	RespondOK(c, h.svc.Usage())
}
