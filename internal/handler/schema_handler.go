package handler

import (
	"github.com/gin-gonic/gin"

	"autoprice/internal/schema"
)

// SchemaResponse describes the feature contract.
type SchemaResponse struct {
	Version    string           `json:"version"`
	Fallback   string           `json:"fallback"`
	AutoFilled []string         `json:"auto_filled"`
	Features   []schema.Feature `json:"features"`
}

// SchemaHandler serves the feature schema.
type SchemaHandler struct {
	resp SchemaResponse
}

// NewSchemaHandler creates a new SchemaHandler.
func NewSchemaHandler(s *schema.Schema) *SchemaHandler {
	return &SchemaHandler{resp: SchemaResponse{
		Version:    s.Version,
		Fallback:   s.Fallback,
		AutoFilled: s.AutoFilled,
		Features:   s.Features,
	}}
}

// Get handles GET /api/v1/schema
// @Summary Feature schema
// @Description List model features in order with their kind, bounds, defaults and accepted values.
// @Tags schema
// @Produce json
// @Success 200 {object} APIResponse{data=SchemaResponse}
// @Router /schema [get]
func (h *SchemaHandler) Get(c *gin.Context) {
	RespondOK(c, h.resp)
}
