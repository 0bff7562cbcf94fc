package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"autoprice/internal/domain"
	"autoprice/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Input errors are checked first: an extraction error caused by bad input is a 400.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		return http.StatusTooManyRequests, "DAILY_LIMIT_EXCEEDED", "daily request limit exceeded; please try again tomorrow"
	case errors.Is(err, domain.ErrSchemaViolation):
		return http.StatusBadRequest, "SCHEMA_VIOLATION", err.Error()
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusInternalServerError, "EXTRACTION_FAILED", "could not extract car features from the description"
	case errors.Is(err, domain.ErrPredictionFailed):
		return http.StatusInternalServerError, "PREDICTION_FAILED", "price prediction failed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "PREDICTION_NOT_FOUND", "prediction not found"
	case errors.Is(err, domain.ErrHistoryDisabled):
		return http.StatusNotFound, "HISTORY_DISABLED", "prediction history is disabled"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format; allowed: csv, xlsx"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Schema violations carry the offending features and the warnings as details.
func HandleError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		logger.Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("code", code),
			zap.Error(err))
	}

	apiErr := &APIError{Code: code, Message: msg}
	var svErr *domain.SchemaViolationError
	if errors.As(err, &svErr) {
		apiErr.Details = gin.H{"violations": svErr.Violations, "warnings": svErr.Warnings}
	}
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}
