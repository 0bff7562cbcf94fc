package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"autoprice/internal/domain"
	"autoprice/internal/export"
	"autoprice/internal/service"
)

// HistoryHandler handles stored prediction endpoints.
type HistoryHandler struct {
	svc    service.HistoryService
	logger *zap.Logger
	now    func() time.Time
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(svc service.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, logger: logger, now: time.Now}
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// List handles GET /api/v1/predictions
// @Summary List predictions
// @Description List stored estimates, newest first.
// @Tags history
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Prediction,meta=PagMeta}
// @Router /predictions [get]
func (h *HistoryHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	preds, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondPaginated(c, preds, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/predictions/:id
// @Summary Get a prediction
// @Tags history
// @Produce json
// @Param id path string true "Prediction ID"
// @Success 200 {object} APIResponse{data=domain.Prediction}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Not found"
// @Router /predictions/{id} [get]
func (h *HistoryHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid prediction ID")
		return
	}

	pred, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	RespondOK(c, pred)
}

// Export handles GET /api/v1/predictions/export
// @Summary Export predictions
// @Description Download every stored estimate as CSV or XLSX.
// @Tags history
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} APIResponse "Unsupported format"
// @Router /predictions/export [get]
func (h *HistoryHandler) Export(c *gin.Context) {
	format, err := domain.ParseExportFormat(c.Query("format"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(c.Request.Context(), format, &buf); err != nil {
		HandleError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(format, h.now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
