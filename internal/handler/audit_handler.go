package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-adp-api/internal/dto"
	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/service"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
	"github.com/noah-isme/clinic-adp-api/pkg/response"
)

// AuditHandler exposes the audit timeline and export endpoints.
type AuditHandler struct {
	audit   *service.AuditService
	exports *service.AuditExportService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(audit *service.AuditService, exports *service.AuditExportService) *AuditHandler {
	return &AuditHandler{audit: audit, exports: exports}
}

// Timeline godoc
// @Summary Audit timeline
// @Description List audit records, newest first
// @Tags Audit
// @Produce json
// @Param from query string false "Start time (RFC3339)"
// @Param to query string false "End time (RFC3339)"
// @Param user_id query string false "Actor filter"
// @Param resource query string false "Resource filter"
// @Param action query string false "Action filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) Timeline(c *gin.Context) {
	var filter models.AuditFilter

	if from := c.Query("from"); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339"))
			return
		}
		filter.From = ts
	}
	if to := c.Query("to"); to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339"))
			return
		}
		filter.To = ts
	}

	filter.UserID = c.Query("user_id")
	filter.Resource = c.Query("resource")
	filter.Action = c.Query("action")

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil {
		filter.PageSize = size
	}

	logs, pagination, err := h.audit.Timeline(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, logs, pagination)
}

// CreateExport godoc
// @Summary Enqueue audit export
// @Description Render the filtered audit trail to CSV or PDF asynchronously
// @Tags Audit
// @Accept json
// @Produce json
// @Param payload body dto.AuditExportRequest true "Export parameters"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /audit/exports [post]
func (h *AuditHandler) CreateExport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AuditExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	job, err := h.exports.CreateJob(c.Request.Context(), req, claims.UserID, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Export job status
// @Tags Audit
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /audit/exports/{id} [get]
func (h *AuditHandler) ExportStatus(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download export
// @Description Stream a finished export; the token comes from the signed result URL
// @Tags Audit
// @Produce octet-stream
// @Param token path string true "Download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /audit/exports/download/{token} [get]
func (h *AuditHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", contentType)
	c.File(download.File.Name())
}
