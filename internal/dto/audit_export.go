package dto

import (
	"time"

	"github.com/noah-isme/clinic-adp-api/internal/models"
)

// AuditExportRequest is the payload for enqueueing an audit trail export.
type AuditExportRequest struct {
	From     *time.Time          `json:"from"`
	To       *time.Time          `json:"to"`
	UserID   string              `json:"user_id"`
	Resource string              `json:"resource"`
	Action   string              `json:"action"`
	Format   models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// AuditExportJobResponse acknowledges an accepted export job.
type AuditExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// AuditExportStatusResponse reports job progress and download location.
type AuditExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
