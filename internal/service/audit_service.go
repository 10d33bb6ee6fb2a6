package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type auditLogStore interface {
	Insert(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// auditRecorder is the write-side surface other services depend on.
type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// AuditService owns the append-only audit trail: best-effort writes from
// every other service and the read-only timeline for administrators.
type AuditService struct {
	repo   auditLogStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService instance.
func NewAuditService(repo auditLogStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record appends one audit entry. Failures are logged and swallowed: audit
// unavailability must never fail the operation being audited.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}

// Timeline returns audit entries matching the filter, newest first.
func (s *AuditService) Timeline(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return logs, pagination, nil
}
