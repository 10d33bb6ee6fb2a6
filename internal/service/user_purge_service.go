package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/authz"
	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type userPurgeRepository interface {
	PurgeUser(ctx context.Context, targetID, fallbackID string) (*models.ReassignmentPlan, error)
}

type purgeUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type purgeAuthorizer interface {
	Authorize(ctx context.Context, principal models.Principal, object models.ObjectType, perm models.Permission, patientID string) (authz.Decision, error)
}

// PurgeUserRequest carries the purge parameters. An empty FallbackID means
// the acting principal absorbs the target's records.
type PurgeUserRequest struct {
	TargetID   string `json:"-"`
	FallbackID string `json:"fallback_user_id"`
}

// UserPurgeService permanently removes staff accounts. Deactivation handles
// the everyday "remove this user" case; this flow exists for the rare
// erasure demand and is deliberately harder to reach.
type UserPurgeService struct {
	purge  userPurgeRepository
	users  purgeUserReader
	engine purgeAuthorizer
	audit  auditRecorder
	logger *zap.Logger
}

// NewUserPurgeService constructs the service.
func NewUserPurgeService(purge userPurgeRepository, users purgeUserReader, engine purgeAuthorizer, audit auditRecorder, logger *zap.Logger) *UserPurgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserPurgeService{purge: purge, users: users, engine: engine, audit: audit, logger: logger}
}

// Purge deletes the target user row after repointing every row that still
// references it at the fallback account, which defaults to the acting
// principal when the request names none. Preconditions, checked in order:
// the actor holds DELETE on user administration, the actor is not the
// target, the target exists and is already deactivated, and the fallback
// exists, is active and differs from the target. The reassignment and the
// delete commit or roll back as one unit; the audit entry is written only
// after the commit succeeds.
func (s *UserPurgeService) Purge(ctx context.Context, principal models.Principal, req PurgeUserRequest, meta models.RequestMeta) (*models.ReassignmentPlan, error) {
	decision, err := s.engine.Authorize(ctx, principal, models.ObjectUserAdmin, models.PermDelete, "")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}

	if req.FallbackID == "" {
		req.FallbackID = principal.ID
	}
	if principal.ID == req.TargetID {
		return nil, appErrors.Clone(appErrors.ErrSelfDeletionForbidden, "")
	}
	if req.TargetID == req.FallbackID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fallback user must differ from the target")
	}

	target, err := s.users.FindByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target user")
	}
	if target.Active {
		return nil, appErrors.Clone(appErrors.ErrMustDeactivateFirst, "")
	}

	fallback, err := s.users.FindByID(ctx, req.FallbackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fallback user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fallback user")
	}
	if !fallback.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fallback user must be active")
	}

	plan, err := s.purge.PurgeUser(ctx, req.TargetID, req.FallbackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		if appErrors.Is(err, appErrors.ErrUnreassignable) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "purge failed")
	}

	s.logger.Info("user purged",
		zap.String("target_id", req.TargetID),
		zap.String("fallback_id", req.FallbackID),
		zap.Int64("reassigned_rows", plan.TotalRows))

	oldPayload, _ := json.Marshal(map[string]interface{}{"email": target.Email, "role": target.Role})
	planPayload, _ := json.Marshal(plan)
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     &principal.ID,
		Action:     models.AuditActionUserPurge,
		Resource:   "users",
		ResourceID: &req.TargetID,
		OldValues:  oldPayload,
		NewValues:  planPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return plan, nil
}
