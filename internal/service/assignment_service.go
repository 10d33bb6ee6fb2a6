package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/authz"
	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type assignmentStore interface {
	FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error)
	ListActive(ctx context.Context, patientID string) ([]models.CareTeamAssignmentDetail, error)
	SetActive(ctx context.Context, params repository.SetAssignmentParams) (*models.CareTeamAssignment, *string, error)
}

type assignmentUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type assignmentPatientReader interface {
	FindByID(ctx context.Context, id string) (*models.Patient, error)
}

// SetAssignmentRequest carries the payload for filling a care-team slot.
type SetAssignmentRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// AssignmentService manages patient care-team assignments.
type AssignmentService struct {
	store     assignmentStore
	users     assignmentUserReader
	patients  assignmentPatientReader
	cache     *CacheService
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(store assignmentStore, users assignmentUserReader, patients assignmentPatientReader, cache *CacheService, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{store: store, users: users, patients: patients, cache: cache, audit: audit, validator: validate, logger: logger}
}

func careTeamCacheKey(patientID string) string {
	return fmt.Sprintf("care-team:%s", patientID)
}

// Active returns the active assignment for a (patient, role slot) pair, or
// nil when the slot is unfilled. Always reads the store directly so the
// answer matches what the authorization engine would see.
func (s *AssignmentService) Active(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error) {
	if !authz.ScopedRole(roleSlot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role slot must be CLINICIAN or TRAINEE")
	}
	assignment, err := s.store.FindActive(ctx, patientID, roleSlot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active assignment")
	}
	return assignment, nil
}

// ListActive returns the patient's current care team, served from cache when
// possible.
func (s *AssignmentService) ListActive(ctx context.Context, patientID string) ([]models.CareTeamAssignmentDetail, error) {
	key := careTeamCacheKey(patientID)

	var cached []models.CareTeamAssignmentDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}

	team, err := s.store.ListActive(ctx, patientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list care team")
	}

	_ = s.cache.Set(ctx, key, team, 0)
	return team, nil
}

// Set fills or swaps the active assignment for a (patient, role slot) pair.
// The target user's role must equal the slot; the swap itself is atomic in
// the store. Re-assigning the current holder is a no-op. Non-admin actors
// cannot assign themselves: a clinician granting their own access to a
// patient would bypass the assignment scoping entirely.
func (s *AssignmentService) Set(ctx context.Context, actor models.Principal, patientID string, roleSlot models.UserRole, req SetAssignmentRequest, meta models.RequestMeta) (*models.CareTeamAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if !authz.ScopedRole(roleSlot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role slot must be CLINICIAN or TRAINEE")
	}
	if actor.Role != models.RoleAdmin && req.UserID == actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot assign yourself to a care team")
	}

	if _, err := s.patients.FindByID(ctx, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user is inactive")
	}
	if user.Role != roleSlot {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch, fmt.Sprintf("user role %s does not match slot %s", user.Role, roleSlot))
	}

	assignment, prevUserID, err := s.store.SetActive(ctx, repository.SetAssignmentParams{
		PatientID: patientID,
		RoleSlot:  roleSlot,
		UserID:    req.UserID,
		CreatedBy: actor.ID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set assignment")
	}

	_ = s.cache.Invalidate(ctx, careTeamCacheKey(patientID)+"*")

	var oldPayload []byte
	if prevUserID != nil {
		oldPayload, _ = json.Marshal(map[string]interface{}{"user_id": *prevUserID})
	}
	newPayload, _ := json.Marshal(map[string]interface{}{"user_id": assignment.UserID, "role_slot": assignment.RoleSlot})
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     models.AuditActionAssignmentSet,
		Resource:   "care_team_assignments",
		ResourceID: &patientID,
		OldValues:  oldPayload,
		NewValues:  newPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return assignment, nil
}
