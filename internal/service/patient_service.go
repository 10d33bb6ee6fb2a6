package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type patientRepository interface {
	List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error)
	FindByID(ctx context.Context, id string) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id string) error
}

// CreatePatientRequest represents payload for registering patients.
type CreatePatientRequest struct {
	MedicalNo   string     `json:"medical_no" validate:"required"`
	FullName    string     `json:"full_name" validate:"required"`
	DateOfBirth *time.Time `json:"date_of_birth" validate:"required"`
	Phone       string     `json:"phone"`
}

// UpdatePatientRequest payload for updating patient records.
type UpdatePatientRequest struct {
	FullName    string     `json:"full_name" validate:"required"`
	DateOfBirth *time.Time `json:"date_of_birth" validate:"required"`
	Phone       string     `json:"phone"`
}

// PatientService handles patient registry workflows.
type PatientService struct {
	repo      patientRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPatientService creates an instance of PatientService.
func NewPatientService(repo patientRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *PatientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PatientService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns paginated patients and pagination metadata.
func (s *PatientService) List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, *models.Pagination, error) {
	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list patients")
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

	return patients, pagination, nil
}

// Get returns a patient by ID.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}
	return patient, nil
}

// Create registers a new patient.
func (s *PatientService) Create(ctx context.Context, req CreatePatientRequest, actorID string, meta models.RequestMeta) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create patient payload")
	}

	patient := &models.Patient{
		ID:          uuid.NewString(),
		MedicalNo:   req.MedicalNo,
		FullName:    req.FullName,
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create patient")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"id": patient.ID, "medical_no": patient.MedicalNo})
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionPatientCreate,
		Resource:   "patients",
		ResourceID: &patient.ID,
		NewValues:  newPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return patient, nil
}

// Update modifies patient attributes.
func (s *PatientService) Update(ctx context.Context, id string, req UpdatePatientRequest, actorID string, meta models.RequestMeta) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update patient payload")
	}

	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"full_name": patient.FullName, "phone": patient.Phone})

	patient.FullName = req.FullName
	patient.DateOfBirth = req.DateOfBirth
	patient.Phone = req.Phone

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update patient")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"full_name": patient.FullName, "phone": patient.Phone})
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionPatientUpdate,
		Resource:   "patients",
		ResourceID: &patient.ID,
		OldValues:  oldPayload,
		NewValues:  newPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return patient, nil
}

// Delete removes a patient record.
func (s *PatientService) Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete patient")
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"medical_no": patient.MedicalNo, "full_name": patient.FullName})
	s.audit.Record(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionPatientDelete,
		Resource:   "patients",
		ResourceID: &patient.ID,
		OldValues:  oldPayload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	})

	return nil
}
