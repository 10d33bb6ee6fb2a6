package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type mockPatientRepo struct {
	patients map[string]*models.Patient
	listErr  error
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[string]*models.Patient)}
}

func (m *mockPatientRepo) List(ctx context.Context, filter models.PatientFilter) ([]models.Patient, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []models.Patient
	for _, p := range m.patients {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockPatientRepo) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *p
	return &copy, nil
}

func (m *mockPatientRepo) Create(ctx context.Context, patient *models.Patient) error {
	m.patients[patient.ID] = patient
	return nil
}

func (m *mockPatientRepo) Update(ctx context.Context, patient *models.Patient) error {
	if _, ok := m.patients[patient.ID]; !ok {
		return sql.ErrNoRows
	}
	m.patients[patient.ID] = patient
	return nil
}

func (m *mockPatientRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.patients[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.patients, id)
	return nil
}

func TestPatientServiceCreate(t *testing.T) {
	repo := newMockPatientRepo()
	audit := &recorderStub{}
	svc := NewPatientService(repo, audit, nil, zap.NewNop())

	dob := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)
	patient, err := svc.Create(context.Background(), CreatePatientRequest{
		MedicalNo:   "MRN-001",
		FullName:    "Jordan Lee",
		DateOfBirth: &dob,
	}, "admin-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, patient.ID)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionPatientCreate, audit.entries[0].Action)
}

func TestPatientServiceCreateMissingFields(t *testing.T) {
	svc := NewPatientService(newMockPatientRepo(), &recorderStub{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreatePatientRequest{FullName: "No MRN"}, "admin-1", models.RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestPatientServiceUpdateRecordsOldValues(t *testing.T) {
	repo := newMockPatientRepo()
	repo.patients["p1"] = &models.Patient{ID: "p1", MedicalNo: "MRN-001", FullName: "Old Name"}
	audit := &recorderStub{}
	svc := NewPatientService(repo, audit, nil, zap.NewNop())

	dob := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)
	patient, err := svc.Update(context.Background(), "p1", UpdatePatientRequest{
		FullName:    "New Name",
		DateOfBirth: &dob,
	}, "admin-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "New Name", patient.FullName)
	require.Len(t, audit.entries, 1)
	assert.NotEmpty(t, audit.entries[0].OldValues)
}

func TestPatientServiceGetNotFound(t *testing.T) {
	svc := NewPatientService(newMockPatientRepo(), &recorderStub{}, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPatientServiceDelete(t *testing.T) {
	repo := newMockPatientRepo()
	repo.patients["p1"] = &models.Patient{ID: "p1", MedicalNo: "MRN-001", FullName: "Jordan Lee"}
	audit := &recorderStub{}
	svc := NewPatientService(repo, audit, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "p1", "admin-1", models.RequestMeta{}))
	assert.Empty(t, repo.patients)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionPatientDelete, audit.entries[0].Action)
}
