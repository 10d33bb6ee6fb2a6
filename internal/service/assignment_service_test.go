package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type mockAssignmentStore struct {
	active     map[string]*models.CareTeamAssignment
	team       []models.CareTeamAssignmentDetail
	setCalls   int
	prevUserID *string
}

func assignmentKey(patientID string, roleSlot models.UserRole) string {
	return patientID + "/" + string(roleSlot)
}

func (m *mockAssignmentStore) FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error) {
	return m.active[assignmentKey(patientID, roleSlot)], nil
}

func (m *mockAssignmentStore) ListActive(ctx context.Context, patientID string) ([]models.CareTeamAssignmentDetail, error) {
	return m.team, nil
}

func (m *mockAssignmentStore) SetActive(ctx context.Context, params repository.SetAssignmentParams) (*models.CareTeamAssignment, *string, error) {
	m.setCalls++
	if m.active == nil {
		m.active = make(map[string]*models.CareTeamAssignment)
	}
	key := assignmentKey(params.PatientID, params.RoleSlot)
	if current := m.active[key]; current != nil && current.UserID == params.UserID {
		return current, nil, nil
	}
	var prev *string
	if current := m.active[key]; current != nil {
		userID := current.UserID
		prev = &userID
	}
	next := &models.CareTeamAssignment{
		ID:        "assign-new",
		PatientID: params.PatientID,
		UserID:    params.UserID,
		RoleSlot:  params.RoleSlot,
		Active:    true,
		CreatedBy: params.CreatedBy,
	}
	m.active[key] = next
	m.prevUserID = prev
	return next, prev, nil
}

type mockPatientReader struct {
	patients map[string]*models.Patient
}

func (m *mockPatientReader) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	if p, ok := m.patients[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, zap.NewNop(), false)
}

func newAssignmentService(store *mockAssignmentStore, users *mockUserRepo, patients *mockPatientReader, audit *recorderStub) *AssignmentService {
	return NewAssignmentService(store, users, patients, disabledCache(), audit, validator.New(), zap.NewNop())
}

func TestAssignmentSet(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"c1": {ID: "c1", Role: models.RoleClinician, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	audit := &recorderStub{}
	svc := newAssignmentService(store, users, patients, audit)

	assignment, err := svc.Set(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "p1", models.RoleClinician, SetAssignmentRequest{UserID: "c1"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "c1", assignment.UserID)
	assert.True(t, assignment.Active)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionAssignmentSet, audit.entries[0].Action)
}

func TestAssignmentSetBySupervisor(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"t1": {ID: "t1", Role: models.RoleTrainee, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	audit := &recorderStub{}
	svc := newAssignmentService(store, users, patients, audit)

	assignment, err := svc.Set(context.Background(), models.Principal{ID: "c-sup", Role: models.RoleClinician}, "p1", models.RoleTrainee, SetAssignmentRequest{UserID: "t1"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "t1", assignment.UserID)
	assert.Equal(t, "c-sup", assignment.CreatedBy)
}

func TestAssignmentSetRejectsSelfAssignment(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"c1": {ID: "c1", Role: models.RoleClinician, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	svc := newAssignmentService(store, users, patients, &recorderStub{})

	_, err := svc.Set(context.Background(), models.Principal{ID: "c1", Role: models.RoleClinician}, "p1", models.RoleClinician, SetAssignmentRequest{UserID: "c1"}, models.RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Zero(t, store.setCalls)
}

func TestAssignmentSetRoleMismatch(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"t1": {ID: "t1", Role: models.RoleTrainee, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	svc := newAssignmentService(store, users, patients, &recorderStub{})

	_, err := svc.Set(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "p1", models.RoleClinician, SetAssignmentRequest{UserID: "t1"}, models.RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrRoleMismatch))
	assert.Zero(t, store.setCalls)
}

func TestAssignmentSetInactiveUser(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"c1": {ID: "c1", Role: models.RoleClinician, Active: false}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	svc := newAssignmentService(store, users, patients, &recorderStub{})

	_, err := svc.Set(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "p1", models.RoleClinician, SetAssignmentRequest{UserID: "c1"}, models.RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAssignmentSetUnknownPatient(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"c1": {ID: "c1", Role: models.RoleClinician, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{}}
	svc := newAssignmentService(store, users, patients, &recorderStub{})

	_, err := svc.Set(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "ghost", models.RoleClinician, SetAssignmentRequest{UserID: "c1"}, models.RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAssignmentSetRejectsUnscopedSlot(t *testing.T) {
	store := &mockAssignmentStore{}
	users := &mockUserRepo{users: map[string]*models.User{"a1": {ID: "a1", Role: models.RoleAdmin, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	svc := newAssignmentService(store, users, patients, &recorderStub{})

	_, err := svc.Set(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "p1", models.RoleAdmin, SetAssignmentRequest{UserID: "a1"}, models.RequestMeta{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAssignmentSetSwapRecordsPreviousHolder(t *testing.T) {
	store := &mockAssignmentStore{active: map[string]*models.CareTeamAssignment{
		assignmentKey("p1", models.RoleClinician): {ID: "assign-old", PatientID: "p1", UserID: "c-old", RoleSlot: models.RoleClinician, Active: true},
	}}
	users := &mockUserRepo{users: map[string]*models.User{"c-new": {ID: "c-new", Role: models.RoleClinician, Active: true}}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	audit := &recorderStub{}
	svc := newAssignmentService(store, users, patients, audit)

	assignment, err := svc.Set(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "p1", models.RoleClinician, SetAssignmentRequest{UserID: "c-new"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "c-new", assignment.UserID)
	require.Len(t, audit.entries, 1)
	assert.NotEmpty(t, audit.entries[0].OldValues, "displacing a holder must capture the before state")
}

func TestAssignmentActiveNone(t *testing.T) {
	store := &mockAssignmentStore{}
	svc := newAssignmentService(store, &mockUserRepo{}, &mockPatientReader{}, &recorderStub{})

	assignment, err := svc.Active(context.Background(), "p1", models.RoleTrainee)
	require.NoError(t, err)
	assert.Nil(t, assignment)
}

func TestAssignmentListActive(t *testing.T) {
	store := &mockAssignmentStore{team: []models.CareTeamAssignmentDetail{
		{CareTeamAssignment: models.CareTeamAssignment{ID: "a1", PatientID: "p1", UserID: "c1", RoleSlot: models.RoleClinician, Active: true}, UserName: "Dr. A", PatientName: "Pat"},
	}}
	patients := &mockPatientReader{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	svc := newAssignmentService(store, &mockUserRepo{}, patients, &recorderStub{})

	team, err := svc.ListActive(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "Dr. A", team[0].UserName)
}
