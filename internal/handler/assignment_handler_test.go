package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-adp-api/internal/middleware"
	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/repository"
	"github.com/noah-isme/clinic-adp-api/internal/service"
)

type assignmentStoreStub struct {
	active map[string]*models.CareTeamAssignment
	team   []models.CareTeamAssignmentDetail
}

func (s *assignmentStoreStub) FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error) {
	return s.active[patientID+"/"+string(roleSlot)], nil
}

func (s *assignmentStoreStub) ListActive(ctx context.Context, patientID string) ([]models.CareTeamAssignmentDetail, error) {
	return s.team, nil
}

func (s *assignmentStoreStub) SetActive(ctx context.Context, params repository.SetAssignmentParams) (*models.CareTeamAssignment, *string, error) {
	return &models.CareTeamAssignment{
		ID:        "assign-1",
		PatientID: params.PatientID,
		UserID:    params.UserID,
		RoleSlot:  params.RoleSlot,
		Active:    true,
	}, nil, nil
}

type userReaderStub struct {
	users map[string]*models.User
}

func (s *userReaderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type patientReaderStub struct {
	patients map[string]*models.Patient
}

func (s *patientReaderStub) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	if p, ok := s.patients[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type recorderStub struct {
	entries []*models.AuditLog
}

func (r *recorderStub) Record(ctx context.Context, entry *models.AuditLog) {
	r.entries = append(r.entries, entry)
}

func newAssignmentHandler(store *assignmentStoreStub, users *userReaderStub, patients *patientReaderStub) *AssignmentHandler {
	cache := service.NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := service.NewAssignmentService(store, users, patients, cache, &recorderStub{}, nil, zap.NewNop())
	return NewAssignmentHandler(svc)
}

func TestAssignmentHandlerSetSlot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &assignmentStoreStub{}
	users := &userReaderStub{users: map[string]*models.User{"c1": {ID: "c1", Role: models.RoleClinician, Active: true}}}
	patients := &patientReaderStub{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	handler := newAssignmentHandler(store, users, patients)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(gin.H{"user_id": "c1"})
	req, _ := http.NewRequest(http.MethodPut, "/patients/p1/care-team/CLINICIAN", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "roleSlot", Value: "CLINICIAN"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.SetSlot(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.CareTeamAssignment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "c1", envelope.Data.UserID)
	assert.True(t, envelope.Data.Active)
}

func TestAssignmentHandlerSetSlotInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandler(&assignmentStoreStub{}, &userReaderStub{}, &patientReaderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/patients/p1/care-team/CLINICIAN", bytes.NewBufferString(`{"user_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "roleSlot", Value: "CLINICIAN"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.SetSlot(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerSetSlotRoleMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &assignmentStoreStub{}
	users := &userReaderStub{users: map[string]*models.User{"t1": {ID: "t1", Role: models.RoleTrainee, Active: true}}}
	patients := &patientReaderStub{patients: map[string]*models.Patient{"p1": {ID: "p1"}}}
	handler := newAssignmentHandler(store, users, patients)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(gin.H{"user_id": "t1"})
	req, _ := http.NewRequest(http.MethodPut, "/patients/p1/care-team/CLINICIAN", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "roleSlot", Value: "CLINICIAN"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.SetSlot(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAssignmentHandlerGetSlotUnfilled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandler(&assignmentStoreStub{}, &userReaderStub{}, &patientReaderStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/patients/p1/care-team/TRAINEE", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}, {Key: "roleSlot", Value: "TRAINEE"}}

	handler.GetSlot(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"assignment":null`)
}
