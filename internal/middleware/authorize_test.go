package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-adp-api/internal/authz"
	"github.com/noah-isme/clinic-adp-api/internal/models"
)

type assignmentReaderStub struct {
	assignment *models.CareTeamAssignment
}

func (s *assignmentReaderStub) FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error) {
	return s.assignment, nil
}

func authorizeRouter(engine *authz.Engine, claims *models.JWTClaims, object models.ObjectType, perm models.Permission, patientParam string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	path := "/"
	if patientParam != "" {
		path = "/:" + patientParam
	}
	router.GET(path, Authorize(engine, nil, object, perm, patientParam), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthorizeAllowsPermittedRole(t *testing.T) {
	engine := authz.NewEngine(&assignmentReaderStub{})
	claims := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	router := authorizeRouter(engine, claims, models.ObjectUserAdmin, models.PermRead, "")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestAuthorizeDeniesCapability(t *testing.T) {
	engine := authz.NewEngine(&assignmentReaderStub{})
	claims := &models.JWTClaims{UserID: "c1", Role: models.RoleClinician}
	router := authorizeRouter(engine, claims, models.ObjectUserAdmin, models.PermDelete, "")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestAuthorizeDeniesUnassignedClinician(t *testing.T) {
	engine := authz.NewEngine(&assignmentReaderStub{})
	claims := &models.JWTClaims{UserID: "c1", Role: models.RoleClinician}
	router := authorizeRouter(engine, claims, models.ObjectMedicalRecord, models.PermRead, "patientId")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/p1", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestAuthorizeAllowsAssignedClinician(t *testing.T) {
	reader := &assignmentReaderStub{assignment: &models.CareTeamAssignment{PatientID: "p1", UserID: "c1", RoleSlot: models.RoleClinician, Active: true}}
	engine := authz.NewEngine(reader)
	claims := &models.JWTClaims{UserID: "c1", Role: models.RoleClinician}
	router := authorizeRouter(engine, claims, models.ObjectMedicalRecord, models.PermRead, "patientId")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/p1", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestAuthorizeRequiresClaims(t *testing.T) {
	engine := authz.NewEngine(&assignmentReaderStub{})
	router := authorizeRouter(engine, nil, models.ObjectPatient, models.PermRead, "")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
