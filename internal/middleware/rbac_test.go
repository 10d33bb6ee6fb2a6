package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-adp-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	router.PUT("/", RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRequireRolesAllowsListedRoles(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleClinician, models.RoleReceptionist} {
		claims := &models.JWTClaims{UserID: "u1", Role: role}
		router := rbacRouter(claims, models.RoleAdmin, models.RoleClinician, models.RoleReceptionist)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/", nil))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("role %s: unexpected status %d", role, recorder.Code)
		}
	}
}

func TestRequireRolesDeniesUnlistedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "t1", Role: models.RoleTrainee}
	router := rbacRouter(claims, models.RoleAdmin, models.RoleClinician, models.RoleReceptionist)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	router := rbacRouter(nil, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
