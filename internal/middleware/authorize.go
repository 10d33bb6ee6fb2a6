package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-adp-api/internal/authz"
	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/service"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
	"github.com/noah-isme/clinic-adp-api/pkg/response"
)

// Authorize gates a route on the capability matrix and, when patientParam
// names a path parameter, on the caller's active care-team assignment for
// that patient. Denials surface the same opaque 403 regardless of which
// axis rejected the request; the distinction is kept in metrics and logs.
func Authorize(engine *authz.Engine, metrics *service.MetricsService, object models.ObjectType, perm models.Permission, patientParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		patientID := ""
		if patientParam != "" {
			patientID = c.Param(patientParam)
		}

		decision, err := engine.Authorize(c.Request.Context(), claims.Principal(), object, perm, patientID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if metrics != nil {
			result := service.AuthzResultAllow
			if !decision.Allowed {
				result = decision.Reason
			}
			metrics.ObserveAuthzDecision(result)
		}

		if !decision.Allowed {
			response.Error(c, decision.Err())
			c.Abort()
			return
		}
		c.Next()
	}
}
