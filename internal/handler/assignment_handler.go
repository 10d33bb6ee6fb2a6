package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	"github.com/noah-isme/clinic-adp-api/internal/service"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
	"github.com/noah-isme/clinic-adp-api/pkg/response"
)

// AssignmentHandler exposes care-team assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// ListCareTeam godoc
// @Summary List care team
// @Description List the patient's active care-team assignments
// @Tags Care Team
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /patients/{id}/care-team [get]
func (h *AssignmentHandler) ListCareTeam(c *gin.Context) {
	team, err := h.service.ListActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, team, nil)
}

// GetSlot godoc
// @Summary Get active assignment
// @Description Get the active assignment for one role slot, if filled
// @Tags Care Team
// @Produce json
// @Param id path string true "Patient ID"
// @Param roleSlot path string true "Role slot (CLINICIAN or TRAINEE)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /patients/{id}/care-team/{roleSlot} [get]
func (h *AssignmentHandler) GetSlot(c *gin.Context) {
	roleSlot := models.UserRole(c.Param("roleSlot"))

	assignment, err := h.service.Active(c.Request.Context(), c.Param("id"), roleSlot)
	if err != nil {
		response.Error(c, err)
		return
	}
	if assignment == nil {
		response.JSON(c, http.StatusOK, gin.H{"assignment": nil}, nil)
		return
	}

	response.JSON(c, http.StatusOK, assignment, nil)
}

// SetSlot godoc
// @Summary Set active assignment
// @Description Fill or swap the active assignment for one role slot
// @Tags Care Team
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param roleSlot path string true "Role slot (CLINICIAN or TRAINEE)"
// @Param payload body service.SetAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /patients/{id}/care-team/{roleSlot} [put]
func (h *AssignmentHandler) SetSlot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SetAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	roleSlot := models.UserRole(c.Param("roleSlot"))
	assignment, err := h.service.Set(c.Request.Context(), claims.Principal(), c.Param("id"), roleSlot, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, assignment, nil)
}
