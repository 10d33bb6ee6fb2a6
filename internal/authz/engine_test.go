package authz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

type assignmentReaderStub struct {
	assignment *models.CareTeamAssignment
	err        error
	calls      int
}

func (s *assignmentReaderStub) FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error) {
	s.calls++
	return s.assignment, s.err
}

func TestAuthorizeCapabilityDeniedShortCircuits(t *testing.T) {
	store := &assignmentReaderStub{}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "u1", Role: models.RoleReceptionist}, models.ObjectMedicalRecord, models.PermUpdate, "p1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonCapabilityDenied, decision.Reason)
	assert.Zero(t, store.calls, "capability denial must not hit the assignment store")
}

func TestAuthorizeWithoutPatientScope(t *testing.T) {
	store := &assignmentReaderStub{}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "u1", Role: models.RoleClinician}, models.ObjectClinicalNote, models.PermCreate, "")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, store.calls)
}

func TestAuthorizeAdminBypassesInstanceScoping(t *testing.T) {
	store := &assignmentReaderStub{}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "admin", Role: models.RoleAdmin}, models.ObjectPatient, models.PermRead, "p1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Zero(t, store.calls, "unscoped roles must not trigger instance lookups")
}

func TestAuthorizeInstanceDeniedWithoutAssignment(t *testing.T) {
	store := &assignmentReaderStub{assignment: nil}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "t1", Role: models.RoleTrainee}, models.ObjectClinicalNote, models.PermRead, "p1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInstanceDenied, decision.Reason)
	assert.Equal(t, 1, store.calls)
}

func TestAuthorizeInstanceDeniedWhenSlotHeldByAnother(t *testing.T) {
	store := &assignmentReaderStub{assignment: &models.CareTeamAssignment{
		PatientID: "p1",
		UserID:    "someone-else",
		RoleSlot:  models.RoleTrainee,
		Active:    true,
	}}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "t1", Role: models.RoleTrainee}, models.ObjectClinicalNote, models.PermRead, "p1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInstanceDenied, decision.Reason)
}

func TestAuthorizeAllowedWithActiveAssignment(t *testing.T) {
	store := &assignmentReaderStub{assignment: &models.CareTeamAssignment{
		PatientID: "p1",
		UserID:    "c1",
		RoleSlot:  models.RoleClinician,
		Active:    true,
	}}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "c1", Role: models.RoleClinician}, models.ObjectTreatmentPlan, models.PermApprove, "p1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestAuthorizeLookupFailureIsUnavailable(t *testing.T) {
	store := &assignmentReaderStub{err: fmt.Errorf("connection refused")}
	engine := NewEngine(store)

	decision, err := engine.Authorize(context.Background(), models.Principal{ID: "t1", Role: models.RoleTrainee}, models.ObjectPatient, models.PermRead, "p1")
	require.Error(t, err)
	assert.False(t, decision.Allowed, "an infrastructure fault must never read as allow")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnavailable))
}

func TestDecisionErrMapping(t *testing.T) {
	require.NoError(t, Allow.Err())

	err := Deny(ReasonCapabilityDenied).Err()
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapabilityDenied))

	err = Deny(ReasonInstanceDenied).Err()
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInstanceDenied))

	// Both denial axes must surface the same opaque message.
	assert.Equal(t, appErrors.FromError(Deny(ReasonCapabilityDenied).Err()).Message, appErrors.FromError(Deny(ReasonInstanceDenied).Err()).Message)
}
