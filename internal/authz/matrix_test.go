package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/clinic-adp-api/internal/models"
)

func TestCapabilitiesOfFailClosed(t *testing.T) {
	cases := []struct {
		name   string
		role   models.UserRole
		object models.ObjectType
		perm   models.Permission
	}{
		{"receptionist has nothing on medical records", models.RoleReceptionist, models.ObjectMedicalRecord, models.PermRead},
		{"receptionist cannot touch clinical notes", models.RoleReceptionist, models.ObjectClinicalNote, models.PermCreate},
		{"trainee cannot write notes", models.RoleTrainee, models.ObjectClinicalNote, models.PermCreate},
		{"trainee cannot administer users", models.RoleTrainee, models.ObjectUserAdmin, models.PermRead},
		{"admin has no implicit write on clinical notes", models.RoleAdmin, models.ObjectClinicalNote, models.PermUpdate},
		{"admin cannot approve treatment plans", models.RoleAdmin, models.ObjectTreatmentPlan, models.PermApprove},
		{"clinician cannot delete patients", models.RoleClinician, models.ObjectPatient, models.PermDelete},
		{"clinician cannot read the audit trail", models.RoleClinician, models.ObjectAuditTrail, models.PermRead},
		{"unknown role grants nothing", models.UserRole("JANITOR"), models.ObjectPatient, models.PermRead},
		{"unknown object type grants nothing", models.RoleAdmin, models.ObjectType("BILLING"), models.PermRead},
		{"unknown permission grants nothing", models.RoleAdmin, models.ObjectPatient, models.Permission("EXPORT")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, CapabilitiesOf(tc.role, tc.object).Has(tc.perm))
		})
	}
}

func TestCapabilitiesOfGrants(t *testing.T) {
	assert.True(t, CapabilitiesOf(models.RoleAdmin, models.ObjectUserAdmin).Has(models.PermDelete))
	assert.True(t, CapabilitiesOf(models.RoleAdmin, models.ObjectAuditTrail).Has(models.PermRead))
	assert.True(t, CapabilitiesOf(models.RoleAdmin, models.ObjectPatient).Has(models.PermDelete))
	assert.True(t, CapabilitiesOf(models.RoleClinician, models.ObjectClinicalNote).Has(models.PermApprove))
	assert.True(t, CapabilitiesOf(models.RoleClinician, models.ObjectMedicalRecord).Has(models.PermUpdate))
	assert.True(t, CapabilitiesOf(models.RoleTrainee, models.ObjectRadiograph).Has(models.PermRead))
	assert.True(t, CapabilitiesOf(models.RoleReceptionist, models.ObjectAppointment).Has(models.PermCreate))
}

func TestAssignmentScoped(t *testing.T) {
	for _, obj := range models.ClinicalObjectTypes() {
		assert.True(t, AssignmentScoped(models.RoleClinician, obj), "clinician should be scoped for %s", obj)
		assert.True(t, AssignmentScoped(models.RoleTrainee, obj), "trainee should be scoped for %s", obj)
		assert.False(t, AssignmentScoped(models.RoleAdmin, obj), "admin must never be scoped")
		assert.False(t, AssignmentScoped(models.RoleReceptionist, obj), "receptionist must never be scoped")
	}

	// Non-clinical object types are never assignment scoped for anyone.
	assert.False(t, AssignmentScoped(models.RoleClinician, models.ObjectUserAdmin))
	assert.False(t, AssignmentScoped(models.RoleTrainee, models.ObjectAuditTrail))
}
