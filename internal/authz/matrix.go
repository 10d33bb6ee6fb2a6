package authz

import "github.com/noah-isme/clinic-adp-api/internal/models"

// PermissionSet is the set of permissions granted for one (role, object type)
// cell of the capability matrix.
type PermissionSet map[models.Permission]struct{}

// Has reports set membership.
func (s PermissionSet) Has(perm models.Permission) bool {
	_, ok := s[perm]
	return ok
}

func perms(list ...models.Permission) PermissionSet {
	set := make(PermissionSet, len(list))
	for _, p := range list {
		set[p] = struct{}{}
	}
	return set
}

// matrix is the static capability table. It is additive-only: any (role,
// object type) pair absent from it grants nothing. Built once at process init
// and never mutated afterwards.
var matrix = map[models.UserRole]map[models.ObjectType]PermissionSet{
	models.RoleAdmin: {
		models.ObjectPatient:       perms(models.PermRead, models.PermDelete),
		models.ObjectMedicalRecord: perms(models.PermRead, models.PermDelete),
		models.ObjectRadiograph:    perms(models.PermRead, models.PermDelete),
		models.ObjectClinicalNote:  perms(models.PermRead, models.PermDelete),
		models.ObjectTreatmentPlan: perms(models.PermRead, models.PermDelete),
		models.ObjectAppointment:   perms(models.PermRead, models.PermDelete),
		models.ObjectUserAdmin:     perms(models.PermCreate, models.PermRead, models.PermUpdate, models.PermDelete),
		models.ObjectAuditTrail:    perms(models.PermRead),
	},
	models.RoleClinician: {
		models.ObjectPatient:       perms(models.PermRead, models.PermUpdate),
		models.ObjectMedicalRecord: perms(models.PermRead, models.PermUpdate),
		models.ObjectRadiograph:    perms(models.PermCreate, models.PermRead, models.PermUpdate),
		models.ObjectClinicalNote:  perms(models.PermCreate, models.PermRead, models.PermUpdate, models.PermApprove),
		models.ObjectTreatmentPlan: perms(models.PermCreate, models.PermRead, models.PermUpdate, models.PermApprove),
		models.ObjectAppointment:   perms(models.PermRead),
	},
	models.RoleTrainee: {
		models.ObjectPatient:       perms(models.PermRead),
		models.ObjectMedicalRecord: perms(models.PermRead),
		models.ObjectRadiograph:    perms(models.PermRead),
		models.ObjectClinicalNote:  perms(models.PermRead),
		models.ObjectTreatmentPlan: perms(models.PermRead),
		models.ObjectAppointment:   perms(models.PermRead),
	},
	models.RoleReceptionist: {
		models.ObjectPatient:     perms(models.PermCreate, models.PermRead, models.PermUpdate),
		models.ObjectAppointment: perms(models.PermCreate, models.PermRead, models.PermUpdate),
	},
}

// scopedRoles lists the roles whose clinical capabilities only apply to
// patients they are actively assigned to. The scoping rule is declarative
// here rather than spread across handler conditionals.
var scopedRoles = map[models.UserRole]struct{}{
	models.RoleClinician: {},
	models.RoleTrainee:   {},
}

// clinicalObjects is the set of object types assignment scoping applies to.
var clinicalObjects = func() map[models.ObjectType]struct{} {
	set := make(map[models.ObjectType]struct{})
	for _, obj := range models.ClinicalObjectTypes() {
		set[obj] = struct{}{}
	}
	return set
}()

// CapabilitiesOf returns the permissions the role holds on the object type.
// Unknown roles or object types yield the empty set, never an error.
func CapabilitiesOf(role models.UserRole, object models.ObjectType) PermissionSet {
	row, ok := matrix[role]
	if !ok {
		return nil
	}
	return row[object]
}

// ScopedRole reports whether the role can hold a care-team slot.
func ScopedRole(role models.UserRole) bool {
	_, ok := scopedRoles[role]
	return ok
}

// AssignmentScoped reports whether the role's capability on the object type
// is restricted to actively assigned patients.
func AssignmentScoped(role models.UserRole, object models.ObjectType) bool {
	if _, ok := scopedRoles[role]; !ok {
		return false
	}
	_, clinical := clinicalObjects[object]
	return clinical
}
