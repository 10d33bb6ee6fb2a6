package models

// ObjectType names a protected resource category. The set is closed; the
// capability matrix is keyed on it.
type ObjectType string

const (
	ObjectPatient       ObjectType = "PATIENT"
	ObjectMedicalRecord ObjectType = "MEDICAL_RECORD"
	ObjectRadiograph    ObjectType = "RADIOGRAPH"
	ObjectClinicalNote  ObjectType = "CLINICAL_NOTE"
	ObjectTreatmentPlan ObjectType = "TREATMENT_PLAN"
	ObjectAppointment   ObjectType = "APPOINTMENT"
	ObjectUserAdmin     ObjectType = "USER_ADMIN"
	ObjectAuditTrail    ObjectType = "AUDIT_TRAIL"
)

// ClinicalObjectTypes lists the object types tied to an individual patient.
// Assignment scoping only ever applies to these.
func ClinicalObjectTypes() []ObjectType {
	return []ObjectType{
		ObjectPatient,
		ObjectMedicalRecord,
		ObjectRadiograph,
		ObjectClinicalNote,
		ObjectTreatmentPlan,
		ObjectAppointment,
	}
}

// Permission is one of the five verbs the capability matrix grants.
type Permission string

const (
	PermCreate  Permission = "CREATE"
	PermRead    Permission = "READ"
	PermUpdate  Permission = "UPDATE"
	PermDelete  Permission = "DELETE"
	PermApprove Permission = "APPROVE"
)

// Principal is the authenticated actor an authorization check runs for.
type Principal struct {
	ID   string
	Role UserRole
}
