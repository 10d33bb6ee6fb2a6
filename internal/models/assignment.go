package models

import "time"

// CareTeamAssignment records that a staff member currently fills a role slot
// on a patient's care team. Rows are deactivated, never deleted, so the
// history of who held a slot survives for the audit trail. At most one row
// per (patient, role slot) is active at any time.
type CareTeamAssignment struct {
	ID        string    `db:"id" json:"id"`
	PatientID string    `db:"patient_id" json:"patient_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	RoleSlot  UserRole  `db:"role_slot" json:"role_slot"`
	Active    bool      `db:"active" json:"active"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CareTeamAssignmentDetail enriches assignments with display fields.
type CareTeamAssignmentDetail struct {
	CareTeamAssignment
	UserName    string `db:"user_name" json:"user_name"`
	PatientName string `db:"patient_name" json:"patient_name"`
}
