package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDeactivate = "USER_DEACTIVATE"
	AuditActionUserPurge      = "USER_PURGE"
	AuditActionAssignmentSet  = "ASSIGNMENT_SET"
	AuditActionPatientCreate  = "PATIENT_CREATE"
	AuditActionPatientUpdate  = "PATIENT_UPDATE"
	AuditActionPatientDelete  = "PATIENT_DELETE"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionAuditExport    = "AUDIT_EXPORT"
	AuditActionExportDownload = "EXPORT_DOWNLOAD"
)

// AuditLog represents an append-only audit trail record. Application code
// never updates or deletes rows once written.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter captures query criteria for the audit timeline.
type AuditFilter struct {
	From     time.Time
	To       time.Time
	UserID   string
	Resource string
	Action   string
	Page     int
	PageSize int
}
