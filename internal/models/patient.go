package models

import "time"

// Patient represents a patient record in the patients table.
type Patient struct {
	ID          string     `db:"id" json:"id"`
	MedicalNo   string     `db:"medical_no" json:"medical_no"`
	FullName    string     `db:"full_name" json:"full_name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Phone       string     `db:"phone" json:"phone"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// PatientFilter captures filtering criteria for listing patients.
type PatientFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
