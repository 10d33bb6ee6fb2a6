package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-adp-api/internal/models"
)

// AssignmentRepository persists patient care-team assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindActive returns the active assignment for a (patient, role slot) pair,
// or nil when the slot is unfilled.
func (r *AssignmentRepository) FindActive(ctx context.Context, patientID string, roleSlot models.UserRole) (*models.CareTeamAssignment, error) {
	const query = `SELECT id, patient_id, user_id, role_slot, active, created_by, created_at FROM care_team_assignments WHERE patient_id = $1 AND role_slot = $2 AND active = TRUE LIMIT 1`
	var assignment models.CareTeamAssignment
	if err := r.db.GetContext(ctx, &assignment, query, patientID, roleSlot); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active assignment: %w", err)
	}
	return &assignment, nil
}

// ListActive returns the patient's current care team ordered by role slot
// then recency.
func (r *AssignmentRepository) ListActive(ctx context.Context, patientID string) ([]models.CareTeamAssignmentDetail, error) {
	const query = `
SELECT a.id, a.patient_id, a.user_id, a.role_slot, a.active, a.created_by, a.created_at,
       u.full_name AS user_name, p.full_name AS patient_name
FROM care_team_assignments a
JOIN users u ON u.id = a.user_id
JOIN patients p ON p.id = a.patient_id
WHERE a.patient_id = $1 AND a.active = TRUE
ORDER BY a.role_slot ASC, a.created_at DESC`
	var assignments []models.CareTeamAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, patientID); err != nil {
		return nil, fmt.Errorf("list active assignments: %w", err)
	}
	return assignments, nil
}

// SetAssignmentParams holds values required to swap a care-team slot.
type SetAssignmentParams struct {
	PatientID string
	RoleSlot  models.UserRole
	UserID    string
	CreatedBy string
}

// SetActive atomically replaces the active assignment for a (patient, role
// slot) pair. The current row is locked FOR UPDATE so two concurrent swaps
// for the same slot serialize; the superseded row is deactivated and a new
// active row inserted in the same transaction, leaving no observable window
// with zero or two active rows.
//
// Assigning the user who already holds the slot is a no-op: the existing row
// is returned unchanged and no history row is written. The previous holder's
// user ID is returned when a different user was displaced.
func (r *AssignmentRepository) SetActive(ctx context.Context, params SetAssignmentParams) (assignment *models.CareTeamAssignment, prevUserID *string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.CareTeamAssignment
	const selectQuery = `SELECT id, patient_id, user_id, role_slot, active, created_by, created_at FROM care_team_assignments WHERE patient_id = $1 AND role_slot = $2 AND active = TRUE FOR UPDATE`
	if err = tx.GetContext(ctx, &current, selectQuery, params.PatientID, params.RoleSlot); err != nil {
		if err != sql.ErrNoRows {
			return nil, nil, fmt.Errorf("lock active assignment: %w", err)
		}
		err = nil
	} else {
		if current.UserID == params.UserID {
			if err = tx.Commit(); err != nil {
				return nil, nil, fmt.Errorf("commit assignment no-op: %w", err)
			}
			return &current, nil, nil
		}
		prevUserID = &current.UserID
		const deactivateQuery = `UPDATE care_team_assignments SET active = FALSE WHERE id = $1`
		if _, err = tx.ExecContext(ctx, deactivateQuery, current.ID); err != nil {
			return nil, nil, fmt.Errorf("deactivate previous assignment: %w", err)
		}
	}

	next := &models.CareTeamAssignment{
		ID:        uuid.NewString(),
		PatientID: params.PatientID,
		UserID:    params.UserID,
		RoleSlot:  params.RoleSlot,
		Active:    true,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	const insertQuery = `INSERT INTO care_team_assignments (id, patient_id, user_id, role_slot, active, created_by, created_at) VALUES ($1, $2, $3, $4, TRUE, $5, $6)`
	if _, err = tx.ExecContext(ctx, insertQuery, next.ID, next.PatientID, next.UserID, next.RoleSlot, next.CreatedBy, next.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("insert assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit assignment swap: %w", err)
	}
	return next, prevUserID, nil
}
