package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/clinic-adp-api/internal/models"
	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

// UserPurgeRepository permanently removes a user row after reassigning every
// row that still references it to a fallback account.
type UserPurgeRepository struct {
	db           *sqlx.DB
	introspector SchemaIntrospector
}

// NewUserPurgeRepository constructs the repository.
func NewUserPurgeRepository(db *sqlx.DB, introspector SchemaIntrospector) *UserPurgeRepository {
	if introspector == nil {
		introspector = NewPgSchemaIntrospector()
	}
	return &UserPurgeRepository{db: db, introspector: introspector}
}

// PurgeUser deletes the target user row inside a single transaction. Foreign
// keys referencing users.id are discovered from the live schema; rows behind
// RESTRICT and NO ACTION keys are repointed at the fallback user, while
// CASCADE, SET NULL and SET DEFAULT keys are left for the database to apply
// during the delete. Self-references inside the users table are skipped
// since the row they point at is the one being removed.
//
// Returns sql.ErrNoRows when the target row does not exist. A constraint
// violation during reassignment or delete (a referencing table the fallback
// cannot absorb, or the fallback missing) surfaces as ErrUnreassignable and
// rolls the whole transaction back, leaving the target untouched.
func (r *UserPurgeRepository) PurgeUser(ctx context.Context, targetID, fallbackID string) (plan *models.ReassignmentPlan, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purge transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	refs, err := r.introspector.ReferencesTo(ctx, tx, "users", "id")
	if err != nil {
		return nil, err
	}

	plan = &models.ReassignmentPlan{
		TargetID:   targetID,
		FallbackID: fallbackID,
	}

	for _, ref := range refs {
		if ref.Table == "users" {
			continue
		}
		switch ref.DeleteRule {
		case "CASCADE", "SET NULL", "SET DEFAULT":
			continue
		}
		query := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2",
			pq.QuoteIdentifier(ref.Table), pq.QuoteIdentifier(ref.Column), pq.QuoteIdentifier(ref.Column))
		result, execErr := tx.ExecContext(ctx, query, fallbackID, targetID)
		if execErr != nil {
			err = classifyPurgeError(execErr, fmt.Sprintf("reassign %s.%s", ref.Table, ref.Column))
			return nil, err
		}
		rows, raErr := result.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("count reassigned rows for %s.%s: %w", ref.Table, ref.Column, raErr)
			return nil, err
		}
		if rows > 0 {
			plan.Reassigned = append(plan.Reassigned, models.ReassignedReference{
				Table:  ref.Table,
				Column: ref.Column,
				Rows:   rows,
			})
			plan.TotalRows += rows
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, targetID)
	if err != nil {
		err = classifyPurgeError(err, "delete user")
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check deleted rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purge transaction: %w", err)
	}
	return plan, nil
}

// classifyPurgeError separates integrity violations (SQLSTATE class 23) from
// infrastructure faults.
func classifyPurgeError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && len(pqErr.Code) >= 2 && pqErr.Code[:2] == "23" {
		return appErrors.Wrap(err, appErrors.ErrUnreassignable.Code, appErrors.ErrUnreassignable.Status, fmt.Sprintf("%s violated constraint %s", op, pqErr.Constraint))
	}
	return fmt.Errorf("%s: %w", op, err)
}
