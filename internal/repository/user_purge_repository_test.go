package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/clinic-adp-api/pkg/errors"
)

func newPurgeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func expectIntrospection(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.table_constraints")).
		WithArgs("users", "id").
		WillReturnRows(rows)
}

func TestPurgeUserReassignsAndDeletes(t *testing.T) {
	db, mock, cleanup := newPurgeRepoMock(t)
	defer cleanup()
	repo := NewUserPurgeRepository(db, nil)

	refRows := sqlmock.NewRows([]string{"table_name", "column_name", "delete_rule"}).
		AddRow("visits", "provider_id", "NO ACTION").
		AddRow("clinical_notes", "author_id", "RESTRICT").
		AddRow("appointments", "cancelled_by", "SET NULL").
		AddRow("users", "deactivated_by", "NO ACTION")

	mock.ExpectBegin()
	expectIntrospection(mock, refRows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "visits" SET "provider_id" = $1 WHERE "provider_id" = $2`)).
		WithArgs("fallback-1", "target-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "clinical_notes" SET "author_id" = $1 WHERE "author_id" = $2`)).
		WithArgs("fallback-1", "target-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("target-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plan, err := repo.PurgeUser(context.Background(), "target-1", "fallback-1")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "target-1", plan.TargetID)
	assert.Equal(t, "fallback-1", plan.FallbackID)
	assert.Equal(t, int64(5), plan.TotalRows)
	require.Len(t, plan.Reassigned, 2, "SET NULL and self-referencing keys must not be reassigned")
	assert.Equal(t, "visits", plan.Reassigned[0].Table)
	assert.Equal(t, int64(3), plan.Reassigned[0].Rows)
	assert.Equal(t, "clinical_notes", plan.Reassigned[1].Table)
	assert.Equal(t, int64(2), plan.Reassigned[1].Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeUserNoReferences(t *testing.T) {
	db, mock, cleanup := newPurgeRepoMock(t)
	defer cleanup()
	repo := NewUserPurgeRepository(db, nil)

	mock.ExpectBegin()
	expectIntrospection(mock, sqlmock.NewRows([]string{"table_name", "column_name", "delete_rule"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("target-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plan, err := repo.PurgeUser(context.Background(), "target-1", "fallback-1")
	require.NoError(t, err)
	assert.Empty(t, plan.Reassigned)
	assert.Zero(t, plan.TotalRows)
}

func TestPurgeUserTargetMissing(t *testing.T) {
	db, mock, cleanup := newPurgeRepoMock(t)
	defer cleanup()
	repo := NewUserPurgeRepository(db, nil)

	mock.ExpectBegin()
	expectIntrospection(mock, sqlmock.NewRows([]string{"table_name", "column_name", "delete_rule"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.PurgeUser(context.Background(), "ghost", "fallback-1")
	assert.Equal(t, sql.ErrNoRows, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeUserConstraintViolationRollsBack(t *testing.T) {
	db, mock, cleanup := newPurgeRepoMock(t)
	defer cleanup()
	repo := NewUserPurgeRepository(db, nil)

	refRows := sqlmock.NewRows([]string{"table_name", "column_name", "delete_rule"}).
		AddRow("visits", "provider_id", "NO ACTION")

	mock.ExpectBegin()
	expectIntrospection(mock, refRows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "visits" SET "provider_id" = $1 WHERE "provider_id" = $2`)).
		WithArgs("fallback-1", "target-1").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "visits_provider_id_fkey"})
	mock.ExpectRollback()

	_, err := repo.PurgeUser(context.Background(), "target-1", "fallback-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnreassignable))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeUserIntrospectionFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newPurgeRepoMock(t)
	defer cleanup()
	repo := NewUserPurgeRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.table_constraints")).
		WithArgs("users", "id").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.PurgeUser(context.Background(), "target-1", "fallback-1")
	require.Error(t, err)
	assert.False(t, appErrors.Is(err, appErrors.ErrUnreassignable), "infrastructure faults are not integrity violations")
	require.NoError(t, mock.ExpectationsWereMet())
}
