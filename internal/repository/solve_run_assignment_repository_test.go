package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegrid/solver-api/internal/models"
)

func newSolveRunAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSolveRunAssignmentRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newSolveRunAssignmentRepoMock(t)
	defer cleanup()
	repo := NewSolveRunAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO solve_run_assignments")).
		WithArgs(sqlmock.AnyArg(), "run-1", "M", "Batch A", "R1", "Mon", 9, 11, "theory").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO solve_run_assignments")).
		WithArgs(sqlmock.AnyArg(), "run-1", "M", "Batch B", "R1", "Mon", 9, 11, "theory").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignments := []models.SolveRunAssignment{
		{SolveRunID: "run-1", Course: "M", Batch: "Batch A", Room: "R1", Day: "Mon", StartHour: 9, EndHour: 11, Kind: "theory"},
		{SolveRunID: "run-1", Course: "M", Batch: "Batch B", Room: "R1", Day: "Mon", StartHour: 9, EndHour: 11, Kind: "theory"},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), nil, assignments))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunAssignmentRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newSolveRunAssignmentRepoMock(t)
	defer cleanup()
	repo := NewSolveRunAssignmentRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunAssignmentRepositoryListByRun(t *testing.T) {
	db, mock, cleanup := newSolveRunAssignmentRepoMock(t)
	defer cleanup()
	repo := NewSolveRunAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "solve_run_id", "course", "batch", "room", "day", "start_hour", "end_hour", "kind"}).
		AddRow("a1", "run-1", "M", "Batch A", "R1", "Mon", 9, 11, "theory")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, solve_run_id, course, batch, room, day, start_hour, end_hour, kind")).
		WithArgs("run-1").
		WillReturnRows(rows)

	list, err := repo.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunAssignmentRepositoryDeleteByRun(t *testing.T) {
	db, mock, cleanup := newSolveRunAssignmentRepoMock(t)
	defer cleanup()
	repo := NewSolveRunAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM solve_run_assignments WHERE solve_run_id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(1, 2))

	require.NoError(t, repo.DeleteByRun(context.Background(), nil, "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
