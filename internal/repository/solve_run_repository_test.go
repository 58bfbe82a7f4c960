package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegrid/solver-api/internal/models"
)

func newSolveRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSolveRunRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSolveRunRepoMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO solve_runs")).
		WithArgs(sqlmock.AnyArg(), "hash-1", string(models.SolveRunStatusSuccess), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.SolveRun{
		RequestHash: "hash-1",
		Status:      models.SolveRunStatusSuccess,
		Timetable:   types.JSONText(`[{"course":"M"}]`),
		Stats:       types.JSONText(`{"total_slots":1}`),
	}
	require.NoError(t, repo.Create(context.Background(), nil, run))
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSolveRunRepoMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "request_hash", "status", "reason", "timetable", "stats", "created_at", "updated_at"}).
		AddRow("run-1", "hash-1", string(models.SolveRunStatusSuccess), nil, types.JSONText(`[]`), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, request_hash, status, reason, timetable, stats, created_at, updated_at FROM solve_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", run.RequestHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunRepositoryFindByRequestHash(t *testing.T) {
	db, mock, cleanup := newSolveRunRepoMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "request_hash", "status", "reason", "timetable", "stats", "created_at", "updated_at"}).
		AddRow("run-1", "hash-1", string(models.SolveRunStatusSuccess), nil, types.JSONText(`[]`), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, request_hash, status, reason, timetable, stats, created_at, updated_at")).
		WithArgs("hash-1").
		WillReturnRows(rows)

	run, err := repo.FindByRequestHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunRepositoryList(t *testing.T) {
	db, mock, cleanup := newSolveRunRepoMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "request_hash", "status", "reason", "timetable", "stats", "created_at", "updated_at"}).
		AddRow("run-1", "hash-1", string(models.SolveRunStatusSuccess), nil, types.JSONText(`[]`), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, request_hash, status, reason, timetable, stats, created_at, updated_at FROM solve_runs ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.SolveRunFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSolveRunRepoMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM solve_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveRunRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newSolveRunRepoMock(t)
	defer cleanup()
	repo := NewSolveRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM solve_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "run-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
