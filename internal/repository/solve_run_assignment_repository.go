package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursegrid/solver-api/internal/models"
)

// SolveRunAssignmentRepository persists individual scheduled slots belonging
// to a solve run, queryable independently of the run's JSON timetable blob.
type SolveRunAssignmentRepository struct {
	db *sqlx.DB
}

// NewSolveRunAssignmentRepository constructs a SolveRunAssignmentRepository.
func NewSolveRunAssignmentRepository(db *sqlx.DB) *SolveRunAssignmentRepository {
	return &SolveRunAssignmentRepository{db: db}
}

func (r *SolveRunAssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch stores every assignment produced by one solve run.
func (r *SolveRunAssignmentRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.SolveRunAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO solve_run_assignments (id, solve_run_id, course, batch, room, day, start_hour, end_hour, kind)
VALUES (:id, :solve_run_id, :course, :batch, :room, :day, :start_hour, :end_hour, :kind)`

	for i := range assignments {
		a := &assignments[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, a); err != nil {
			return fmt.Errorf("insert solve run assignment: %w", err)
		}
	}
	return nil
}

// ListByRun returns assignments for a solve run ordered for timetable display.
func (r *SolveRunAssignmentRepository) ListByRun(ctx context.Context, solveRunID string) ([]models.SolveRunAssignment, error) {
	const query = `SELECT id, solve_run_id, course, batch, room, day, start_hour, end_hour, kind
FROM solve_run_assignments WHERE solve_run_id = $1 ORDER BY day ASC, start_hour ASC, course ASC, batch ASC`
	var assignments []models.SolveRunAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, solveRunID); err != nil {
		return nil, fmt.Errorf("list solve run assignments: %w", err)
	}
	return assignments, nil
}

// DeleteByRun removes every assignment belonging to a solve run, used when
// the run itself is deleted.
func (r *SolveRunAssignmentRepository) DeleteByRun(ctx context.Context, exec sqlx.ExtContext, solveRunID string) error {
	target := r.exec(exec)
	const query = `DELETE FROM solve_run_assignments WHERE solve_run_id = $1`
	if _, err := target.ExecContext(ctx, query, solveRunID); err != nil {
		return fmt.Errorf("delete solve run assignments: %w", err)
	}
	return nil
}
