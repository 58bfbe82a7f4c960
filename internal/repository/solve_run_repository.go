package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/coursegrid/solver-api/internal/models"
)

// SolveRunRepository persists the outcome of each solver invocation.
type SolveRunRepository struct {
	db *sqlx.DB
}

// NewSolveRunRepository constructs a SolveRunRepository.
func NewSolveRunRepository(db *sqlx.DB) *SolveRunRepository {
	return &SolveRunRepository{db: db}
}

func (r *SolveRunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new solve run record.
func (r *SolveRunRepository) Create(ctx context.Context, exec sqlx.ExtContext, run *models.SolveRun) error {
	if run == nil {
		return fmt.Errorf("solve run payload is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if len(run.Timetable) == 0 {
		run.Timetable = types.JSONText(`[]`)
	}
	if len(run.Stats) == 0 {
		run.Stats = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	target := r.exec(exec)
	const query = `
INSERT INTO solve_runs (id, request_hash, status, reason, timetable, stats, created_at, updated_at)
VALUES (:id, :request_hash, :status, :reason, :timetable, :stats, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, run); err != nil {
		return fmt.Errorf("insert solve run: %w", err)
	}
	return nil
}

// FindByID loads a solve run by its identifier.
func (r *SolveRunRepository) FindByID(ctx context.Context, id string) (*models.SolveRun, error) {
	const query = `SELECT id, request_hash, status, reason, timetable, stats, created_at, updated_at FROM solve_runs WHERE id = $1`
	var run models.SolveRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindByRequestHash loads the most recent solve run for an identical request.
// ScheduleGeneratorService calls this only when the Redis-backed solve cache
// is disabled or unreachable, so a repeated request still short-circuits the
// solver instead of silently losing the correlation.
func (r *SolveRunRepository) FindByRequestHash(ctx context.Context, hash string) (*models.SolveRun, error) {
	const query = `SELECT id, request_hash, status, reason, timetable, stats, created_at, updated_at
FROM solve_runs WHERE request_hash = $1 ORDER BY created_at DESC LIMIT 1`
	var run models.SolveRun
	if err := r.db.GetContext(ctx, &run, query, hash); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns solve runs ordered by most recent first, paginated.
func (r *SolveRunRepository) List(ctx context.Context, filter models.SolveRunFilter) ([]models.SolveRun, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT id, request_hash, status, reason, timetable, stats, created_at, updated_at FROM solve_runs`
	args := []interface{}{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)

	var runs []models.SolveRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("list solve runs: %w", err)
	}
	return runs, nil
}

// Delete removes a stored solve run.
func (r *SolveRunRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM solve_runs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete solve run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("solve run rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
