package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SolveRunStatus mirrors solver.Status as persisted in the solve_runs table.
type SolveRunStatus string

const (
	SolveRunStatusSuccess    SolveRunStatus = "SUCCESS"
	SolveRunStatusFailed     SolveRunStatus = "FAILED"
	SolveRunStatusInfeasible SolveRunStatus = "INFEASIBLE"
	SolveRunStatusTimeout    SolveRunStatus = "TIMEOUT"
	SolveRunStatusError      SolveRunStatus = "ERROR"
)

// SolveRun is a persisted record of one solver.Solve invocation: the request
// that produced it (hashed, for cache correlation), its outcome, and the
// resulting timetable serialized as JSON.
type SolveRun struct {
	ID          string          `db:"id" json:"id"`
	RequestHash string          `db:"request_hash" json:"request_hash"`
	Status      SolveRunStatus  `db:"status" json:"status"`
	Reason      *string         `db:"reason" json:"reason,omitempty"`
	Timetable   types.JSONText  `db:"timetable" json:"timetable"`
	Stats       types.JSONText  `db:"stats" json:"stats"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// SolveRunAssignment is a single scheduled slot belonging to a SolveRun,
// stored separately so export and query code can filter/sort it in SQL
// without unmarshaling the run's JSON blob.
type SolveRunAssignment struct {
	ID         string `db:"id" json:"id"`
	SolveRunID string `db:"solve_run_id" json:"solve_run_id"`
	Course     string `db:"course" json:"course"`
	Batch      string `db:"batch" json:"batch"`
	Room       string `db:"room" json:"room"`
	Day        string `db:"day" json:"day"`
	StartHour  int    `db:"start_hour" json:"start_hour"`
	EndHour    int    `db:"end_hour" json:"end_hour"`
	Kind       string `db:"kind" json:"kind"`
}

// SolveRunFilter captures filtering/pagination criteria for listing runs.
type SolveRunFilter struct {
	Status   *SolveRunStatus
	Page     int
	PageSize int
}
