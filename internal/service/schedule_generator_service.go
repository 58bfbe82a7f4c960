package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/coursegrid/solver-api/internal/dto"
	"github.com/coursegrid/solver-api/internal/models"
	"github.com/coursegrid/solver-api/internal/solver"
	appErrors "github.com/coursegrid/solver-api/pkg/errors"
)

type solveRunWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, run *models.SolveRun) error
	FindByID(ctx context.Context, id string) (*models.SolveRun, error)
	FindByRequestHash(ctx context.Context, hash string) (*models.SolveRun, error)
	List(ctx context.Context, filter models.SolveRunFilter) ([]models.SolveRun, error)
	Delete(ctx context.Context, id string) error
}

type solveRunAssignmentWriter interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.SolveRunAssignment) error
	ListByRun(ctx context.Context, solveRunID string) ([]models.SolveRunAssignment, error)
	DeleteByRun(ctx context.Context, exec sqlx.ExtContext, solveRunID string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type cacheHitSinkKey struct{}

// WithCacheHitSink attaches a bool sink to ctx that Generate sets before
// returning, letting the HTTP layer report a resubmitted-and-cached solve
// (via internal/middleware.SetCacheHit) without changing Generate's signature.
func WithCacheHitSink(ctx context.Context) (context.Context, *bool) {
	hit := new(bool)
	return context.WithValue(ctx, cacheHitSinkKey{}, hit), hit
}

func markCacheHit(ctx context.Context, hit bool) {
	if sink, ok := ctx.Value(cacheHitSinkKey{}).(*bool); ok {
		*sink = hit
	}
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	Driver   solver.DriverConfig
	CacheTTL time.Duration
}

// ScheduleGeneratorService turns a timetable request into a solved,
// persisted run. It owns no scheduling logic itself: every hard constraint
// and the search procedure live in internal/solver, which this service
// treats as a pure function.
type ScheduleGeneratorService struct {
	runs        solveRunWriter
	assignments solveRunAssignmentWriter
	tx          txProvider
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ScheduleGeneratorConfig
}

// NewScheduleGeneratorService wires generator dependencies.
func NewScheduleGeneratorService(
	runs solveRunWriter,
	assignments solveRunAssignmentWriter,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Driver.Workers <= 0 && cfg.Driver.TimeLimitSeconds <= 0 {
		cfg.Driver = solver.DefaultDriverConfig()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &ScheduleGeneratorService{
		runs:        runs,
		assignments: assignments,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate validates a timetable request, solves it, and persists the
// outcome. A cache hit on an identical request short-circuits the solve
// entirely; a solve failure (infeasible, timeout, error) is still persisted
// and still returned, never as a Go error, since it is a valid union member
// of the result (spec.md §4.7).
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	problem, err := toProblem(req)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	requestHash := hashProblem(problem)

	if cached, hit, cacheErr := s.lookupCached(ctx, requestHash); cacheErr != nil {
		s.logger.Warn("solve cache lookup failed", zap.Error(cacheErr))
	} else if hit {
		markCacheHit(ctx, true)
		return cached, nil
	} else if !s.cache.Enabled() {
		// Redis is disabled or was unreachable at startup; fall back to the
		// durable record of an identical prior solve instead of re-solving.
		if persisted, found, err := s.lookupPersistedRun(ctx, requestHash); err != nil {
			s.logger.Warn("solve run lookup by request hash failed", zap.Error(err))
		} else if found {
			markCacheHit(ctx, true)
			return persisted, nil
		}
	}
	markCacheHit(ctx, false)

	start := time.Now()
	result := solver.SolveWithConfig(problem, s.cfg.Driver)
	duration := time.Since(start)
	s.metrics.ObserveSolve(string(result.Status), duration)

	resp := toTimetableResponse(result)

	run, assignments := buildPersistables(requestHash, result)
	if err := s.persist(ctx, run, assignments); err != nil {
		s.logger.Error("failed to persist solve run", zap.String("status", string(result.Status)), zap.Error(err))
	} else {
		resp.RunID = run.ID
	}

	if err := s.cache.Set(ctx, cacheKey(requestHash), resp, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache solve result", zap.Error(err))
	}

	return resp, nil
}

// ListRuns returns a page of solve-run history.
func (s *ScheduleGeneratorService) ListRuns(ctx context.Context, query dto.SolveRunQuery) ([]dto.SolveRunSummary, models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var statusFilter *models.SolveRunStatus
	if query.Status != "" {
		st := models.SolveRunStatus(strings.ToUpper(query.Status))
		statusFilter = &st
	}

	runs, err := s.runs.List(ctx, models.SolveRunFilter{Status: statusFilter, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list solve runs")
	}

	summaries := make([]dto.SolveRunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, dto.SolveRunSummary{
			ID:        r.ID,
			Status:    string(r.Status),
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}
	return summaries, models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(summaries)}, nil
}

// GetRun reloads a persisted solve run and its assignments.
func (s *ScheduleGeneratorService) GetRun(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solve run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load solve run")
	}

	assignments, err := s.assignments.ListByRun(ctx, run.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load solve run assignments")
	}

	return runToResponse(run, assignments), nil
}

// DeleteRun removes a persisted solve run and its assignments.
func (s *ScheduleGeneratorService) DeleteRun(ctx context.Context, id string) error {
	if err := s.assignments.DeleteByRun(ctx, nil, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete solve run assignments")
	}
	if err := s.runs.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "solve run not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete solve run")
	}
	return nil
}

func (s *ScheduleGeneratorService) persist(ctx context.Context, run *models.SolveRun, assignments []models.SolveRunAssignment) error {
	if s.tx == nil {
		return fmt.Errorf("transaction provider not configured")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.runs.Create(ctx, tx, run); err != nil {
		return fmt.Errorf("create solve run: %w", err)
	}
	for i := range assignments {
		assignments[i].SolveRunID = run.ID
	}
	if err = s.assignments.InsertBatch(ctx, tx, assignments); err != nil {
		return fmt.Errorf("insert solve run assignments: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit solve run: %w", err)
	}
	return nil
}

func (s *ScheduleGeneratorService) lookupCached(ctx context.Context, requestHash string) (*dto.GenerateTimetableResponse, bool, error) {
	var resp dto.GenerateTimetableResponse
	hit, err := s.cache.Get(ctx, cacheKey(requestHash), &resp)
	if err != nil || !hit {
		return nil, false, err
	}
	return &resp, true, nil
}

func cacheKey(requestHash string) string {
	return "solve:" + requestHash
}

// lookupPersistedRun looks for a previously persisted run of an identical
// request, used as the cache's DB-backed fallback.
func (s *ScheduleGeneratorService) lookupPersistedRun(ctx context.Context, requestHash string) (*dto.GenerateTimetableResponse, bool, error) {
	run, err := s.runs.FindByRequestHash(ctx, requestHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	assignments, err := s.assignments.ListByRun(ctx, run.ID)
	if err != nil {
		return nil, false, err
	}
	return runToResponse(run, assignments), true, nil
}

// toProblem converts the wire request into the solver's input shape,
// normalizing courses (splitting theory+lab composites) and rooms.
func toProblem(req dto.GenerateTimetableRequest) (solver.Problem, error) {
	courseInputs := make([]solver.CourseInput, 0, len(req.Subjects))
	for _, subj := range req.Subjects {
		courseInputs = append(courseInputs, solver.CourseInput{
			Name:         subj.Name,
			Type:         subj.Type,
			HoursPerWeek: subj.HoursPerWeek,
			Teacher:      subj.Teacher,
		})
	}
	courses, err := solver.NormalizeCourses(courseInputs)
	if err != nil {
		return solver.Problem{}, err
	}

	roomInputs := make([]solver.RoomInput, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		roomInputs = append(roomInputs, solver.RoomInput{
			Name:     r.Name,
			Type:     r.Type,
			Capacity: r.Capacity,
			Location: r.Location,
		})
	}
	rooms, err := solver.NormalizeRooms(roomInputs)
	if err != nil {
		return solver.Problem{}, err
	}

	batches := make([]solver.Batch, 0, len(req.Batches))
	for _, b := range req.Batches {
		batches = append(batches, solver.Batch(b))
	}

	return solver.Problem{
		Week: solver.WeekConfig{
			WorkingDays:   req.WeekConfig.WorkingDays,
			WeekStartTime: req.WeekConfig.WeekStartTime,
			WeekEndTime:   req.WeekConfig.WeekEndTime,
			LunchStart:    req.WeekConfig.LunchStart,
			LunchEnd:      req.WeekConfig.LunchEnd,
		},
		Courses: courses,
		Rooms:   rooms,
		Batches: batches,
	}, nil
}

// hashProblem derives a stable cache/correlation key from a normalized
// problem, so that two requests differing only in field order or
// whitespace still hit the same cache entry.
func hashProblem(problem solver.Problem) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(problem)
	return hex.EncodeToString(h.Sum(nil))
}

func toTimetableResponse(result solver.Result) *dto.GenerateTimetableResponse {
	timetable := make([]dto.AssignmentResponse, 0, len(result.Timetable))
	for _, a := range result.Timetable {
		timetable = append(timetable, dto.AssignmentResponse{
			Subject:   a.Course,
			Batch:     a.Batch,
			Room:      a.Room,
			Day:       a.Day,
			StartHour: a.StartHour,
			EndHour:   a.EndHour,
			Duration:  a.Duration,
			Type:      string(a.Kind),
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
		})
	}

	resp := &dto.GenerateTimetableResponse{
		Status:    string(result.Status),
		Reason:    result.Reason,
		Timetable: timetable,
	}
	if result.Status == solver.StatusSuccess {
		resp.Stats = &dto.TimetableStats{
			TotalSlots:        result.Stats.TotalSlots,
			SubjectsScheduled: result.Stats.SubjectsScheduled,
			BatchesScheduled:  result.Stats.BatchesScheduled,
		}
	}
	return resp
}

func buildPersistables(requestHash string, result solver.Result) (*models.SolveRun, []models.SolveRunAssignment) {
	timetableJSON, _ := json.Marshal(result.Timetable)
	statsJSON, _ := json.Marshal(result.Stats)

	var reason *string
	if result.Reason != "" {
		r := result.Reason
		reason = &r
	}

	run := &models.SolveRun{
		RequestHash: requestHash,
		Status:      models.SolveRunStatus(strings.ToUpper(string(result.Status))),
		Reason:      reason,
		Timetable:   types.JSONText(timetableJSON),
		Stats:       types.JSONText(statsJSON),
	}

	assignments := make([]models.SolveRunAssignment, 0, len(result.Timetable))
	for _, a := range result.Timetable {
		assignments = append(assignments, models.SolveRunAssignment{
			Course:    a.Course,
			Batch:     a.Batch,
			Room:      a.Room,
			Day:       a.Day,
			StartHour: a.StartHour,
			EndHour:   a.EndHour,
			Kind:      string(a.Kind),
		})
	}
	return run, assignments
}

func runToResponse(run *models.SolveRun, assignments []models.SolveRunAssignment) *dto.GenerateTimetableResponse {
	timetable := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		timetable = append(timetable, dto.AssignmentResponse{
			Subject:   a.Course,
			Batch:     a.Batch,
			Room:      a.Room,
			Day:       a.Day,
			StartHour: a.StartHour,
			EndHour:   a.EndHour,
			Duration:  a.EndHour - a.StartHour,
			Type:      a.Kind,
			StartTime: formatHour(a.StartHour),
			EndTime:   formatHour(a.EndHour),
		})
	}

	resp := &dto.GenerateTimetableResponse{
		RunID:     run.ID,
		Status:    strings.ToLower(string(run.Status)),
		Timetable: timetable,
	}
	if run.Reason != nil {
		resp.Reason = *run.Reason
	}
	if len(run.Stats) > 0 {
		var stats dto.TimetableStats
		if err := json.Unmarshal(run.Stats, &stats); err == nil {
			resp.Stats = &stats
		}
	}
	return resp
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
