package solver

import "errors"

// Solve is the single public entry point (spec.md §4.7). It composes the
// time-grid builder, feasibility pre-check, variable factory, constraint
// library, solver driver and solution extractor in strict order and returns
// exactly one of success / failed / infeasible / timeout / error. It never
// returns a partial timetable, and it is a pure function of its input: no
// component here performs I/O, and no state survives past the call.
func Solve(problem Problem) Result {
	return SolveWithConfig(problem, DefaultDriverConfig())
}

// SolveWithConfig is Solve with an explicit driver configuration, exposed so
// the service layer can thread a configured time limit / worker count down
// from application config without the core depending on it.
func SolveWithConfig(problem Problem, driverCfg DriverConfig) Result {
	if len(problem.Week.WorkingDays) == 0 && len(problem.Courses) == 0 {
		return Result{Status: StatusSuccess, Timetable: []Assignment{}, Stats: Stats{}}
	}

	grid, err := BuildGrid(problem.Week)
	if err != nil {
		return Result{Status: StatusFailed, Reason: err.Error(), Timetable: []Assignment{}}
	}

	if len(problem.Courses) == 0 {
		return Result{Status: StatusSuccess, Timetable: []Assignment{}, Stats: Stats{}}
	}

	if err := validateCourses(problem.Courses); err != nil {
		return Result{Status: StatusFailed, Reason: err.Error(), Timetable: []Assignment{}}
	}

	if err := PreCheck(problem.Courses, problem.Rooms, grid); err != nil {
		return Result{Status: StatusFailed, Reason: err.Error(), Timetable: []Assignment{}}
	}

	batches := problem.Batches
	if len(batches) == 0 {
		batches = DefaultBatches()
		problem.Batches = batches
	}

	vs := BuildVariables(problem.Courses, problem.Rooms, batches, grid, problem.Week.WorkingDays)

	model, dr := drive(problem, vs, grid, problem.Week.WorkingDays, driverCfg)
	if dr.status != StatusSuccess {
		return Result{Status: dr.status, Reason: dr.reason, Timetable: []Assignment{}}
	}

	assignments, stats := Extract(model, batches)
	sortByDayOrder(assignments, dayOrder(problem.Week))

	return Result{Status: StatusSuccess, Timetable: assignments, Stats: stats}
}

func validateCourses(courses []Course) error {
	for _, c := range courses {
		if c.HoursPerWeek <= 0 {
			return errors.New("course hours_per_week must be positive")
		}
		if c.Kind != KindTheory && c.Kind != KindPractical {
			return errors.New("course has unknown kind")
		}
	}
	return nil
}
