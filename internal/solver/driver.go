package solver

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// seedFromProblem derives a deterministic seed from a hash of the problem,
// so that identical inputs always drive the search identically (spec.md
// §4.4's determinism requirement, carried into §4.5's driver configuration).
func seedFromProblem(p Problem) int64 {
	h := fnv.New64a()
	write := func(s string) { _, _ = h.Write([]byte(s)); _, _ = h.Write([]byte{0}) }
	write(p.Week.WeekStartTime)
	write(p.Week.WeekEndTime)
	write(p.Week.LunchStart)
	write(p.Week.LunchEnd)
	for _, d := range p.Week.WorkingDays {
		write(d)
	}
	for _, c := range p.Courses {
		write(c.Name)
		write(string(c.Kind))
		write(c.Teacher)
	}
	for _, r := range p.Rooms {
		write(r.Name)
		write(string(r.Type))
	}
	for _, b := range p.Batches {
		write(string(b))
	}
	return int64(h.Sum64())
}

// driveResult is the internal classification the construction search
// produces before the orchestrator maps it onto the public Result.
type driveResult struct {
	status Status
	reason string
}

// drive runs the deterministic constructive search described in
// SPEC_FULL.md: courses are scheduled largest-quota-first (grounded in the
// teacher's own difficulty/weeklyCount-descending seeding order), each
// course's weekly quota placed greedily in the variable set's deterministic
// candidate order, honoring every hard-constraint family in constraints.go
// as it goes; a pass never backtracks. DriverConfig's worker count bounds
// how many construction passes are tried, one after another, each with its
// own seeded course order; the lowest-numbered worker whose pass meets every
// quota wins. The time limit is checked before each pass starts, not during
// one: once it has elapsed no further pass starts, and if no earlier pass
// succeeded the result is a timeout.
func drive(problem Problem, vs *VariableSet, grid []Slot, days []string, cfg DriverConfig) (*Model, driveResult) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	baseSeed := seedFromProblem(problem)
	var deadline time.Time
	if cfg.TimeLimitSeconds > 0 {
		deadline = time.Now().Add(time.Duration(cfg.TimeLimitSeconds) * time.Second)
	}
	timedOut := false

	type attempt struct {
		model *Model
		ok    bool
	}

	results := make([]attempt, workers)
	for w := 0; w < workers; w++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			timedOut = true
			break
		}
		rng := rand.New(rand.NewSource(baseSeed + int64(w)))
		model, ok := construct(problem, vs, grid, days, rng, w)
		results[w] = attempt{model: model, ok: ok}
	}

	for _, r := range results {
		if r.ok {
			return r.model, driveResult{status: StatusSuccess}
		}
	}
	if timedOut {
		return nil, driveResult{status: StatusTimeout, reason: fmt.Sprintf("Solver timed out after %ds", cfg.TimeLimitSeconds)}
	}
	// No worker's greedy pass met every quota. This is reported as
	// infeasible, but a failed greedy pass does not prove that no timetable
	// exists for the problem.
	return nil, driveResult{status: StatusInfeasible, reason: "No feasible solution under current constraints"}
}

// construct performs one deterministic construction pass. worker 0 uses the
// canonical course order (largest quota first, name tiebreak); workers > 0
// perturb the order with the worker's seeded RNG, giving the pool of workers
// a chance to escape an ordering that a plain greedy pass cannot satisfy.
func construct(problem Problem, vs *VariableSet, grid []Slot, days []string, rng *rand.Rand, worker int) (*Model, bool) {
	model := newModel(vs, grid, days)
	for _, v := range vs.byKey {
		v.Value = false
	}

	courses := append([]Course(nil), problem.Courses...)
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].HoursPerWeek != courses[j].HoursPerWeek {
			return courses[i].HoursPerWeek > courses[j].HoursPerWeek
		}
		return courses[i].Name < courses[j].Name
	})
	if worker > 0 {
		rng.Shuffle(len(courses), func(i, j int) { courses[i], courses[j] = courses[j], courses[i] })
	}

	byCourseRoom := indexVariablesByCourse(vs)
	allBatches := realBatches(problem.Batches)

	for _, course := range courses {
		quota := course.HoursPerWeek
		switch course.Kind {
		case KindTheory:
			if !scheduleTheory(model, course, quota, byCourseRoom[course.Name], allBatches) {
				return model, false
			}
		case KindPractical:
			if !schedulePractical(model, course, quota, byCourseRoom[course.Name], allBatches) {
				return model, false
			}
		}
	}
	return model, true
}

// indexVariablesByCourse groups a VariableSet's candidates by course name,
// preserving the deterministic (room, day, hour, duration) ordering from
// variables.go.
func indexVariablesByCourse(vs *VariableSet) map[string][]*Variable {
	out := make(map[string][]*Variable)
	for _, v := range vs.Ordered() {
		out[v.Key.Course] = append(out[v.Key.Course], v)
	}
	return out
}

// scheduleTheory places a theory course's full weekly quota as CLASS-marked
// blocks, preferring duration-2 blocks before filling the remainder with
// duration-1 blocks, subject to the daily cap, no-overlap and fatigue
// families.
func scheduleTheory(model *Model, course Course, quota int, candidates []*Variable, allBatches []string) bool {
	remaining := quota
	for remaining > 0 {
		want := 2
		if remaining < 2 {
			want = 1
		}
		placed := false
		for _, pref := range []int{want, 1, 2} {
			if pref > remaining {
				continue
			}
			for _, v := range candidates {
				if v.Value || v.Key.Duration != pref {
					continue
				}
				if !model.dailyCapHolds(course.Name, v.Key.Day, allBatches, v.Key.Duration) {
					continue
				}
				if !model.noOverlapHolds(v, allBatches) {
					continue
				}
				if !model.teacherFatigueHolds(v.Teacher, v.Key.Day, coveredHours(v)) {
					continue
				}
				model.place(v, allBatches)
				remaining -= v.Key.Duration
				placed = true
				break
			}
			if placed {
				break
			}
		}
		if !placed {
			return false
		}
	}
	return true
}

// schedulePractical places a practical course's full weekly quota as
// synchronized duration-2 blocks: every batch scheduled at the same (day,
// start_hour) in a distinct lab, or none (§4.4.4), enforced structurally by
// committing all-or-nothing across the batch set. Every placed block advances
// every batch's weekly quota by the same 2 hours, so weeklyQuotaRemaining for
// any one real batch tracks the course's remaining quota for all of them.
func schedulePractical(model *Model, course Course, quota int, candidates []*Variable, allBatches []string) bool {
	byDayHour := groupByDayHour(candidates)
	if len(allBatches) == 0 {
		return quota == 0
	}
	tracked := allBatches[0]

	for {
		remaining := model.weeklyQuotaRemaining(course.Name, tracked, quota)
		if remaining == 0 {
			return true
		}
		if remaining < 2 {
			// Practical courses place only duration-2 blocks; an odd quota
			// can never be hit exactly, so this is a genuine infeasibility
			// rather than a placement that might succeed on a later try.
			return false
		}

		placedBlock := false
		for _, dh := range byDayHour {
			if len(dh.vars) == 0 {
				continue
			}
			if !model.dailyCapHolds(course.Name, dh.day, allBatches, 2) {
				continue
			}
			assignment := matchBatchesToRooms(dh.vars, allBatches)
			if assignment == nil {
				continue
			}
			ok := true
			for _, v := range assignment {
				if !model.noOverlapHolds(v, []string{v.Key.Batch}) {
					ok = false
					break
				}
				if !model.teacherFatigueHolds(v.Teacher, v.Key.Day, coveredHours(v)) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			for _, v := range assignment {
				model.place(v, []string{v.Key.Batch})
			}
			placedBlock = true
			break
		}
		if !placedBlock {
			return false
		}
	}
}

type dayHourGroup struct {
	day  string
	hour int
	vars []*Variable
}

// groupByDayHour buckets a practical course's candidate variables by
// (day, start_hour) in the deterministic order variables.go produced them.
func groupByDayHour(candidates []*Variable) []*dayHourGroup {
	index := make(map[string]*dayHourGroup)
	var order []string
	for _, v := range candidates {
		if v.Value {
			continue
		}
		key := v.Key.Day + "#" + strconv.Itoa(v.Key.StartHour)
		g, ok := index[key]
		if !ok {
			g = &dayHourGroup{day: v.Key.Day, hour: v.Key.StartHour}
			index[key] = g
			order = append(order, key)
		}
		g.vars = append(g.vars, v)
	}
	out := make([]*dayHourGroup, 0, len(order))
	for _, k := range order {
		out = append(out, index[k])
	}
	return out
}

// matchBatchesToRooms finds one not-yet-used variable per real batch, all
// sharing the group's (day, start_hour), each in a distinct room. Returns
// nil when any batch lacks a free room in this slot.
func matchBatchesToRooms(vars []*Variable, allBatches []string) []*Variable {
	byBatch := make(map[string][]*Variable)
	for _, v := range vars {
		byBatch[v.Key.Batch] = append(byBatch[v.Key.Batch], v)
	}
	usedRooms := make(map[string]bool)
	out := make([]*Variable, 0, len(allBatches))
	for _, b := range allBatches {
		var chosen *Variable
		for _, v := range byBatch[b] {
			if usedRooms[v.Key.Room] {
				continue
			}
			chosen = v
			break
		}
		if chosen == nil {
			return nil
		}
		usedRooms[chosen.Key.Room] = true
		out = append(out, chosen)
	}
	return out
}
