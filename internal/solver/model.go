package solver

import "strconv"

// Model accumulates the bookkeeping needed to check every hard-constraint
// family incrementally as variables are tentatively assigned true. It plays
// the role spec.md §4.4 calls "the model" that constraint functions post
// boolean linear constraints onto; because no CP-SAT library exists in the
// reference corpus (see DESIGN.md), those "≤ 1" / "= k" sums are enforced
// here as running counters checked before each placement rather than handed
// to an external engine — the same sums, evaluated incrementally.
type Model struct {
	vars *VariableSet
	grid []Slot
	days []string

	roomHour    map[string]bool  // "room|day|hour" -> occupied
	batchHour   map[string]bool  // "batch|day|hour" -> occupied (CLASS expands to every real batch)
	dailyHours  map[string]int   // "course|batch|day" -> duration sum so far
	weeklyHours map[string]int   // "course|batch" -> duration sum so far
	teacherHour map[string]int   // "teacher|day|hour" -> covering-variable count

	placed []*Variable
}

func newModel(vars *VariableSet, grid []Slot, days []string) *Model {
	return &Model{
		vars:        vars,
		grid:        grid,
		days:        days,
		roomHour:    make(map[string]bool),
		batchHour:   make(map[string]bool),
		dailyHours:  make(map[string]int),
		weeklyHours: make(map[string]int),
		teacherHour: make(map[string]int),
	}
}

func roomHourKey(room, day string, hour int) string {
	return room + "|" + day + "|" + strconv.Itoa(hour)
}

func batchHourKey(batch, day string, hour int) string {
	return batch + "|" + day + "|" + strconv.Itoa(hour)
}

func dailyKey(course, batch, day string) string {
	return course + "|" + batch + "|" + day
}

func weeklyKey(course, batch string) string {
	return course + "|" + batch
}

func teacherHourKey(teacher, day string, hour int) string {
	return teacher + "|" + day + "|" + strconv.Itoa(hour)
}

// realBatches resolves the batch set a CLASS-marked variable covers.
func realBatches(batches []Batch) []string {
	out := make([]string, len(batches))
	for i, b := range batches {
		out[i] = string(b)
	}
	return out
}
