package solver

import (
	"fmt"
	"sort"
)

// formatHour renders a whole hour as "HH:00".
func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// Extract reads every variable the driver placed true and expands it into
// one Assignment per real batch (spec §4.6): a CLASS-marked theory variable
// emits one Assignment per batch in the problem, all sharing (course, room,
// day, start_hour, duration); a practical variable emits its own batch's
// Assignment directly.
func Extract(model *Model, batches []Batch) ([]Assignment, Stats) {
	var out []Assignment
	subjects := make(map[string]struct{})
	batchesSeen := make(map[string]struct{})

	for _, v := range model.placed {
		if v.Key.Batch == ClassMarker {
			for _, b := range batches {
				out = append(out, toAssignment(v, string(b)))
				batchesSeen[string(b)] = struct{}{}
			}
		} else {
			out = append(out, toAssignment(v, v.Key.Batch))
			batchesSeen[v.Key.Batch] = struct{}{}
		}
		subjects[v.Key.Course] = struct{}{}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day != b.Day {
			return a.Day < b.Day // caller re-sorts by working-day index; see sortByDayOrder
		}
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		if a.Course != b.Course {
			return a.Course < b.Course
		}
		return a.Batch < b.Batch
	})

	return out, Stats{
		TotalSlots:        len(out),
		SubjectsScheduled: len(subjects),
		BatchesScheduled:  len(batchesSeen),
	}
}

func toAssignment(v *Variable, batch string) Assignment {
	return Assignment{
		Course:    v.Key.Course,
		Batch:     batch,
		Room:      v.Key.Room,
		Day:       v.Key.Day,
		StartHour: v.Key.StartHour,
		EndHour:   v.EndHour,
		Duration:  v.Key.Duration,
		Kind:      v.Kind,
		StartTime: formatHour(v.Key.StartHour),
		EndTime:   formatHour(v.EndHour),
	}
}

// sortByDayOrder re-sorts assignments by working-day index (instead of
// lexicographic day label), then start hour, then course, then batch, as
// spec.md §4.6 requires ("ordered by day index in working_days").
func sortByDayOrder(assignments []Assignment, days map[string]int) {
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if days[a.Day] != days[b.Day] {
			return days[a.Day] < days[b.Day]
		}
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		if a.Course != b.Course {
			return a.Course < b.Course
		}
		return a.Batch < b.Batch
	})
}
