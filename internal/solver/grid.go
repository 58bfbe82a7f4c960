package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// parseHour converts an "HH:MM" string to a whole-hour integer, truncating
// down when minutes are non-zero (per spec: "if week_end_time does not fall
// on a whole hour, truncate down").
func parseHour(raw string) (int, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, fmt.Errorf("malformed time %q", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed time %q: %w", raw, err)
	}
	return h, nil
}

// BuildGrid expands a WeekConfig into the ordered sequence of atomic one-hour
// slots, excluding lunch-break hours. Slots are ordered by working-day index,
// then ascending start hour, matching the deterministic ordering spec.md
// §4.4's "Ordering, tie-breaks, numeric semantics" requires downstream.
func BuildGrid(week WeekConfig) ([]Slot, error) {
	if len(week.WorkingDays) == 0 {
		return nil, fmt.Errorf("%w: working_days must not be empty", ErrInvalidInput)
	}

	start, err := parseHour(week.WeekStartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: week_start_time: %v", ErrInvalidInput, err)
	}
	end, err := parseHour(week.WeekEndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: week_end_time: %v", ErrInvalidInput, err)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: week_start_time must be before week_end_time", ErrInvalidInput)
	}

	var lunchStart, lunchEnd int
	hasLunch := week.LunchStart != "" && week.LunchEnd != ""
	if hasLunch {
		lunchStart, err = parseHour(week.LunchStart)
		if err != nil {
			return nil, fmt.Errorf("%w: lunch_start: %v", ErrInvalidInput, err)
		}
		lunchEnd, err = parseHour(week.LunchEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: lunch_end: %v", ErrInvalidInput, err)
		}
		if lunchEnd <= lunchStart {
			hasLunch = false // empty or inverted window excludes nothing
		}
	}

	grid := make([]Slot, 0, len(week.WorkingDays)*(end-start))
	for _, day := range week.WorkingDays {
		for h := start; h < end; h++ {
			if hasLunch && h >= lunchStart && h < lunchEnd {
				continue
			}
			grid = append(grid, Slot{Day: day, StartHour: h})
		}
	}
	return grid, nil
}

// gridIndex builds a lookup of (day,hour) -> present-in-grid for O(1)
// consecutive-slot checks used by the variable factory.
func gridIndex(grid []Slot) map[string]struct{} {
	idx := make(map[string]struct{}, len(grid))
	for _, s := range grid {
		idx[s.Key()] = struct{}{}
	}
	return idx
}

// dayOrder maps each working day to its position, used for deterministic
// sort order throughout the package.
func dayOrder(week WeekConfig) map[string]int {
	order := make(map[string]int, len(week.WorkingDays))
	for i, d := range week.WorkingDays {
		order[d] = i
	}
	return order
}
