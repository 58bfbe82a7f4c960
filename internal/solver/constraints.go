package solver

// This file implements the eight hard-constraint families from spec.md
// §4.4. Families 4.4.2 (room-type matching), 4.4.3 (theory class-wide) and
// 4.4.5 (duration shape) are structural — already enforced by the variable
// factory (variables.go) and require no posted check here, exactly as
// spec.md states. The remaining families are checked incrementally against
// a Model as the driver tentatively places variables.

// noOverlapHolds implements §4.4.1: for the room and every batch a variable
// would occupy, none of its covered hours may already be taken.
func (m *Model) noOverlapHolds(v *Variable, batchesAffected []string) bool {
	for h := v.Key.StartHour; h < v.EndHour; h++ {
		if m.roomHour[roomHourKey(v.Key.Room, v.Key.Day, h)] {
			return false
		}
		for _, b := range batchesAffected {
			if m.batchHour[batchHourKey(b, v.Key.Day, h)] {
				return false
			}
		}
	}
	return true
}

// dailyCapHolds implements §4.4.6: at most 2 hours of a given course per
// batch per day.
func (m *Model) dailyCapHolds(course, day string, batchesAffected []string, duration int) bool {
	for _, b := range batchesAffected {
		if m.dailyHours[dailyKey(course, b, day)]+duration > 2 {
			return false
		}
	}
	return true
}

// weeklyQuotaRemaining implements §4.4.7's running total: how many hours of
// `course` remain unscheduled for `batch` against its weekly quota.
func (m *Model) weeklyQuotaRemaining(course, batch string, quota int) int {
	return quota - m.weeklyHours[weeklyKey(course, batch)]
}

// teacherFatigueHolds implements the optional §4.4.8 family: over any
// 4-consecutive-hour window, at most 3 covering variables for the teacher.
// A no-op when the course carries no teacher label.
func (m *Model) teacherFatigueHolds(teacher, day string, coveredHours []int) bool {
	if teacher == "" {
		return true
	}
	for _, h := range coveredHours {
		for ws := h - 3; ws <= h; ws++ {
			if ws < 0 {
				continue
			}
			sum := 0
			for hh := ws; hh < ws+4; hh++ {
				sum += m.teacherHour[teacherHourKey(teacher, day, hh)]
				for _, ch := range coveredHours {
					if ch == hh {
						sum++
					}
				}
			}
			if sum > 3 {
				return false
			}
		}
	}
	return true
}

// place commits a tentative assignment, updating every running counter the
// constraint-check functions above read. batchesAffected is the real-batch
// set the variable occupies: every batch when the marker is CLASS (theory
// blocks the whole year, §4.4.3), or the single real batch for a practical.
func (m *Model) place(v *Variable, batchesAffected []string) {
	v.Value = true
	for h := v.Key.StartHour; h < v.EndHour; h++ {
		m.roomHour[roomHourKey(v.Key.Room, v.Key.Day, h)] = true
		for _, b := range batchesAffected {
			m.batchHour[batchHourKey(b, v.Key.Day, h)] = true
		}
		if v.Teacher != "" {
			m.teacherHour[teacherHourKey(v.Teacher, v.Key.Day, h)]++
		}
	}
	for _, b := range batchesAffected {
		m.dailyHours[dailyKey(v.Key.Course, b, v.Key.Day)] += v.Key.Duration
		m.weeklyHours[weeklyKey(v.Key.Course, b)] += v.Key.Duration
	}
	m.placed = append(m.placed, v)
}

// coveredHours returns the integer hour sequence [start, end).
func coveredHours(v *Variable) []int {
	hours := make([]int, 0, v.EndHour-v.Key.StartHour)
	for h := v.Key.StartHour; h < v.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
