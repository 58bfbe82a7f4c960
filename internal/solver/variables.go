package solver

import "sort"

// VariableSet is the dense, deterministically-ordered collection of decision
// variables created for one problem. The zero value is not usable; build one
// with BuildVariables.
type VariableSet struct {
	byKey map[string]*Variable
	order []string // deterministic creation order, keyed by VarKey.String()
}

// Ordered returns the variables in their deterministic creation order:
// course alphabetical, room alphabetical, day in working-day order, start
// hour ascending, duration ascending.
func (vs *VariableSet) Ordered() []*Variable {
	out := make([]*Variable, 0, len(vs.order))
	for _, k := range vs.order {
		out = append(out, vs.byKey[k])
	}
	return out
}

func (vs *VariableSet) add(v *Variable) {
	key := v.Key.String()
	if vs.byKey == nil {
		vs.byKey = make(map[string]*Variable)
	}
	if _, exists := vs.byKey[key]; exists {
		return
	}
	vs.byKey[key] = v
	vs.order = append(vs.order, key)
}

// legalDurations returns the duration set permitted for a course kind.
func legalDurations(kind CourseKind) []int {
	switch kind {
	case KindTheory:
		return []int{1, 2}
	case KindPractical:
		return []int{2}
	default:
		return nil
	}
}

// roomMatches implements room-type matching (spec §4.4.2): enforced here, at
// candidate-generation time, rather than as an explicit posted constraint.
func roomMatches(kind CourseKind, roomType RoomType) bool {
	switch kind {
	case KindTheory:
		return roomType == RoomClassroom
	case KindPractical:
		return roomType == RoomLab
	default:
		return false
	}
}

// consecutiveSlotsExist checks that all `duration` atomic slots starting at
// (day, startHour) are present in the grid, i.e. none is a lunch hour and
// none overflows the day.
func consecutiveSlotsExist(idx map[string]struct{}, day string, startHour, duration int) bool {
	for h := startHour; h < startHour+duration; h++ {
		if _, ok := idx[(Slot{Day: day, StartHour: h}).Key()]; !ok {
			return false
		}
	}
	return true
}

// BuildVariables enumerates every legal candidate assignment and materializes
// one boolean decision variable per candidate (spec §4.3).
func BuildVariables(courses []Course, rooms []Room, batches []Batch, grid []Slot, days []string) *VariableSet {
	vs := &VariableSet{}

	sortedCourses := append([]Course(nil), courses...)
	sort.Slice(sortedCourses, func(i, j int) bool { return sortedCourses[i].Name < sortedCourses[j].Name })

	sortedRooms := append([]Room(nil), rooms...)
	sort.Slice(sortedRooms, func(i, j int) bool { return sortedRooms[i].Name < sortedRooms[j].Name })

	idx := gridIndex(grid)

	for _, course := range sortedCourses {
		for _, room := range sortedRooms {
			if !roomMatches(course.Kind, room.Type) {
				continue
			}
			for _, day := range days {
				maxHour := 0
				for _, s := range grid {
					if s.Day == day && s.StartHour >= maxHour {
						maxHour = s.StartHour + 1
					}
				}
				for h := 0; h < maxHour; h++ {
					for _, d := range legalDurations(course.Kind) {
						if !consecutiveSlotsExist(idx, day, h, d) {
							continue
						}
						switch course.Kind {
						case KindTheory:
							key := VarKey{Course: course.Name, Batch: ClassMarker, Room: room.Name, Day: day, StartHour: h, Duration: d}
							vs.add(&Variable{Key: key, Kind: course.Kind, Teacher: course.Teacher, EndHour: h + d})
						case KindPractical:
							for _, b := range batches {
								key := VarKey{Course: course.Name, Batch: string(b), Room: room.Name, Day: day, StartHour: h, Duration: d}
								vs.add(&Variable{Key: key, Kind: course.Kind, Teacher: course.Teacher, EndHour: h + d})
							}
						}
					}
				}
			}
		}
	}

	return vs
}
