package solver

import "fmt"

// CourseInput is the wire-level course shape accepted by NormalizeCourses,
// mirroring spec.md §6's request contract before composite-splitting.
type CourseInput struct {
	Name         string
	Type         string // "theory" | "practical" | "theory+lab"
	HoursPerWeek int
	Teacher      string
}

// RoomInput is the wire-level room shape.
type RoomInput struct {
	Name     string
	Type     string // "classroom" | "lab"
	Capacity int
	Location string
}

// NormalizeCourses validates and splits composite theory+lab courses into
// their theory and practical sub-courses (spec.md §3 Course, §9 Design
// Notes). The split partitions hours as theory = ceil(h/2), lab = floor(h/2)
// — an explicit choice recorded in DESIGN.md for the Open Question spec.md
// leaves to the implementer.
func NormalizeCourses(inputs []CourseInput) ([]Course, error) {
	out := make([]Course, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: course name must not be empty", ErrInvalidInput)
		}
		if seen[in.Name] {
			return nil, fmt.Errorf("%w: duplicate course name %q", ErrInvalidInput, in.Name)
		}
		seen[in.Name] = true
		if in.HoursPerWeek <= 0 {
			return nil, fmt.Errorf("%w: course %q hours_per_week must be positive", ErrInvalidInput, in.Name)
		}

		switch in.Type {
		case "theory":
			out = append(out, Course{Name: in.Name, Kind: KindTheory, HoursPerWeek: in.HoursPerWeek, Teacher: in.Teacher})
		case "practical":
			out = append(out, Course{Name: in.Name, Kind: KindPractical, HoursPerWeek: in.HoursPerWeek, Teacher: in.Teacher})
		case "theory+lab":
			lab := in.HoursPerWeek / 2
			theory := in.HoursPerWeek - lab
			out = append(out,
				Course{Name: in.Name + "-theory", Kind: KindTheory, HoursPerWeek: theory, Teacher: in.Teacher},
				Course{Name: in.Name + "-lab", Kind: KindPractical, HoursPerWeek: lab, Teacher: in.Teacher},
			)
		default:
			return nil, fmt.Errorf("%w: course %q has unknown type %q", ErrInvalidInput, in.Name, in.Type)
		}
	}
	return out, nil
}

// NormalizeRooms validates the room list.
func NormalizeRooms(inputs []RoomInput) ([]Room, error) {
	out := make([]Room, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: room name must not be empty", ErrInvalidInput)
		}
		if seen[in.Name] {
			return nil, fmt.Errorf("%w: duplicate room name %q", ErrInvalidInput, in.Name)
		}
		seen[in.Name] = true
		var rt RoomType
		switch in.Type {
		case "classroom":
			rt = RoomClassroom
		case "lab":
			rt = RoomLab
		default:
			return nil, fmt.Errorf("%w: room %q has unknown type %q", ErrInvalidInput, in.Name, in.Type)
		}
		out = append(out, Room{Name: in.Name, Type: rt, Capacity: in.Capacity, Location: in.Location})
	}
	return out, nil
}

// DefaultBatches is used when the caller omits an explicit batch list.
func DefaultBatches() []Batch {
	return []Batch{"Batch A", "Batch B", "Batch C"}
}
