package solver

import "fmt"

// PreCheck compares weekly hour demand against available slot supply and
// returns a non-nil error when demand cannot possibly be met, without ever
// building the variable set or model. Passing this check does not guarantee
// satisfiability; failing it always does guarantee infeasibility.
func PreCheck(courses []Course, rooms []Room, grid []Slot) error {
	var demand int
	for _, c := range courses {
		demand += c.HoursPerWeek
	}

	wantClassroom, wantLab := false, false
	for _, c := range courses {
		switch c.Kind {
		case KindTheory:
			wantClassroom = true
		case KindPractical:
			wantLab = true
		}
	}

	var compatibleRooms int
	for _, r := range rooms {
		if (r.Type == RoomClassroom && wantClassroom) || (r.Type == RoomLab && wantLab) {
			compatibleRooms++
		}
	}

	supply := len(grid) * compatibleRooms
	if demand > supply {
		return fmt.Errorf("Need %dh but only %d slots available", demand, supply)
	}
	return nil
}
