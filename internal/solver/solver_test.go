package solver

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCourses(t *testing.T, inputs []CourseInput) []Course {
	t.Helper()
	courses, err := NormalizeCourses(inputs)
	require.NoError(t, err)
	return courses
}

func mustRooms(t *testing.T, inputs []RoomInput) []Room {
	t.Helper()
	rooms, err := NormalizeRooms(inputs)
	require.NoError(t, err)
	return rooms
}

// Scenario 1: single theory, single room, single day window.
func TestSolveSingleTheorySingleRoom(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "12:00", LunchStart: "13:00", LunchEnd: "13:00"}
	courses := mustCourses(t, []CourseInput{{Name: "M", Type: "theory", HoursPerWeek: 2}})
	rooms := mustRooms(t, []RoomInput{{Name: "R1", Type: "classroom"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A", "B", "C"}})

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Timetable, 3)

	seenBatches := map[string]bool{}
	for _, a := range result.Timetable {
		assert.Equal(t, "M", a.Course)
		assert.Equal(t, "R1", a.Room)
		assert.Equal(t, "Mon", a.Day)
		assert.Equal(t, 2, a.Duration)
		assert.Contains(t, []int{9, 10}, a.StartHour)
		seenBatches[a.Batch] = true
	}
	assert.Len(t, seenBatches, 3)
	assert.Equal(t, result.Timetable[0].StartHour, result.Timetable[1].StartHour)
	assert.Equal(t, result.Timetable[0].Room, result.Timetable[2].Room)
}

// Scenario 2: single practical, three labs.
func TestSolveSinglePracticalThreeLabs(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "12:00"}
	courses := mustCourses(t, []CourseInput{{Name: "P", Type: "practical", HoursPerWeek: 2}})
	rooms := mustRooms(t, []RoomInput{{Name: "L1", Type: "lab"}, {Name: "L2", Type: "lab"}, {Name: "L3", Type: "lab"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A", "B", "C"}})

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Timetable, 3)

	rooms_ := map[string]bool{}
	for _, a := range result.Timetable {
		assert.Contains(t, []int{9, 10}, a.StartHour)
		assert.Equal(t, 2, a.Duration)
		rooms_[a.Room] = true
	}
	assert.Len(t, rooms_, 3)
}

// Scenario 3: composite split.
func TestSolveCompositeSplit(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, WeekStartTime: "09:00", WeekEndTime: "16:00", LunchStart: "13:00", LunchEnd: "14:00"}
	courses := mustCourses(t, []CourseInput{{Name: "DB", Type: "theory+lab", HoursPerWeek: 4}})
	rooms := mustRooms(t, []RoomInput{{Name: "C1", Type: "classroom"}, {Name: "L1", Type: "lab"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A"}})

	require.Equal(t, StatusSuccess, result.Status)

	var theoryHours, labHours int
	for _, a := range result.Timetable {
		if strings.HasSuffix(a.Course, "-theory") {
			theoryHours += a.Duration
			assert.Equal(t, "C1", a.Room)
		}
		if strings.HasSuffix(a.Course, "-lab") {
			labHours += a.Duration
			assert.Equal(t, "L1", a.Room)
			assert.Equal(t, 2, a.Duration)
		}
	}
	assert.Equal(t, 2, theoryHours)
	assert.Equal(t, 2, labHours)
}

// Scenario 4: infeasible by counting.
func TestSolveInfeasibleByCounting(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "11:00"}
	courses := mustCourses(t, []CourseInput{{Name: "M", Type: "theory", HoursPerWeek: 10}})
	rooms := mustRooms(t, []RoomInput{{Name: "R1", Type: "classroom"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A"}})

	require.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Reason, "10h")
	assert.Contains(t, result.Reason, "2 slots available")
	assert.Empty(t, result.Timetable)
}

// Scenario 5: lunch exclusion.
func TestSolveLunchExclusion(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "12:00", WeekEndTime: "15:00", LunchStart: "13:00", LunchEnd: "14:00"}
	courses := mustCourses(t, []CourseInput{{Name: "M", Type: "theory", HoursPerWeek: 2}})
	rooms := mustRooms(t, []RoomInput{{Name: "R1", Type: "classroom"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A"}})

	if result.Status == StatusSuccess {
		for _, a := range result.Timetable {
			for h := a.StartHour; h < a.EndHour; h++ {
				assert.NotEqual(t, 13, h)
			}
		}
	} else {
		assert.Equal(t, StatusFailed, result.Status)
	}
}

// Scenario 6: daily cap.
func TestSolveDailyCap(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon", "Tue"}, WeekStartTime: "09:00", WeekEndTime: "13:00"}
	courses := mustCourses(t, []CourseInput{{Name: "M", Type: "theory", HoursPerWeek: 4}})
	rooms := mustRooms(t, []RoomInput{{Name: "R1", Type: "classroom"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A"}})

	require.Equal(t, StatusSuccess, result.Status)
	perDay := map[string]int{}
	for _, a := range result.Timetable {
		perDay[a.Day] += a.Duration
	}
	for _, d := range week.WorkingDays {
		assert.LessOrEqual(t, perDay[d], 2)
	}
	assert.Equal(t, 2, perDay["Mon"])
	assert.Equal(t, 2, perDay["Tue"])
}

func TestSolveEmptySubjectsSucceedsWithEmptyTimetable(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "12:00"}
	result := Solve(Problem{Week: week, Courses: nil, Rooms: nil, Batches: nil})
	require.Equal(t, StatusSuccess, result.Status)
	assert.Empty(t, result.Timetable)
}

func TestSolveLunchWholeDayFailsPreCheck(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "12:00", LunchStart: "09:00", LunchEnd: "12:00"}
	courses := mustCourses(t, []CourseInput{{Name: "M", Type: "theory", HoursPerWeek: 1}})
	rooms := mustRooms(t, []RoomInput{{Name: "R1", Type: "classroom"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A"}})
	require.Equal(t, StatusFailed, result.Status)
}

func TestSolveDeterministic(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon", "Tue", "Wed"}, WeekStartTime: "09:00", WeekEndTime: "15:00", LunchStart: "12:00", LunchEnd: "13:00"}
	courses := mustCourses(t, []CourseInput{
		{Name: "Algorithms", Type: "theory", HoursPerWeek: 4},
		{Name: "Networks", Type: "practical", HoursPerWeek: 2},
	})
	rooms := mustRooms(t, []RoomInput{{Name: "C1", Type: "classroom"}, {Name: "L1", Type: "lab"}, {Name: "L2", Type: "lab"}, {Name: "L3", Type: "lab"}})
	problem := Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A", "B", "C"}}

	first := Solve(problem)
	second := Solve(problem)

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.Timetable, second.Timetable)
}

func TestQuotaRoomAndBatchExclusivityHoldAcrossSolution(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon", "Tue", "Wed", "Thu"}, WeekStartTime: "09:00", WeekEndTime: "15:00", LunchStart: "12:00", LunchEnd: "13:00"}
	courses := mustCourses(t, []CourseInput{
		{Name: "Algorithms", Type: "theory", HoursPerWeek: 4},
		{Name: "Databases", Type: "theory", HoursPerWeek: 2},
		{Name: "Networks", Type: "practical", HoursPerWeek: 2},
	})
	rooms := mustRooms(t, []RoomInput{{Name: "C1", Type: "classroom"}, {Name: "C2", Type: "classroom"}, {Name: "L1", Type: "lab"}, {Name: "L2", Type: "lab"}, {Name: "L3", Type: "lab"}})
	batches := []Batch{"A", "B", "C"}
	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: batches})
	require.Equal(t, StatusSuccess, result.Status)

	quota := map[string]int{}
	roomHour := map[string]bool{}
	batchHour := map[string]bool{}
	dailyCap := map[string]int{}

	for _, a := range result.Timetable {
		quota[a.Course+"|"+a.Batch] += a.Duration

		for h := a.StartHour; h < a.EndHour; h++ {
			rk := a.Room + "|" + a.Day + "|" + strconv.Itoa(h)
			require.False(t, roomHour[rk], "room double-booked")
			roomHour[rk] = true

			bk := a.Batch + "|" + a.Day + "|" + strconv.Itoa(h)
			require.False(t, batchHour[bk], "batch double-booked")
			batchHour[bk] = true

			require.NotEqual(t, 12, h, "assignment covers lunch hour")
		}

		dailyCap[a.Course+"|"+a.Batch+"|"+a.Day] += a.Duration
	}

	for _, c := range courses {
		for _, b := range batches {
			want := c.HoursPerWeek
			got := quota[c.Name+"|"+string(b)]
			assert.Equal(t, want, got, "quota mismatch for %s/%s", c.Name, b)
		}
	}
	for _, total := range dailyCap {
		assert.LessOrEqual(t, total, 2)
	}
}

func TestSolvePracticalOddQuotaIsInfeasible(t *testing.T) {
	week := WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "13:00"}
	courses := mustCourses(t, []CourseInput{{Name: "P", Type: "practical", HoursPerWeek: 3}})
	rooms := mustRooms(t, []RoomInput{{Name: "L1", Type: "lab"}, {Name: "L2", Type: "lab"}, {Name: "L3", Type: "lab"}})

	result := Solve(Problem{Week: week, Courses: courses, Rooms: rooms, Batches: []Batch{"A", "B", "C"}})

	require.Equal(t, StatusInfeasible, result.Status)
	assert.Empty(t, result.Timetable)
}

func TestNormalizeCoursesRejectsInvalidInput(t *testing.T) {
	_, err := NormalizeCourses([]CourseInput{{Name: "", Type: "theory", HoursPerWeek: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeCourses([]CourseInput{{Name: "M", Type: "theory", HoursPerWeek: 0}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeCourses([]CourseInput{{Name: "M", Type: "unknown", HoursPerWeek: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeCoursesSplitsCompositeHoursTheoryGreaterOrEqualLab(t *testing.T) {
	courses, err := NormalizeCourses([]CourseInput{{Name: "DB", Type: "theory+lab", HoursPerWeek: 5}})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "DB-theory", courses[0].Name)
	assert.Equal(t, 3, courses[0].HoursPerWeek)
	assert.Equal(t, "DB-lab", courses[1].Name)
	assert.Equal(t, 2, courses[1].HoursPerWeek)
}

func TestBuildGridExcludesLunchHours(t *testing.T) {
	grid, err := BuildGrid(WeekConfig{WorkingDays: []string{"Mon"}, WeekStartTime: "09:00", WeekEndTime: "13:00", LunchStart: "11:00", LunchEnd: "12:00"})
	require.NoError(t, err)
	hours := map[int]bool{}
	for _, s := range grid {
		hours[s.StartHour] = true
	}
	assert.True(t, hours[9])
	assert.True(t, hours[10])
	assert.False(t, hours[11])
	assert.True(t, hours[12])
}
