package dto

// WeekConfigRequest describes the working week the timetable must fit within.
type WeekConfigRequest struct {
	WorkingDays   []string `json:"working_days" validate:"required,min=1,dive,required"`
	WeekStartTime string   `json:"week_start_time" validate:"required"`
	WeekEndTime   string   `json:"week_end_time" validate:"required"`
	LunchStart    string   `json:"lunch_start"`
	LunchEnd      string   `json:"lunch_end"`
}

// SubjectRequest is one course's demand on the grid.
type SubjectRequest struct {
	Name         string `json:"name" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=theory practical theory+lab"`
	HoursPerWeek int    `json:"hours_per_week" validate:"required,min=1"`
	Teacher      string `json:"teacher"`
}

// RoomRequest is one room available for scheduling.
type RoomRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=classroom lab"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
}

// GenerateTimetableRequest is the sole external operation's request payload
// (spec.md §6): a week shape, the subjects competing for it, the rooms
// available, and the batches each practical subject must be split across.
type GenerateTimetableRequest struct {
	WeekConfig WeekConfigRequest `json:"week_config" validate:"required"`
	Subjects   []SubjectRequest  `json:"subjects" validate:"dive"`
	Rooms      []RoomRequest     `json:"rooms" validate:"dive"`
	Batches    []string          `json:"batches"`
}

// AssignmentResponse is one scheduled slot in the returned timetable.
type AssignmentResponse struct {
	Subject   string `json:"subject"`
	Batch     string `json:"batch"`
	Room      string `json:"room"`
	Day       string `json:"day"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Duration  int    `json:"duration"`
	Type      string `json:"type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TimetableStats summarizes a generated timetable.
type TimetableStats struct {
	TotalSlots        int `json:"total_slots"`
	SubjectsScheduled int `json:"subjects_scheduled"`
	BatchesScheduled  int `json:"batches_scheduled"`
}

// GenerateTimetableResponse is the sole external operation's response
// envelope. Reason is populated only for non-success statuses and Timetable
// is always present (empty rather than null when there is nothing to show).
type GenerateTimetableResponse struct {
	RunID     string                `json:"run_id,omitempty"`
	Status    string                `json:"status"`
	Reason    string                `json:"reason,omitempty"`
	Timetable []AssignmentResponse  `json:"timetable"`
	Stats     *TimetableStats       `json:"stats,omitempty"`
}

// SolveRunQuery filters the solve-run history list.
type SolveRunQuery struct {
	Status   string `form:"status" json:"status"`
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"page_size"`
}

// SolveRunSummary is a lightweight entry in the solve-run history list.
type SolveRunSummary struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
