package attendance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the canonical attendance label for a day.
type Status int

const (
	StatusNone Status = iota
	StatusPresent
	StatusAbsent
	StatusPartial
	StatusLeave
	StatusWeekOff
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "None"
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusPartial:
		return "Partial"
	case StatusLeave:
		return "Leave"
	case StatusWeekOff:
		return "WeekOff"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// IsTerminal reports whether no further transition is expected for the day.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPresent, StatusLeave, StatusWeekOff:
		return true
	case StatusNone, StatusAbsent, StatusPartial:
		return false
	}
	return false
}

// IsLocked reports whether geofence-driven transitions must leave the status alone.
func (s Status) IsLocked() bool {
	return s == StatusLeave || s == StatusWeekOff
}

// ParseStatus accepts the canonical names and the aliases the HRIS backend sends.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return StatusNone, nil
	case "present":
		return StatusPresent, nil
	case "absent":
		return StatusAbsent, nil
	case "partial":
		return StatusPartial, nil
	case "leave":
		return StatusLeave, nil
	case "weekoff", "week_off", "week-off":
		return StatusWeekOff, nil
	}
	return StatusNone, fmt.Errorf("%w: %q", ErrUnsupportedStatus, raw)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// GeoPoint is a single reading from the location collaborator.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
}

// AttendanceToday is the persisted record for the current calendar day.
type AttendanceToday struct {
	CheckInDone    bool       `json:"check_in_done"`
	CheckInTime    *string    `json:"check_in_time"`
	CheckOutDone   bool       `json:"check_out_done"`
	CheckOutTime   *string    `json:"check_out_time"`
	AttendanceDate *time.Time `json:"attendance_date"`
	Status         Status     `json:"status"`
}

// DefaultAttendanceToday returns the "None" record used at first start and after a rollover.
func DefaultAttendanceToday() AttendanceToday {
	return AttendanceToday{Status: StatusNone}
}

// Clone returns a deep copy so callers never share the store's pointers.
func (a AttendanceToday) Clone() AttendanceToday {
	out := a
	if a.CheckInTime != nil {
		v := *a.CheckInTime
		out.CheckInTime = &v
	}
	if a.CheckOutTime != nil {
		v := *a.CheckOutTime
		out.CheckOutTime = &v
	}
	if a.AttendanceDate != nil {
		v := *a.AttendanceDate
		out.AttendanceDate = &v
	}
	return out
}

// AttendanceRecord is a historical day as returned by the history API.
type AttendanceRecord struct {
	AttendanceDate string `json:"attendance_date"`
	CheckInTime    string `json:"check_in_time"`
	CheckOutTime   string `json:"check_out_time"`
	Status         string `json:"status"`
}

// EmployeeAttendance is one row of the team attendance list.
type EmployeeAttendance struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	BranchName   string `json:"branch_name"`
	Designation  string `json:"designation,omitempty"`
	AttendanceRecord
}

// BranchGroup is a display group of employees sharing a branch.
type BranchGroup struct {
	BranchName string               `json:"branch_name"`
	Members    []EmployeeAttendance `json:"members"`
}

// CalendarCell is either a placeholder or a day of the month.
type CalendarCell struct {
	Placeholder bool    `json:"placeholder"`
	Date        string  `json:"date,omitempty"`
	Day         int     `json:"day,omitempty"`
	Status      *Status `json:"status,omitempty"`
	IsFuture    bool    `json:"is_future,omitempty"`
}

// WorkLocation is a branch geofence center.
type WorkLocation struct {
	BranchID     string   `json:"branch_id" yaml:"branch_id"`
	Name         string   `json:"name" yaml:"name"`
	Center       GeoPoint `json:"center" yaml:"center"`
	RadiusMeters float64  `json:"radius_meters" yaml:"radius_meters"`
}
