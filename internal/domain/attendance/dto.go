package attendance

import (
	"github.com/cmlabs-hris/field-attendance/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type LocationUpdateRequest struct {
	GeoPoint
}

func (r *LocationUpdateRequest) Validate() error {
	return validator.Struct(r)
}

type LocationResponse struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Inside         bool     `json:"inside"`
	Configured     bool     `json:"configured"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	RadiusMeters   float64  `json:"radius_meters"`
	BranchName     string   `json:"branch_name,omitempty"`
}

// SubmitAttendanceRequest is the Mark Attendance form.
type SubmitAttendanceRequest struct {
	Status    string   `json:"status" validate:"required,oneof=Present Absent Leave WeekOff"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Reason    string   `json:"reason,omitempty" validate:"max=500"`
}

func (r *SubmitAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := validator.Struct(r); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, fieldErrs...)
	}

	if r.Status == StatusLeave.String() && validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required for leave",
		})
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SubmissionPayload is what the remote submission API receives.
type SubmissionPayload struct {
	EmployeeID     string  `json:"employee_id"`
	Status         Status  `json:"status"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Reason         string  `json:"reason,omitempty"`
	IdempotencyKey string  `json:"-"`
}

type TodayResponse struct {
	Record        AttendanceToday `json:"record"`
	DerivedStatus *Status         `json:"derived_status"`
	Reset         bool            `json:"reset"`
}

type CalendarResponse struct {
	Month       string         `json:"month"`
	Offset      int            `json:"offset"`
	CanGoBack   bool           `json:"can_go_back"`
	CanGoAhead  bool           `json:"can_go_ahead"`
	WeekStart   string         `json:"week_start"`
	Cells       []CalendarCell `json:"cells"`
	PresentDays int            `json:"present_days"`
	AbsentDays  int            `json:"absent_days"`
	LeaveDays   int            `json:"leave_days"`
}

type TeamHistoryResponse struct {
	Date   string        `json:"date"`
	Total  int           `json:"total"`
	Groups []BranchGroup `json:"groups"`
}

type DashboardResponse struct {
	Today    TodayResponse       `json:"today"`
	Calendar CalendarResponse    `json:"calendar"`
	Team     TeamHistoryResponse `json:"team"`
}

// HistoryFilter selects the records the history API returns.
type HistoryFilter struct {
	EmployeeID string
	BranchID   string
	StartDate  string
	EndDate    string
}
