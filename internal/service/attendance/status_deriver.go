package attendance

import (
	"strings"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
)

// DeriveStatus maps a record to its display status.
// Done-flags win over the stored status, so a Leave record with a check-in reads as Partial.
func DeriveStatus(rec *attendance.AttendanceToday) *attendance.Status {
	if rec == nil {
		return nil
	}
	return statusPtr(derive(rec.CheckInDone, rec.CheckOutDone, rec.Status))
}

func derive(checkedIn, checkedOut bool, stored attendance.Status) attendance.Status {
	switch {
	case checkedIn && checkedOut:
		return attendance.StatusPresent
	case checkedIn != checkedOut:
		return attendance.StatusPartial
	}

	switch stored {
	case attendance.StatusLeave:
		return attendance.StatusLeave
	case attendance.StatusWeekOff:
		return attendance.StatusWeekOff
	case attendance.StatusNone, attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusPartial:
		return attendance.StatusAbsent
	}
	return attendance.StatusAbsent
}

// RecordStatus derives the status of a historical record.
// Time strings stand in for the done-flags. An explicit Present or Absent from the backend is kept.
func RecordStatus(rec attendance.AttendanceRecord) attendance.Status {
	stored, err := attendance.ParseStatus(rec.Status)
	if err != nil {
		stored = attendance.StatusNone
	}

	switch stored {
	case attendance.StatusPresent, attendance.StatusAbsent:
		return stored
	case attendance.StatusNone, attendance.StatusPartial, attendance.StatusLeave, attendance.StatusWeekOff:
	}

	return derive(strings.TrimSpace(rec.CheckInTime) != "", strings.TrimSpace(rec.CheckOutTime) != "", stored)
}

func statusPtr(s attendance.Status) *attendance.Status {
	return &s
}
