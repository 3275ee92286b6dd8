package attendance

import (
	"testing"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	clock := "09:00 AM"

	tests := []struct {
		name string
		rec  attendance.AttendanceToday
		want attendance.Status
	}{
		{"both done", attendance.AttendanceToday{CheckInDone: true, CheckOutDone: true, CheckInTime: &clock, CheckOutTime: &clock}, attendance.StatusPresent},
		{"check-in only", attendance.AttendanceToday{CheckInDone: true, CheckInTime: &clock}, attendance.StatusPartial},
		{"check-out only", attendance.AttendanceToday{CheckOutDone: true, CheckOutTime: &clock}, attendance.StatusPartial},
		{"leave", attendance.AttendanceToday{Status: attendance.StatusLeave}, attendance.StatusLeave},
		{"week off", attendance.AttendanceToday{Status: attendance.StatusWeekOff}, attendance.StatusWeekOff},
		{"nothing", attendance.DefaultAttendanceToday(), attendance.StatusAbsent},
		{"stored present without flags", attendance.AttendanceToday{Status: attendance.StatusPresent}, attendance.StatusAbsent},
		{"leave with check-in", attendance.AttendanceToday{CheckInDone: true, CheckInTime: &clock, Status: attendance.StatusLeave}, attendance.StatusPartial},
		{"week off with both", attendance.AttendanceToday{CheckInDone: true, CheckOutDone: true, Status: attendance.StatusWeekOff}, attendance.StatusPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			got := DeriveStatus(&rec)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestDeriveStatus_Nil(t *testing.T) {
	assert.Nil(t, DeriveStatus(nil))
}

func TestRecordStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  attendance.AttendanceRecord
		want attendance.Status
	}{
		{"times present", attendance.AttendanceRecord{CheckInTime: "09:00 AM", CheckOutTime: "06:00 PM"}, attendance.StatusPresent},
		{"check-in only", attendance.AttendanceRecord{CheckInTime: "09:00 AM"}, attendance.StatusPartial},
		{"explicit absent wins", attendance.AttendanceRecord{CheckInTime: "09:00 AM", Status: "Absent"}, attendance.StatusAbsent},
		{"explicit present wins", attendance.AttendanceRecord{Status: "present"}, attendance.StatusPresent},
		{"leave", attendance.AttendanceRecord{Status: "Leave"}, attendance.StatusLeave},
		{"week off alias", attendance.AttendanceRecord{Status: "week_off"}, attendance.StatusWeekOff},
		{"blank times", attendance.AttendanceRecord{CheckInTime: "  ", CheckOutTime: ""}, attendance.StatusAbsent},
		{"unknown status", attendance.AttendanceRecord{Status: "holiday"}, attendance.StatusAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecordStatus(tt.rec))
		})
	}
}
