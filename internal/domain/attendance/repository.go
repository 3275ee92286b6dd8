package attendance

import (
	"context"
)

// SlotRepository is the durable key-value slot underneath the state store.
// Get reports found=false when the key was never written.
type SlotRepository interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RemoteAPI is the HRIS backend the agent submits to and reads history from.
type RemoteAPI interface {
	// Submit records a Present/Absent/Leave/WeekOff mark for the employee.
	Submit(ctx context.Context, payload SubmissionPayload) error

	// FetchHistory returns the employee's records for a date range.
	FetchHistory(ctx context.Context, filter HistoryFilter) ([]AttendanceRecord, error)

	// FetchTeam returns the flat team list for one day.
	FetchTeam(ctx context.Context, branchID string, date string) ([]EmployeeAttendance, error)
}
