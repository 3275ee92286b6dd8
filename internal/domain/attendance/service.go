package attendance

import (
	"context"

	"github.com/cmlabs-hris/field-attendance/internal/pkg/sse"
)

// AttendanceService drives the per-session attendance state.
type AttendanceService interface {
	// Location
	UpdateLocation(ctx context.Context, req LocationUpdateRequest) (LocationResponse, error)

	// Transitions
	CheckIn(ctx context.Context) (TodayResponse, error)
	CheckOut(ctx context.Context) (TodayResponse, error)
	Submit(ctx context.Context, req SubmitAttendanceRequest) (TodayResponse, error)
	Reset(ctx context.Context) (TodayResponse, error)

	// Read views
	Today(ctx context.Context) (TodayResponse, error)
	Calendar(ctx context.Context) (CalendarResponse, error)
	ShiftCalendar(ctx context.Context, delta int) (CalendarResponse, error)
	SelectCalendarMonth(ctx context.Context, month string) (CalendarResponse, error)
	TeamHistory(ctx context.Context, date string) (TeamHistoryResponse, error)
	Dashboard(ctx context.Context) (DashboardResponse, error)

	// RolloverTick resets the record when the day has changed.
	RolloverTick(ctx context.Context) (bool, error)

	// Subscribe streams state change events for the session.
	Subscribe(ctx context.Context) (chan sse.Event, func())
}

// SSE event names
const (
	EventUpdated = "attendance.updated"
	EventReset   = "attendance.reset"
)
