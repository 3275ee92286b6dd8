package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = time.Minute
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("attendance_day_rollover", j.interval, j.DayRollover)
}

// DayRollover clears yesterday's record even when no request arrives after midnight.
func (j *AttendanceJobs) DayRollover(ctx context.Context) error {
	reset, err := j.attendanceService.RolloverTick(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll attendance over: %w", err)
	}
	if reset {
		slog.Info("Cron: Attendance record reset for the new day")
	}
	return nil
}
