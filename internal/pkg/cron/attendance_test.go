package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/repository/memory"
	service "github.com/cmlabs-hris/field-attendance/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopRemote struct{}

func (noopRemote) Submit(ctx context.Context, p attendance.SubmissionPayload) error { return nil }

func (noopRemote) FetchHistory(ctx context.Context, f attendance.HistoryFilter) ([]attendance.AttendanceRecord, error) {
	return nil, nil
}

func (noopRemote) FetchTeam(ctx context.Context, branchID, date string) ([]attendance.EmployeeAttendance, error) {
	return nil, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestAttendanceJobs_DayRollover(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 3, 14, 17, 30, 0, 0, time.UTC)}

	store := service.NewStateStore(memory.NewSlotRepository(), "cron-test",
		service.WithClock(clk.Now), service.WithLocation(time.UTC))
	require.NoError(t, store.Load(ctx))

	svc := service.NewAttendanceService(store, noopRemote{}, nil, service.Options{EmployeeID: "emp-1"})
	_, err := svc.Submit(ctx, attendance.SubmitAttendanceRequest{Status: "WeekOff"})
	require.NoError(t, err)

	scheduler := NewScheduler()
	NewAttendanceJobs(svc, time.Minute).RegisterJobs(scheduler)

	require.NoError(t, scheduler.RunOnce(ctx))
	assert.Equal(t, attendance.StatusWeekOff, store.Today().Status)

	clk.Set(time.Date(2024, 3, 15, 0, 1, 0, 0, time.UTC))
	require.NoError(t, scheduler.RunOnce(ctx))
	assert.Equal(t, attendance.DefaultAttendanceToday(), store.Today())
}
