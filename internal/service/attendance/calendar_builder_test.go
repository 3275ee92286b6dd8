package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayCells(cells []attendance.CalendarCell) []attendance.CalendarCell {
	var out []attendance.CalendarCell
	for _, c := range cells {
		if !c.Placeholder {
			out = append(out, c)
		}
	}
	return out
}

func TestBuildMonth_February2024(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, wib)
	cells := BuildMonth(2024, time.February, nil, now, time.Monday, wib)

	require.Len(t, cells, 35)
	for i := 0; i < 3; i++ {
		assert.True(t, cells[i].Placeholder, "cell %d", i)
	}
	assert.False(t, cells[3].Placeholder)
	assert.Equal(t, 1, cells[3].Day)
	assert.Equal(t, "2024-02-01", cells[3].Date)

	days := dayCells(cells)
	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-29", days[28].Date)
}

func TestBuildMonth_SundayStart(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, wib)
	cells := BuildMonth(2024, time.February, nil, now, time.Sunday, wib)

	// 1 Feb 2024 is a Thursday.
	assert.False(t, cells[4].Placeholder)
	assert.True(t, cells[3].Placeholder)
	assert.Zero(t, len(cells)%7)
}

func TestBuildMonth_AlwaysWholeWeeks(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, wib)
	for m := time.January; m <= time.December; m++ {
		for _, start := range []time.Weekday{time.Sunday, time.Monday, time.Saturday} {
			cells := BuildMonth(2025, m, nil, now, start, wib)
			assert.Zero(t, len(cells)%7, "%s start %s", m, start)
			assert.Len(t, dayCells(cells), time.Date(2025, m+1, 0, 0, 0, 0, 0, wib).Day())
		}
	}
}

func TestBuildMonth_StatusesAndFuture(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, wib)
	records := []attendance.AttendanceRecord{
		{AttendanceDate: "2024-03-01", CheckInTime: "09:00 AM", CheckOutTime: "06:00 PM"},
		{AttendanceDate: "04-03-2024", Status: "Leave"},
		{AttendanceDate: "2024-03-05T00:00:00.000Z", Status: "Absent"},
		{AttendanceDate: "2024/03/15", CheckInTime: "09:00 AM"},
		{AttendanceDate: "2024-03-20", Status: "Present"},
		{AttendanceDate: "garbage", Status: "Present"},
	}

	cells := BuildMonth(2024, time.March, records, now, time.Monday, wib)
	byDate := map[string]attendance.CalendarCell{}
	for _, c := range dayCells(cells) {
		byDate[c.Date] = c
	}

	require.NotNil(t, byDate["2024-03-01"].Status)
	assert.Equal(t, attendance.StatusPresent, *byDate["2024-03-01"].Status)
	require.NotNil(t, byDate["2024-03-04"].Status)
	assert.Equal(t, attendance.StatusLeave, *byDate["2024-03-04"].Status)
	require.NotNil(t, byDate["2024-03-05"].Status)
	assert.Equal(t, attendance.StatusAbsent, *byDate["2024-03-05"].Status)
	require.NotNil(t, byDate["2024-03-15"].Status)
	assert.Equal(t, attendance.StatusPartial, *byDate["2024-03-15"].Status)
	assert.False(t, byDate["2024-03-15"].IsFuture)

	assert.Nil(t, byDate["2024-03-02"].Status)

	future := byDate["2024-03-20"]
	assert.True(t, future.IsFuture)
	assert.Nil(t, future.Status)
}

func TestMonthNavigator_Window(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, wib) }
	nav := NewMonthNavigator(now, wib)

	back, ahead := nav.Window()
	assert.True(t, back)
	assert.False(t, ahead)

	assert.False(t, nav.Shift(1))

	for i := 0; i < MaxMonthsBack; i++ {
		assert.True(t, nav.Shift(-1))
	}
	assert.False(t, nav.Shift(-1))

	year, month, offset := nav.Current()
	assert.Equal(t, 2023, year)
	assert.Equal(t, time.October, month)
	assert.Equal(t, -MaxMonthsBack, offset)

	back, ahead = nav.Window()
	assert.False(t, back)
	assert.True(t, ahead)
}

func TestMonthNavigator_Select(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 31, 23, 0, 0, 0, wib) }
	nav := NewMonthNavigator(now, wib)

	assert.True(t, nav.Select(2023, time.November))
	year, month, offset := nav.Current()
	assert.Equal(t, 2023, year)
	assert.Equal(t, time.November, month)
	assert.Equal(t, -2, offset)

	assert.False(t, nav.Select(2024, time.February))
	assert.False(t, nav.Select(2023, time.July))
	_, _, offset = nav.Current()
	assert.Equal(t, -2, offset)
}
