package attendance

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/utils"
)

// MaxMonthsBack is how far the calendar may page into the past.
const MaxMonthsBack = 5

// BuildMonth lays a month out as a 7-column grid starting on weekStart.
// Records are matched by normalized date; days after now are marked future and carry no status.
func BuildMonth(year int, month time.Month, records []attendance.AttendanceRecord, now time.Time, weekStart time.Weekday, loc *time.Location) []attendance.CalendarCell {
	if loc == nil {
		loc = time.Local
	}

	byDate := make(map[string]attendance.AttendanceRecord, len(records))
	for _, rec := range records {
		key, ok := utils.NormalizeDate(rec.AttendanceDate, loc)
		if !ok {
			continue
		}
		byDate[key] = rec
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	leading := (int(first.Weekday()) - int(weekStart) + 7) % 7
	days := utils.DaysIn(year, month)

	ny, nm, nd := now.In(loc).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)

	total := leading + days
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}
	cells := make([]attendance.CalendarCell, 0, total)

	for i := 0; i < leading; i++ {
		cells = append(cells, attendance.CalendarCell{Placeholder: true})
	}

	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		key := date.Format(utils.DateLayout)
		cell := attendance.CalendarCell{
			Date:     key,
			Day:      day,
			IsFuture: date.After(today),
		}
		if rec, ok := byDate[key]; ok && !cell.IsFuture {
			cell.Status = statusPtr(RecordStatus(rec))
		}
		cells = append(cells, cell)
	}

	for len(cells) < total {
		cells = append(cells, attendance.CalendarCell{Placeholder: true})
	}

	return cells
}

// MonthNavigator tracks which month the calendar shows, relative to the current month.
// Offsets outside [-MaxMonthsBack, 0] are ignored.
type MonthNavigator struct {
	mu     sync.Mutex
	offset int
	now    func() time.Time
	loc    *time.Location
}

func NewMonthNavigator(now func() time.Time, loc *time.Location) *MonthNavigator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &MonthNavigator{now: now, loc: loc}
}

// Shift moves the view by delta months and reports whether it moved.
func (n *MonthNavigator) Shift(delta int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := n.offset + delta
	if delta == 0 || !inWindow(next) {
		return false
	}
	n.offset = next
	return true
}

// Select jumps to year/month if it lies inside the window.
func (n *MonthNavigator) Select(year int, month time.Month) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	cy, cm, _ := n.now().In(n.loc).Date()
	next := (year-cy)*12 + int(month) - int(cm)
	if !inWindow(next) {
		return false
	}
	n.offset = next
	return true
}

// Current returns the displayed year, month and offset.
func (n *MonthNavigator) Current() (int, time.Month, int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	cy, cm, _ := n.now().In(n.loc).Date()
	shown := time.Date(cy, cm, 1, 0, 0, 0, 0, n.loc).AddDate(0, n.offset, 0)
	return shown.Year(), shown.Month(), n.offset
}

// Window reports whether the view can move back or ahead.
func (n *MonthNavigator) Window() (canGoBack, canGoAhead bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.offset > -MaxMonthsBack, n.offset < 0
}

func inWindow(offset int) bool {
	return offset >= -MaxMonthsBack && offset <= 0
}
