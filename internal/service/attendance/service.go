package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/metrics"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/sse"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/utils"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options carries the per-session settings of the service.
type Options struct {
	EmployeeID   string
	BranchID     string
	WorkLocation *attendance.WorkLocation
	// RadiusMeters applies when the work location has no radius of its own.
	RadiusMeters float64
	WeekStart    time.Weekday
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

type AttendanceServiceImpl struct {
	store     *StateStore
	remote    attendance.RemoteAPI
	hub       *sse.Hub
	navigator *MonthNavigator
	opts      Options

	mu       sync.RWMutex
	location *attendance.GeoPoint
}

func NewAttendanceService(store *StateStore, remote attendance.RemoteAPI, hub *sse.Hub, opts Options) attendance.AttendanceService {
	if hub == nil {
		hub = sse.NewHub(0)
	}
	return &AttendanceServiceImpl{
		store:     store,
		remote:    remote,
		hub:       hub,
		navigator: NewMonthNavigator(store.Now, store.Location()),
		opts:      opts,
	}
}

// center returns the configured geofence center, or nil when none is set.
func (s *AttendanceServiceImpl) center() *attendance.GeoPoint {
	if s.opts.WorkLocation == nil {
		return nil
	}
	c := s.opts.WorkLocation.Center
	return &c
}

func (s *AttendanceServiceImpl) radius() float64 {
	if s.opts.WorkLocation != nil && s.opts.WorkLocation.RadiusMeters > 0 {
		return s.opts.WorkLocation.RadiusMeters
	}
	if s.opts.RadiusMeters > 0 {
		return s.opts.RadiusMeters
	}
	return utils.DefaultGeofenceRadiusMeters
}

func (s *AttendanceServiceImpl) latestLocation() *attendance.GeoPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return nil
	}
	p := *s.location
	return &p
}

// insideFence evaluates the latest reading. No reading counts as outside.
func (s *AttendanceServiceImpl) insideFence() bool {
	p := s.latestLocation()
	if p == nil {
		return false
	}
	return utils.IsInside(*p, s.center(), s.radius())
}

// rollover must run before any transition in the same call.
func (s *AttendanceServiceImpl) rollover(ctx context.Context) (bool, error) {
	reset, err := s.store.CheckAndResetIfNewDay(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check day rollover: %w", err)
	}
	if reset {
		s.opts.Metrics.Rollover()
		s.publish(attendance.EventReset, s.todayResponse(true))
	}
	return reset, nil
}

func (s *AttendanceServiceImpl) todayResponse(reset bool) attendance.TodayResponse {
	rec := s.store.Today()
	return attendance.TodayResponse{
		Record:        rec,
		DerivedStatus: DeriveStatus(&rec),
		Reset:         reset,
	}
}

func (s *AttendanceServiceImpl) publish(event string, data interface{}) {
	s.hub.Publish(s.opts.EmployeeID, sse.Event{Event: event, Data: data})
}

// UpdateLocation implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateLocation(ctx context.Context, req attendance.LocationUpdateRequest) (attendance.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.LocationResponse{}, err
	}

	point := req.GeoPoint
	s.mu.Lock()
	s.location = &point
	s.mu.Unlock()

	resp := attendance.LocationResponse{
		Latitude:     point.Latitude,
		Longitude:    point.Longitude,
		RadiusMeters: s.radius(),
	}

	center := s.center()
	if center == nil {
		slog.Debug("Geofence center not configured, treating location as outside")
		s.opts.Metrics.LocationReading(false, false)
		return resp, nil
	}

	distance := utils.EquirectangularDistance(point, *center)
	resp.Configured = true
	resp.DistanceMeters = &distance
	resp.Inside = utils.IsInside(point, center, resp.RadiusMeters)
	resp.BranchName = s.opts.WorkLocation.Name
	s.opts.Metrics.LocationReading(true, resp.Inside)
	return resp, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context) (attendance.TodayResponse, error) {
	resp, err := s.checkIn(ctx)
	s.opts.Metrics.Transition("check_in", err)
	return resp, err
}

func (s *AttendanceServiceImpl) checkIn(ctx context.Context) (attendance.TodayResponse, error) {
	reset, err := s.rollover(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	// A repeat check-in returns the record as it stands, wherever the device is.
	if s.store.Today().CheckInDone {
		return s.todayResponse(reset), nil
	}

	if !s.insideFence() {
		return attendance.TodayResponse{}, attendance.ErrOutsideGeofence
	}

	if _, err := s.store.MarkCheckIn(ctx); err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := s.todayResponse(reset)
	slog.Info("Attendance check-in", "employee_id", s.opts.EmployeeID, "time", deref(resp.Record.CheckInTime))
	s.publish(attendance.EventUpdated, resp)
	return resp, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context) (attendance.TodayResponse, error) {
	resp, err := s.checkOut(ctx)
	s.opts.Metrics.Transition("check_out", err)
	return resp, err
}

func (s *AttendanceServiceImpl) checkOut(ctx context.Context) (attendance.TodayResponse, error) {
	reset, err := s.rollover(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	current := s.store.Today()
	if current.CheckInDone && current.Status.IsLocked() {
		return attendance.TodayResponse{}, attendance.ErrStatusLocked
	}

	// The first check-out may happen anywhere; an override re-stamp needs the fence.
	if current.CheckOutDone && !s.insideFence() {
		return attendance.TodayResponse{}, attendance.ErrCheckOutOverrideOutside
	}

	if _, err := s.store.MarkCheckOut(ctx); err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := s.todayResponse(reset)
	slog.Info("Attendance check-out", "employee_id", s.opts.EmployeeID, "time", deref(resp.Record.CheckOutTime))
	s.publish(attendance.EventUpdated, resp)
	return resp, nil
}

// Submit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Submit(ctx context.Context, req attendance.SubmitAttendanceRequest) (attendance.TodayResponse, error) {
	resp, err := s.submit(ctx, req)
	s.opts.Metrics.Transition("submit", err)
	return resp, err
}

func (s *AttendanceServiceImpl) submit(ctx context.Context, req attendance.SubmitAttendanceRequest) (attendance.TodayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TodayResponse{}, err
	}

	status, err := attendance.ParseStatus(req.Status)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	reset, err := s.rollover(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	current := s.store.Today()
	switch status {
	case attendance.StatusPresent:
		if current.Status.IsLocked() {
			return attendance.TodayResponse{}, attendance.ErrStatusLocked
		}
		if !s.insideFence() {
			return attendance.TodayResponse{}, attendance.ErrOutsideGeofence
		}
	case attendance.StatusAbsent:
		if current.Status.IsLocked() {
			return attendance.TodayResponse{}, attendance.ErrStatusLocked
		}
		if current.CheckInDone {
			return attendance.TodayResponse{}, attendance.ErrAlreadyCheckedIn
		}
	}

	payload := attendance.SubmissionPayload{
		EmployeeID:     s.opts.EmployeeID,
		Status:         status,
		Reason:         req.Reason,
		IdempotencyKey: uuid.NewString(),
	}
	switch latest := s.latestLocation(); {
	case req.Latitude != nil && req.Longitude != nil:
		payload.Latitude, payload.Longitude = *req.Latitude, *req.Longitude
	case latest != nil:
		payload.Latitude, payload.Longitude = latest.Latitude, latest.Longitude
	case status == attendance.StatusAbsent:
		return attendance.TodayResponse{}, attendance.ErrLocationUnavailable
	}

	// Remote errors go back unchanged and local state stays as it was.
	if err := s.remote.Submit(ctx, payload); err != nil {
		slog.Error("Attendance submission failed",
			"employee_id", s.opts.EmployeeID,
			"status", status.String(),
			"idempotency_key", payload.IdempotencyKey,
			"error", err)
		return attendance.TodayResponse{}, err
	}

	if err := s.applySubmission(ctx, status); err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := s.todayResponse(reset)
	slog.Info("Attendance submitted", "employee_id", s.opts.EmployeeID, "status", status.String())
	s.publish(attendance.EventUpdated, resp)
	return resp, nil
}

// applySubmission mirrors an accepted submission locally so the record's flags and status stay consistent.
func (s *AttendanceServiceImpl) applySubmission(ctx context.Context, status attendance.Status) error {
	switch status {
	case attendance.StatusPresent:
		_, err := s.store.MarkPresent(ctx)
		return err
	case attendance.StatusLeave, attendance.StatusWeekOff:
		_, err := s.store.SetStatus(ctx, status)
		return err
	case attendance.StatusAbsent:
		// An untouched record already derives to Absent.
		return nil
	default:
		return attendance.ErrUnsupportedStatus
	}
}

// Reset implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Reset(ctx context.Context) (attendance.TodayResponse, error) {
	if _, err := s.store.Reset(ctx); err != nil {
		return attendance.TodayResponse{}, err
	}
	resp := s.todayResponse(true)
	slog.Warn("Attendance record reset by request", "employee_id", s.opts.EmployeeID)
	s.publish(attendance.EventReset, resp)
	return resp, nil
}

// Today implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Today(ctx context.Context) (attendance.TodayResponse, error) {
	reset, err := s.rollover(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	return s.todayResponse(reset), nil
}

// Calendar implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Calendar(ctx context.Context) (attendance.CalendarResponse, error) {
	year, month, offset := s.navigator.Current()

	first := time.Date(year, month, 1, 0, 0, 0, 0, s.store.Location())
	last := first.AddDate(0, 1, -1)

	records, err := s.remote.FetchHistory(ctx, attendance.HistoryFilter{
		EmployeeID: s.opts.EmployeeID,
		StartDate:  first.Format(utils.DateLayout),
		EndDate:    last.Format(utils.DateLayout),
	})
	if err != nil {
		return attendance.CalendarResponse{}, err
	}

	cells := BuildMonth(year, month, records, s.store.Now(), s.opts.WeekStart, s.store.Location())
	canGoBack, canGoAhead := s.navigator.Window()

	resp := attendance.CalendarResponse{
		Month:      first.Format(utils.MonthLayout),
		Offset:     offset,
		CanGoBack:  canGoBack,
		CanGoAhead: canGoAhead,
		WeekStart:  s.opts.WeekStart.String(),
		Cells:      cells,
	}
	for _, cell := range cells {
		if cell.Status == nil {
			continue
		}
		switch *cell.Status {
		case attendance.StatusPresent:
			resp.PresentDays++
		case attendance.StatusAbsent:
			resp.AbsentDays++
		case attendance.StatusLeave:
			resp.LeaveDays++
		case attendance.StatusNone, attendance.StatusPartial, attendance.StatusWeekOff:
		}
	}
	return resp, nil
}

// ShiftCalendar implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ShiftCalendar(ctx context.Context, delta int) (attendance.CalendarResponse, error) {
	if !s.navigator.Shift(delta) {
		slog.Debug("Calendar navigation outside window ignored", "delta", delta)
	}
	return s.Calendar(ctx)
}

// SelectCalendarMonth implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SelectCalendarMonth(ctx context.Context, month string) (attendance.CalendarResponse, error) {
	m, ok := validator.IsValidMonth(month)
	if !ok {
		return attendance.CalendarResponse{}, attendance.ErrInvalidMonth
	}
	if !s.navigator.Select(m.Year(), m.Month()) {
		slog.Debug("Calendar month outside window ignored", "month", month)
	}
	return s.Calendar(ctx)
}

// TeamHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) TeamHistory(ctx context.Context, date string) (attendance.TeamHistoryResponse, error) {
	if date == "" {
		date = s.store.Now().Format(utils.DateLayout)
	} else if _, ok := validator.IsValidDate(date); !ok {
		return attendance.TeamHistoryResponse{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	list, err := s.remote.FetchTeam(ctx, s.opts.BranchID, date)
	if err != nil {
		return attendance.TeamHistoryResponse{}, err
	}

	return attendance.TeamHistoryResponse{
		Date:   date,
		Total:  len(list),
		Groups: GroupByBranch(list),
	}, nil
}

// Dashboard implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Dashboard(ctx context.Context) (attendance.DashboardResponse, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	var (
		calendar attendance.CalendarResponse
		team     attendance.TeamHistoryResponse
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		calendar, err = s.Calendar(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		team, err = s.TeamHistory(gCtx, "")
		return err
	})

	if err := g.Wait(); err != nil {
		return attendance.DashboardResponse{}, err
	}

	return attendance.DashboardResponse{
		Today:    today,
		Calendar: calendar,
		Team:     team,
	}, nil
}

// RolloverTick implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RolloverTick(ctx context.Context) (bool, error) {
	return s.rollover(ctx)
}

// Subscribe implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Subscribe(ctx context.Context) (chan sse.Event, func()) {
	return s.hub.Subscribe(s.opts.EmployeeID)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
