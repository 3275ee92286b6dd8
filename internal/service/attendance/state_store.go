package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/utils"
)

const (
	DefaultSlotKey   = "attendance_today"
	currentStatusKey = "current_status"
)

// StateStore owns the single AttendanceToday value and writes it through to the slot on every mutation.
type StateStore struct {
	mu    sync.Mutex
	slot  attendance.SlotRepository
	key   string
	loc   *time.Location
	now   func() time.Time
	today attendance.AttendanceToday
}

// StoreOption configures a StateStore.
type StoreOption func(*StateStore)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *StateStore) { s.now = now }
}

// WithLocation sets the zone used for day boundaries and clock stamps.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *StateStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewStateStore builds a store over slot. key namespaces the persisted record.
func NewStateStore(slot attendance.SlotRepository, key string, opts ...StoreOption) *StateStore {
	if key == "" {
		key = DefaultSlotKey
	}
	s := &StateStore{
		slot:  slot,
		key:   key,
		loc:   time.Local,
		now:   time.Now,
		today: attendance.DefaultAttendanceToday(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted record. A missing slot is initialized with the defaults.
func (s *StateStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to read attendance slot: %w", err)
	}

	if !found {
		slog.Info("Attendance slot empty, initializing defaults", "key", s.key)
		return s.commit(ctx, attendance.DefaultAttendanceToday())
	}

	var today attendance.AttendanceToday
	if err := json.Unmarshal(raw, &today); err != nil {
		slog.Warn("Attendance slot unreadable, resetting to defaults", "key", s.key, "error", err)
		return s.commit(ctx, attendance.DefaultAttendanceToday())
	}

	s.today = today
	return nil
}

// Today returns a copy of the current record.
func (s *StateStore) Today() attendance.AttendanceToday {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.today.Clone()
}

// Location is the zone the store stamps times in.
func (s *StateStore) Location() *time.Location {
	return s.loc
}

// Now is the store's current instant in its zone.
func (s *StateStore) Now() time.Time {
	return s.now().In(s.loc)
}

// MarkCheckIn stamps the check-in. Calling it again after a check-in changes nothing.
func (s *StateStore) MarkCheckIn(ctx context.Context) (attendance.AttendanceToday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.today.CheckInDone {
		return s.today.Clone(), nil
	}
	if s.today.Status.IsLocked() {
		return s.today.Clone(), attendance.ErrStatusLocked
	}

	now := s.Now()
	stamp := utils.FormatClock(now, s.loc)

	next := s.today.Clone()
	next.CheckInDone = true
	next.CheckInTime = &stamp
	next.AttendanceDate = &now
	next.Status = attendance.StatusPartial

	if err := s.commit(ctx, next); err != nil {
		return s.today.Clone(), err
	}
	return s.today.Clone(), nil
}

// MarkCheckOut stamps the check-out. When already checked out it re-stamps the time.
// Leave and WeekOff records are not touched.
func (s *StateStore) MarkCheckOut(ctx context.Context) (attendance.AttendanceToday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.today.CheckInDone {
		return s.today.Clone(), attendance.ErrNotCheckedIn
	}
	if s.today.Status.IsLocked() {
		return s.today.Clone(), attendance.ErrStatusLocked
	}

	now := s.Now()
	stamp := utils.FormatClock(now, s.loc)

	next := s.today.Clone()
	next.CheckOutDone = true
	next.CheckOutTime = &stamp
	next.AttendanceDate = &now
	next.Status = attendance.StatusPresent

	if err := s.commit(ctx, next); err != nil {
		return s.today.Clone(), err
	}
	return s.today.Clone(), nil
}

// MarkPresent stamps whichever of check-in and check-out is still missing, in one write.
// A record that is already Present is returned unchanged.
func (s *StateStore) MarkPresent(ctx context.Context) (attendance.AttendanceToday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.today.Status.IsLocked() {
		return s.today.Clone(), attendance.ErrStatusLocked
	}
	if s.today.CheckInDone && s.today.CheckOutDone {
		return s.today.Clone(), nil
	}

	now := s.Now()
	stamp := utils.FormatClock(now, s.loc)

	next := s.today.Clone()
	if !next.CheckInDone {
		in := stamp
		next.CheckInDone = true
		next.CheckInTime = &in
	}
	out := stamp
	next.CheckOutDone = true
	next.CheckOutTime = &out
	next.AttendanceDate = &now
	next.Status = attendance.StatusPresent

	if err := s.commit(ctx, next); err != nil {
		return s.today.Clone(), err
	}
	return s.today.Clone(), nil
}

// SetStatus marks the day as Leave or WeekOff without touching the done-flags.
// Any other status returns ErrUnsupportedStatus.
func (s *StateStore) SetStatus(ctx context.Context, status attendance.Status) (attendance.AttendanceToday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.IsLocked() {
		return s.today.Clone(), attendance.ErrUnsupportedStatus
	}

	now := s.Now()
	next := s.today.Clone()
	next.Status = status
	next.AttendanceDate = &now

	if err := s.commit(ctx, next); err != nil {
		return s.today.Clone(), err
	}
	return s.today.Clone(), nil
}

// CheckAndResetIfNewDay replaces the record with the defaults when it belongs to an earlier day.
// A record that was never stamped is left alone.
func (s *StateStore) CheckAndResetIfNewDay(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.today.AttendanceDate == nil {
		return false, nil
	}
	if !utils.IsDifferentDay(s.Now(), *s.today.AttendanceDate, s.loc) {
		return false, nil
	}

	slog.Info("Attendance day rollover detected",
		"key", s.key,
		"previous_date", s.today.AttendanceDate.In(s.loc).Format(utils.DateLayout),
		"previous_status", s.today.Status.String())

	if err := s.commit(ctx, attendance.DefaultAttendanceToday()); err != nil {
		return false, err
	}
	return true, nil
}

// Reset unconditionally restores the defaults.
func (s *StateStore) Reset(ctx context.Context) (attendance.AttendanceToday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, attendance.DefaultAttendanceToday()); err != nil {
		return s.today.Clone(), err
	}
	return s.today.Clone(), nil
}

// commit persists next and only then swaps it in. Callers hold s.mu.
func (s *StateStore) commit(ctx context.Context, next attendance.AttendanceToday) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode attendance record: %w", err)
	}
	if err := s.slot.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("failed to write attendance slot: %w", err)
	}

	s.today = next

	// The coarse marker is derived from the record, so a failed write is not fatal.
	marker, _ := json.Marshal(next.Status)
	if err := s.slot.Put(ctx, s.CurrentStatusKey(), marker); err != nil {
		slog.Warn("Failed to write current status marker", "key", s.CurrentStatusKey(), "error", err)
	}
	return nil
}

// CurrentStatusKey is the slot key of the coarse status marker.
func (s *StateStore) CurrentStatusKey() string {
	return s.key + ":" + currentStatusKey
}
