package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*3600)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// flakySlot wraps a slot and fails writes to keys in failKeys.
type flakySlot struct {
	attendance.SlotRepository
	mu       sync.Mutex
	failKeys map[string]bool
}

var errSlotDown = errors.New("slot unavailable")

func (f *flakySlot) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failKeys[key]
	f.mu.Unlock()
	if fail {
		return errSlotDown
	}
	return f.SlotRepository.Put(ctx, key, value)
}

func (f *flakySlot) fail(key string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys == nil {
		f.failKeys = map[string]bool{}
	}
	f.failKeys[key] = on
}

// assertConsistent checks the record's flags against its stored status.
// Leave and WeekOff may carry any flags; otherwise the status follows from the flags.
func assertConsistent(t *testing.T, rec attendance.AttendanceToday) {
	t.Helper()
	if rec.CheckOutDone {
		assert.True(t, rec.CheckInDone, "check-out without check-in")
	}
	if rec.Status.IsLocked() {
		return
	}
	switch {
	case rec.CheckInDone && rec.CheckOutDone:
		assert.Equal(t, attendance.StatusPresent, rec.Status)
	case rec.CheckInDone || rec.CheckOutDone:
		assert.Equal(t, attendance.StatusPartial, rec.Status)
	default:
		assert.Contains(t, []attendance.Status{attendance.StatusNone, attendance.StatusAbsent}, rec.Status)
	}
	if rec.Status == attendance.StatusPresent || rec.Status == attendance.StatusPartial {
		assert.Equal(t, rec.Status, *DeriveStatus(&rec))
	}
}

func newTestStore(t *testing.T, slot attendance.SlotRepository, clk *testClock) *StateStore {
	t.Helper()
	if slot == nil {
		slot = memory.NewSlotRepository()
	}
	store := NewStateStore(slot, "test", WithClock(clk.Now), WithLocation(wib))
	require.NoError(t, store.Load(context.Background()))
	return store
}
