package memory

import (
	"context"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/patrickmn/go-cache"
)

// slotRepository keeps slots in process memory. Values survive for the life of
// the process only; it backs tests and SLOT_DRIVER=memory.
type slotRepository struct {
	store *cache.Cache
}

func NewSlotRepository() attendance.SlotRepository {
	return &slotRepository{store: cache.New(cache.NoExpiration, 0)}
}

// Get implements attendance.SlotRepository.
func (r *slotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, found := r.store.Get(key)
	if !found {
		return nil, false, nil
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true, nil
}

// Put implements attendance.SlotRepository.
func (r *slotRepository) Put(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	r.store.Set(key, stored, cache.NoExpiration)
	return nil
}

// Delete implements attendance.SlotRepository.
func (r *slotRepository) Delete(ctx context.Context, key string) error {
	r.store.Delete(key)
	return nil
}
