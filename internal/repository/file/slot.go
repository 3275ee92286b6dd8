package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/storage"
)

type slotRepository struct {
	files storage.FileStorage
}

// NewSlotRepository keeps each slot in its own JSON file, so the record survives restarts without a database.
func NewSlotRepository(files storage.FileStorage) attendance.SlotRepository {
	return &slotRepository{files: files}
}

func slotPath(key string) string {
	return url.PathEscape(key) + ".json"
}

// Get implements attendance.SlotRepository.
func (r *slotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	rc, err := r.files.Read(ctx, slotPath(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get slot %q: %w", key, err)
	}
	defer rc.Close()

	value, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return value, true, nil
}

// Put implements attendance.SlotRepository.
func (r *slotRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.files.Write(ctx, slotPath(key), bytes.NewReader(value)); err != nil {
		return fmt.Errorf("failed to put slot %q: %w", key, err)
	}
	return nil
}

// Delete implements attendance.SlotRepository.
func (r *slotRepository) Delete(ctx context.Context, key string) error {
	if err := r.files.Delete(ctx, slotPath(key)); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}
