package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type slotRepository struct {
	db *database.DB
}

func NewSlotRepository(db *database.DB) attendance.SlotRepository {
	return &slotRepository{db: db}
}

var slotSchema = []string{
	`CREATE TABLE IF NOT EXISTS attendance_slots (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_slots_updated_at ON attendance_slots (updated_at DESC)`,
}

// Migrate creates the slot table if it does not exist.
func Migrate(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, ddl := range slotSchema {
			if _, err := q.Exec(ctx, ddl); err != nil {
				return fmt.Errorf("DDL failed on %q: %w", ddl, err)
			}
		}
		return nil
	})
}

// Get implements attendance.SlotRepository.
func (r *slotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	q := GetQuerier(ctx, r.db)

	var value []byte
	err := q.QueryRow(ctx, `SELECT value FROM attendance_slots WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get slot %q: %w", key, err)
	}

	return value, true, nil
}

// Put implements attendance.SlotRepository.
func (r *slotRepository) Put(ctx context.Context, key string, value []byte) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_slots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := q.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put slot %q: %w", key, err)
	}
	return nil
}

// Delete implements attendance.SlotRepository.
func (r *slotRepository) Delete(ctx context.Context, key string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM attendance_slots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}
