package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Active bookings are unique per (instrument, slot). Rejected rows may repeat.
const activeSlotIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot
ON bookings (instrument_id, slot)
WHERE status IN ('pending', 'approved')`

func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(
		&userModel{},
		&labModel{},
		&instrumentModel{},
		&bookingModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(activeSlotIndexSQL).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}
	return nil
}
