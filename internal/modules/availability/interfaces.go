package availability

import (
	"context"
	"time"

	"labbooking/internal/domain"
)

type LabLookup interface {
	GetByName(ctx context.Context, name string) (*domain.Lab, error)
}

type InstrumentLookup interface {
	ListWorkingByLabAndName(ctx context.Context, labID int64, name string) ([]domain.Instrument, error)
}

type BookingLookup interface {
	ListActiveForInstruments(ctx context.Context, instrumentIDs []int64, from, to time.Time) ([]domain.Booking, error)
}
