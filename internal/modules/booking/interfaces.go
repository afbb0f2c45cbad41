package booking

import (
	"context"
	"time"

	"labbooking/internal/domain"
	"labbooking/internal/repository"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ExistsActive(ctx context.Context, instrumentID int64, slot time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
}

type InstrumentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Instrument, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Transactor runs fn in a single database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator is told about every booking write.
type CacheInvalidator interface {
	Invalidate()
}
