package catalog

import (
	"context"

	"labbooking/internal/domain"
)

type LabRepository interface {
	Create(ctx context.Context, l *domain.Lab) error
	GetByID(ctx context.Context, id int64) (*domain.Lab, error)
	GetByName(ctx context.Context, name string) (*domain.Lab, error)
	List(ctx context.Context) ([]domain.Lab, error)
	Delete(ctx context.Context, id int64) error
}

type InstrumentRepository interface {
	Create(ctx context.Context, i *domain.Instrument) error
	GetByID(ctx context.Context, id int64) (*domain.Instrument, error)
	List(ctx context.Context) ([]domain.Instrument, error)
	ListByLab(ctx context.Context, labID int64) ([]domain.Instrument, error)
	CountByLab(ctx context.Context, labID int64) (int64, error)
	Update(ctx context.Context, i *domain.Instrument) error
	Delete(ctx context.Context, id int64) error
}

// BookingCounter guards instrument deletion.
type BookingCounter interface {
	CountByInstrument(ctx context.Context, instrumentID int64) (int64, error)
}

// Transactor runs fn in a single database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator drops derived availability data after catalog writes.
type CacheInvalidator interface {
	Invalidate()
}
