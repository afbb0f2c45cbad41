package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labbooking/internal/domain"
	"labbooking/internal/modules/availability"
	"labbooking/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	bookings    BookingRepository
	instruments InstrumentRepository
	users       UserRepository
	tx          Transactor
	cache       CacheInvalidator

	loc          *time.Location
	defaultLimit int
}

type Options struct {
	// Location defines the working day used for the opening-hours check.
	Location     *time.Location
	DefaultLimit int
}

func NewService(
	bookings BookingRepository,
	instruments InstrumentRepository,
	users UserRepository,
	tx Transactor,
	cache CacheInvalidator,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > MaxPageLimit {
		opts.DefaultLimit = 10
	}
	return &Service{
		bookings:     bookings,
		instruments:  instruments,
		users:        users,
		tx:           tx,
		cache:        cache,
		loc:          opts.Location,
		defaultLimit: opts.DefaultLimit,
	}
}

// CreateBooking files a pending request for one instrument slot on behalf of
// requester. The exclusivity check and the insert share a transaction; the
// active-slot unique index catches whatever races past the check.
func (s *Service) CreateBooking(ctx context.Context, requester *domain.User, req CreateBookingRequest) (*domain.Booking, error) {
	if req.Slot.IsZero() {
		return nil, ErrOutsideHours
	}
	if _, _, ok := availability.SlotIndex(req.Slot, s.loc); !ok {
		return nil, ErrOutsideHours
	}

	b := &domain.Booking{
		InstrumentID:  req.InstrumentID,
		Slot:          req.Slot.UTC(),
		RequestedByID: requester.ID,
		RequestedToID: req.RequestedToID,
		Status:        domain.BookingPending,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inst, err := s.instruments.GetByID(ctx, req.InstrumentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstrumentNotFound
			}
			return fmt.Errorf("get instrument: %w", err)
		}
		if !inst.Working {
			return ErrInstrumentDown
		}

		approver, err := s.users.GetByID(ctx, req.RequestedToID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidApprover
			}
			return fmt.Errorf("get approver: %w", err)
		}
		if !approver.IsAdmin() {
			return ErrInvalidApprover
		}

		taken, err := s.bookings.ExistsActive(ctx, b.InstrumentID, b.Slot)
		if err != nil {
			return fmt.Errorf("check slot: %w", err)
		}
		if taken {
			return ErrSlotTaken
		}

		if err := s.bookings.Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrSlotTaken
			}
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	return b, nil
}

// ListMine returns the requester's own bookings.
func (s *Service) ListMine(ctx context.Context, requester *domain.User, f MineFilter, pr PageRequest) ([]domain.Booking, error) {
	page, err := resolvePage(pr, s.defaultLimit)
	if err != nil {
		return nil, err
	}

	items, err := s.bookings.List(ctx, repository.BookingFilter{
		RequestedByID:  requester.ID,
		LabName:        f.LabName,
		InstrumentName: f.InstrumentName,
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return items, nil
}

// ListAll is the admin view over every booking.
func (s *Service) ListAll(ctx context.Context, caller *domain.User, f AllFilter, pr PageRequest) ([]domain.Booking, error) {
	if !caller.IsAdmin() {
		return nil, ErrAdminOnly
	}

	page, err := resolvePage(pr, s.defaultLimit)
	if err != nil {
		return nil, err
	}

	items, err := s.bookings.List(ctx, repository.BookingFilter{
		RequestedByID: f.UserID,
		InstrumentID:  f.InstrumentID,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return items, nil
}

// ListToApprove returns every booking routed to caller, in any status.
func (s *Service) ListToApprove(ctx context.Context, caller *domain.User) ([]domain.Booking, error) {
	items, err := s.bookings.List(ctx, repository.BookingFilter{RequestedToID: caller.ID})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return items, nil
}

// Decide approves or rejects a pending booking. Repeating the current
// decision is a no-op; reversing one is a conflict.
func (s *Service) Decide(ctx context.Context, caller *domain.User, bookingID int64, rawStatus string) (*domain.Booking, error) {
	var (
		out     *domain.Booking
		changed bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("get booking: %w", err)
		}

		if b.RequestedToID != caller.ID {
			return ErrNotApprover
		}

		status, err := domain.ParseBookingStatus(rawStatus)
		if err != nil || !status.IsDecision() {
			return ErrInvalidDecision
		}

		if b.Status == status {
			out = b
			return nil
		}
		if b.Status.IsTerminal() {
			return ErrAlreadyDecided
		}

		if err := s.bookings.UpdateStatus(ctx, b.ID, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("update booking status: %w", err)
		}

		b.Status = status
		b.UpdatedAt = time.Now().UTC()
		out = b
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.invalidate()
	}
	return out, nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
