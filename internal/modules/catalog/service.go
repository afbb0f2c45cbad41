package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labbooking/internal/domain"
	"labbooking/internal/pkg/apperr"
	"labbooking/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	labs        LabRepository
	instruments InstrumentRepository
	bookings    BookingCounter
	tx          Transactor
	cache       CacheInvalidator
}

func NewService(
	labs LabRepository,
	instruments InstrumentRepository,
	bookings BookingCounter,
	tx Transactor,
	cache CacheInvalidator,
) *Service {
	return &Service{
		labs:        labs,
		instruments: instruments,
		bookings:    bookings,
		tx:          tx,
		cache:       cache,
	}
}

/* ---------- LABS ---------- */

func (s *Service) CreateLab(ctx context.Context, req CreateLabRequest) (*domain.Lab, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name must not be empty")
	}

	lab := &domain.Lab{Name: name}
	if err := s.labs.Create(ctx, lab); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrLabExists
		}
		return nil, fmt.Errorf("create lab: %w", err)
	}
	return lab, nil
}

func (s *Service) ListLabs(ctx context.Context) ([]domain.Lab, error) {
	labs, err := s.labs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}
	return labs, nil
}

func (s *Service) ListLabInstruments(ctx context.Context, labID int64) ([]domain.Instrument, error) {
	if _, err := s.getLab(ctx, labID); err != nil {
		return nil, err
	}

	items, err := s.instruments.ListByLab(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("list lab instruments: %w", err)
	}
	return items, nil
}

// DeleteLab refuses while any instrument still belongs to the lab.
func (s *Service) DeleteLab(ctx context.Context, labID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.getLab(ctx, labID); err != nil {
			return err
		}

		cnt, err := s.instruments.CountByLab(ctx, labID)
		if err != nil {
			return fmt.Errorf("count lab instruments: %w", err)
		}
		if cnt > 0 {
			return ErrLabInUse
		}

		if err := s.labs.Delete(ctx, labID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLabNotFound
			}
			return fmt.Errorf("delete lab: %w", err)
		}
		return nil
	})
}

/* ---------- INSTRUMENTS ---------- */

func (s *Service) CreateInstrument(ctx context.Context, req CreateInstrumentRequest) (*domain.Instrument, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("instrument_name must not be empty")
	}

	lab, err := s.getLabByName(ctx, req.LabName)
	if err != nil {
		return nil, err
	}

	working := true
	if req.Working != nil {
		working = *req.Working
	}

	inst := &domain.Instrument{
		Name:    name,
		LabID:   lab.ID,
		LabName: lab.Name,
		Working: working,
	}
	if err := s.instruments.Create(ctx, inst); err != nil {
		return nil, fmt.Errorf("create instrument: %w", err)
	}

	s.invalidate()
	return inst, nil
}

func (s *Service) ListInstruments(ctx context.Context) ([]domain.Instrument, error) {
	items, err := s.instruments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	return items, nil
}

// UpdateInstrument merges the allowed fields of patch into the stored
// instrument.
func (s *Service) UpdateInstrument(ctx context.Context, id int64, patch InstrumentPatch) (*domain.Instrument, error) {
	var updated domain.Instrument

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.getInstrument(ctx, id)
		if err != nil {
			return err
		}

		var labID int64
		if patch.LabName != nil {
			lab, err := s.getLabByName(ctx, *patch.LabName)
			if err != nil {
				return err
			}
			labID = lab.ID
			name := lab.Name
			patch.LabName = &name
		}

		updated = mergeInstrumentPatch(*cur, patch, labID)
		if err := s.instruments.Update(ctx, &updated); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstrumentNotFound
			}
			return fmt.Errorf("update instrument: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()
	return &updated, nil
}

// DeleteInstrument refuses while bookings of any status reference it.
func (s *Service) DeleteInstrument(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.getInstrument(ctx, id); err != nil {
			return err
		}

		cnt, err := s.bookings.CountByInstrument(ctx, id)
		if err != nil {
			return fmt.Errorf("count instrument bookings: %w", err)
		}
		if cnt > 0 {
			return ErrInstrumentInUse
		}

		if err := s.instruments.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstrumentNotFound
			}
			return fmt.Errorf("delete instrument: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate()
	return nil
}

/* ---------- HELPERS ---------- */

func (s *Service) getLab(ctx context.Context, id int64) (*domain.Lab, error) {
	lab, err := s.labs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("get lab: %w", err)
	}
	return lab, nil
}

func (s *Service) getLabByName(ctx context.Context, name string) (*domain.Lab, error) {
	lab, err := s.labs.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("get lab by name: %w", err)
	}
	return lab, nil
}

func (s *Service) getInstrument(ctx context.Context, id int64) (*domain.Instrument, error) {
	inst, err := s.instruments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstrumentNotFound
		}
		return nil, fmt.Errorf("get instrument: %w", err)
	}
	return inst, nil
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}
