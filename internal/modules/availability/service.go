package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type Service struct {
	labs        LabLookup
	instruments InstrumentLookup
	bookings    BookingLookup

	loc   *time.Location
	now   func() time.Time
	cache *cache.Cache
	gen   atomic.Uint64
}

// NewService builds the calculator. ttl <= 0 disables the grid cache.
func NewService(labs LabLookup, instruments InstrumentLookup, bookings BookingLookup, loc *time.Location, ttl time.Duration) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		labs:        labs,
		instruments: instruments,
		bookings:    bookings,
		loc:         loc,
		now:         time.Now,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

// Invalidate drops every cached grid. Grids computed concurrently with the
// call are stored under the previous generation and never served.
func (s *Service) Invalidate() {
	s.gen.Add(1)
	if s.cache != nil {
		s.cache.Flush()
	}
}

// GetAvailability returns the 5-day slot grid of the working instruments
// named instrumentName in the lab labName.
func (s *Service) GetAvailability(ctx context.Context, labName, instrumentName string) ([]Slot, error) {
	labName = strings.TrimSpace(labName)
	instrumentName = strings.TrimSpace(instrumentName)

	today := DayStart(s.now(), s.loc)
	key := fmt.Sprintf("%d|%s|%s|%s", s.gen.Load(), today.Format(time.DateOnly), labName, instrumentName)

	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			return cloneSlots(cached.([]Slot)), nil
		}
	}

	grid, err := s.compute(ctx, today, labName, instrumentName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, grid, cache.DefaultExpiration)
	}
	return cloneSlots(grid), nil
}

func (s *Service) compute(ctx context.Context, today time.Time, labName, instrumentName string) ([]Slot, error) {
	lab, err := s.labs.GetByName(ctx, labName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("get lab: %w", err)
	}

	pool, err := s.instruments.ListWorkingByLabAndName(ctx, lab.ID, instrumentName)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrInstrumentNotFound
	}

	ids := make([]int64, 0, len(pool))
	for _, inst := range pool {
		ids = append(ids, inst.ID)
	}

	from := today
	to := time.Date(today.Year(), today.Month(), today.Day()+HorizonDays, 23, 59, 59, 0, s.loc)
	booked, err := s.bookings.ListActiveForInstruments(ctx, ids, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return BuildGrid(today, s.loc, len(pool), booked), nil
}

func cloneSlots(in []Slot) []Slot {
	out := make([]Slot, len(in))
	copy(out, in)
	return out
}
