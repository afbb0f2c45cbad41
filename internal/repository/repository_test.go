package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"labbooking/internal/database"
	"labbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	users       *UserRepository
	labs        *LabRepository
	instruments *InstrumentRepository
	bookings    *BookingRepository
	tx          *Transactor

	alice, admin *domain.User
	lab          *domain.Lab
	spectro      *domain.Instrument
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, Migrate(ctx, db))

	f := &fixture{
		db:          db,
		users:       NewUserRepository(db),
		labs:        NewLabRepository(db),
		instruments: NewInstrumentRepository(db),
		bookings:    NewBookingRepository(db),
		tx:          NewTransactor(db),
	}

	f.alice = &domain.User{Username: "Alice", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, f.users.Create(ctx, f.alice))
	f.admin = &domain.User{Username: "prof", PasswordHash: "x", Role: domain.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, f.admin))

	f.lab = &domain.Lab{Name: "L1"}
	require.NoError(t, f.labs.Create(ctx, f.lab))
	f.spectro = &domain.Instrument{Name: "Spectrometer", LabID: f.lab.ID, Working: true}
	require.NoError(t, f.instruments.Create(ctx, f.spectro))

	return f
}

func (f *fixture) book(t *testing.T, instrumentID int64, slot time.Time, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		InstrumentID:  instrumentID,
		Slot:          slot,
		RequestedByID: f.alice.ID,
		RequestedToID: f.admin.ID,
		Status:        status,
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func TestUserRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, err := f.users.GetByUsername(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)

	exists, err := f.users.ExistsByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, exists)

	err = f.users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "y", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLabRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.labs.Create(ctx, &domain.Lab{Name: "L1"})
	assert.ErrorIs(t, err, ErrDuplicate)

	l2 := &domain.Lab{Name: "L2"}
	require.NoError(t, f.labs.Create(ctx, l2))

	got, err := f.labs.GetByName(ctx, "L2")
	require.NoError(t, err)
	assert.Equal(t, l2.ID, got.ID)

	labs, err := f.labs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, labs, 2)

	require.NoError(t, f.labs.Delete(ctx, l2.ID))
	assert.ErrorIs(t, f.labs.Delete(ctx, l2.ID), gorm.ErrRecordNotFound)
}

func TestInstrumentRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	broken := &domain.Instrument{Name: "Spectrometer", LabID: f.lab.ID, Working: false}
	require.NoError(t, f.instruments.Create(ctx, broken))

	got, err := f.instruments.GetByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.False(t, got.Working)
	assert.Equal(t, "L1", got.LabName)

	pool, err := f.instruments.ListWorkingByLabAndName(ctx, f.lab.ID, "Spectrometer")
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, f.spectro.ID, pool[0].ID)

	cnt, err := f.instruments.CountByLab(ctx, f.lab.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cnt)

	broken.Working = true
	broken.Name = "Microscope"
	require.NoError(t, f.instruments.Update(ctx, broken))
	got, err = f.instruments.GetByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.True(t, got.Working)
	assert.Equal(t, "Microscope", got.Name)

	assert.ErrorIs(t, f.instruments.Update(ctx, &domain.Instrument{ID: 404, LabID: f.lab.ID}), gorm.ErrRecordNotFound)

	require.NoError(t, f.instruments.Delete(ctx, broken.ID))
	all, err := f.instruments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBookingRepository_ActiveSlotUniqueness(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slot := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)

	f.book(t, f.spectro.ID, slot, domain.BookingPending)

	dup := &domain.Booking{
		InstrumentID:  f.spectro.ID,
		Slot:          slot,
		RequestedByID: f.alice.ID,
		RequestedToID: f.admin.ID,
		Status:        domain.BookingPending,
	}
	assert.ErrorIs(t, f.bookings.Create(ctx, dup), ErrDuplicate)

	exists, err := f.bookings.ExistsActive(ctx, f.spectro.ID, slot.In(time.FixedZone("X", 3600)))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.bookings.ExistsActive(ctx, f.spectro.ID, slot.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBookingRepository_RejectedFreesSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	slot := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)

	first := f.book(t, f.spectro.ID, slot, domain.BookingPending)
	require.NoError(t, f.bookings.UpdateStatus(ctx, first.ID, domain.BookingRejected))

	exists, err := f.bookings.ExistsActive(ctx, f.spectro.ID, slot)
	require.NoError(t, err)
	assert.False(t, exists)

	second := f.book(t, f.spectro.ID, slot, domain.BookingPending)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := f.bookings.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, got.Status)
	assert.True(t, got.Slot.Equal(slot))
}

func TestBookingRepository_ListFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lab2 := &domain.Lab{Name: "L2"}
	require.NoError(t, f.labs.Create(ctx, lab2))
	scope := &domain.Instrument{Name: "Microscope", LabID: lab2.ID, Working: true}
	require.NoError(t, f.instruments.Create(ctx, scope))

	base := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	b1 := f.book(t, f.spectro.ID, base.Add(2*time.Hour), domain.BookingPending)
	b2 := f.book(t, scope.ID, base, domain.BookingApproved)

	mine, err := f.bookings.List(ctx, BookingFilter{RequestedByID: f.alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, b2.ID, mine[0].ID, "ordered by slot")

	byLab, err := f.bookings.List(ctx, BookingFilter{RequestedByID: f.alice.ID, LabName: "L1"})
	require.NoError(t, err)
	require.Len(t, byLab, 1)
	assert.Equal(t, b1.ID, byLab[0].ID)

	byName, err := f.bookings.List(ctx, BookingFilter{InstrumentName: "Microscope"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, b2.ID, byName[0].ID)

	paged, err := f.bookings.List(ctx, BookingFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, b1.ID, paged[0].ID)

	toApprove, err := f.bookings.List(ctx, BookingFilter{RequestedToID: f.admin.ID})
	require.NoError(t, err)
	assert.Len(t, toApprove, 2)

	none, err := f.bookings.List(ctx, BookingFilter{RequestedByID: f.admin.ID})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingRepository_ListActiveForInstruments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	inside := f.book(t, f.spectro.ID, day.Add(10*time.Hour+30*time.Minute), domain.BookingApproved)
	rejected := f.book(t, f.spectro.ID, day.Add(12*time.Hour), domain.BookingPending)
	require.NoError(t, f.bookings.UpdateStatus(ctx, rejected.ID, domain.BookingRejected))
	f.book(t, f.spectro.ID, day.Add(-24*time.Hour+10*time.Hour), domain.BookingPending)

	got, err := f.bookings.ListActiveForInstruments(ctx, []int64{f.spectro.ID}, day.Add(10*time.Hour), day.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inside.ID, got[0].ID)

	empty, err := f.bookings.ListActiveForInstruments(ctx, nil, day, day)
	require.NoError(t, err)
	assert.Empty(t, empty)

	cnt, err := f.bookings.CountByInstrument(ctx, f.spectro.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cnt)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := f.labs.Create(ctx, &domain.Lab{Name: "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = f.labs.GetByName(ctx, "Ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = f.tx.WithinTx(ctx, func(ctx context.Context) error {
		return f.labs.Create(ctx, &domain.Lab{Name: "Kept"})
	})
	require.NoError(t, err)
	_, err = f.labs.GetByName(ctx, "Kept")
	assert.NoError(t, err)
}

func TestForeignKeys_Enforced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := f.instruments.Create(ctx, &domain.Instrument{Name: "Orphan", LabID: 9999, Working: true})
	assert.Error(t, err)
}
