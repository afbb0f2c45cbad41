package repository

import (
	"context"
	"strings"
	"time"

	"labbooking/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID            int64            `gorm:"column:id;primaryKey;autoIncrement"`
	InstrumentID  int64            `gorm:"column:instrument_id;not null;index"`
	Slot          time.Time        `gorm:"column:slot;not null;index"`
	RequestedByID int64            `gorm:"column:requested_by_id;not null;index"`
	RequestedToID int64            `gorm:"column:requested_to_id;not null;index"`
	Status        string           `gorm:"column:status;not null;size:16;default:pending"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
	Instrument    *instrumentModel `gorm:"foreignKey:InstrumentID;references:ID;constraint:OnDelete:RESTRICT"`
	RequestedBy   *userModel       `gorm:"foreignKey:RequestedByID;references:ID;constraint:OnDelete:RESTRICT"`
	RequestedTo   *userModel       `gorm:"foreignKey:RequestedToID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:            m.ID,
		InstrumentID:  m.InstrumentID,
		Slot:          m.Slot.UTC(),
		RequestedByID: m.RequestedByID,
		RequestedToID: m.RequestedToID,
		Status:        domain.BookingStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Slots are stored in UTC so that SQLite's textual timestamps compare and
// index consistently.
func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:            b.ID,
		InstrumentID:  b.InstrumentID,
		Slot:          b.Slot.UTC(),
		RequestedByID: b.RequestedByID,
		RequestedToID: b.RequestedToID,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// BookingFilter narrows a listing. Zero values mean "no filter".
type BookingFilter struct {
	RequestedByID  int64
	RequestedToID  int64
	InstrumentID   int64
	LabName        string
	InstrumentName string
	Limit          int
	Offset         int
}

func activeStatuses() []string {
	out := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := conn(ctx, r.db).Omit("Instrument", "RequestedBy", "RequestedTo").Create(&m).Error; err != nil {
		return translate(err)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// ExistsActive reports whether (instrument, slot) is held by a pending or
// approved booking. The slot must match exactly.
func (r *BookingRepository) ExistsActive(ctx context.Context, instrumentID int64, slot time.Time) (bool, error) {
	var cnt int64
	err := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("instrument_id = ?", instrumentID).
		Where("slot = ?", slot.UTC()).
		Where("status IN ?", activeStatuses()).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	tx := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List applies the filter; Limit <= 0 means unlimited.
func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := conn(ctx, r.db).Model(&bookingModel{}).Select("bookings.*")

	if f.LabName != "" || f.InstrumentName != "" {
		q = q.Joins("JOIN instruments ON instruments.id = bookings.instrument_id").
			Joins("JOIN labs ON labs.id = instruments.lab_id")
		if f.LabName != "" {
			q = q.Where("labs.name = ?", strings.TrimSpace(f.LabName))
		}
		if f.InstrumentName != "" {
			q = q.Where("instruments.instrument_name = ?", strings.TrimSpace(f.InstrumentName))
		}
	}
	if f.RequestedByID != 0 {
		q = q.Where("bookings.requested_by_id = ?", f.RequestedByID)
	}
	if f.RequestedToID != 0 {
		q = q.Where("bookings.requested_to_id = ?", f.RequestedToID)
	}
	if f.InstrumentID != 0 {
		q = q.Where("bookings.instrument_id = ?", f.InstrumentID)
	}

	q = q.Order("bookings.slot ASC").Order("bookings.id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []bookingModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ListActiveForInstruments returns pending/approved bookings of the given
// instruments with slot in [from, to].
func (r *BookingRepository) ListActiveForInstruments(ctx context.Context, instrumentIDs []int64, from, to time.Time) ([]domain.Booking, error) {
	if len(instrumentIDs) == 0 {
		return []domain.Booking{}, nil
	}

	var rows []bookingModel
	err := conn(ctx, r.db).
		Where("instrument_id IN ?", instrumentIDs).
		Where("slot >= ? AND slot <= ?", from.UTC(), to.UTC()).
		Where("status IN ?", activeStatuses()).
		Order("slot ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) CountByInstrument(ctx context.Context, instrumentID int64) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&bookingModel{}).Where("instrument_id = ?", instrumentID).Count(&cnt).Error
	return cnt, err
}
