package repository

import (
	"context"
	"strings"

	"labbooking/internal/domain"

	"gorm.io/gorm"
)

type InstrumentRepository struct {
	db *gorm.DB
}

func NewInstrumentRepository(db *gorm.DB) *InstrumentRepository {
	return &InstrumentRepository{db: db}
}

type instrumentModel struct {
	ID      int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name    string    `gorm:"column:instrument_name;not null;index:idx_instruments_lab_name,priority:2"`
	LabID   int64     `gorm:"column:lab_id;not null;index:idx_instruments_lab_name,priority:1"`
	Working bool      `gorm:"column:working;not null"`
	Lab     *labModel `gorm:"foreignKey:LabID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (instrumentModel) TableName() string { return "instruments" }

// instrumentRow is an instrument joined with its lab name.
type instrumentRow struct {
	ID      int64  `gorm:"column:id"`
	Name    string `gorm:"column:instrument_name"`
	LabID   int64  `gorm:"column:lab_id"`
	LabName string `gorm:"column:lab_name"`
	Working bool   `gorm:"column:working"`
}

func (r instrumentRow) toDomain() domain.Instrument {
	return domain.Instrument{
		ID:      r.ID,
		Name:    r.Name,
		LabID:   r.LabID,
		LabName: r.LabName,
		Working: r.Working,
	}
}

func toInstrumentModel(i *domain.Instrument) instrumentModel {
	return instrumentModel{
		ID:      i.ID,
		Name:    strings.TrimSpace(i.Name),
		LabID:   i.LabID,
		Working: i.Working,
	}
}

func (r *InstrumentRepository) joined(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Table("instruments").
		Select("instruments.id, instruments.instrument_name, instruments.lab_id, labs.name AS lab_name, instruments.working").
		Joins("JOIN labs ON labs.id = instruments.lab_id")
}

func (r *InstrumentRepository) Create(ctx context.Context, i *domain.Instrument) error {
	m := toInstrumentModel(i)
	// No column default on working: gorm would drop a false value in favour of it.
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return translate(err)
	}
	i.ID = m.ID
	i.Name = m.Name
	return nil
}

func (r *InstrumentRepository) GetByID(ctx context.Context, id int64) (*domain.Instrument, error) {
	var row instrumentRow
	if err := r.joined(ctx).Where("instruments.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	out := row.toDomain()
	return &out, nil
}

func (r *InstrumentRepository) List(ctx context.Context) ([]domain.Instrument, error) {
	return r.find(r.joined(ctx).Order("instruments.id ASC"))
}

func (r *InstrumentRepository) ListByLab(ctx context.Context, labID int64) ([]domain.Instrument, error) {
	return r.find(r.joined(ctx).Where("instruments.lab_id = ?", labID).Order("instruments.id ASC"))
}

// ListWorkingByLabAndName returns the bookable pool of one instrument class.
func (r *InstrumentRepository) ListWorkingByLabAndName(ctx context.Context, labID int64, name string) ([]domain.Instrument, error) {
	return r.find(r.joined(ctx).
		Where("instruments.lab_id = ?", labID).
		Where("instruments.instrument_name = ?", strings.TrimSpace(name)).
		Where("instruments.working = ?", true).
		Order("instruments.id ASC"))
}

func (r *InstrumentRepository) CountByLab(ctx context.Context, labID int64) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&instrumentModel{}).Where("lab_id = ?", labID).Count(&cnt).Error
	return cnt, err
}

// Update writes only the mutable columns.
func (r *InstrumentRepository) Update(ctx context.Context, i *domain.Instrument) error {
	tx := conn(ctx, r.db).
		Model(&instrumentModel{}).
		Where("id = ?", i.ID).
		Updates(map[string]any{
			"instrument_name": strings.TrimSpace(i.Name),
			"lab_id":          i.LabID,
			"working":         i.Working,
		})
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InstrumentRepository) Delete(ctx context.Context, id int64) error {
	tx := conn(ctx, r.db).Delete(&instrumentModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InstrumentRepository) find(q *gorm.DB) ([]domain.Instrument, error) {
	var rows []instrumentRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Instrument, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
